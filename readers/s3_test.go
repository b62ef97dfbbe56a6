//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of Textform.
//
// Textform is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Textform is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Textform. If not, see https://www.gnu.org/licenses/.

package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves ListObjectsV2 and GetObject for a single bucket using path-style addressing
func fakeS3(t *testing.T, bucket string, objects map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		name, key, _ := strings.Cut(path, "/")
		if name != bucket {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if key == "" && r.URL.Query().Get("list-type") == "2" {
			prefix := r.URL.Query().Get("prefix")
			var keys []string
			for k := range objects {
				if strings.HasPrefix(k, prefix) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)

			var b strings.Builder
			b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
			b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
			fmt.Fprintf(&b, "<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>", bucket, prefix, len(keys))
			for _, k := range keys {
				fmt.Fprintf(&b, `<Contents><Key>%s</Key><Size>%d</Size><ETag>"etag"</ETag><LastModified>2025-01-01T00:00:00.000Z</LastModified></Contents>`, k, len(objects[k]))
			}
			b.WriteString("</ListBucketResult>")
			w.Header().Set("Content-Type", "application/xml")
			_, _ = io.WriteString(w, b.String())
			return
		}

		body, ok := objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		_, _ = io.WriteString(w, body)
	}))
}

func testS3Options(server *httptest.Server) []ReaderOptionS3 {
	return []ReaderOptionS3{
		WithS3Bucket("docs"),
		WithS3Region("us-east-1"),
		WithS3Endpoint(server.URL),
		WithS3PathStyle(true),
		WithS3Credentials(aws.Credentials{AccessKeyID: "test", SecretAccessKey: "test"}),
	}
}

func TestS3Reader_ListsAndStreamsObjects(t *testing.T) {
	server := fakeS3(t, "docs", map[string]string{
		"guides/b.md":  "beta",
		"guides/a.md":  "alpha",
		"guides/dir/":  "",
		"other/c.md":   "gamma",
		"guides/x.txt": "text",
	})
	defer server.Close()

	options := append(testS3Options(server), WithS3Prefix("guides/"), WithS3Suffix(".md"))
	reader, err := NewS3Reader(context.Background(), options...)
	require.NoError(t, err)

	records := readAll(t, reader)
	require.Len(t, records, 2)

	assert.Equal(t, "/guides/a.md", records[0].Path)
	assert.Equal(t, "/guides", records[0].Base)
	assert.Equal(t, "a.md", records[0].RelPath())
	require.True(t, records[0].IsStream())

	data, err := records[0].ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	stats := reader.Stats()
	assert.EqualValues(t, 2, stats.ObjectsListed)
	assert.EqualValues(t, 2, stats.ObjectsRead)
	assert.Equal(t, []string{"guides/a.md", "guides/b.md"}, stats.ProcessedFiles)
}

func TestS3Reader_BufferMode(t *testing.T) {
	server := fakeS3(t, "docs", map[string]string{"a.txt": "alpha"})
	defer server.Close()

	options := append(testS3Options(server), WithS3Buffer(true), WithS3Encoding("latin1"))
	reader, err := NewS3Reader(context.Background(), options...)
	require.NoError(t, err)

	records := readAll(t, reader)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsBuffer())
	assert.Equal(t, "alpha", string(records[0].Contents))
	assert.Equal(t, "latin1", records[0].Encoding)
	assert.Equal(t, "a.txt", records[0].RelPath())
}

func TestS3Reader_NonRecursive(t *testing.T) {
	server := fakeS3(t, "docs", map[string]string{
		"top.txt":        "top",
		"nested/low.txt": "low",
	})
	defer server.Close()

	options := append(testS3Options(server), WithS3Recursive(false))
	reader, err := NewS3Reader(context.Background(), options...)
	require.NoError(t, err)

	objects := reader.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, "top.txt", objects[0].Key)
}

func TestS3Reader_Validation(t *testing.T) {
	_, err := NewS3Reader(context.Background())
	require.Error(t, err)
	var s3Err *S3ReaderError
	require.True(t, errors.As(err, &s3Err))
	assert.Equal(t, "validate_options", s3Err.Op)
	assert.Contains(t, err.Error(), "bucket is required")
}
