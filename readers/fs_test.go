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
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/textform/core"
)

func newTestFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/b.txt", []byte("beta"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/a.txt", []byte("alpha"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/c.md", []byte("gamma"), 0o644))
	require.NoError(t, fs.MkdirAll("/src/sub", 0o755))
	return fs
}

func readAll(t *testing.T, source core.FileSource) []*core.FileRecord {
	t.Helper()
	var records []*core.FileRecord
	for {
		record, err := source.Read(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		records = append(records, record)
	}
	return records
}

// TestFSReader_BufferMode tests sorted buffered reads
func TestFSReader_BufferMode(t *testing.T) {
	reader, err := NewFSReader([]string{"/src/*.txt"}, WithFSFs(newTestFs(t)), WithFSEncoding("latin1"))
	require.NoError(t, err)

	records := readAll(t, reader)
	require.Len(t, records, 2)

	assert.Equal(t, "/src/a.txt", records[0].Path)
	assert.Equal(t, "/src", records[0].Base)
	assert.Equal(t, "a.txt", records[0].RelPath())
	assert.Equal(t, "latin1", records[0].Encoding)
	assert.True(t, records[0].IsBuffer())
	assert.Equal(t, "alpha", string(records[0].Contents))
	assert.Equal(t, "beta", string(records[1].Contents))
	require.NoError(t, reader.Close())
}

func TestFSReader_StreamMode(t *testing.T) {
	reader, err := NewFSReader([]string{"/src/a.txt"}, WithFSFs(newTestFs(t)), WithFSBuffer(false))
	require.NoError(t, err)

	records := readAll(t, reader)
	require.Len(t, records, 1)
	require.True(t, records[0].IsStream())

	data, err := records[0].ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
}

func TestFSReader_Directories(t *testing.T) {
	fs := newTestFs(t)

	reader, err := NewFSReader([]string{"/src/*"}, WithFSFs(fs))
	require.NoError(t, err)
	assert.Len(t, readAll(t, reader), 3, "directories are skipped by default")

	reader, err = NewFSReader([]string{"/src/*"}, WithFSFs(fs), WithFSIncludeDirs(true))
	require.NoError(t, err)
	records := readAll(t, reader)
	require.Len(t, records, 4)
	last := records[3]
	assert.Equal(t, "/src/sub", last.Path)
	assert.True(t, last.IsNull())
	assert.True(t, last.IsDir())
}

func TestFSReader_NoRead(t *testing.T) {
	reader, err := NewFSReader([]string{"/src/*.md"}, WithFSFs(newTestFs(t)), WithFSRead(false))
	require.NoError(t, err)

	records := readAll(t, reader)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsNull())
	require.NotNil(t, records[0].Stat)
	assert.EqualValues(t, 5, records[0].Stat.Size())
}

func TestFSReader_DeduplicatesPatterns(t *testing.T) {
	reader, err := NewFSReader([]string{"/src/*.txt", "/src/a.*"}, WithFSFs(newTestFs(t)))
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/a.txt", "/src/b.txt"}, reader.Matches())
}

func TestFSReader_ExplicitBase(t *testing.T) {
	reader, err := NewFSReader([]string{"/src/*.md"}, WithFSFs(newTestFs(t)), WithFSBase("/"))
	require.NoError(t, err)

	records := readAll(t, reader)
	require.Len(t, records, 1)
	assert.Equal(t, "src/c.md", records[0].RelPath())
}

func TestFSReader_Validation(t *testing.T) {
	_, err := NewFSReader(nil)
	require.Error(t, err)
	var fsErr *FSReaderError
	assert.True(t, errors.As(err, &fsErr))

	_, err = NewFSReader([]string{"/src/[bad"}, WithFSFs(newTestFs(t)))
	assert.Error(t, err)
}

func TestFSReader_CancelledContext(t *testing.T) {
	reader, err := NewFSReader([]string{"/src/*.txt"}, WithFSFs(newTestFs(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reader.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGlobBase(t *testing.T) {
	assert.Equal(t, "/src", globBase("/src/*.txt"))
	assert.Equal(t, "/src", globBase("/src/a.txt"))
	assert.Equal(t, "/src", globBase("/src/sub*/x.txt"))
	assert.Equal(t, ".", globBase("*.txt"))
}
