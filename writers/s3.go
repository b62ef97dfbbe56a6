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

package writers

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaronlmathis/textform/core"
	"github.com/aaronlmathis/textform/readers"
)

// S3WriterError provides structured error information for S3 writer operations
type S3WriterError struct {
	Op  string // Operation that failed (e.g., "put_object", "read")
	Key string // Object key
	Err error  // Underlying error
}

func (e *S3WriterError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("s3 writer %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3 writer %s: %v", e.Op, e.Err)
}

func (e *S3WriterError) Unwrap() error {
	return e.Err
}

// S3WriterStats holds statistics about the S3 writer
type S3WriterStats struct {
	ObjectsWritten int64     // Objects uploaded
	BytesWritten   int64     // Bytes uploaded
	LastWriteTime  time.Time // Time of last upload
}

// S3WriterOptions configures the S3 writer
type S3WriterOptions struct {
	Bucket         string          // Target bucket
	Prefix         string          // Key prefix for uploaded objects
	Region         string          // AWS region
	Profile        string          // AWS profile to use
	Credentials    aws.Credentials // Explicit credentials
	EndpointURL    string          // Custom S3 endpoint
	ForcePathStyle bool            // Use path-style addressing
	ContentType    string          // Content type, derived from the extension when empty
}

// S3WriterOption represents a configuration function for S3Writer
type S3WriterOption func(*S3WriterOptions)

func WithS3WriterBucket(bucket string) S3WriterOption {
	return func(opts *S3WriterOptions) {
		opts.Bucket = bucket
	}
}

func WithS3WriterPrefix(prefix string) S3WriterOption {
	return func(opts *S3WriterOptions) {
		opts.Prefix = prefix
	}
}

func WithS3WriterRegion(region string) S3WriterOption {
	return func(opts *S3WriterOptions) {
		opts.Region = region
	}
}

func WithS3WriterProfile(profile string) S3WriterOption {
	return func(opts *S3WriterOptions) {
		opts.Profile = profile
	}
}

func WithS3WriterCredentials(creds aws.Credentials) S3WriterOption {
	return func(opts *S3WriterOptions) {
		opts.Credentials = creds
	}
}

func WithS3WriterEndpoint(endpoint string) S3WriterOption {
	return func(opts *S3WriterOptions) {
		opts.EndpointURL = endpoint
	}
}

func WithS3WriterPathStyle(pathStyle bool) S3WriterOption {
	return func(opts *S3WriterOptions) {
		opts.ForcePathStyle = pathStyle
	}
}

func WithS3WriterContentType(contentType string) S3WriterOption {
	return func(opts *S3WriterOptions) {
		opts.ContentType = contentType
	}
}

// S3Writer implements core.FileSink by uploading each record as one object.
// The object key is the prefix joined with the record's relative path.
type S3Writer struct {
	client *s3.Client
	opts   S3WriterOptions
	stats  S3WriterStats
	mu     sync.Mutex
}

// NewS3Writer creates a new S3 writer.
func NewS3Writer(ctx context.Context, options ...S3WriterOption) (*S3Writer, error) {
	var opts S3WriterOptions
	for _, option := range options {
		option(&opts)
	}

	if opts.Bucket == "" {
		return nil, &S3WriterError{Op: "validate_options", Err: fmt.Errorf("bucket is required")}
	}

	cfg, err := readers.LoadAWSConfig(ctx, opts.Region, opts.Profile, opts.Credentials)
	if err != nil {
		return nil, &S3WriterError{Op: "create_aws_config", Err: err}
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.EndpointURL != "" {
			o.BaseEndpoint = aws.String(opts.EndpointURL)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})

	return &S3Writer{client: client, opts: opts}, nil
}

// Key returns the object key a record is uploaded to.
func (w *S3Writer) Key(record *core.FileRecord) string {
	rel := filepath.ToSlash(record.RelPath())
	return strings.TrimPrefix(path.Join(w.opts.Prefix, rel), "/")
}

// Write implements the core.FileSink interface. Null records are skipped.
func (w *S3Writer) Write(ctx context.Context, record *core.FileRecord) error {
	if record.IsNull() {
		return nil
	}

	key := w.Key(record)
	data, err := record.ReadAll()
	if err != nil {
		return &S3WriterError{Op: "read", Key: key, Err: err}
	}

	contentType := w.opts.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(key))
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(w.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := w.client.PutObject(ctx, input); err != nil {
		return &S3WriterError{Op: "put_object", Key: key, Err: err}
	}

	w.mu.Lock()
	w.stats.ObjectsWritten++
	w.stats.BytesWritten += int64(len(data))
	w.stats.LastWriteTime = time.Now()
	w.mu.Unlock()
	return nil
}

// Stats returns a copy of the writer statistics.
func (w *S3Writer) Stats() S3WriterStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Flush implements the core.FileSink interface. Uploads are synchronous.
func (w *S3Writer) Flush() error {
	return nil
}

// Close implements the core.FileSink interface.
func (w *S3Writer) Close() error {
	return nil
}
