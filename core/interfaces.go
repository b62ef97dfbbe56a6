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

package core

import (
	"context"
)

// Package core defines the core interfaces for the Textform library.
//
// This file contains the pipeline host interfaces for file sources, sinks, stages and filters.

// FileSource defines the interface for producing file records.
// Implementations list files from a location (e.g., a directory glob, an S3 prefix, a table).
type FileSource interface {
	// Read returns the next record or io.EOF when no more records are available.
	Read(ctx context.Context) (*FileRecord, error)
	// Close releases any resources held by the source.
	Close() error
}

// FileSink defines the interface for storing file records.
type FileSink interface {
	// Write stores a single record.
	Write(ctx context.Context, record *FileRecord) error
	// Flush ensures all buffered data is written to the sink.
	Flush() error
	// Close releases any resources held by the sink.
	Close() error
}

// FileTransformer is a pipeline stage: it receives a record and forwards it,
// possibly with replaced content.
type FileTransformer interface {
	Process(ctx context.Context, record *FileRecord) (*FileRecord, error)
}

// FileTransformerFunc is a function adapter for the FileTransformer interface.
type FileTransformerFunc func(ctx context.Context, record *FileRecord) (*FileRecord, error)

// Process implements the FileTransformer interface for FileTransformerFunc.
func (f FileTransformerFunc) Process(ctx context.Context, record *FileRecord) (*FileRecord, error) {
	return f(ctx, record)
}

// FileFilter determines whether a record continues through the pipeline.
type FileFilter interface {
	// ShouldInclude returns true if the record should be included in the output.
	ShouldInclude(ctx context.Context, record *FileRecord) (bool, error)
}

// FileFilterFunc is a function adapter for the FileFilter interface.
type FileFilterFunc func(ctx context.Context, record *FileRecord) (bool, error)

// ShouldInclude implements the FileFilter interface for FileFilterFunc.
func (f FileFilterFunc) ShouldInclude(ctx context.Context, record *FileRecord) (bool, error) {
	return f(ctx, record)
}
