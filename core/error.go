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
	"errors"
	"fmt"
)

// Package core defines the error handling types for the Textform library.
//
// This file contains the transformation error type, sentinel errors, error strategies and handler adapters.

var (
	// ErrInvalidCall is returned when a Transformation is called with an unsupported argument shape.
	ErrInvalidCall = errors.New("invalid transformation call")
	// ErrUnknownEncoding is returned for encoding names that cannot be resolved.
	ErrUnknownEncoding = errors.New("unknown encoding")
	// ErrStreamEnded is returned when a chunk is written to a stream that has already flushed.
	ErrStreamEnded = errors.New("write after end of stream")
)

// TransformError wraps a failure with the operation and file it occurred in.
type TransformError struct {
	Op   string // Operation that failed (e.g., "read", "transform", "write", "stream")
	Path string // File being processed, empty for direct text calls
	Err  error  // Underlying error
}

// Error returns the error string for TransformError.
func (e *TransformError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("textform %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("textform %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for TransformError.
func (e *TransformError) Unwrap() error {
	return e.Err
}

// ErrorHandler defines how errors are handled during processing.
// A Stage reports its failures to its handler; the pipeline consults its
// handler according to its ErrorStrategy.
type ErrorHandler interface {
	// HandleError processes an error that occurred for a file record.
	// Returning a non-nil error will stop the pipeline; returning nil will continue.
	HandleError(ctx context.Context, record *FileRecord, err error) error
}

// ErrorHandlerFunc is a function adapter for the ErrorHandler interface.
type ErrorHandlerFunc func(ctx context.Context, record *FileRecord, err error) error

// HandleError implements the ErrorHandler interface for ErrorHandlerFunc.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, record *FileRecord, err error) error {
	return f(ctx, record, err)
}

// ErrorStrategy defines how to handle transformation errors in the pipeline.
type ErrorStrategy int

const (
	// FailFast stops processing on the first error encountered.
	FailFast ErrorStrategy = iota
	// SkipErrors continues processing, skipping failed records.
	SkipErrors
	// CollectErrors continues processing, collecting all errors for later inspection.
	CollectErrors
)
