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

package textform

import (
	"github.com/aaronlmathis/textform/core"
)

// Package textform defines the core interfaces and types for the Textform library.
//
// Textform adapts a text transformation function, func(text, options) (value, error),
// into the calling forms a build pipeline needs: a direct call on a string, a
// per-file pipeline stage that handles null, buffered and streamed content, and
// whole-file helpers that read, transform and write.
//
// This file re-exports the core types so that callers only need this package.

// Options is the open option mapping passed to transformation functions.
type Options = core.Options

// Func is a text transformation function.
type Func = core.Func

// FileRecord is a single file travelling through a pipeline.
type FileRecord = core.FileRecord

// FileSource produces file records for a pipeline.
type FileSource = core.FileSource

// FileSink stores file records at the end of a pipeline.
type FileSink = core.FileSink

// FileTransformer is a pipeline stage.
type FileTransformer = core.FileTransformer

// FileFilter decides whether a record continues through a pipeline.
type FileFilter = core.FileFilter

// ErrorHandler receives errors raised while processing records.
type ErrorHandler = core.ErrorHandler

// ErrorHandlerFunc is a function adapter for ErrorHandler.
type ErrorHandlerFunc = core.ErrorHandlerFunc

// ErrorStrategy selects how a pipeline reacts to failed records.
type ErrorStrategy = core.ErrorStrategy

const (
	// FailFast stops processing on the first error encountered.
	FailFast = core.FailFast
	// SkipErrors continues processing, skipping failed records.
	SkipErrors = core.SkipErrors
	// CollectErrors continues processing, collecting all errors for later inspection.
	CollectErrors = core.CollectErrors
)
