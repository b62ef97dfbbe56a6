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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/aaronlmathis/textform/core"
)

// This file implements a filesystem writer that mirrors records below an output directory.
// A record lands at <dir>/<record.RelPath()>.

// FSWriterError provides structured error information for filesystem writer operations
type FSWriterError struct {
	Op   string // Operation that failed (e.g., "mkdir", "create", "write")
	Path string // Target path
	Err  error  // Underlying error
}

func (e *FSWriterError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("fs writer %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("fs writer %s: %v", e.Op, e.Err)
}

func (e *FSWriterError) Unwrap() error {
	return e.Err
}

// FSWriterOptions configures the filesystem writer
type FSWriterOptions struct {
	Fs       afero.Fs    // Filesystem to write to
	FileMode os.FileMode // Mode for created files
	DirMode  os.FileMode // Mode for created directories
}

// FSWriterOption represents a configuration function for FSWriter
type FSWriterOption func(*FSWriterOptions)

// WithFSWriterFs sets the filesystem the writer writes to.
func WithFSWriterFs(fs afero.Fs) FSWriterOption {
	return func(opts *FSWriterOptions) {
		opts.Fs = fs
	}
}

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode os.FileMode) FSWriterOption {
	return func(opts *FSWriterOptions) {
		opts.FileMode = mode
	}
}

// WithDirMode sets the permission bits of created directories.
func WithDirMode(mode os.FileMode) FSWriterOption {
	return func(opts *FSWriterOptions) {
		opts.DirMode = mode
	}
}

// FSWriter implements core.FileSink for a directory tree.
type FSWriter struct {
	dir     string
	opts    *FSWriterOptions
	written int64
	mu      sync.Mutex
}

// NewFSWriter creates a writer rooted at dir.
func NewFSWriter(dir string, options ...FSWriterOption) (*FSWriter, error) {
	if dir == "" {
		return nil, &FSWriterError{Op: "validate", Err: fmt.Errorf("output directory is required")}
	}
	opts := &FSWriterOptions{
		Fs:       afero.NewOsFs(),
		FileMode: 0o644,
		DirMode:  0o755,
	}
	for _, option := range options {
		option(opts)
	}
	return &FSWriter{dir: filepath.Clean(dir), opts: opts}, nil
}

// Target returns the path a record is written to.
func (w *FSWriter) Target(record *core.FileRecord) (string, error) {
	rel := record.RelPath()
	target := filepath.Join(w.dir, rel)
	within, err := filepath.Rel(w.dir, target)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s escapes output directory", rel)
	}
	return target, nil
}

// Write implements the core.FileSink interface. Directory records create
// directories and other null records are skipped.
func (w *FSWriter) Write(ctx context.Context, record *core.FileRecord) error {
	target, err := w.Target(record)
	if err != nil {
		return &FSWriterError{Op: "resolve", Path: record.Path, Err: err}
	}

	if record.IsDir() {
		if err := w.opts.Fs.MkdirAll(target, w.opts.DirMode); err != nil {
			return &FSWriterError{Op: "mkdir", Path: target, Err: err}
		}
		return nil
	}
	if record.IsNull() {
		return nil
	}

	if err := w.opts.Fs.MkdirAll(filepath.Dir(target), w.opts.DirMode); err != nil {
		return &FSWriterError{Op: "mkdir", Path: target, Err: err}
	}

	if record.IsStream() {
		if err := w.copyStream(target, record.Stream); err != nil {
			return err
		}
	} else if err := afero.WriteFile(w.opts.Fs, target, record.Contents, w.opts.FileMode); err != nil {
		return &FSWriterError{Op: "write", Path: target, Err: err}
	}

	w.mu.Lock()
	w.written++
	w.mu.Unlock()
	return nil
}

func (w *FSWriter) copyStream(target string, stream io.ReadCloser) error {
	defer stream.Close()

	f, err := w.opts.Fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, w.opts.FileMode)
	if err != nil {
		return &FSWriterError{Op: "create", Path: target, Err: err}
	}
	if _, err := io.Copy(f, stream); err != nil {
		f.Close()
		return &FSWriterError{Op: "write", Path: target, Err: err}
	}
	if err := f.Close(); err != nil {
		return &FSWriterError{Op: "close", Path: target, Err: err}
	}
	return nil
}

// FilesWritten returns the number of files written so far.
func (w *FSWriter) FilesWritten() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush implements the core.FileSink interface. Files are written synchronously.
func (w *FSWriter) Flush() error {
	return nil
}

// Close implements the core.FileSink interface.
func (w *FSWriter) Close() error {
	return nil
}
