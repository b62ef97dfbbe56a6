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
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/aaronlmathis/textform/core"
)

// Package readers provides implementations of core.FileSource for producing file records.
//
// This file implements a glob-based filesystem reader, the equivalent of a build tool's "src" step.

// FSReaderError provides structured error information for filesystem reader operations
type FSReaderError struct {
	Op   string // Operation that failed (e.g., "glob", "stat", "open")
	Path string // Path or pattern involved
	Err  error  // Underlying error
}

func (e *FSReaderError) Error() string {
	return fmt.Sprintf("fs reader %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FSReaderError) Unwrap() error {
	return e.Err
}

// FSReaderOptions configures the filesystem reader
type FSReaderOptions struct {
	Fs          afero.Fs // Filesystem to read from
	Base        string   // Base directory for relative paths; defaults to the glob prefix
	Buffer      bool     // Read contents fully (true) or stream them (false)
	IncludeDirs bool     // Emit matched directories as null records
	Read        bool     // Read contents at all; false emits null records for every file
	Encoding    string   // Encoding advertised to stages as the host encoding
}

// ReaderOptionFS represents a configuration function for FSReader
type ReaderOptionFS func(*FSReaderOptions)

// WithFSFs sets the filesystem to read from.
func WithFSFs(fs afero.Fs) ReaderOptionFS {
	return func(opts *FSReaderOptions) {
		opts.Fs = fs
	}
}

// WithFSBase sets the base directory records are relative to.
func WithFSBase(base string) ReaderOptionFS {
	return func(opts *FSReaderOptions) {
		opts.Base = base
	}
}

// WithFSBuffer selects buffer mode (true) or stream mode (false).
func WithFSBuffer(buffer bool) ReaderOptionFS {
	return func(opts *FSReaderOptions) {
		opts.Buffer = buffer
	}
}

// WithFSIncludeDirs emits matched directories as null records.
func WithFSIncludeDirs(include bool) ReaderOptionFS {
	return func(opts *FSReaderOptions) {
		opts.IncludeDirs = include
	}
}

// WithFSRead controls whether file contents are read at all.
func WithFSRead(read bool) ReaderOptionFS {
	return func(opts *FSReaderOptions) {
		opts.Read = read
	}
}

// WithFSEncoding sets the host encoding attached to every record.
func WithFSEncoding(encoding string) ReaderOptionFS {
	return func(opts *FSReaderOptions) {
		opts.Encoding = encoding
	}
}

// FSReader implements core.FileSource over glob patterns.
type FSReader struct {
	opts    FSReaderOptions
	matches []string
	index   int
	mu      sync.Mutex
}

// NewFSReader expands patterns and returns a reader over the matches, sorted and de-duplicated.
func NewFSReader(patterns []string, options ...ReaderOptionFS) (*FSReader, error) {
	opts := FSReaderOptions{
		Fs:     afero.NewOsFs(),
		Buffer: true,
		Read:   true,
	}
	for _, option := range options {
		option(&opts)
	}
	if len(patterns) == 0 {
		return nil, &FSReaderError{Op: "validate_options", Err: fmt.Errorf("at least one pattern is required")}
	}

	seen := make(map[string]bool)
	var matches []string
	for _, pattern := range patterns {
		found, err := afero.Glob(opts.Fs, pattern)
		if err != nil {
			return nil, &FSReaderError{Op: "glob", Path: pattern, Err: err}
		}
		for _, match := range found {
			abs, err := filepath.Abs(match)
			if err != nil {
				return nil, &FSReaderError{Op: "resolve", Path: match, Err: err}
			}
			if !seen[abs] {
				seen[abs] = true
				matches = append(matches, abs)
			}
		}
	}
	sort.Strings(matches)

	if opts.Base == "" {
		base, err := filepath.Abs(globBase(patterns[0]))
		if err != nil {
			return nil, &FSReaderError{Op: "resolve", Path: patterns[0], Err: err}
		}
		opts.Base = base
	}

	return &FSReader{opts: opts, matches: matches}, nil
}

// Read implements the core.FileSource interface
func (r *FSReader) Read(ctx context.Context) (*core.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if r.index >= len(r.matches) {
			return nil, io.EOF
		}
		path := r.matches[r.index]
		r.index++

		info, err := r.opts.Fs.Stat(path)
		if err != nil {
			return nil, &FSReaderError{Op: "stat", Path: path, Err: err}
		}
		record := &core.FileRecord{
			Path:     path,
			Base:     r.opts.Base,
			Encoding: r.opts.Encoding,
			Stat:     info,
		}
		if info.IsDir() {
			if !r.opts.IncludeDirs {
				continue
			}
			return record, nil
		}
		if !r.opts.Read {
			return record, nil
		}

		if r.opts.Buffer {
			data, err := afero.ReadFile(r.opts.Fs, path)
			if err != nil {
				return nil, &FSReaderError{Op: "read", Path: path, Err: err}
			}
			if data == nil {
				data = []byte{}
			}
			record.Contents = data
			return record, nil
		}

		file, err := r.opts.Fs.Open(path)
		if err != nil {
			return nil, &FSReaderError{Op: "open", Path: path, Err: err}
		}
		record.Stream = file
		return record, nil
	}
}

// Close implements the core.FileSource interface
func (r *FSReader) Close() error {
	return nil
}

// Matches returns the matched paths.
func (r *FSReader) Matches() []string {
	return append([]string(nil), r.matches...)
}

// globBase returns the directory part of a pattern preceding its first wildcard.
func globBase(pattern string) string {
	idx := strings.IndexAny(pattern, "*?[")
	if idx < 0 {
		return filepath.Dir(pattern)
	}
	return filepath.Dir(pattern[:idx+1])
}
