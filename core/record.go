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
	"io"
	"io/fs"
	"path/filepath"
)

// FileRecord is one file travelling through a pipeline. Its content is in
// exactly one of three states: null (no content), buffer (Contents holds all
// bytes) or stream (Stream delivers the bytes incrementally).
//
// Records are owned by the pipeline host. Stages replace the content fields
// but never create or drop records.
type FileRecord struct {
	Path     string        // Absolute or declared path of the file
	Base     string        // Base directory that Path is relative to
	Encoding string        // Encoding supplied by the host, empty if unknown
	Contents []byte        // Buffered content, nil unless in buffer mode
	Stream   io.ReadCloser // Streamed content, nil unless in stream mode
	Stat     fs.FileInfo   // Optional file metadata
}

// NewBufferRecord creates a record whose content is fully resident.
func NewBufferRecord(path string, contents []byte) *FileRecord {
	if contents == nil {
		contents = []byte{}
	}
	return &FileRecord{Path: path, Contents: contents}
}

// NewStreamRecord creates a record whose content arrives from r.
func NewStreamRecord(path string, r io.Reader) *FileRecord {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	return &FileRecord{Path: path, Stream: rc}
}

// IsNull reports whether the record carries no content.
func (r *FileRecord) IsNull() bool {
	return r.Contents == nil && r.Stream == nil
}

// IsBuffer reports whether the content is fully resident.
func (r *FileRecord) IsBuffer() bool {
	return r.Stream == nil && r.Contents != nil
}

// IsStream reports whether the content is delivered incrementally.
func (r *FileRecord) IsStream() bool {
	return r.Stream != nil
}

// IsDir reports whether the record describes a directory.
func (r *FileRecord) IsDir() bool {
	return r.Stat != nil && r.Stat.IsDir()
}

// RelPath returns Path relative to Base, or the file name when no base is set.
func (r *FileRecord) RelPath() string {
	if r.Base != "" {
		if rel, err := filepath.Rel(r.Base, r.Path); err == nil {
			return rel
		}
	}
	return filepath.Base(r.Path)
}

// ReadAll returns the record content regardless of its state. A stream is
// drained and closed, and the record is switched to buffer mode.
func (r *FileRecord) ReadAll() ([]byte, error) {
	if r.Stream == nil {
		return r.Contents, nil
	}
	defer r.Stream.Close()
	data, err := io.ReadAll(r.Stream)
	if err != nil {
		return nil, err
	}
	r.Stream = nil
	r.Contents = data
	return data, nil
}
