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

	"github.com/aaronlmathis/textform/core"
)

// ContentWriter implements core.FileSink by concatenating record contents
// onto a single io.Writer, such as standard output.
type ContentWriter struct {
	writer    io.Writer
	closer    io.Closer
	separator []byte
}

// NewContentWriter creates a content writer. Records are separated by sep,
// which may be empty.
func NewContentWriter(w io.WriteCloser, sep string) *ContentWriter {
	return &ContentWriter{
		writer:    w,
		closer:    w,
		separator: []byte(sep),
	}
}

// Write implements the core.FileSink interface. Null records are skipped.
func (c *ContentWriter) Write(ctx context.Context, record *core.FileRecord) error {
	if record.IsNull() {
		return nil
	}

	if record.IsStream() {
		defer record.Stream.Close()
		if _, err := io.Copy(c.writer, record.Stream); err != nil {
			return fmt.Errorf("failed to copy content of %s: %w", record.Path, err)
		}
	} else if _, err := c.writer.Write(record.Contents); err != nil {
		return fmt.Errorf("failed to write content of %s: %w", record.Path, err)
	}

	if len(c.separator) > 0 {
		if _, err := c.writer.Write(c.separator); err != nil {
			return fmt.Errorf("failed to write separator: %w", err)
		}
	}
	return nil
}

// Flush implements the core.FileSink interface
func (c *ContentWriter) Flush() error {
	if flusher, ok := c.writer.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close implements the core.FileSink interface
func (c *ContentWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
