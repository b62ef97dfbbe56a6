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
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/aaronlmathis/textform/core"
)

// StreamState is the state of a TransformStream.
type StreamState int

const (
	// Accumulating buffers incoming chunks without invoking the function.
	Accumulating StreamState = iota
	// Flushed is terminal: the function ran and output or failure was signaled.
	Flushed
)

// TransformStream buffers a file delivered in chunks and transforms it once
// the input ends. Write is the "chunk" event and End the "end of input" event;
// output is delivered through emit as a single chunk, failures through fail.
//
// A TransformStream handles exactly one file and is not safe for concurrent use.
type TransformStream struct {
	call    func(string, core.Options) (interface{}, error)
	options core.Options
	source  string
	target  string
	chunks  [][]byte
	state   StreamState
	emit    func([]byte)
	fail    func(error)
}

// NewTransformStream creates a stream that applies fn with opts, decoding
// input with the source encoding and encoding output with the target encoding.
func NewTransformStream(fn core.Func, opts core.Options, source, target string, emit func([]byte), fail func(error)) *TransformStream {
	return newTransformStream(func(text string, o core.Options) (interface{}, error) {
		return safeCall(fn, text, o)
	}, opts, source, target, emit, fail)
}

func newTransformStream(call func(string, core.Options) (interface{}, error), opts core.Options, source, target string, emit func([]byte), fail func(error)) *TransformStream {
	return &TransformStream{
		call:    call,
		options: opts,
		source:  source,
		target:  target,
		emit:    emit,
		fail:    fail,
	}
}

// State returns the current state.
func (s *TransformStream) State() StreamState {
	return s.state
}

// Write appends a chunk. The chunk is copied, so callers may reuse their buffer.
func (s *TransformStream) Write(chunk []byte) (int, error) {
	if s.state != Accumulating {
		return 0, core.ErrStreamEnded
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	s.chunks = append(s.chunks, buf)
	return len(chunk), nil
}

// End concatenates the buffered chunks, runs the function once and either
// emits the encoded result or reports the failure. Calls after the first are no-ops.
func (s *TransformStream) End() {
	if s.state == Flushed {
		return
	}
	s.state = Flushed
	data := bytes.Join(s.chunks, nil)
	s.chunks = nil

	out, err := render(s.call, data, s.options, s.source, s.target)
	if err != nil {
		s.fail(err)
		return
	}
	s.emit(out)
}

// render decodes data, runs call once, normalizes the result and encodes it.
func render(call func(string, core.Options) (interface{}, error), data []byte, opts core.Options, source, target string) ([]byte, error) {
	text, err := core.Decode(data, source)
	if err != nil {
		return nil, err
	}
	result, err := call(text, opts)
	if err != nil {
		return nil, err
	}
	normalized, err := core.Normalize(result)
	if err != nil {
		return nil, err
	}
	out, err := core.Encode(normalized, target)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// streamReader exposes a TransformStream fed from an upstream reader as the
// new content of a streamed record. The upstream is drained in the background;
// Read blocks until the stream has flushed.
type streamReader struct {
	src       io.ReadCloser
	path      string
	done      chan struct{}
	out       *bytes.Reader
	err       error
	closed    atomic.Bool
	closeOnce sync.Once
}

func startStream(ctx context.Context, src io.ReadCloser, path string, newStream func(emit func([]byte), fail func(error)) *TransformStream, onError func(context.Context, error)) *streamReader {
	r := &streamReader{
		src:  src,
		path: path,
		done: make(chan struct{}),
		out:  bytes.NewReader(nil),
	}
	stream := newStream(
		func(out []byte) { r.out = bytes.NewReader(out) },
		func(err error) { r.err = &core.TransformError{Op: "transform", Path: path, Err: err} },
	)

	go func() {
		defer close(r.done)
		defer r.closeSource()
		if _, err := io.Copy(stream, src); err != nil {
			r.err = &core.TransformError{Op: "read", Path: path, Err: err}
			if r.closed.Load() {
				// the consumer closed the upstream itself
				return
			}
		} else {
			stream.End()
		}
		if r.err != nil {
			onError(context.WithoutCancel(ctx), r.err)
		}
	}()
	return r
}

// Read implements io.Reader.
func (r *streamReader) Read(p []byte) (int, error) {
	<-r.done
	if r.err != nil {
		return 0, r.err
	}
	return r.out.Read(p)
}

// Close releases the upstream reader. It does not wait for the transform.
// A read failure caused by the early close is not reported as a failure.
func (r *streamReader) Close() error {
	r.closed.Store(true)
	return r.closeSource()
}

func (r *streamReader) closeSource() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.src.Close()
	})
	return err
}
