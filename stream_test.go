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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/textform/core"
)

func TestTransformStream_AccumulatesUntilEnd(t *testing.T) {
	calls := 0
	var emitted [][]byte
	stream := NewTransformStream(func(text string, _ core.Options) (interface{}, error) {
		calls++
		return strings.ToUpper(text), nil
	}, nil, "utf8", "utf8", func(out []byte) {
		emitted = append(emitted, out)
	}, func(err error) {
		t.Fatalf("unexpected failure: %v", err)
	})

	buf := []byte("in")
	_, err := stream.Write(buf)
	require.NoError(t, err)
	buf[0] = 'X'
	_, err = stream.Write([]byte("put "))
	require.NoError(t, err)
	_, err = stream.Write([]byte("text"))
	require.NoError(t, err)

	assert.Equal(t, Accumulating, stream.State())
	assert.Equal(t, 0, calls)
	assert.Empty(t, emitted)

	stream.End()

	assert.Equal(t, Flushed, stream.State())
	assert.Equal(t, 1, calls)
	require.Len(t, emitted, 1)
	assert.Equal(t, "INPUT TEXT", string(emitted[0]))
}

func TestTransformStream_EndIsIdempotent(t *testing.T) {
	calls := 0
	emits := 0
	stream := NewTransformStream(func(text string, _ core.Options) (interface{}, error) {
		calls++
		return text, nil
	}, nil, "utf8", "utf8", func([]byte) { emits++ }, func(error) {})

	stream.End()
	stream.End()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, emits)

	_, err := stream.Write([]byte("late"))
	assert.ErrorIs(t, err, core.ErrStreamEnded)
}

func TestTransformStream_EmptyInput(t *testing.T) {
	var received *string
	var emitted []byte
	stream := NewTransformStream(func(text string, _ core.Options) (interface{}, error) {
		received = &text
		return text, nil
	}, nil, "utf8", "utf8", func(out []byte) { emitted = out }, func(error) {})

	stream.End()

	require.NotNil(t, received)
	assert.Equal(t, "", *received)
	assert.Empty(t, emitted)
}

func TestTransformStream_FailureSignaledOnce(t *testing.T) {
	boom := errors.New("boom")
	var failures []error
	emitted := false
	stream := NewTransformStream(func(string, core.Options) (interface{}, error) {
		return nil, boom
	}, nil, "utf8", "utf8", func([]byte) { emitted = true }, func(err error) {
		failures = append(failures, err)
	})

	_, err := stream.Write([]byte("x"))
	require.NoError(t, err)
	stream.End()
	stream.End()

	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], boom)
	assert.False(t, emitted)
}

func TestTransformStream_PanicBecomesFailure(t *testing.T) {
	var failure error
	stream := NewTransformStream(func(string, core.Options) (interface{}, error) {
		panic("oops")
	}, nil, "utf8", "utf8", func([]byte) {}, func(err error) { failure = err })

	stream.End()
	require.Error(t, failure)
	assert.Contains(t, failure.Error(), "oops")
}

func TestTransformStream_Encodings(t *testing.T) {
	var emitted []byte
	stream := NewTransformStream(func(text string, _ core.Options) (interface{}, error) {
		return text, nil
	}, nil, "utf16le", "utf8", func(out []byte) { emitted = out }, func(error) {})

	_, err := stream.Write([]byte{'o', 0})
	require.NoError(t, err)
	_, err = stream.Write([]byte{'k', 0})
	require.NoError(t, err)
	stream.End()

	assert.Equal(t, []byte("ok"), emitted)
}

func TestTransformStream_UnknownEncoding(t *testing.T) {
	var failure error
	stream := NewTransformStream(identity, nil, "klingon", "utf8", func([]byte) {}, func(err error) { failure = err })
	stream.End()
	assert.ErrorIs(t, failure, core.ErrUnknownEncoding)
}
