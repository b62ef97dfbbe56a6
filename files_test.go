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
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/textform/core"
)

func newMemTransformation(t *testing.T, fn core.Func, defaults core.Options, files map[string][]byte) (*Transformation, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, data, 0o644))
	}
	return New(fn, defaults, WithFs(fs)), fs
}

func TestReadFile_ReturnsRawValue(t *testing.T) {
	var seen core.Options
	tr, _ := newMemTransformation(t, func(text string, opts core.Options) (interface{}, error) {
		seen = opts
		return map[string]int{"len": len(text)}, nil
	}, core.Options{"d": 1}, map[string][]byte{"/data/in.txt": []byte("hello")})

	value, err := tr.ReadFile("/data/in.txt", core.Options{"c": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"len": 5}, value)
	assert.Equal(t, core.Options{"d": 1, "c": 2, core.SourcePath: "/data/in.txt"}, seen)
}

func TestReadFile_SourceEncoding(t *testing.T) {
	tr, _ := newMemTransformation(t, identity, nil, map[string][]byte{"/in.txt": {'h', 0, 'i', 0}})

	value, err := tr.ReadFile("/in.txt", core.Options{core.SourceEncoding: "utf16le"})
	require.NoError(t, err)
	assert.Equal(t, "hi", value)
}

func TestReadFile_MissingFileNeverInvokes(t *testing.T) {
	var calls atomic.Int32
	tr, _ := newMemTransformation(t, func(text string, _ core.Options) (interface{}, error) {
		calls.Add(1)
		return text, nil
	}, nil, nil)

	_, err := tr.ReadFile("/missing.txt", nil)
	require.Error(t, err)
	var transformErr *core.TransformError
	require.True(t, errors.As(err, &transformErr))
	assert.Equal(t, "read", transformErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.EqualValues(t, 0, calls.Load())
}

func TestReadFile_CallerSourcePathWins(t *testing.T) {
	var seen interface{}
	tr, _ := newMemTransformation(t, func(text string, opts core.Options) (interface{}, error) {
		seen = opts[core.SourcePath]
		return text, nil
	}, nil, map[string][]byte{"/real.txt": []byte("x")})

	value, err := tr.ReadFile("/real.txt", core.Options{core.SourcePath: "/declared.txt"})
	require.NoError(t, err)
	assert.Equal(t, "x", value)
	assert.Equal(t, "/declared.txt", seen)
}

func TestReadFile_RelativePathResolved(t *testing.T) {
	var seen interface{}
	tr, fs := newMemTransformation(t, func(text string, opts core.Options) (interface{}, error) {
		seen = opts[core.SourcePath]
		return text, nil
	}, nil, nil)

	abs, err := filepath.Abs("rel.txt")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, abs, []byte("x"), 0o644))

	_, err = tr.ReadFile("rel.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, abs, seen)
}

func TestReadFileAsync(t *testing.T) {
	tr, _ := newMemTransformation(t, func(text string, _ core.Options) (interface{}, error) {
		return strings.ToUpper(text), nil
	}, nil, map[string][]byte{"/in.txt": []byte("abc")})

	type result struct {
		value interface{}
		err   error
	}
	results := make(chan result, 2)
	tr.ReadFileAsync("/in.txt", nil, func(value interface{}, err error) {
		results <- result{value, err}
	})
	tr.ReadFileAsync("/missing.txt", nil, func(value interface{}, err error) {
		results <- result{value, err}
	})

	var ok, failed int
	for i := 0; i < 2; i++ {
		select {
		case r := <-results:
			if r.err != nil {
				failed++
				assert.Nil(t, r.value)
			} else {
				ok++
				assert.Equal(t, "ABC", r.value)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("callback not invoked")
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
}

func TestTransformFile_WritesNormalizedResult(t *testing.T) {
	tr, fs := newMemTransformation(t, func(text string, _ core.Options) (interface{}, error) {
		return map[string]string{"text": text}, nil
	}, nil, map[string][]byte{"/in.txt": []byte("abc")})

	require.NoError(t, tr.TransformFile("/in.txt", "/out.json", nil))

	data, err := afero.ReadFile(fs, "/out.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"text\": \"abc\"\n}", string(data))
}

func TestTransformFile_TargetEncoding(t *testing.T) {
	tr, fs := newMemTransformation(t, identity, nil, map[string][]byte{"/in.txt": {'o', 0, 'k', 0}})

	err := tr.TransformFile("/in.txt", "/out.txt", core.Options{
		core.SourceEncoding: "utf16le",
		core.TargetEncoding: "utf8",
	})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
}

func TestTransformFile_TargetDefaultsToSourceEncoding(t *testing.T) {
	tr, fs := newMemTransformation(t, identity, nil, map[string][]byte{"/in.txt": {'o', 0, 'k', 0}})

	require.NoError(t, tr.TransformFile("/in.txt", "/out.txt", core.Options{core.SourceEncoding: "utf16le"}))

	data, err := afero.ReadFile(fs, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte{'o', 0, 'k', 0}, data)
}

func TestTransformFile_FailureLeavesTargetAbsent(t *testing.T) {
	boom := errors.New("boom")
	tr, fs := newMemTransformation(t, func(string, core.Options) (interface{}, error) {
		return nil, boom
	}, nil, map[string][]byte{"/in.txt": []byte("abc")})

	err := tr.TransformFile("/in.txt", "/out.txt", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	exists, err := afero.Exists(fs, "/out.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransformFile_MissingSource(t *testing.T) {
	var calls atomic.Int32
	tr, fs := newMemTransformation(t, func(text string, _ core.Options) (interface{}, error) {
		calls.Add(1)
		return text, nil
	}, nil, nil)

	err := tr.TransformFile("/missing.txt", "/out.txt", nil)
	require.Error(t, err)
	assert.EqualValues(t, 0, calls.Load())

	exists, _ := afero.Exists(fs, "/out.txt")
	assert.False(t, exists)
}

func TestTransformFileAsync(t *testing.T) {
	tr, fs := newMemTransformation(t, func(text string, _ core.Options) (interface{}, error) {
		return strings.ToUpper(text), nil
	}, nil, map[string][]byte{"/in.txt": []byte("abc")})

	done := make(chan error, 1)
	tr.TransformFileAsync("/in.txt", "/out.txt", nil, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("callback not invoked")
	}

	data, err := afero.ReadFile(fs, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "ABC", string(data))
}

func TestTransformFile_OSFilesystem(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "in.txt")
	target := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(source, []byte("plain"), 0o644))

	tr := New(func(text string, _ core.Options) (interface{}, error) {
		return strings.ToUpper(text), nil
	}, nil)
	require.NoError(t, tr.TransformFile(source, target, nil))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "PLAIN", string(data))
}
