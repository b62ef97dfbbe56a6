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
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/aaronlmathis/textform/core"
)

// ReadFile reads path, applies the function once and returns its raw result.
// The effective options carry the absolute path under core.SourcePath.
// A read failure is returned before the function is invoked.
func (t *Transformation) ReadFile(path string, opts core.Options) (interface{}, error) {
	return t.readFile(path, opts).unwrap()
}

// ReadFileAsync runs ReadFile in the background and reports through callback.
func (t *Transformation) ReadFileAsync(path string, opts core.Options, callback func(value interface{}, err error)) {
	go func() {
		callback(t.readFile(path, opts).unwrap())
	}()
}

// TransformFile reads sourcePath, applies the function once and writes the
// normalized result to targetPath. The target is only written after the
// function succeeded.
func (t *Transformation) TransformFile(sourcePath, targetPath string, opts core.Options) error {
	return t.transformFile(sourcePath, targetPath, opts).err
}

// TransformFileAsync runs TransformFile in the background and reports through callback.
func (t *Transformation) TransformFileAsync(sourcePath, targetPath string, opts core.Options, callback func(err error)) {
	go func() {
		callback(t.transformFile(sourcePath, targetPath, opts).err)
	}()
}

// readSource merges the options for a file helper call and decodes the file.
// The file read is always path itself, even when the caller overrides core.SourcePath.
func (t *Transformation) readSource(path string, opts core.Options) (string, string, core.Options, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", nil, &core.TransformError{Op: "resolve", Path: path, Err: err}
	}
	effective := core.Merge(t.defaults, opts, core.Options{core.SourcePath: abs})

	data, err := afero.ReadFile(t.fs, abs)
	if err != nil {
		return "", "", nil, &core.TransformError{Op: "read", Path: abs, Err: err}
	}
	text, err := core.Decode(data, core.ResolveSource(effective, ""))
	if err != nil {
		return "", "", nil, &core.TransformError{Op: "read", Path: abs, Err: err}
	}
	return text, abs, effective, nil
}

func (t *Transformation) readFile(path string, opts core.Options) outcome {
	text, abs, effective, err := t.readSource(path, opts)
	if err != nil {
		return failed(err)
	}
	result, err := t.call(text, effective)
	if err != nil {
		return failed(&core.TransformError{Op: "transform", Path: abs, Err: err})
	}
	return outcome{value: result}
}

func (t *Transformation) transformFile(sourcePath, targetPath string, opts core.Options) outcome {
	text, abs, effective, err := t.readSource(sourcePath, opts)
	if err != nil {
		return failed(err)
	}

	result, err := t.call(text, effective)
	if err != nil {
		return failed(&core.TransformError{Op: "transform", Path: abs, Err: err})
	}
	normalized, err := core.Normalize(result)
	if err != nil {
		return failed(&core.TransformError{Op: "transform", Path: abs, Err: err})
	}
	target := core.ResolveTarget(effective, core.ResolveSource(effective, ""))
	out, err := core.Encode(normalized, target)
	if err != nil {
		return failed(&core.TransformError{Op: "write", Path: targetPath, Err: err})
	}
	if err := afero.WriteFile(t.fs, targetPath, out, 0o644); err != nil {
		return failed(&core.TransformError{Op: "write", Path: targetPath, Err: err})
	}
	t.logger.Debug("transformed file", "source", abs, "target", targetPath, "bytes", len(out))
	return outcome{value: result}
}
