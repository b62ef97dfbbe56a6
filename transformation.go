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
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/aaronlmathis/textform/core"
)

// Transformation wraps a text transformation function together with its
// default options. It can be called directly on text, turned into a pipeline
// Stage, or used to read and convert whole files.
//
// The defaults are captured when the Transformation is created and are never
// modified afterwards, so a Transformation may be shared by concurrent callers.
type Transformation struct {
	fn       core.Func
	defaults core.Options
	fs       afero.Fs
	logger   *slog.Logger
}

// Option configures a Transformation.
type Option func(*Transformation)

// WithFs sets the filesystem used by the file helpers. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(t *Transformation) {
		t.fs = fs
	}
}

// WithLogger sets the logger used for debug and failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformation) {
		t.logger = logger
	}
}

// New creates a Transformation for fn. defaults may be nil; it is copied.
func New(fn core.Func, defaults core.Options, options ...Option) *Transformation {
	t := &Transformation{
		fn:       fn,
		defaults: defaults.Clone(),
		fs:       afero.NewOsFs(),
		logger:   slog.Default(),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Defaults returns a copy of the default options.
func (t *Transformation) Defaults() core.Options {
	return t.defaults.Clone()
}

// callIntent is the classified form of a polymorphic Call.
type callIntent interface {
	intent()
}

// invokeIntent runs the function on text right away.
type invokeIntent struct {
	text    string
	options core.Options
}

// stageIntent builds a pipeline stage configured with options.
type stageIntent struct {
	options core.Options
}

func (invokeIntent) intent() {}
func (stageIntent) intent()  {}

// classify maps call arguments onto an intent:
//
//	()                -> stage with defaults
//	("text")          -> invoke with defaults
//	(options)         -> stage with options
//	("text", options) -> invoke with options
//
// Arguments after the second are ignored.
func classify(args []interface{}) (callIntent, error) {
	switch len(args) {
	case 0:
		return stageIntent{}, nil
	case 1:
		if text, ok := args[0].(string); ok {
			return invokeIntent{text: text}, nil
		}
		opts, ok := core.ToOptions(args[0])
		if !ok {
			return nil, fmt.Errorf("%w: expected text or options, got %T", core.ErrInvalidCall, args[0])
		}
		return stageIntent{options: opts}, nil
	default:
		text, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected text as first argument, got %T", core.ErrInvalidCall, args[0])
		}
		opts, ok := core.ToOptions(args[1])
		if !ok {
			return nil, fmt.Errorf("%w: expected options as second argument, got %T", core.ErrInvalidCall, args[1])
		}
		return invokeIntent{text: text, options: opts}, nil
	}
}

// Call dispatches on the shape of args. For a text first argument it returns
// the function result; otherwise it returns a *Stage.
func (t *Transformation) Call(args ...interface{}) (interface{}, error) {
	intent, err := classify(args)
	if err != nil {
		return nil, err
	}
	return t.dispatch(intent)
}

func (t *Transformation) dispatch(intent callIntent) (interface{}, error) {
	switch in := intent.(type) {
	case invokeIntent:
		return t.call(in.text, core.Merge(t.defaults, in.options, nil))
	case stageIntent:
		return t.newStage(in.options), nil
	default:
		return nil, fmt.Errorf("%w: unsupported intent %T", core.ErrInvalidCall, intent)
	}
}

// Invoke applies the function to text with the default options.
func (t *Transformation) Invoke(text string) (interface{}, error) {
	return t.dispatch(invokeIntent{text: text})
}

// InvokeWith applies the function to text with opts layered over the defaults.
func (t *Transformation) InvokeWith(text string, opts core.Options) (interface{}, error) {
	return t.dispatch(invokeIntent{text: text, options: opts})
}

// Stage returns a pipeline stage using the default options.
func (t *Transformation) Stage() *Stage {
	return t.newStage(nil)
}

// StageWith returns a pipeline stage with opts layered over the defaults.
func (t *Transformation) StageWith(opts core.Options) *Stage {
	return t.newStage(opts)
}

// call runs the function once with logging.
func (t *Transformation) call(text string, opts core.Options) (interface{}, error) {
	t.logger.Debug("invoking transformation", "source_path", opts[core.SourcePath], "bytes", len(text))
	return safeCall(t.fn, text, opts)
}

// safeCall runs fn once. A panic inside fn is recovered and returned as an
// error so that every calling convention sees a plain failure.
func safeCall(fn core.Func, text string, opts core.Options) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("transformation panicked: %v", r)
		}
	}()
	return fn(text, opts)
}

// outcome is the result of one unit of work: a value or a failure. File
// helpers produce outcomes and adapt them to return values or callbacks.
type outcome struct {
	value interface{}
	err   error
}

func failed(err error) outcome {
	return outcome{err: err}
}

func (o outcome) unwrap() (interface{}, error) {
	return o.value, o.err
}
