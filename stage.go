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
	"context"
	"errors"
	"fmt"

	"github.com/aaronlmathis/textform/core"
)

// Stage is a pipeline stage produced by a Transformation. For each record it
// forwards null content unchanged, transforms buffered content in place and
// replaces streamed content with a stream that yields the transformed file.
//
// Failures are returned from Process (buffer mode) or from the replaced
// stream's Read (stream mode), and in both cases reported to the stage's
// error handler.
type Stage struct {
	t       *Transformation
	options core.Options
	handler core.ErrorHandler
}

func (t *Transformation) newStage(opts core.Options) *Stage {
	return &Stage{
		t:       t,
		options: opts.Clone(),
	}
}

// WithErrorHandler sets the handler that receives the stage's failures.
// In buffer mode an error returned by the handler is joined to the error
// Process returns. In stream mode the failure has already been delivered
// through Read, so the handler's result is only logged.
func (s *Stage) WithErrorHandler(handler core.ErrorHandler) *Stage {
	s.handler = handler
	return s
}

// EffectiveOptions returns the options the function receives for record.
func (s *Stage) EffectiveOptions(record *core.FileRecord) core.Options {
	var derived core.Options
	if record != nil && record.Path != "" {
		derived = core.Options{core.SourcePath: record.Path}
	}
	return core.Merge(s.t.defaults, s.options, derived)
}

// Process implements core.FileTransformer.
func (s *Stage) Process(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil file record", core.ErrInvalidCall)
	}
	if err := ctx.Err(); err != nil {
		return record, err
	}

	switch {
	case record.IsNull():
		return record, nil
	case record.IsStream():
		return s.processStream(ctx, record), nil
	default:
		return s.processBuffer(ctx, record)
	}
}

func (s *Stage) processBuffer(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error) {
	opts := s.EffectiveOptions(record)
	source := core.ResolveSource(opts, record.Encoding)
	target := core.ResolveTarget(opts, source)

	out, err := render(s.t.call, record.Contents, opts, source, target)
	if err != nil {
		err = &core.TransformError{Op: "transform", Path: record.Path, Err: err}
		if handlerErr := s.report(ctx, record, err); handlerErr != nil {
			return record, errors.Join(err, handlerErr)
		}
		return record, err
	}
	record.Contents = out
	return record, nil
}

func (s *Stage) processStream(ctx context.Context, record *core.FileRecord) *core.FileRecord {
	opts := s.EffectiveOptions(record)
	source := core.ResolveSource(opts, record.Encoding)
	target := core.ResolveTarget(opts, source)

	newStream := func(emit func([]byte), fail func(error)) *TransformStream {
		return newTransformStream(s.t.call, opts, source, target, emit, fail)
	}
	onError := func(ctx context.Context, err error) {
		if handlerErr := s.report(ctx, record, err); handlerErr != nil {
			s.t.logger.Warn("stage error handler failed", "path", record.Path, "error", handlerErr)
		}
	}
	record.Stream = startStream(ctx, record.Stream, record.Path, newStream, onError)
	return record
}

// report logs err and hands it to the stage's handler, returning the handler's result.
func (s *Stage) report(ctx context.Context, record *core.FileRecord, err error) error {
	s.t.logger.Warn("transformation failed", "path", record.Path, "error", err)
	if s.handler == nil {
		return nil
	}
	return s.handler.HandleError(ctx, record, err)
}
