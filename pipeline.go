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
	"io"
	"log/slog"
	"sync"

	"github.com/aaronlmathis/textform/core"
)

// Package textform provides a small pipeline host for running stages over files.
//
// The host plays the role a build tool plays for a text transformation: it reads
// file records from a FileSource, passes each one through the configured stages
// and filters, and stores the result in a FileSink.
//
// Example usage:
//
//   upper := textform.New(core.FromString(strings.ToUpper), nil)
//   pipeline, err := textform.NewPipeline().
//       From(fsReader).
//       Through(upper.Stage()).
//       Where(filter.Extension(".txt")).
//       To(fsWriter).
//       WithErrorStrategy(textform.SkipErrors).
//       Build()
//   if err != nil { log.Fatal(err) }
//   if err := pipeline.Execute(context.Background()); err != nil { log.Fatal(err) }

// PipelineBuilder provides a fluent API for constructing file pipelines.
// Use NewPipeline() to create a new builder, then chain From, Through, Where, To, and configuration methods.
type PipelineBuilder struct {
	pipeline *Pipeline
}

// NewPipeline creates a new PipelineBuilder.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{
		pipeline: &Pipeline{
			stages:   make([]core.FileTransformer, 0),
			filters:  make([]core.FileFilter, 0),
			strategy: core.FailFast,
			logger:   slog.Default(),
		},
	}
}

// From sets the FileSource for the pipeline.
func (pb *PipelineBuilder) From(source core.FileSource) *PipelineBuilder {
	pb.pipeline.source = source
	return pb
}

// Through adds stages to the pipeline. Stages run in the order they are added.
func (pb *PipelineBuilder) Through(stages ...core.FileTransformer) *PipelineBuilder {
	pb.pipeline.stages = append(pb.pipeline.stages, stages...)
	return pb
}

// Where adds filters evaluated before the stages run.
func (pb *PipelineBuilder) Where(filters ...core.FileFilter) *PipelineBuilder {
	pb.pipeline.filters = append(pb.pipeline.filters, filters...)
	return pb
}

// To sets the FileSink for the pipeline.
func (pb *PipelineBuilder) To(sink core.FileSink) *PipelineBuilder {
	pb.pipeline.sink = sink
	return pb
}

// WithErrorStrategy sets the error handling strategy for the pipeline.
func (pb *PipelineBuilder) WithErrorStrategy(strategy core.ErrorStrategy) *PipelineBuilder {
	pb.pipeline.strategy = strategy
	return pb
}

// WithErrorHandler sets a custom error handler for the pipeline.
func (pb *PipelineBuilder) WithErrorHandler(handler core.ErrorHandler) *PipelineBuilder {
	pb.pipeline.errorHandler = handler
	return pb
}

// WithLogger sets the logger used by the pipeline.
func (pb *PipelineBuilder) WithLogger(logger *slog.Logger) *PipelineBuilder {
	pb.pipeline.logger = logger
	return pb
}

// Build validates and constructs the Pipeline from the builder.
func (pb *PipelineBuilder) Build() (*Pipeline, error) {
	if pb.pipeline.source == nil {
		return nil, fmt.Errorf("pipeline requires a file source")
	}
	if pb.pipeline.sink == nil {
		return nil, fmt.Errorf("pipeline requires a file sink")
	}
	return pb.pipeline, nil
}

// PipelineStats holds counters for a pipeline run.
type PipelineStats struct {
	RecordsRead     int64
	RecordsFiltered int64
	RecordsWritten  int64
	RecordsFailed   int64
}

// Pipeline runs file records from a source through stages into a sink.
type Pipeline struct {
	stages       []core.FileTransformer
	filters      []core.FileFilter
	source       core.FileSource
	sink         core.FileSink
	strategy     core.ErrorStrategy
	errorHandler core.ErrorHandler
	logger       *slog.Logger

	mu    sync.Mutex
	errs  []error
	stats PipelineStats
}

// Execute runs the pipeline, processing all records from source to sink.
//
// Streamed records are consumed by the sink, so failures of a streamed
// transformation surface as sink write errors and follow the same strategy.
func (p *Pipeline) Execute(ctx context.Context) error {
	defer func() {
		if p.source != nil {
			p.source.Close()
		}
		if p.sink != nil {
			p.sink.Flush()
			p.sink.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := p.source.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}
		if record == nil {
			continue
		}
		p.count(func(s *PipelineStats) { s.RecordsRead++ })

		include, err := p.applyFilters(ctx, record)
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}
		if !include {
			p.discard(record)
			p.count(func(s *PipelineStats) { s.RecordsFiltered++ })
			continue
		}

		transformed, err := p.applyStages(ctx, record)
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		if err := p.sink.Write(ctx, transformed); err != nil {
			if err := p.handleError(ctx, transformed, err); err != nil {
				return err
			}
			continue
		}
		p.count(func(s *PipelineStats) { s.RecordsWritten++ })
	}

	p.logger.Debug("pipeline finished", "read", p.stats.RecordsRead, "written", p.stats.RecordsWritten, "failed", p.stats.RecordsFailed)
	return nil
}

// Errors returns the errors collected under the CollectErrors strategy.
func (p *Pipeline) Errors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.errs...)
}

// Stats returns the counters of the last run.
func (p *Pipeline) Stats() PipelineStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Pipeline) count(fn func(*PipelineStats)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.stats)
}

// applyFilters returns true if every filter includes the record.
func (p *Pipeline) applyFilters(ctx context.Context, record *core.FileRecord) (bool, error) {
	for _, filter := range p.filters {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		if !include {
			return false, nil
		}
	}
	return true, nil
}

// applyStages passes a record through all stages in sequence.
func (p *Pipeline) applyStages(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error) {
	current := record
	for _, stage := range p.stages {
		next, err := stage.Process(ctx, current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// discard releases the stream of a record that will not reach the sink.
func (p *Pipeline) discard(record *core.FileRecord) {
	if record.Stream != nil {
		record.Stream.Close()
	}
}

// handleError handles errors according to the pipeline's error strategy and handler.
// Returns an error if processing should stop, or nil to continue.
func (p *Pipeline) handleError(ctx context.Context, record *core.FileRecord, err error) error {
	p.count(func(s *PipelineStats) { s.RecordsFailed++ })
	if record != nil {
		p.discard(record)
	}

	switch p.strategy {
	case core.FailFast:
		return err
	case core.SkipErrors:
		p.logger.Warn("skipping failed record", "error", err)
		if p.errorHandler != nil {
			return p.errorHandler.HandleError(ctx, record, err)
		}
		return nil
	case core.CollectErrors:
		p.mu.Lock()
		p.errs = append(p.errs, err)
		p.mu.Unlock()
		if p.errorHandler != nil {
			return p.errorHandler.HandleError(ctx, record, err)
		}
		return nil
	default:
		return err
	}
}
