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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aaronlmathis/textform"
	"github.com/aaronlmathis/textform/core"
	"github.com/aaronlmathis/textform/filter"
	"github.com/aaronlmathis/textform/types"
)

type runFlags struct {
	src        string
	dest       string
	stream     bool
	extensions []string
	exclude    string
	maxSize    int64
	onError    string
}

func newRunCmd(v *viper.Viper, fs afero.Fs, newTransformation transformationFactory) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a transformation over a set of files",
		Long: `Run reads every file of --src, passes it through the transformation and
stores the result in --dest. Locations are local globs or directories,
s3://bucket/prefix, postgres://...#table, mongodb://...#db/collection,
http(s):// URLs (source only) or - for standard output (destination only).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := newTransformation(cmd)
			if err != nil {
				return err
			}
			flags.onError = v.GetString(keyOnError)
			return runPipeline(cmd.Context(), cmd, fs, t, flags)
		},
	}

	cmd.Flags().StringVar(&flags.src, "src", "", "Source location")
	cmd.Flags().StringVar(&flags.dest, "dest", "", "Destination location")
	cmd.Flags().BoolVar(&flags.stream, "stream", false, "Stream file contents instead of buffering them")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "Only process files with these extensions")
	cmd.Flags().StringVar(&flags.exclude, "exclude", "", "Skip files whose name matches this glob")
	cmd.Flags().Int64Var(&flags.maxSize, "max-size", 0, "Skip files larger than this many bytes")
	cmd.Flags().StringVar(&flags.onError, "on-error", "fail", "Error strategy: fail, skip or collect")
	_ = cmd.MarkFlagRequired("src")
	_ = cmd.MarkFlagRequired("dest")
	bindFlag(v, cmd, keyOnError, "on-error")

	return cmd
}

func parseStrategy(name string) (core.ErrorStrategy, error) {
	switch name {
	case "", "fail":
		return core.FailFast, nil
	case "skip":
		return core.SkipErrors, nil
	case "collect":
		return core.CollectErrors, nil
	default:
		return core.FailFast, fmt.Errorf("unknown error strategy %q", name)
	}
}

func buildFilters(flags *runFlags) ([]core.FileFilter, error) {
	filters := []core.FileFilter{}
	if len(flags.extensions) > 0 {
		filters = append(filters, filter.Extension(flags.extensions...))
	}
	if flags.exclude != "" {
		glob, err := filter.Glob(flags.exclude)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter.Not(glob))
	}
	if flags.maxSize > 0 {
		filters = append(filters, filter.MaxSize(flags.maxSize))
	}
	return filters, nil
}

func runPipeline(ctx context.Context, cmd *cobra.Command, fs afero.Fs, t *textform.Transformation, flags *runFlags) error {
	logger := loggerFrom(ctx)

	strategy, err := parseStrategy(flags.onError)
	if err != nil {
		return err
	}
	filters, err := buildFilters(flags)
	if err != nil {
		return err
	}

	srcLoc, err := types.ParseLocation(flags.src)
	if err != nil {
		return err
	}
	destLoc, err := types.ParseLocation(flags.dest)
	if err != nil {
		return err
	}
	if stdout, ok := destLoc.(types.StdoutLocation); ok {
		stdout.Writer = cmd.OutOrStdout()
		destLoc = stdout
	}

	source, err := srcLoc.NewSource(ctx, types.SourceOptions{Buffer: !flags.stream, Fs: fs})
	if err != nil {
		return err
	}
	sink, err := destLoc.NewSink(ctx, fs)
	if err != nil {
		source.Close()
		return err
	}

	pipeline, err := textform.NewPipeline().
		From(source).
		Where(filters...).
		Through(t.Stage()).
		To(sink).
		WithErrorStrategy(strategy).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}

	if err := pipeline.Execute(ctx); err != nil {
		return err
	}

	stats := pipeline.Stats()
	logger.Info("run finished",
		"source", srcLoc.String(),
		"dest", destLoc.String(),
		"read", stats.RecordsRead,
		"filtered", stats.RecordsFiltered,
		"written", stats.RecordsWritten,
		"failed", stats.RecordsFailed,
	)
	if errs := pipeline.Errors(); len(errs) > 0 {
		for _, err := range errs {
			logger.Error("record failed", "error", err)
		}
		return fmt.Errorf("%d records failed", len(errs))
	}
	return nil
}
