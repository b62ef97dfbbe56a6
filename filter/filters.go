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

package filter

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aaronlmathis/textform/core"
)

// Package filter provides reusable, composable file record filters for Textform pipelines.
//
// All functions return core.FileFilter implementations. Filters inspect paths and
// metadata only; stream contents are never consumed.

// NotNull creates a filter that excludes records without content
func NotNull() core.FileFilter {
	return core.FileFilterFunc(func(ctx context.Context, record *core.FileRecord) (bool, error) {
		return !record.IsNull(), nil
	})
}

// Extension creates a filter that includes records whose path ends with one of the extensions.
// Extensions are compared case-insensitively and may be given with or without the dot.
func Extension(exts ...string) core.FileFilter {
	normalized := make([]string, len(exts))
	for i, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized[i] = ext
	}
	return core.FileFilterFunc(func(ctx context.Context, record *core.FileRecord) (bool, error) {
		ext := strings.ToLower(filepath.Ext(record.Path))
		for _, want := range normalized {
			if ext == want {
				return true, nil
			}
		}
		return false, nil
	})
}

// Glob creates a filter that includes records whose relative path matches the pattern.
// Patterns without a separator are matched against the file name.
func Glob(pattern string) (core.FileFilter, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
	}
	byName := !strings.Contains(pattern, "/")
	return core.FileFilterFunc(func(ctx context.Context, record *core.FileRecord) (bool, error) {
		subject := filepath.ToSlash(record.RelPath())
		if byName {
			subject = path.Base(subject)
		}
		return path.Match(pattern, subject)
	}), nil
}

// MatchesRegex creates a filter that includes records whose path matches the regex pattern
func MatchesRegex(pattern string) core.FileFilter {
	regex := regexp.MustCompile(pattern)
	return core.FileFilterFunc(func(ctx context.Context, record *core.FileRecord) (bool, error) {
		return regex.MatchString(filepath.ToSlash(record.Path)), nil
	})
}

// MaxSize creates a filter that excludes records larger than limit bytes.
// The size comes from Stat when present, else from buffered contents.
// Streams without metadata are included.
func MaxSize(limit int64) core.FileFilter {
	return core.FileFilterFunc(func(ctx context.Context, record *core.FileRecord) (bool, error) {
		if record.Stat != nil {
			return record.Stat.Size() <= limit, nil
		}
		if record.IsBuffer() {
			return int64(len(record.Contents)) <= limit, nil
		}
		return true, nil
	})
}

// And creates a filter that includes records only if all filters pass
func And(filters ...core.FileFilter) core.FileFilter {
	return core.FileFilterFunc(func(ctx context.Context, record *core.FileRecord) (bool, error) {
		for _, f := range filters {
			include, err := f.ShouldInclude(ctx, record)
			if err != nil || !include {
				return false, err
			}
		}
		return true, nil
	})
}

// Or creates a filter that includes records if any filter passes
func Or(filters ...core.FileFilter) core.FileFilter {
	return core.FileFilterFunc(func(ctx context.Context, record *core.FileRecord) (bool, error) {
		for _, f := range filters {
			include, err := f.ShouldInclude(ctx, record)
			if err != nil {
				return false, err
			}
			if include {
				return true, nil
			}
		}
		return false, nil
	})
}

// Not creates a filter that inverts the result of another filter
func Not(filter core.FileFilter) core.FileFilter {
	return core.FileFilterFunc(func(ctx context.Context, record *core.FileRecord) (bool, error) {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		return !include, nil
	})
}

// Custom creates a filter using a custom predicate function
func Custom(predicate func(*core.FileRecord) bool) core.FileFilter {
	return core.FileFilterFunc(func(ctx context.Context, record *core.FileRecord) (bool, error) {
		return predicate(record), nil
	})
}
