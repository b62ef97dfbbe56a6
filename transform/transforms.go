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

package transform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"

	"github.com/aaronlmathis/textform/core"
)

// Package transform provides reusable text transformation functions for Textform.
//
// Every function returns a core.Func that can be handed to textform.New. Functions
// that take parameters also read them from the call options so a single
// transformation can be reconfigured per call or per file.

// Option keys read by the parameterized transformations.
const (
	OptOld         = "old"
	OptNew         = "new"
	OptPattern     = "pattern"
	OptReplacement = "replacement"
	OptJQ          = "jq"
)

// Identity returns the input text unchanged.
func Identity() core.Func {
	return core.FromString(func(s string) string { return s })
}

// Upper converts the text to upper case.
func Upper() core.Func {
	return core.FromString(strings.ToUpper)
}

// Lower converts the text to lower case.
func Lower() core.Func {
	return core.FromString(strings.ToLower)
}

// TrimSpace removes leading and trailing white space.
func TrimSpace() core.Func {
	return core.FromString(strings.TrimSpace)
}

// Replace replaces every occurrence of old with new. The "old" and "new"
// options override the arguments.
func Replace(old, new string) core.Func {
	return func(text string, opts core.Options) (interface{}, error) {
		from, to := old, new
		if v, ok := opts.String(OptOld); ok {
			from = v
		}
		if v, exists := opts[OptNew]; exists {
			to = fmt.Sprint(v)
		}
		if from == "" {
			return text, nil
		}
		return strings.ReplaceAll(text, from, to), nil
	}
}

// ReplaceRegex replaces matches of pattern with replacement, which may refer
// to submatches as $1. The "pattern" and "replacement" options override the
// arguments.
func ReplaceRegex(pattern, replacement string) (core.Func, error) {
	var compiled *regexp.Regexp
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled = re
	}

	return func(text string, opts core.Options) (interface{}, error) {
		re := compiled
		if v, ok := opts.String(OptPattern); ok {
			var err error
			if re, err = regexp.Compile(v); err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", v, err)
			}
		}
		repl := replacement
		if v, exists := opts[OptReplacement]; exists {
			repl = fmt.Sprint(v)
		}
		if re == nil {
			return text, nil
		}
		return re.ReplaceAllString(text, repl), nil
	}, nil
}

// JSON parses the text as a JSON document and returns the decoded value.
// Written output is the document re-indented with two spaces.
func JSON() core.Func {
	return func(text string, _ core.Options) (interface{}, error) {
		decoder := json.NewDecoder(strings.NewReader(text))
		decoder.UseNumber()
		var value interface{}
		if err := decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		if _, err := decoder.Token(); err != io.EOF {
			return nil, fmt.Errorf("failed to parse JSON: trailing data after document")
		}
		return value, nil
	}
}

// YAMLToJSON parses the text as a YAML document and returns the decoded value
// with every mapping keyed by strings.
func YAMLToJSON() core.Func {
	return func(text string, _ core.Options) (interface{}, error) {
		var value interface{}
		if err := yaml.Unmarshal([]byte(text), &value); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return stringKeys(value), nil
	}
}

func stringKeys(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, item := range v {
			v[key] = stringKeys(item)
		}
		return v
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, item := range v {
			result[fmt.Sprint(key)] = stringKeys(item)
		}
		return result
	case []interface{}:
		for i, item := range v {
			v[i] = stringKeys(item)
		}
		return v
	default:
		return v
	}
}

// JQ parses the text as JSON and applies the jq expression to it. A single
// result is returned as is, several results as a list and no result as nil.
// The "jq" option overrides the expression.
func JQ(expr string) (core.Func, error) {
	code, err := compileJQ(expr)
	if err != nil {
		return nil, err
	}

	return func(text string, opts core.Options) (interface{}, error) {
		run := code
		if v, ok := opts.String(OptJQ); ok {
			override, err := compileJQ(v)
			if err != nil {
				return nil, err
			}
			run = override
		}

		var input interface{}
		if err := json.Unmarshal(bytes.TrimSpace([]byte(text)), &input); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}

		var results []interface{}
		iter := run.Run(input)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, ok := v.(error); ok {
				if halt, ok := err.(*gojq.HaltError); ok && halt.Value() == nil {
					break
				}
				return nil, fmt.Errorf("jq: %w", err)
			}
			results = append(results, v)
		}

		switch len(results) {
		case 0:
			return nil, nil
		case 1:
			return results[0], nil
		default:
			return results, nil
		}
	}, nil
}

func compileJQ(expr string) (*gojq.Code, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	return code, nil
}

// Chain runs the functions in order. Each intermediate value is normalized to
// text before it is handed to the next function; the last value is returned
// as is. All functions receive the same options.
func Chain(fns ...core.Func) core.Func {
	return func(text string, opts core.Options) (interface{}, error) {
		var value interface{} = text
		for i, fn := range fns {
			if i > 0 {
				next, err := core.Normalize(value)
				if err != nil {
					return nil, err
				}
				text = next
			}
			result, err := fn(text, opts)
			if err != nil {
				return nil, err
			}
			value = result
		}
		return value, nil
	}
}
