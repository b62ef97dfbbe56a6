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

package core

// Package core defines the core types for the Textform library.
//
// Textform turns a plain text transformation function into a direct call, a
// file-pipeline stage and a set of file-to-file helpers.
//
// This file contains the option mapping, the transformation function type and its adapters.

// Reserved option keys. Every other key is passed through to the transformation
// function untouched.
const (
	// SourceEncoding names the encoding used to decode input bytes.
	SourceEncoding = "sourceEncoding"
	// TargetEncoding names the encoding used to encode output text.
	TargetEncoding = "targetEncoding"
	// SourcePath is the absolute path of the file being processed.
	SourcePath = "sourcePath"
)

// DefaultEncoding is used when neither the options nor the host name an encoding.
const DefaultEncoding = "utf8"

// Options is an open key-value mapping handed to a transformation function.
// Only SourceEncoding, TargetEncoding and SourcePath are interpreted.
type Options map[string]interface{}

// Clone returns a copy of the options. Nested mappings and lists are copied
// too, so the clone shares no mutable values with o. A nil receiver yields an
// empty mapping.
func (o Options) Clone() Options {
	result := make(Options, len(o))
	for k, v := range o {
		result[k] = cloneValue(v)
	}
	return result
}

// cloneValue deep-copies the container types options are built from. Other
// values are returned as is.
func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case Options:
		return v.Clone()
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, item := range v {
			result[k] = cloneValue(item)
		}
		return result
	case map[string]string:
		result := make(map[string]string, len(v))
		for k, item := range v {
			result[k] = item
		}
		return result
	case []interface{}:
		if v == nil {
			return v
		}
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = cloneValue(item)
		}
		return result
	case []string:
		if v == nil {
			return v
		}
		return append([]string(nil), v...)
	default:
		return v
	}
}

// String returns the string value stored under key. Missing keys, nil values,
// empty strings and non-string values all report false.
func (o Options) String(key string) (string, bool) {
	value, exists := o[key]
	if !exists || value == nil {
		return "", false
	}
	str, ok := value.(string)
	if !ok || str == "" {
		return "", false
	}
	return str, true
}

// Func is a text transformation: it receives the full input text and the
// effective options and returns any value. Non-string values are rendered as
// indented JSON when written to a file.
type Func func(text string, opts Options) (interface{}, error)

// FromString adapts a plain string function into a Func.
func FromString(fn func(string) string) Func {
	return func(text string, _ Options) (interface{}, error) {
		return fn(text), nil
	}
}

// FromStringE adapts a string function that may fail into a Func.
func FromStringE(fn func(string) (string, error)) Func {
	return func(text string, _ Options) (interface{}, error) {
		result, err := fn(text)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}
