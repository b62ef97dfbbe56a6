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

// Merge builds the effective options for one unit of work.
//
// Precedence, lowest to highest: derived (values computed from the file being
// processed, such as SourcePath), defaults, call. Any argument may be nil.
// The result is always a fresh mapping with nested mappings and lists copied,
// so changes made through it never reach the inputs.
func Merge(defaults, call, derived Options) Options {
	result := make(Options, len(derived)+len(defaults)+len(call))
	for k, v := range derived {
		result[k] = cloneValue(v)
	}
	for k, v := range defaults {
		result[k] = cloneValue(v)
	}
	for k, v := range call {
		result[k] = cloneValue(v)
	}
	return result
}

// ToOptions converts a caller supplied value into Options. nil, Options,
// map[string]interface{} and map[string]string are accepted.
func ToOptions(value interface{}) (Options, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case Options:
		return v, true
	case map[string]interface{}:
		return Options(v), true
	case map[string]string:
		result := make(Options, len(v))
		for k, s := range v {
			result[k] = s
		}
		return result, true
	default:
		return nil, false
	}
}
