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
	"fmt"
	"sort"
	"strings"

	"github.com/aaronlmathis/textform/core"
)

type factory func() (core.Func, error)

func plain(fn func() core.Func) factory {
	return func() (core.Func, error) { return fn(), nil }
}

var registry = map[string]factory{
	"identity":      plain(Identity),
	"upper":         plain(Upper),
	"lower":         plain(Lower),
	"trim":          plain(TrimSpace),
	"replace":       func() (core.Func, error) { return Replace("", ""), nil },
	"replace-regex": func() (core.Func, error) { return ReplaceRegex("", "") },
	"json":          plain(JSON),
	"yaml2json":     plain(YAMLToJSON),
	"jq":            func() (core.Func, error) { return JQ(".") },
}

// Lookup returns the named built-in transformation. Parameterized
// transformations start unconfigured and read their parameters from options.
// A comma separated list of names yields a Chain.
func Lookup(name string) (core.Func, error) {
	parts := strings.Split(name, ",")
	fns := make([]core.Func, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		create, ok := registry[part]
		if !ok {
			return nil, fmt.Errorf("unknown transformation %q (available: %s)", part, strings.Join(Names(), ", "))
		}
		fn, err := create()
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	if len(fns) == 1 {
		return fns[0], nil
	}
	return Chain(fns...), nil
}

// Names returns the registered transformation names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
