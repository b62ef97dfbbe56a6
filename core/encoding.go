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

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// codecs maps the short encoding names used by build tools to x/text encodings.
// Names not found here are looked up as WHATWG labels.
var codecs = map[string]encoding.Encoding{
	"utf8":     unicode.UTF8,
	"utf-8":    unicode.UTF8,
	"utf16le":  unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16le": unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"ucs2":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"ucs-2":    unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"latin1":   charmap.ISO8859_1,
	"binary":   charmap.ISO8859_1,
	"ascii":    charmap.ISO8859_1,
}

// ResolveSource picks the encoding used to decode input bytes: the
// SourceEncoding option, then the encoding supplied by the pipeline host,
// then DefaultEncoding.
func ResolveSource(opts Options, host string) string {
	if enc, ok := opts.String(SourceEncoding); ok {
		return enc
	}
	if host != "" {
		return host
	}
	return DefaultEncoding
}

// ResolveTarget picks the encoding used to encode output text: the
// TargetEncoding option, else the resolved source encoding.
func ResolveTarget(opts Options, source string) string {
	if enc, ok := opts.String(TargetEncoding); ok {
		return enc
	}
	return source
}

// Codec returns the x/text encoding registered under name.
func Codec(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if enc, ok := codecs[key]; ok {
		return enc, nil
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Decode converts bytes in the named encoding to text.
func Decode(data []byte, name string) (string, error) {
	enc, err := Codec(name)
	if err != nil {
		return "", err
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return string(decoded), nil
}

// Encode converts text to bytes in the named encoding. Characters the
// encoding cannot represent are replaced rather than reported.
func Encode(text, name string) ([]byte, error) {
	enc, err := Codec(name)
	if err != nil {
		return nil, err
	}
	encoded, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return encoded, nil
}
