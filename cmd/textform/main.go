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
	"log/slog"
	"os"
)

func main() {
	var levelVar slog.LevelVar
	levelVar.Set(slog.LevelInfo)
	// Standard output carries transformed text, so logs go to standard error.
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &levelVar})
	logger := slog.New(handler)

	ctx := withLogger(context.Background(), logger, &levelVar)

	rootCmd := NewRootCmd()
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
