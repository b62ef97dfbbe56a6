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
	"github.com/spf13/cobra"
)

func newConvertCmd(newTransformation transformationFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "convert SRC DST",
		Short: "Transform SRC and write the result to DST",
		Long: `Transform SRC and write the result to DST. DST is only written when the
transformation succeeds.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := newTransformation(cmd)
			if err != nil {
				return err
			}
			if err := t.TransformFile(args[0], args[1], nil); err != nil {
				return err
			}
			loggerFrom(cmd.Context()).Info("converted", "source", args[0], "target", args[1])
			return nil
		},
	}
}
