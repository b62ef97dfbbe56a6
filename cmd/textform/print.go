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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaronlmathis/textform/core"
)

func newPrintCmd(newTransformation transformationFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "print FILE",
		Short: "Transform a file and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := newTransformation(cmd)
			if err != nil {
				return err
			}
			value, err := t.ReadFile(args[0], nil)
			if err != nil {
				return err
			}
			text, err := core.Normalize(value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
