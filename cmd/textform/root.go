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
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aaronlmathis/textform"
	"github.com/aaronlmathis/textform/transform"
)

// NewRootCmd builds the textform command tree with its own configuration.
func NewRootCmd() *cobra.Command {
	return newRootCmd(viper.New(), afero.NewOsFs())
}

func newRootCmd(v *viper.Viper, fs afero.Fs) *cobra.Command {
	var pairs []string

	rootCmd := &cobra.Command{
		Use:   "textform",
		Short: "Apply text transformations to files",
		Long: `textform applies a text transformation to single files or to whole
file sets read from a directory, S3, PostgreSQL or MongoDB.

Examples:
	textform print README.md --transform upper
	textform convert data.yaml data.json --transform yaml2json
	textform run --src 'docs/*.md' --dest out --transform replace --opt old=foo --opt new=bar
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(v); err != nil {
				fmt.Fprintln(os.Stderr, "Config error:", err)
				return err
			}
			if levelVar := levelVarFrom(cmd.Context()); levelVar != nil {
				levelVar.Set(parseLevel(v.GetString(keyLogLevel)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default is ./textform.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("transform", "t", "", "Transformation name or comma separated chain")
	rootCmd.PersistentFlags().String("source-encoding", "", "Encoding used to decode input")
	rootCmd.PersistentFlags().String("target-encoding", "", "Encoding used to encode output")
	rootCmd.PersistentFlags().StringArrayVarP(&pairs, "opt", "o", nil, "Option passed to the transformation as key=value (repeatable)")

	bindPersistentFlag(v, rootCmd, keyConfig, "config")
	bindPersistentFlag(v, rootCmd, keyLogLevel, "log-level")
	bindPersistentFlag(v, rootCmd, keyTransform, "transform")
	bindPersistentFlag(v, rootCmd, keySourceEncoding, "source-encoding")
	bindPersistentFlag(v, rootCmd, keyTargetEncoding, "target-encoding")

	newTransformation := func(cmd *cobra.Command) (*textform.Transformation, error) {
		fn, err := transformationFunc(v)
		if err != nil {
			return nil, err
		}
		defaults, err := defaultOptions(v, pairs)
		if err != nil {
			return nil, err
		}
		return textform.New(fn, defaults,
			textform.WithFs(fs),
			textform.WithLogger(loggerFrom(cmd.Context())),
		), nil
	}

	rootCmd.AddCommand(newPrintCmd(newTransformation))
	rootCmd.AddCommand(newConvertCmd(newTransformation))
	rootCmd.AddCommand(newRunCmd(v, fs, newTransformation))
	rootCmd.AddCommand(newListCmd())
	return rootCmd
}

type transformationFactory func(cmd *cobra.Command) (*textform.Transformation, error)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in transformations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range transform.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
