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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aaronlmathis/textform/core"
	"github.com/aaronlmathis/textform/transform"
)

// Configuration keys. Each key can also be set through the environment as
// TEXTFORM_<KEY>, e.g. TEXTFORM_SOURCEENCODING.
const (
	keyConfig         = "config"
	keyLogLevel       = "logLevel"
	keyTransform      = "transform"
	keySourceEncoding = "sourceEncoding"
	keyTargetEncoding = "targetEncoding"
	keyOptions        = "options"
	keyOnError        = "run.onError"
)

type loggerKey struct{}

type levelVarKey struct{}

func withLogger(ctx context.Context, logger *slog.Logger, levelVar *slog.LevelVar) context.Context {
	ctx = context.WithValue(ctx, loggerKey{}, logger)
	return context.WithValue(ctx, levelVarKey{}, levelVar)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

func levelVarFrom(ctx context.Context) *slog.LevelVar {
	if ctx == nil {
		return nil
	}
	levelVar, _ := ctx.Value(levelVarKey{}).(*slog.LevelVar)
	return levelVar
}

// parseLevel maps a level name to a slog level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig reads the config file named by --config, or textform.yaml from
// the working directory or $HOME/.config/textform. A missing file is not an error.
func loadConfig(v *viper.Viper) error {
	v.SetEnvPrefix("TEXTFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyTransform, "identity")

	if configFile := v.GetString(keyConfig); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName("textform")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "textform"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// defaultOptions builds the transformation defaults from the configuration
// and the repeatable --opt key=value flags. Flags win over the config file.
func defaultOptions(v *viper.Viper, pairs []string) (core.Options, error) {
	opts := core.Options{}
	for key, value := range v.GetStringMap(keyOptions) {
		opts[key] = value
	}
	if enc := v.GetString(keySourceEncoding); enc != "" {
		opts[core.SourceEncoding] = enc
	}
	if enc := v.GetString(keyTargetEncoding); enc != "" {
		opts[core.TargetEncoding] = enc
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q, expected key=value", pair)
		}
		opts[key] = parseScalar(raw)
	}
	return opts, nil
}

// parseScalar decodes a flag value as a YAML scalar so that numbers and
// booleans keep their type. Anything that is not a scalar stays a string.
func parseScalar(raw string) interface{} {
	var value interface{}
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	switch value.(type) {
	case bool, int, float64:
		return value
	default:
		return raw
	}
}

// transformationFunc resolves the --transform flag.
func transformationFunc(v *viper.Viper) (core.Func, error) {
	return transform.Lookup(v.GetString(keyTransform))
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		slog.Warn("failed to bind flag", "flag", flag, "error", err)
	}
}

func bindPersistentFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		slog.Warn("failed to bind flag", "flag", flag, "error", err)
	}
}
