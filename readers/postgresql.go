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

package readers

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/aaronlmathis/textform/core"
)

// This file implements a PostgreSQL reader that loads file records from a table.
// The query must return two columns: the file path (text) and its content (bytea or text).
// A NULL content column yields a null record.

// PostgresReaderError provides structured error information for Postgres reader operations
type PostgresReaderError struct {
	Op  string // Operation that failed (e.g., "connect", "query", "scan", "read")
	Err error  // Underlying error
}

func (e *PostgresReaderError) Error() string {
	return fmt.Sprintf("postgres reader %s: %v", e.Op, e.Err)
}

func (e *PostgresReaderError) Unwrap() error {
	return e.Err
}

// PostgresReaderStats holds statistics about the Postgres reader's performance
type PostgresReaderStats struct {
	RecordsRead   int64
	QueryDuration time.Duration
	LastReadTime  time.Time
}

// PostgresReaderOptions configures the Postgres reader
type PostgresReaderOptions struct {
	DSN             string        // Database connection string
	Query           string        // SQL query returning (path, content)
	Params          []interface{} // Optional query parameters
	Base            string        // Base directory attached to records
	Encoding        string        // Host encoding attached to records
	ConnMaxLifetime time.Duration // Maximum connection lifetime
	MaxOpenConns    int           // Maximum open connections
	QueryTimeout    time.Duration // Query execution timeout
}

// PostgresReaderOption represents a configuration function for PostgresReaderOptions
type PostgresReaderOption func(*PostgresReaderOptions)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) {
		opts.DSN = dsn
	}
}

// WithPostgresQuery sets the SQL query and optional parameters.
func WithPostgresQuery(query string, params ...interface{}) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) {
		opts.Query = query
		if len(params) > 0 {
			opts.Params = make([]interface{}, len(params))
			copy(opts.Params, params)
		}
	}
}

// WithPostgresTable reads every row of a table with path and content columns.
func WithPostgresTable(table string) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) {
		opts.Query = fmt.Sprintf("SELECT path, content FROM %s ORDER BY path", quoteIdentifier(table))
	}
}

// WithPostgresBase sets the base directory attached to records.
func WithPostgresBase(base string) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) {
		opts.Base = base
	}
}

// WithPostgresEncoding sets the host encoding attached to records.
func WithPostgresEncoding(encoding string) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) {
		opts.Encoding = encoding
	}
}

// WithPostgresQueryTimeout sets the query timeout.
func WithPostgresQueryTimeout(timeout time.Duration) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) {
		opts.QueryTimeout = timeout
	}
}

// PostgresReader implements core.FileSource for rows of a PostgreSQL query.
// The query runs on the first Read.
type PostgresReader struct {
	mu     sync.Mutex
	db     *sql.DB
	rows   *sql.Rows
	cancel context.CancelFunc
	opts   *PostgresReaderOptions
	stats  PostgresReaderStats
	done   bool
}

// NewPostgresReader creates a new PostgreSQL reader. The connection is opened lazily.
func NewPostgresReader(options ...PostgresReaderOption) (*PostgresReader, error) {
	opts := (&PostgresReaderOptions{}).withDefaults()
	for _, option := range options {
		option(opts)
	}

	if opts.DSN == "" {
		return nil, &PostgresReaderError{Op: "validate", Err: fmt.Errorf("dsn is required")}
	}
	if opts.Query == "" {
		return nil, &PostgresReaderError{Op: "validate", Err: fmt.Errorf("query is required")}
	}

	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, &PostgresReaderError{Op: "connect", Err: err}
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	return &PostgresReader{db: db, opts: opts}, nil
}

// Read implements the core.FileSource interface.
func (p *PostgresReader) Read(ctx context.Context) (*core.FileRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return nil, io.EOF
	}
	if p.rows == nil {
		if err := p.executeQuery(ctx); err != nil {
			return nil, err
		}
	}

	if !p.rows.Next() {
		p.done = true
		if err := p.rows.Err(); err != nil {
			return nil, &PostgresReaderError{Op: "read", Err: err}
		}
		return nil, io.EOF
	}

	var filePath string
	var content []byte
	if err := p.rows.Scan(&filePath, &content); err != nil {
		return nil, &PostgresReaderError{Op: "scan", Err: err}
	}

	record := &core.FileRecord{
		Path:     path.Join("/", p.opts.Base, filePath),
		Base:     path.Join("/", p.opts.Base),
		Encoding: p.opts.Encoding,
	}
	if content != nil {
		record.Contents = append([]byte{}, content...)
	}

	p.stats.RecordsRead++
	p.stats.LastReadTime = time.Now()
	return record, nil
}

// Close implements the core.FileSource interface.
func (p *PostgresReader) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.rows != nil {
		if err := p.rows.Close(); err != nil {
			firstErr = err
		}
	}
	if p.cancel != nil {
		p.cancel()
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats returns statistics about the PostgreSQL reader's performance
func (p *PostgresReader) Stats() PostgresReaderStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (opts *PostgresReaderOptions) withDefaults() *PostgresReaderOptions {
	result := &PostgresReaderOptions{}
	if opts != nil {
		*result = *opts
	}
	if result.QueryTimeout <= 0 {
		result.QueryTimeout = 30 * time.Second
	}
	if result.ConnMaxLifetime <= 0 {
		result.ConnMaxLifetime = 5 * time.Minute
	}
	if result.MaxOpenConns <= 0 {
		result.MaxOpenConns = 10
	}
	return result
}

// executeQuery runs the query; the rows stay open until Close.
func (p *PostgresReader) executeQuery(ctx context.Context) error {
	start := time.Now()
	queryCtx, cancel := context.WithTimeout(ctx, p.opts.QueryTimeout)
	rows, err := p.db.QueryContext(queryCtx, p.opts.Query, p.opts.Params...)
	if err != nil {
		cancel()
		return &PostgresReaderError{Op: "query", Err: err}
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		cancel()
		return &PostgresReaderError{Op: "columns", Err: err}
	}
	if len(columns) != 2 {
		rows.Close()
		cancel()
		return &PostgresReaderError{Op: "columns", Err: fmt.Errorf("query must return (path, content), got %d columns", len(columns))}
	}
	p.rows = rows
	p.cancel = cancel
	p.stats.QueryDuration = time.Since(start)
	return nil
}

// quoteIdentifier quotes a possibly schema-qualified identifier.
func quoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}
