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

package writers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aaronlmathis/textform/core"
)

// MongoWriterError provides structured error information for MongoDB writer operations
type MongoWriterError struct {
	Op  string // Operation that failed (e.g., "connect", "replace")
	Err error  // Underlying error
}

func (e *MongoWriterError) Error() string {
	return fmt.Sprintf("mongo writer %s: %v", e.Op, e.Err)
}

func (e *MongoWriterError) Unwrap() error {
	return e.Err
}

// MongoWriterOptions configures the MongoDB writer
type MongoWriterOptions struct {
	URI        string        // MongoDB connection URI
	Database   string        // Database name
	Collection string        // Collection name
	Timeout    time.Duration // Connect timeout
}

// MongoWriterOption represents a configuration function for MongoWriter
type MongoWriterOption func(*MongoWriterOptions)

func WithMongoWriterURI(uri string) MongoWriterOption {
	return func(opts *MongoWriterOptions) {
		opts.URI = uri
	}
}

func WithMongoWriterDB(database string) MongoWriterOption {
	return func(opts *MongoWriterOptions) {
		opts.Database = database
	}
}

func WithMongoWriterCollection(collection string) MongoWriterOption {
	return func(opts *MongoWriterOptions) {
		opts.Collection = collection
	}
}

func WithMongoWriterTimeout(timeout time.Duration) MongoWriterOption {
	return func(opts *MongoWriterOptions) {
		opts.Timeout = timeout
	}
}

// MongoWriter implements core.FileSink by upserting one document per record,
// keyed by path. The connection is established on the first Write.
type MongoWriter struct {
	client     *mongo.Client
	collection *mongo.Collection
	opts       *MongoWriterOptions
	written    int64
	mu         sync.Mutex
}

// NewMongoWriter creates a new MongoDB writer.
func NewMongoWriter(options ...MongoWriterOption) (*MongoWriter, error) {
	opts := &MongoWriterOptions{
		URI:     "mongodb://localhost:27017",
		Timeout: 30 * time.Second,
	}
	for _, option := range options {
		option(opts)
	}

	if opts.Database == "" {
		return nil, &MongoWriterError{Op: "validate", Err: fmt.Errorf("database name is required")}
	}
	if opts.Collection == "" {
		return nil, &MongoWriterError{Op: "validate", Err: fmt.Errorf("collection name is required")}
	}
	return &MongoWriter{opts: opts}, nil
}

// Write implements the core.FileSink interface. Null records are skipped.
func (mw *MongoWriter) Write(ctx context.Context, record *core.FileRecord) error {
	if record.IsNull() {
		return nil
	}
	content, err := record.ReadAll()
	if err != nil {
		return &MongoWriterError{Op: "read", Err: err}
	}

	mw.mu.Lock()
	defer mw.mu.Unlock()

	if mw.collection == nil {
		if err := mw.connect(ctx); err != nil {
			return err
		}
	}

	doc := fileDocument(record.Path, content)
	replaceOpts := options.Replace().SetUpsert(true)
	if _, err := mw.collection.ReplaceOne(ctx, bson.M{"path": record.Path}, doc, replaceOpts); err != nil {
		return &MongoWriterError{Op: "replace", Err: fmt.Errorf("%s: %w", record.Path, err)}
	}
	mw.written++
	return nil
}

// RecordsWritten returns the number of documents upserted.
func (mw *MongoWriter) RecordsWritten() int64 {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.written
}

// Flush implements the core.FileSink interface. Writes are synchronous.
func (mw *MongoWriter) Flush() error {
	return nil
}

// Close implements the core.FileSink interface.
func (mw *MongoWriter) Close() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	if mw.client != nil {
		return mw.client.Disconnect(context.Background())
	}
	return nil
}

func (mw *MongoWriter) connect(ctx context.Context) error {
	clientOpts := options.Client().ApplyURI(mw.opts.URI).SetConnectTimeout(mw.opts.Timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return &MongoWriterError{Op: "connect", Err: err}
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return &MongoWriterError{Op: "ping", Err: err}
	}
	mw.client = client
	mw.collection = client.Database(mw.opts.Database).Collection(mw.opts.Collection)
	return nil
}

func fileDocument(path string, content []byte) bson.M {
	return bson.M{
		"path":       path,
		"content":    content,
		"size":       int64(len(content)),
		"updated_at": time.Now().UTC(),
	}
}
