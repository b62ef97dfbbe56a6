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
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aaronlmathis/textform/core"
)

// This file implements a MongoDB reader that loads file records from a collection.
// Documents carry a "path" string and a "content" field holding binary data or a string;
// a missing or null content yields a null record.

// MongoReaderError provides structured error information for MongoDB reader operations
type MongoReaderError struct {
	Op  string // Operation that failed (e.g., "connect", "find", "decode")
	Err error  // Underlying error
}

func (e *MongoReaderError) Error() string {
	return fmt.Sprintf("mongo reader %s: %v", e.Op, e.Err)
}

func (e *MongoReaderError) Unwrap() error {
	return e.Err
}

// MongoReaderOptions configures the MongoDB reader
type MongoReaderOptions struct {
	URI        string        // MongoDB connection URI
	Database   string        // Database name
	Collection string        // Collection name
	Filter     bson.M        // Query filter
	BatchSize  int32         // Cursor batch size
	Timeout    time.Duration // Connect timeout
	Base       string        // Base directory attached to records
	Encoding   string        // Host encoding attached to records
}

// ReaderOptionMongo represents a configuration function for MongoReader
type ReaderOptionMongo func(*MongoReaderOptions)

func WithMongoURI(uri string) ReaderOptionMongo {
	return func(opts *MongoReaderOptions) {
		opts.URI = uri
	}
}

func WithMongoDB(database string) ReaderOptionMongo {
	return func(opts *MongoReaderOptions) {
		opts.Database = database
	}
}

func WithMongoCollection(collection string) ReaderOptionMongo {
	return func(opts *MongoReaderOptions) {
		opts.Collection = collection
	}
}

// WithMongoFilter restricts the documents read.
func WithMongoFilter(filter bson.M) ReaderOptionMongo {
	return func(opts *MongoReaderOptions) {
		opts.Filter = filter
	}
}

func WithMongoBatchSize(batchSize int32) ReaderOptionMongo {
	return func(opts *MongoReaderOptions) {
		opts.BatchSize = batchSize
	}
}

func WithMongoTimeout(timeout time.Duration) ReaderOptionMongo {
	return func(opts *MongoReaderOptions) {
		opts.Timeout = timeout
	}
}

func WithMongoBase(base string) ReaderOptionMongo {
	return func(opts *MongoReaderOptions) {
		opts.Base = base
	}
}

func WithMongoEncoding(encoding string) ReaderOptionMongo {
	return func(opts *MongoReaderOptions) {
		opts.Encoding = encoding
	}
}

// MongoReader implements core.FileSource for documents of a MongoDB collection.
// The connection is established on the first Read.
type MongoReader struct {
	client *mongo.Client
	cursor *mongo.Cursor
	opts   *MongoReaderOptions
	read   int64
	done   bool
	mu     sync.Mutex
}

// NewMongoReader creates a new MongoDB reader.
func NewMongoReader(options ...ReaderOptionMongo) (*MongoReader, error) {
	opts := &MongoReaderOptions{
		URI:       "mongodb://localhost:27017",
		BatchSize: 100,
		Timeout:   30 * time.Second,
	}
	for _, option := range options {
		option(opts)
	}

	if opts.Database == "" {
		return nil, &MongoReaderError{Op: "validate", Err: fmt.Errorf("database name is required")}
	}
	if opts.Collection == "" {
		return nil, &MongoReaderError{Op: "validate", Err: fmt.Errorf("collection name is required")}
	}
	return &MongoReader{opts: opts}, nil
}

// Read implements the core.FileSource interface.
func (mr *MongoReader) Read(ctx context.Context) (*core.FileRecord, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if mr.done {
		return nil, io.EOF
	}
	if mr.cursor == nil {
		if err := mr.open(ctx); err != nil {
			return nil, err
		}
	}

	if !mr.cursor.Next(ctx) {
		mr.done = true
		if err := mr.cursor.Err(); err != nil {
			return nil, &MongoReaderError{Op: "read", Err: err}
		}
		return nil, io.EOF
	}

	var doc bson.M
	if err := mr.cursor.Decode(&doc); err != nil {
		return nil, &MongoReaderError{Op: "decode", Err: err}
	}
	record, err := documentToRecord(doc, mr.opts.Base, mr.opts.Encoding)
	if err != nil {
		return nil, &MongoReaderError{Op: "decode", Err: err}
	}
	mr.read++
	return record, nil
}

// Close implements the core.FileSource interface.
func (mr *MongoReader) Close() error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	ctx := context.Background()
	if mr.cursor != nil {
		mr.cursor.Close(ctx)
	}
	if mr.client != nil {
		return mr.client.Disconnect(ctx)
	}
	return nil
}

// RecordsRead returns the number of records produced so far.
func (mr *MongoReader) RecordsRead() int64 {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	return mr.read
}

func (mr *MongoReader) open(ctx context.Context) error {
	clientOpts := options.Client().ApplyURI(mr.opts.URI).SetConnectTimeout(mr.opts.Timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return &MongoReaderError{Op: "connect", Err: err}
	}

	filter := mr.opts.Filter
	if filter == nil {
		filter = bson.M{}
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "path", Value: 1}}).SetBatchSize(mr.opts.BatchSize)
	cursor, err := client.Database(mr.opts.Database).Collection(mr.opts.Collection).Find(ctx, filter, findOpts)
	if err != nil {
		client.Disconnect(ctx)
		return &MongoReaderError{Op: "find", Err: err}
	}
	mr.client = client
	mr.cursor = cursor
	return nil
}

// documentToRecord converts a {path, content} document into a file record.
func documentToRecord(doc bson.M, base, encoding string) (*core.FileRecord, error) {
	filePath, ok := doc["path"].(string)
	if !ok || filePath == "" {
		return nil, fmt.Errorf("document %v has no path", doc["_id"])
	}
	record := &core.FileRecord{
		Path:     path.Join("/", base, filePath),
		Base:     path.Join("/", base),
		Encoding: encoding,
	}
	switch content := doc["content"].(type) {
	case nil:
	case primitive.Binary:
		record.Contents = append([]byte{}, content.Data...)
	case []byte:
		record.Contents = append([]byte{}, content...)
	case string:
		record.Contents = []byte(content)
	default:
		return nil, fmt.Errorf("document %s has unsupported content type %T", filePath, content)
	}
	return record, nil
}
