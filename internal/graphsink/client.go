// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graphsink

import (
	"context"
	"errors"
)

// Client is the subset of a Cypher-speaking graph database the exporter
// needs.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds the records of one query.
type Result struct {
	Records []Record
}

// Record maps returned column names to values.
type Record map[string]any

// Options configures a Neo4j client.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI is returned when no Bolt URI is configured.
var ErrMissingURI = errors.New("neo4j URI is required")
