// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graphsink

import (
	"context"
	"maps"
	"sync"
)

// Query is a Cypher statement with its parameters as received by a
// MemoryClient.
type Query struct {
	Cypher string
	Params map[string]any
}

// MemoryClient records queries instead of sending them anywhere. It serves
// tests and deployments with the export disabled.
type MemoryClient struct {
	mu      sync.Mutex
	writes  []Query
	reads   []Query
	results []Result
	err     error
	closed  bool
}

// NewMemoryClient creates an empty recording client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// FailWith makes every subsequent query return err.
func (m *MemoryClient) FailWith(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// QueueReadResult queues res for the next ExecuteRead call.
func (m *MemoryClient) QueueReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.writes = append(m.writes, Query{Cypher: cypher, Params: maps.Clone(params)})
	return Result{}, nil
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.reads = append(m.reads, Query{Cypher: cypher, Params: maps.Clone(params)})
	if len(m.results) == 0 {
		return Result{}, nil
	}
	res := m.results[0]
	m.results = m.results[1:]
	return res, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *MemoryClient) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Writes returns the recorded write queries in order.
func (m *MemoryClient) Writes() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.writes...)
}

// Reads returns the recorded read queries in order.
func (m *MemoryClient) Reads() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.reads...)
}

// Closed reports whether Close was called.
func (m *MemoryClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var (
	_ Client = (*MemoryClient)(nil)
	_ Client = (*neo4jClient)(nil)
)
