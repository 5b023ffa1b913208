// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graphsink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mentormatch/internal/metrics"
)

// ErrCircuitOpen is returned without contacting the database while the
// breaker is open or its half-open trial quota is used up.
var ErrCircuitOpen = errors.New("graph database circuit open")

// BreakerConfig tunes the circuit breaker around a Client.
type BreakerConfig struct {
	// Name labels log lines and metrics.
	Name string

	// ConsecutiveFailures trips the breaker. Default: 5
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before probing. Default: 30s
	OpenTimeout time.Duration

	// Interval resets the closed-state counts. Default: 1m
	Interval time.Duration

	// HalfOpenRequests is the number of trial requests allowed while half-open. Default: 1
	HalfOpenRequests uint32
}

// DefaultBreakerConfig returns the settings used for Neo4j.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "neo4j",
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		Interval:            time.Minute,
		HalfOpenRequests:    1,
	}
}

// BreakerClient wraps a Client so that an unreachable database fails fast
// instead of every export and health check waiting on the driver timeout.
// Cancelled or expired caller contexts do not count as failures.
type BreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker[Result]
	name   string
}

// NewBreakerClient wraps client. Zero fields of cfg take their defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreakerClient(client Client, cfg BreakerConfig, logger zerolog.Logger) *BreakerClient {
	d := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = d.Name
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = d.ConsecutiveFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = d.OpenTimeout
	}
	if cfg.Interval <= 0 {
		cfg.Interval = d.Interval
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = d.HalfOpenRequests
	}

	log := logger.With().Str("component", "graph_breaker").Str("breaker", cfg.Name).Logger()
	metrics.SetCircuitBreakerState(cfg.Name, stateValue(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			metrics.SetCircuitBreakerState(name, stateValue(to))
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	return &BreakerClient{client: client, cb: cb, name: cfg.Name}
}

func (b *BreakerClient) execute(fn func() (Result, error)) (Result, error) {
	res, err := b.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerRequest(b.name, "rejected")
		return Result{}, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	case err != nil:
		metrics.RecordCircuitBreakerRequest(b.name, "failure")
		return Result{}, err
	}
	metrics.RecordCircuitBreakerRequest(b.name, "success")
	return res, nil
}

// ExecuteWrite implements Client.
func (b *BreakerClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return b.execute(func() (Result, error) {
		return b.client.ExecuteWrite(ctx, cypher, params)
	})
}

// ExecuteRead implements Client.
func (b *BreakerClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return b.execute(func() (Result, error) {
		return b.client.ExecuteRead(ctx, cypher, params)
	})
}

// VerifyConnectivity implements Client. While the breaker is open it
// reports ErrCircuitOpen without dialing.
func (b *BreakerClient) VerifyConnectivity(ctx context.Context) error {
	_, err := b.execute(func() (Result, error) {
		return Result{}, b.client.VerifyConnectivity(ctx)
	})
	return err
}

// Close closes the wrapped client. It bypasses the breaker.
func (b *BreakerClient) Close(ctx context.Context) error {
	return b.client.Close(ctx)
}

// State returns closed, half-open or open.
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

var _ Client = (*BreakerClient)(nil)
