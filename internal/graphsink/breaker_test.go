// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graphsink

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// countingClient counts the calls that reach the wrapped client.
type countingClient struct {
	*MemoryClient
	calls atomic.Int32
}

func (c *countingClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	c.calls.Add(1)
	return c.MemoryClient.ExecuteWrite(ctx, cypher, params)
}

func (c *countingClient) VerifyConnectivity(ctx context.Context) error {
	c.calls.Add(1)
	return c.MemoryClient.VerifyConnectivity(ctx)
}

func newBreakerForTest(inner Client, failures uint32, open time.Duration) *BreakerClient {
	return NewBreakerClient(inner, BreakerConfig{
		Name:                "neo4j-test",
		ConsecutiveFailures: failures,
		OpenTimeout:         open,
	}, zerolog.Nop())
}

func TestBreakerClient_OpensAndFailsFast(t *testing.T) {
	dialErr := errors.New("connection refused")
	inner := &countingClient{MemoryClient: NewMemoryClient().FailWith(dialErr)}
	b := newBreakerForTest(inner, 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := b.ExecuteWrite(ctx, "RETURN 1", nil); !errors.Is(err, dialErr) {
			t.Fatalf("call %d: error = %v, want %v", i, err, dialErr)
		}
	}
	if b.State() != "open" {
		t.Fatalf("State() = %q after 3 failures, want open", b.State())
	}

	if _, err := b.ExecuteWrite(ctx, "RETURN 1", nil); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("ExecuteWrite() error = %v, want ErrCircuitOpen", err)
	}
	if err := b.VerifyConnectivity(ctx); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("VerifyConnectivity() error = %v, want ErrCircuitOpen", err)
	}
	if got := inner.calls.Load(); got != 3 {
		t.Errorf("inner client called %d times, want 3 (open circuit must not dial)", got)
	}
}

func TestBreakerClient_RecoversAfterTimeout(t *testing.T) {
	inner := &countingClient{MemoryClient: NewMemoryClient().FailWith(errors.New("down"))}
	b := newBreakerForTest(inner, 1, 20*time.Millisecond)
	ctx := context.Background()

	_ = b.VerifyConnectivity(ctx)
	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}

	inner.FailWith(nil)
	time.Sleep(40 * time.Millisecond)

	if err := b.VerifyConnectivity(ctx); err != nil {
		t.Fatalf("VerifyConnectivity() after recovery = %v", err)
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q after a successful trial request, want closed", b.State())
	}
}

func TestBreakerClient_CancelledContextDoesNotTrip(t *testing.T) {
	inner := &countingClient{MemoryClient: NewMemoryClient().FailWith(context.Canceled)}
	b := newBreakerForTest(inner, 1, time.Hour)

	for i := 0; i < 3; i++ {
		_, _ = b.ExecuteWrite(context.Background(), "RETURN 1", nil)
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q, caller cancellations must not open the circuit", b.State())
	}
}

func TestExporter_PingReportsOpenCircuit(t *testing.T) {
	inner := NewMemoryClient().FailWith(errors.New("no route to host"))
	b := newBreakerForTest(inner, 2, time.Hour)
	e := NewExporter(b, 0, zerolog.Nop())
	ctx := context.Background()

	_ = e.Ping(ctx)
	_ = e.Ping(ctx)
	if err := e.Ping(ctx); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Ping() = %v, want ErrCircuitOpen", err)
	}
	if _, err := e.Export(ctx, testGraph()); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Export() error = %v, want ErrCircuitOpen", err)
	}

	if err := b.Close(ctx); err != nil || !inner.Closed() {
		t.Errorf("Close() = %v, closed = %v", err, inner.Closed())
	}
}
