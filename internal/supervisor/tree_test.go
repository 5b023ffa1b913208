// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// stubService runs until cancelled, failing the first failFirst starts.
type stubService struct {
	name      string
	failFirst int32
	starts    atomic.Int32
}

func (s *stubService) Serve(ctx context.Context) error {
	if n := s.starts.Add(1); n <= s.failFirst {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return s.name }

var _ suture.Service = (*stubService)(nil)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDefaultTreeConfig(t *testing.T) {
	config := DefaultTreeConfig()

	if config.FailureThreshold != 5.0 || config.FailureDecay != 30.0 {
		t.Errorf("failure params = %v / %v", config.FailureThreshold, config.FailureDecay)
	}
	if config.FailureBackoff != 15*time.Second || config.ShutdownTimeout != 10*time.Second {
		t.Errorf("durations = %v / %v", config.FailureBackoff, config.ShutdownTimeout)
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.config.FailureThreshold != 5.0 || tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("zero values should take defaults, got %+v", tree.config)
	}
	if tree.config.FailureBackoff != time.Second {
		t.Errorf("explicit FailureBackoff overwritten: %v", tree.config.FailureBackoff)
	}
}

func TestSupervisorTree_StartsBothLayers(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	trainer := &stubService{name: "trainer"}
	server := &stubService{name: "server"}
	tree.AddTrainingService(trainer)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	time.Sleep(100 * time.Millisecond)

	if trainer.starts.Load() < 1 || server.starts.Load() < 1 {
		t.Errorf("starts: trainer=%d server=%d", trainer.starts.Load(), server.starts.Load())
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestSupervisorTree_TrainingFailureIsIsolated(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	trainer := &stubService{name: "trainer", failFirst: 2}
	server := &stubService{name: "server"}
	tree.AddTrainingService(trainer)
	tree.AddAPIService(server)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	go func() { _ = tree.Serve(ctx) }()
	time.Sleep(200 * time.Millisecond)

	if got := trainer.starts.Load(); got < 3 {
		t.Errorf("trainer starts = %d, want >= 3", got)
	}
	if got := server.starts.Load(); got != 1 {
		t.Errorf("server starts = %d, want 1 (never restarted)", got)
	}
}

func TestSupervisorTree_RemoveTrainingService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	trainer := &stubService{name: "trainer"}
	token := tree.AddTrainingService(trainer)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go func() { _ = tree.Serve(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := tree.RemoveTrainingService(token); err != nil {
		t.Fatalf("RemoveTrainingService() error = %v", err)
	}
}

func TestTreeConfig_NegativeValuesTakeDefaults(t *testing.T) {
	got := TreeConfig{FailureThreshold: -1, FailureBackoff: -time.Second}.withDefaults()
	if got != DefaultTreeConfig() {
		t.Errorf("withDefaults() = %+v, want %+v", got, DefaultTreeConfig())
	}
}

func TestSupervisorTree_LayerNames(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), DefaultTreeConfig())
	for sup, want := range map[*suture.Supervisor]string{
		tree.root:     RootName,
		tree.training: TrainingName,
		tree.api:      APIName,
	} {
		if sup.String() != want {
			t.Errorf("supervisor name = %q, want %q", sup.String(), want)
		}
	}
}
