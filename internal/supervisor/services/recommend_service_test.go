// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// mockRecommendEngine is a mock implementation for testing.
type mockRecommendEngine struct {
	mu         sync.Mutex
	loadCalls  int
	loadErr    error
	stale      bool
	staleErr   error
	trainCalls int
	lastOpts   recommend.TrainOptions
	trainErr   error
	trainDelay time.Duration
}

func (m *mockRecommendEngine) LoadModels(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls++
	return m.loadErr
}

func (m *mockRecommendEngine) NeedsTraining(context.Context) (bool, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale, "never trained", m.staleErr
}

func (m *mockRecommendEngine) Train(ctx context.Context, opts recommend.TrainOptions) (*recommend.TrainResult, error) {
	m.mu.Lock()
	m.trainCalls++
	m.lastOpts = opts
	m.mu.Unlock()

	if m.trainDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.trainDelay):
		}
	}

	if m.trainErr != nil {
		return nil, m.trainErr
	}
	return &recommend.TrainResult{Trained: []string{recommend.ModelCollaborative}, ModelVersion: 1}, nil
}

func (m *mockRecommendEngine) getTrainCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trainCalls
}

func runFor(t *testing.T, svc *RecommendService, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
	}
}

func TestRecommendService_String(t *testing.T) {
	service := NewRecommendService(&mockRecommendEngine{}, RecommendServiceConfig{}, zerolog.Nop())

	if got := service.String(); got != "recommend-service" {
		t.Errorf("String() = %q, want %q", got, "recommend-service")
	}
}

func TestRecommendService_Defaults(t *testing.T) {
	service := NewRecommendService(&mockRecommendEngine{}, RecommendServiceConfig{}, zerolog.Nop())

	if service.config.CheckInterval != 5*time.Minute || service.config.TrainTimeout != 30*time.Minute {
		t.Errorf("config = %+v", service.config)
	}
}

func TestRecommendService_TrainOnStartup(t *testing.T) {
	tests := []struct {
		name      string
		onStartup bool
		stale     bool
		wantCalls int
	}{
		{"stale models are trained", true, true, 1},
		{"fresh snapshot skips training", true, false, 0},
		{"disabled", false, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockRecommendEngine{stale: tt.stale}
			cfg := RecommendServiceConfig{TrainOnStartup: tt.onStartup, CheckInterval: time.Hour}

			runFor(t, NewRecommendService(engine, cfg, zerolog.Nop()), 100*time.Millisecond)

			if got := engine.getTrainCalls(); got != tt.wantCalls {
				t.Errorf("Train() called %d times, want %d", got, tt.wantCalls)
			}
			if engine.loadCalls != 1 {
				t.Errorf("LoadModels() called %d times, want 1", engine.loadCalls)
			}
			if tt.wantCalls > 0 && !engine.lastOpts.Scheduled {
				t.Error("background training should enforce minimum data requirements")
			}
		})
	}
}

func TestRecommendService_ScheduledTraining(t *testing.T) {
	engine := &mockRecommendEngine{stale: true}
	cfg := RecommendServiceConfig{CheckInterval: 50 * time.Millisecond}

	runFor(t, NewRecommendService(engine, cfg, zerolog.Nop()), 130*time.Millisecond)

	// ticks at 50ms and 100ms
	if got := engine.getTrainCalls(); got < 2 {
		t.Errorf("Train() called %d times, want >= 2", got)
	}
}

func TestRecommendService_StalenessErrorSkipsTraining(t *testing.T) {
	engine := &mockRecommendEngine{stale: true, staleErr: errors.New("store closed")}
	cfg := RecommendServiceConfig{TrainOnStartup: true, CheckInterval: 20 * time.Millisecond}

	runFor(t, NewRecommendService(engine, cfg, zerolog.Nop()), 70*time.Millisecond)

	if got := engine.getTrainCalls(); got != 0 {
		t.Errorf("Train() called %d times, want 0", got)
	}
}

func TestRecommendService_LoadFailureIsNotFatal(t *testing.T) {
	engine := &mockRecommendEngine{loadErr: errors.New("corrupt snapshot"), stale: true}
	cfg := RecommendServiceConfig{TrainOnStartup: true, CheckInterval: time.Hour}

	runFor(t, NewRecommendService(engine, cfg, zerolog.Nop()), 50*time.Millisecond)

	if got := engine.getTrainCalls(); got != 1 {
		t.Errorf("Train() called %d times, want 1", got)
	}
}

func TestRecommendService_TrainingErrors(t *testing.T) {
	for _, trainErr := range []error{recommend.ErrInsufficientData, recommend.ErrTrainingInProgress, errors.New("diverged")} {
		engine := &mockRecommendEngine{stale: true, trainErr: trainErr}
		cfg := RecommendServiceConfig{TrainOnStartup: true, CheckInterval: time.Hour}

		// Serve keeps running despite the failure
		runFor(t, NewRecommendService(engine, cfg, zerolog.Nop()), 50*time.Millisecond)

		if got := engine.getTrainCalls(); got != 1 {
			t.Errorf("%v: Train() called %d times, want 1", trainErr, got)
		}
	}
}

func TestRecommendService_GracefulShutdown(t *testing.T) {
	engine := &mockRecommendEngine{stale: true, trainDelay: 50 * time.Millisecond}
	cfg := RecommendServiceConfig{TrainOnStartup: true, CheckInterval: time.Hour}
	service := NewRecommendService(engine, cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- service.Serve(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not complete in time")
	}
}
