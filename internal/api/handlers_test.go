// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mentormatch/internal/graphsink"
	"github.com/tomtom215/mentormatch/internal/middleware"
	"github.com/tomtom215/mentormatch/internal/models"
	"github.com/tomtom215/mentormatch/internal/recommend"
	"github.com/tomtom215/mentormatch/internal/recommend/graph"
)

// mockEngine records calls and returns canned results.
type mockEngine struct {
	mu sync.Mutex

	recommendReq  recommend.Request
	recommendResp *recommend.Response
	recommendErr  error

	trainOpts   recommend.TrainOptions
	trainResult *recommend.TrainResult
	trainErr    error

	ingested  []recommend.Interaction
	ingestErr error

	similar     []recommend.ScoredID
	similarID   string
	similarK    int
	status      recommend.Status
	engineStats recommend.EngineMetrics
}

func (m *mockEngine) Recommend(_ context.Context, req recommend.Request) (*recommend.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendReq = req
	if m.recommendErr != nil {
		return nil, m.recommendErr
	}
	if m.recommendResp != nil {
		return m.recommendResp, nil
	}
	return &recommend.Response{RequestID: "req-1", Kind: req.Kind, UserID: req.UserID}, nil
}

func (m *mockEngine) Train(_ context.Context, opts recommend.TrainOptions) (*recommend.TrainResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainOpts = opts
	return m.trainResult, m.trainErr
}

func (m *mockEngine) Ingest(_ context.Context, interactions []recommend.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ingestErr != nil {
		return m.ingestErr
	}
	m.ingested = append(m.ingested, interactions...)
	return nil
}

func (m *mockEngine) SimilarItems(itemID string, k int) []recommend.ScoredID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.similarID, m.similarK = itemID, k
	return m.similar
}

func (m *mockEngine) Status() recommend.Status {
	return m.status
}

func (m *mockEngine) GetMetrics() recommend.EngineMetrics {
	return m.engineStats
}

var _ Engine = (*mockEngine)(nil)

func newTestRouter(t *testing.T, engine Engine, opts ...HandlerOption) http.Handler {
	t.Helper()
	chiMw := NewChiMiddlewareFromSecurity(nil, 0, 0, true)
	return NewRouter(NewHandler(engine, opts...), chiMw).Setup()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp models.APIResponse
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
		}
	}
	return w, resp
}

func decodeData(t *testing.T, resp models.APIResponse, dst interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{recommendResp: &recommend.Response{
		RequestID: "abc",
		Kind:      recommend.KindMentor,
		UserID:    "u1",
		Items:     []recommend.Recommendation{{ItemID: "m1", Score: 0.9, Explanation: "Expert in your interests"}},
		CacheHit:  true,
	}}
	h := newTestRouter(t, engine)

	body := `{"user_id":"u1","profile":{"interests":["go"]},"candidates":[{"kind":"mentor","mentor":{"id":"m1"}}],"top_k":5,"method":"weighted"}`
	w, resp := doRequest(t, h, http.MethodPost, "/api/v1/recommend/mentors", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	if resp.Status != "success" || !resp.Metadata.Cached || resp.Metadata.RequestID != "abc" {
		t.Errorf("metadata = %+v", resp.Metadata)
	}

	var got recommend.Response
	decodeData(t, resp, &got)
	if len(got.Items) != 1 || got.Items[0].ItemID != "m1" {
		t.Errorf("items = %+v", got.Items)
	}

	req := engine.recommendReq
	if req.Kind != recommend.KindMentor || req.UserID != "u1" || req.TopK != 5 || req.Method != recommend.MethodWeighted {
		t.Errorf("engine request = %+v", req)
	}
	if len(req.Candidates) != 1 || req.Candidates[0].ID() != "m1" {
		t.Errorf("candidates = %+v", req.Candidates)
	}
	if len(req.Profile.Interests) != 1 {
		t.Errorf("profile = %+v", req.Profile)
	}
}

func TestRecommend_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		body       string
		engineErr  error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown kind",
			path:       "/api/v1/recommend/courses",
			body:       `{"user_id":"u1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidKind,
		},
		{
			name:       "missing user",
			path:       "/api/v1/recommend/session",
			body:       `{"candidates":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "invalid method",
			path:       "/api/v1/recommend/group",
			body:       `{"user_id":"u1","method":"random"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "top_k out of range",
			path:       "/api/v1/recommend/group",
			body:       `{"user_id":"u1","top_k":5000}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "malformed JSON",
			path:       "/api/v1/recommend/mentor",
			body:       `{"user_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "empty body",
			path:       "/api/v1/recommend/mentor",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "engine failure",
			path:       "/api/v1/recommend/mentor",
			body:       `{"user_id":"u1"}`,
			engineErr:  errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestRouter(t, &mockEngine{recommendErr: tt.engineErr})
			w, resp := doRequest(t, h, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if resp.Status != "error" || resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestRecommendStatus(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{
		status: recommend.Status{
			Models: recommend.ModelStatus{Content: true, Collaborative: true},
			Method: recommend.MethodContextAware,
		},
		engineStats: recommend.EngineMetrics{RequestCount: 7, CacheHits: 2},
	}
	pm := middleware.NewPerformanceMonitor(100, time.Second, zerolog.Nop())
	h := newTestRouter(t, engine, WithPerformanceMonitor(pm))

	doRequest(t, h, http.MethodPost, "/api/v1/recommend/mentor", `{"user_id":"u1"}`)
	w, resp := doRequest(t, h, http.MethodGet, "/api/v1/recommend/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got models.RecommendStatus
	decodeData(t, resp, &got)
	if !got.Models.Collaborative || got.Models.Graph || got.Method != recommend.MethodContextAware {
		t.Errorf("status = %+v", got.Status)
	}
	if got.Metrics.RequestCount != 7 {
		t.Errorf("metrics = %+v", got.Metrics)
	}

	found := false
	for _, ep := range got.Endpoints {
		if ep.Endpoint == "POST /api/v1/recommend/{kind}" && ep.RequestCount == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("endpoints = %+v, want the recommend route", got.Endpoints)
	}
}

func TestTrain(t *testing.T) {
	t.Parallel()

	t.Run("empty body trains with defaults", func(t *testing.T) {
		t.Parallel()
		engine := &mockEngine{trainResult: &recommend.TrainResult{Trained: []string{"collaborative", "graph"}, ModelVersion: 1}}
		w, resp := doRequest(t, newTestRouter(t, engine), http.MethodPost, "/api/v1/recommend/train", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
		}
		var got recommend.TrainResult
		decodeData(t, resp, &got)
		if got.ModelVersion != 1 || len(got.Trained) != 2 {
			t.Errorf("result = %+v", got)
		}
		if len(engine.trainOpts.Models) != 0 || engine.trainOpts.UseFactorization != nil {
			t.Errorf("options = %+v, want zero", engine.trainOpts)
		}
	})

	t.Run("options are passed through", func(t *testing.T) {
		t.Parallel()
		engine := &mockEngine{trainResult: &recommend.TrainResult{}}
		body := `{"models":["graph"],"use_factorization":false,"epochs":20,"learning_rate":0.05}`
		w, _ := doRequest(t, newTestRouter(t, engine), http.MethodPost, "/api/v1/recommend/train", body)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
		}
		opts := engine.trainOpts
		if len(opts.Models) != 1 || opts.Models[0] != "graph" || opts.Epochs != 20 || opts.LearningRate != 0.05 {
			t.Errorf("options = %+v", opts)
		}
		if opts.UseFactorization == nil || *opts.UseFactorization {
			t.Errorf("UseFactorization = %v, want false", opts.UseFactorization)
		}
	})

	errTests := []struct {
		name       string
		body       string
		result     *recommend.TrainResult
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown model", `{"models":["content"]}`, nil, nil, http.StatusBadRequest, CodeValidation},
		{"learning rate too large", `{"learning_rate":3}`, nil, nil, http.StatusBadRequest, CodeValidation},
		{"already training", `{}`, nil, recommend.ErrTrainingInProgress, http.StatusConflict, CodeTrainingInProgress},
		{"not enough data", `{}`, &recommend.TrainResult{Skipped: map[string]string{"graph": "too few"}}, recommend.ErrInsufficientData, http.StatusUnprocessableEntity, CodeInsufficientData},
		{"no source", `{}`, nil, recommend.ErrNoInteractionSource, http.StatusServiceUnavailable, CodeUnavailable},
		{"partial failure", `{}`, &recommend.TrainResult{Trained: []string{"graph"}, Failed: map[string]string{"collaborative": "diverged"}}, errors.New("collaborative: diverged"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := &mockEngine{trainResult: tt.result, trainErr: tt.err}
			w, resp := doRequest(t, newTestRouter(t, engine), http.MethodPost, "/api/v1/recommend/train", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want %s", resp.Error, tt.wantCode)
			}
			if tt.result != nil && resp.Data == nil {
				t.Error("partial result should be returned as data")
			}
		})
	}
}

func TestTrain_Timeout(t *testing.T) {
	t.Parallel()

	engine := &deadlineEngine{mockEngine: &mockEngine{}}
	h := newTestRouter(t, engine, WithTrainTimeout(time.Minute))
	w, _ := doRequest(t, h, http.MethodPost, "/api/v1/recommend/train", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !engine.hadDeadline {
		t.Error("train context should carry the configured deadline")
	}
}

type deadlineEngine struct {
	*mockEngine
	hadDeadline bool
}

func (d *deadlineEngine) Train(ctx context.Context, _ recommend.TrainOptions) (*recommend.TrainResult, error) {
	_, d.hadDeadline = ctx.Deadline()
	return &recommend.TrainResult{}, nil
}

func TestInteractions(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	h := newTestRouter(t, engine)
	body := `{"interactions":[
		{"user_id":"u1","item_id":"m1","interaction_type":"mentorship_accepted","weight":2},
		{"user_id":"u2","item_id":"s1","interaction_type":"session_completed","weight":1.5,"timestamp":"2026-01-02T03:04:05Z"}
	]}`
	w, resp := doRequest(t, h, http.MethodPost, "/api/v1/interactions", body)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", w.Code, w.Body.String())
	}

	var got models.IngestResult
	decodeData(t, resp, &got)
	if got.Accepted != 2 || len(engine.ingested) != 2 {
		t.Fatalf("accepted = %d, ingested = %d", got.Accepted, len(engine.ingested))
	}
	if engine.ingested[0].Timestamp.IsZero() {
		t.Error("missing timestamp should default to receive time")
	}
	if want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC); !engine.ingested[1].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", engine.ingested[1].Timestamp, want)
	}
}

func TestInteractions_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		ingestErr  error
		wantStatus int
	}{
		{"empty list", `{"interactions":[]}`, nil, http.StatusBadRequest},
		{"missing item", `{"interactions":[{"user_id":"u1","weight":1}]}`, nil, http.StatusBadRequest},
		{"negative weight", `{"interactions":[{"user_id":"u1","item_id":"m1","weight":-1}]}`, nil, http.StatusBadRequest},
		{"no store", `{"interactions":[{"user_id":"u1","item_id":"m1","weight":1}]}`, recommend.ErrNoInteractionSource, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, _ := doRequest(t, newTestRouter(t, &mockEngine{ingestErr: tt.ingestErr}), http.MethodPost, "/api/v1/interactions", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSimilarItems(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{similar: []recommend.ScoredID{{ID: "m2", Score: 0.8}, {ID: "m3", Score: 0.5}}}
	h := newTestRouter(t, engine)

	w, resp := doRequest(t, h, http.MethodGet, "/api/v1/items/m1/similar?k=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got models.SimilarItems
	decodeData(t, resp, &got)
	if got.ItemID != "m1" || got.Count != 2 || got.Items[0].ID != "m2" {
		t.Errorf("similar = %+v", got)
	}
	if engine.similarID != "m1" || engine.similarK != 2 {
		t.Errorf("engine called with %q, %d", engine.similarID, engine.similarK)
	}

	doRequest(t, h, http.MethodGet, "/api/v1/items/m1/similar", "")
	if engine.similarK != defaultSimilarK {
		t.Errorf("default k = %d, want %d", engine.similarK, defaultSimilarK)
	}

	w, resp = doRequest(t, h, http.MethodGet, "/api/v1/items/m1/similar?k=500", "")
	if w.Code != http.StatusBadRequest || resp.Error.Code != CodeValidation {
		t.Errorf("k=500: status = %d, error = %+v", w.Code, resp.Error)
	}
}

func TestGraphExport(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		w, resp := doRequest(t, newTestRouter(t, &mockEngine{}), http.MethodPost, "/api/v1/graph/export", "")
		if w.Code != http.StatusServiceUnavailable || resp.Error.Code != CodeUnavailable {
			t.Errorf("status = %d, error = %+v", w.Code, resp.Error)
		}
	})

	t.Run("exports the graph", func(t *testing.T) {
		t.Parallel()
		client := graphsink.NewMemoryClient()
		exporter := graphsink.NewExporter(client, 0, zerolog.Nop())
		source := func(context.Context) (*graph.Graph, error) {
			events := graph.Events{
				Mentorships: []graph.MentorshipRequest{{MenteeID: "u1", MentorID: "m1", Status: graph.MentorshipAccepted}},
			}
			return events.Graph(zerolog.Nop()), nil
		}

		h := newTestRouter(t, &mockEngine{}, WithGraphExport(exporter, source))
		w, resp := doRequest(t, h, http.MethodPost, "/api/v1/graph/export", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
		}

		var got models.GraphExport
		decodeData(t, resp, &got)
		if got.Nodes[string(graph.NodeUser)] != 1 || got.Nodes[string(graph.NodeMentor)] != 1 {
			t.Errorf("nodes = %v", got.Nodes)
		}
		if got.Edges[string(graph.EdgeMentoredBy)] != 1 {
			t.Errorf("edges = %v", got.Edges)
		}
		if got.Statements == 0 || got.Statements != len(client.Writes()) {
			t.Errorf("statements = %d, writes = %d", got.Statements, len(client.Writes()))
		}
	})

	t.Run("source failure", func(t *testing.T) {
		t.Parallel()
		exporter := graphsink.NewExporter(graphsink.NewMemoryClient(), 0, zerolog.Nop())
		source := func(context.Context) (*graph.Graph, error) { return nil, errors.New("store closed") }
		w, resp := doRequest(t, newTestRouter(t, &mockEngine{}, WithGraphExport(exporter, source)), http.MethodPost, "/api/v1/graph/export", "")
		if w.Code != http.StatusInternalServerError || resp.Error.Code != CodeInternal {
			t.Errorf("status = %d, error = %+v", w.Code, resp.Error)
		}
		if strings.Contains(w.Body.String(), "store closed") {
			t.Error("internal error text leaked to the client")
		}
	})

	t.Run("sink failure", func(t *testing.T) {
		t.Parallel()
		client := graphsink.NewMemoryClient().FailWith(errors.New("bolt down"))
		exporter := graphsink.NewExporter(client, 0, zerolog.Nop())
		source := func(context.Context) (*graph.Graph, error) {
			events := graph.Events{Mentorships: []graph.MentorshipRequest{{MenteeID: "u1", MentorID: "m1", Status: graph.MentorshipAccepted}}}
			return events.Graph(zerolog.Nop()), nil
		}
		w, _ := doRequest(t, newTestRouter(t, &mockEngine{}, WithGraphExport(exporter, source)), http.MethodPost, "/api/v1/graph/export", "")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{status: recommend.Status{Models: recommend.ModelStatus{Content: true}}}

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		h := newTestRouter(t, engine, WithHealthCheck("storage", func(context.Context) error { return nil }))
		w, resp := doRequest(t, h, http.MethodGet, "/health", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var got models.HealthStatus
		decodeData(t, resp, &got)
		if got.Status != "healthy" || got.Checks["storage"] != "ok" || got.Version != Version {
			t.Errorf("health = %+v", got)
		}
		if !got.Models[recommend.ModelContent] || got.Models[recommend.ModelGraph] {
			t.Errorf("models = %v", got.Models)
		}
	})

	t.Run("degraded", func(t *testing.T) {
		t.Parallel()
		h := newTestRouter(t, engine,
			WithHealthCheck("storage", func(context.Context) error { return nil }),
			WithHealthCheck("neo4j", func(context.Context) error { return fmt.Errorf("dial tcp: refused") }),
		)
		_, resp := doRequest(t, h, http.MethodGet, "/health", "")
		var got models.HealthStatus
		decodeData(t, resp, &got)
		if got.Status != "degraded" || !strings.HasPrefix(got.Checks["neo4j"], "error:") {
			t.Errorf("health = %+v", got)
		}
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("wrap: %w", recommend.ErrInvalidKind), http.StatusBadRequest, CodeInvalidKind},
		{recommend.ErrInvalidMethod, http.StatusBadRequest, CodeValidation},
		{recommend.ErrUnknownModel, http.StatusBadRequest, CodeValidation},
		{recommend.ErrTrainingInProgress, http.StatusConflict, CodeTrainingInProgress},
		{recommend.ErrInsufficientData, http.StatusUnprocessableEntity, CodeInsufficientData},
		{recommend.ErrNoInteractionSource, http.StatusServiceUnavailable, CodeUnavailable},
		{ErrGraphExportDisabled, http.StatusServiceUnavailable, CodeUnavailable},
		{recommend.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{errors.New("anything else"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		status, code, msg := classifyError(tt.err)
		if status != tt.wantStatus || code != tt.wantCode || msg == "" {
			t.Errorf("classifyError(%v) = %d, %s, %q", tt.err, status, code, msg)
		}
	}
}
