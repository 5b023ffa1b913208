// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package recommend

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/mentormatch/internal/metrics"
)

// EvaluateFunc scores per-user recommendation lists against held-out items
// at cutoff k and returns named metrics such as "ndcg@10".
type EvaluateFunc func(model string, recs, truth map[string][]string, k int) map[string]float64

// Engine is the entry point of the recommendation service. It validates and
// caches requests, delegates scoring to a Hybrid, and orchestrates training,
// holdout evaluation and model persistence. It is safe for concurrent use;
// requests keep being served from the previous models while training runs.
type Engine struct {
	config *Config
	hybrid Hybrid
	filter *CandidateFilter
	logger zerolog.Logger

	cache *expirable.LRU[string, *Response]

	source   InteractionSource
	store    ModelStore
	evaluate EvaluateFunc

	// trainMu serializes training runs; Train uses TryLock.
	trainMu sync.Mutex

	statusMu     sync.RWMutex
	trainStatus  TrainingStatus
	trainedCount int

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64
}

// Response is the result of a recommendation request.
type Response struct {
	RequestID       string           `json:"request_id"`
	Kind            Kind             `json:"kind"`
	Method          Method           `json:"method"`
	UserID          string           `json:"user_id"`
	Items           []Recommendation `json:"recommendations"`
	TotalCandidates int              `json:"total_candidates"`
	CacheHit        bool             `json:"cache_hit"`
	LatencyMS       int64            `json:"latency_ms"`
	ModelVersion    int              `json:"model_version"`
	Timestamp       time.Time        `json:"timestamp"`
}

// EngineMetrics contains request counters since startup.
type EngineMetrics struct {
	RequestCount int64 `json:"request_count"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	ErrorCount   int64 `json:"error_count"`
	CacheEntries int   `json:"cache_entries"`
}

// TrainOptions selects what a training run does.
type TrainOptions struct {
	// Models to train. Empty trains collaborative and graph.
	Models []string `json:"models,omitempty"`

	// UseFactorization overrides the configured SVD/ALS choice when set.
	UseFactorization *bool `json:"use_factorization,omitempty"`

	// Epochs and LearningRate override the graph configuration when positive.
	Epochs       int     `json:"epochs,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`

	// Scheduled runs enforce the minimum data requirements per model.
	Scheduled bool `json:"-"`
}

// TrainResult reports the outcome of a training run.
type TrainResult struct {
	Trained      []string                      `json:"trained"`
	Skipped      map[string]string             `json:"skipped,omitempty"`
	Failed       map[string]string             `json:"failed,omitempty"`
	Evaluation   map[string]map[string]float64 `json:"evaluation,omitempty"`
	Interactions int                           `json:"interactions"`
	DurationMS   int64                         `json:"duration_ms"`
	ModelVersion int                           `json:"model_version"`
}

// NewEngine creates an engine over hybrid. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, hybrid Hybrid, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hybrid == nil {
		return nil, fmt.Errorf("%w: hybrid is required", ErrInvalidConfig)
	}

	filter, err := NewCandidateFilter(cfg.FilterExpression)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config: cfg.Clone(),
		hybrid: hybrid,
		filter: filter,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
	if cfg.Cache.Enabled {
		e.cache = expirable.NewLRU[string, *Response](cfg.Cache.Size, nil, cfg.Cache.TTL)
	}
	return e, nil
}

// SetInteractionSource sets where training data comes from.
func (e *Engine) SetInteractionSource(src InteractionSource) {
	e.source = src
}

// SetModelStore enables snapshot persistence after training and LoadModels.
func (e *Engine) SetModelStore(store ModelStore) {
	e.store = store
}

// SetEvaluator enables holdout evaluation when the configuration asks for it.
func (e *Engine) SetEvaluator(fn EvaluateFunc) {
	e.evaluate = fn
}

// Recommend returns at most TopK explained recommendations of req.Kind.
// Candidates of another kind, or rejected by the configured filter, are
// dropped before scoring.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	kind, err := ParseKind(string(req.Kind))
	if err != nil {
		e.fail("unknown", "invalid_kind")
		return nil, err
	}
	req.Kind = kind

	if req.Method == "" {
		req.Method = e.config.Method
	}
	if req.Method, err = ParseMethod(string(req.Method)); err != nil {
		e.fail(string(kind), "invalid_method")
		return nil, err
	}

	req.TopK = e.clampK(req.TopK)
	req.Candidates = e.prepareCandidates(req)

	requestID := uuid.New().String()
	logger := e.logger.With().
		Str("request_id", requestID).
		Str("user_id", req.UserID).
		Str("kind", string(kind)).
		Str("method", string(req.Method)).
		Logger()

	key := e.cacheKey(&req)
	if resp := e.cached(key); resp != nil {
		resp.RequestID = requestID
		resp.LatencyMS = time.Since(start).Milliseconds()
		logger.Debug().Msg("cache hit")
		metrics.RecordRecommendation(string(kind), string(req.Method), len(resp.Items), time.Since(start))
		return resp, nil
	}

	recs, err := e.hybrid.Recommend(ctx, req.Method, req)
	if err != nil {
		e.fail(string(kind), "score")
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	recs = e.applyMinScore(recs)

	resp := &Response{
		RequestID:       requestID,
		Kind:            kind,
		Method:          req.Method,
		UserID:          req.UserID,
		Items:           recs,
		TotalCandidates: len(req.Candidates),
		LatencyMS:       time.Since(start).Milliseconds(),
		ModelVersion:    e.modelVersion(),
		Timestamp:       time.Now(),
	}
	if e.cache != nil && key != "" {
		e.cache.Add(key, copyResponse(resp))
	}

	metrics.RecordRecommendation(string(kind), string(req.Method), len(recs), time.Since(start))
	logger.Debug().
		Int("candidates", resp.TotalCandidates).
		Int("returned", len(recs)).
		Int64("latency_ms", resp.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

func (e *Engine) fail(kind, reason string) {
	e.errorCount.Add(1)
	metrics.RecordRecommendError(kind, reason)
}

// clampK applies the default and the upper bound to a requested k.
func (e *Engine) clampK(k int) int {
	if k <= 0 {
		return e.config.Limits.DefaultK
	}
	return min(k, e.config.Limits.MaxK)
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareCandidates(req Request) []Candidate {
	out := make([]Candidate, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if c.Kind == req.Kind {
			out = append(out, c)
		}
	}

	kept, err := e.filter.Apply(req.Profile, out)
	if err != nil {
		e.logger.Warn().Err(err).Str("filter", e.filter.Expression()).Msg("candidate filter failed for some candidates")
	}
	return kept
}

func (e *Engine) applyMinScore(recs []Recommendation) []Recommendation {
	minScore := e.config.Limits.MinScore
	if minScore <= 0 {
		return recs
	}
	out := recs[:0]
	for _, r := range recs {
		if r.Score >= minScore {
			out = append(out, r)
		}
	}
	return out
}

// cacheKey hashes everything that determines a response. It returns "" when
// caching is disabled or the request cannot be encoded.
func (e *Engine) cacheKey(req *Request) string {
	if e.cache == nil {
		return ""
	}
	payload, err := json.Marshal(struct {
		Profile    UserProfile `json:"p"`
		Candidates []Candidate `json:"c"`
	}{req.Profile, req.Candidates})
	if err != nil {
		return ""
	}
	return fmt.Sprintf("rec:%s:%s:%s:%d:%x", req.Kind, req.Method, req.UserID, req.TopK, sha256.Sum256(payload))
}

func (e *Engine) cached(key string) *Response {
	if e.cache == nil || key == "" {
		return nil
	}
	resp, ok := e.cache.Get(key)
	metrics.RecordCacheLookup(ok)
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}
	e.cacheHits.Add(1)

	out := copyResponse(resp)
	out.CacheHit = true
	return out
}

func copyResponse(resp *Response) *Response {
	out := *resp
	out.Items = slices.Clone(resp.Items)
	return &out
}

// SimilarItems returns up to k items most similar to itemID in latent
// factor space.
func (e *Engine) SimilarItems(itemID string, k int) []ScoredID {
	similar := e.hybrid.SimilarItems(itemID, e.clampK(k))
	if similar == nil {
		return []ScoredID{}
	}
	return similar
}

// Ingest appends interactions to the interaction source. The source must
// also implement InteractionSink.
func (e *Engine) Ingest(ctx context.Context, interactions []Interaction) error {
	sink, ok := e.source.(InteractionSink)
	if !ok {
		return ErrNoInteractionSource
	}
	if err := sink.Append(ctx, interactions); err != nil {
		return fmt.Errorf("append interactions: %w", err)
	}
	metrics.RecordInteractionsIngested(len(interactions))
	return nil
}

// Train loads interactions from the source and trains the selected models.
// It returns ErrTrainingInProgress immediately if another run is active.
// Scheduled runs skip models whose data requirements are not met and
// return ErrInsufficientData when every model was skipped.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) Train(ctx context.Context, opts TrainOptions) (*TrainResult, error) {
	if !e.trainMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.source == nil {
		return nil, ErrNoInteractionSource
	}

	models, err := trainModels(opts.Models)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	e.setTraining(true)
	defer e.setTraining(false)

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	interactions, err := e.source.ListInteractions(trainCtx)
	if err != nil {
		e.recordTrainingError(err)
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	users, items := countEntities(interactions)

	e.logger.Info().
		Int("interactions", len(interactions)).
		Int("users", users).
		Int("items", items).
		Strs("models", models).
		Bool("scheduled", opts.Scheduled).
		Msg("starting model training")

	result := &TrainResult{
		Skipped:      make(map[string]string),
		Failed:       make(map[string]string),
		Interactions: len(interactions),
	}

	runnable := make([]string, 0, len(models))
	for _, model := range models {
		if reason := e.insufficient(model, len(interactions), users, opts.Scheduled); reason != "" {
			result.Skipped[model] = reason
			metrics.RecordTraining(model, 0, true, nil)
			e.logger.Warn().Str("model", model).Str("reason", reason).Msg("skipping model training")
			continue
		}
		runnable = append(runnable, model)
	}
	if len(runnable) == 0 {
		err := fmt.Errorf("%w: no model met its data requirements", ErrInsufficientData)
		e.recordTrainingError(err)
		return result, err
	}

	trainSet := interactions
	var heldOut map[string][]string
	if e.config.Training.EvaluationHoldout && e.evaluate != nil {
		trainSet, heldOut = Holdout(interactions)
	}

	errs := e.trainAll(trainCtx, runnable, trainSet, opts, result)

	if len(heldOut) > 0 && len(result.Trained) > 0 {
		result.Evaluation = e.evaluateHoldout(result.Trained, trainSet, heldOut)
	}

	if len(result.Trained) > 0 {
		e.completeTraining(start, len(interactions), users, items)
		e.persist(ctx, result.Trained, start)
		if e.cache != nil {
			e.cache.Purge()
		}
	}

	result.DurationMS = time.Since(start).Milliseconds()
	result.ModelVersion = e.modelVersion()

	if err := errors.Join(errs...); err != nil {
		e.recordTrainingError(err)
		return result, err
	}

	e.logger.Info().
		Strs("trained", result.Trained).
		Int("version", result.ModelVersion).
		Int64("duration_ms", result.DurationMS).
		Msg("model training complete")
	return result, nil
}

func trainModels(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return []string{ModelCollaborative, ModelGraph}, nil
	}
	models := make([]string, 0, len(requested))
	for _, m := range requested {
		switch m {
		case ModelCollaborative, ModelGraph:
			if !slices.Contains(models, m) {
				models = append(models, m)
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownModel, m)
		}
	}
	return models, nil
}

// insufficient returns a reason when model cannot be trained on the data.
func (e *Engine) insufficient(model string, interactions, users int, scheduled bool) string {
	if interactions == 0 {
		return "no interactions"
	}
	if !scheduled {
		return ""
	}

	minInteractions, minUsers := e.config.Training.CollaborativeMinInteractions, e.config.Training.CollaborativeMinUsers
	if model == ModelGraph {
		minInteractions, minUsers = e.config.Training.GraphMinInteractions, e.config.Training.GraphMinUsers
	}
	switch {
	case interactions < minInteractions:
		return fmt.Sprintf("%d interactions < %d required", interactions, minInteractions)
	case users < minUsers:
		return fmt.Sprintf("%d users < %d required", users, minUsers)
	}
	return ""
}

// trainAll trains the models concurrently. A failing model does not stop
// the others.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Engine) trainAll(ctx context.Context, models []string, interactions []Interaction, opts TrainOptions, result *TrainResult) []error {
	useFactorization := e.config.Collaborative.UseFactorization
	if opts.UseFactorization != nil {
		useFactorization = *opts.UseFactorization
	}
	epochs := e.config.Graph.Epochs
	if opts.Epochs > 0 {
		epochs = opts.Epochs
	}
	learningRate := e.config.Graph.LearningRate
	if opts.LearningRate > 0 {
		learningRate = opts.LearningRate
	}

	errs := make([]error, len(models))
	var g errgroup.Group
	for i, model := range models {
		g.Go(func() error {
			start := time.Now()
			var err error
			switch model {
			case ModelCollaborative:
				err = e.hybrid.TrainCollaborative(ctx, interactions, useFactorization)
			case ModelGraph:
				err = e.hybrid.TrainGraph(ctx, interactions, epochs, learningRate)
			}
			metrics.RecordTraining(model, time.Since(start), false, err)
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	status := e.hybrid.ModelStatus()
	for i, model := range models {
		metrics.SetModelReady(model, status.Ready(model))
		if errs[i] != nil {
			result.Failed[model] = errs[i].Error()
			e.logger.Error().Err(errs[i]).Str("model", model).Msg("model training failed")
			continue
		}
		result.Trained = append(result.Trained, model)
	}
	return errs
}

// evaluateHoldout ranks every training item for each held-out user with
// each trained model and scores the rankings.
func (e *Engine) evaluateHoldout(models []string, train []Interaction, heldOut map[string][]string) map[string]map[string]float64 {
	k := e.config.Training.EvaluationK
	if k <= 0 {
		k = e.config.Limits.DefaultK
	}

	catalog := make([]string, 0)
	seen := make(map[string]struct{})
	for i := range train {
		if _, ok := seen[train[i].ItemID]; !ok {
			seen[train[i].ItemID] = struct{}{}
			catalog = append(catalog, train[i].ItemID)
		}
	}

	primary := fmt.Sprintf("ndcg@%d", k)
	out := make(map[string]map[string]float64, len(models))
	for _, model := range models {
		recs := make(map[string][]string, len(heldOut))
		for user := range heldOut {
			ranked := e.hybrid.RankByModel(model, user, catalog, k)
			ids := make([]string, len(ranked))
			for i, r := range ranked {
				ids[i] = r.ID
			}
			recs[user] = ids
		}

		scores := e.evaluate(model, recs, heldOut, k)
		for name, v := range scores {
			metrics.RecordEvaluation(model, name, v)
		}
		if v, ok := scores[primary]; ok {
			e.hybrid.UpdatePerformance(model, v)
		}
		out[model] = scores
	}
	return out
}

// persist saves a snapshot of every trained model. Failures are logged;
// the in-memory models stay in use.
func (e *Engine) persist(ctx context.Context, trained []string, start time.Time) {
	if e.store == nil {
		return
	}

	status := e.Status().Training
	for _, p := range e.hybrid.Persistables() {
		if !slices.Contains(trained, p.Name()) {
			continue
		}
		snapshot := p.Snapshot()
		if snapshot == nil {
			continue
		}
		info := SnapshotInfo{
			Version:            status.ModelVersion,
			TrainedAt:          status.LastTrainedAt,
			InteractionCount:   status.InteractionCount,
			UserCount:          status.UserCount,
			ItemCount:          status.ItemCount,
			TrainingDurationMS: time.Since(start).Milliseconds(),
		}
		if err := e.store.SaveModel(ctx, p.Name(), snapshot, info); err != nil {
			e.logger.Error().Err(err).Str("model", p.Name()).Msg("failed to save model snapshot")
		}
	}
}

// LoadModels restores the latest stored snapshot of every persistable
// model. Models without a snapshot are left untouched.
func (e *Engine) LoadModels(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	var loaded SnapshotInfo
	restored := 0
	for _, p := range e.hybrid.Persistables() {
		var info SnapshotInfo
		err := p.Restore(func(into any) error {
			var err error
			info, err = e.store.LoadLatestModel(ctx, p.Name(), into)
			return err
		})
		if errors.Is(err, ErrNotFound) {
			e.logger.Debug().Str("model", p.Name()).Msg("no stored snapshot")
			continue
		}
		if err != nil {
			return fmt.Errorf("restore %s: %w", p.Name(), err)
		}

		restored++
		metrics.SetModelReady(p.Name(), true)
		if info.TrainedAt.After(loaded.TrainedAt) {
			loaded = info
		}
		e.logger.Info().
			Str("model", p.Name()).
			Int("version", info.Version).
			Time("trained_at", info.TrainedAt).
			Msg("model snapshot restored")
	}

	if restored > 0 {
		e.statusMu.Lock()
		e.trainStatus.LastTrainedAt = loaded.TrainedAt
		e.trainStatus.InteractionCount = loaded.InteractionCount
		e.trainStatus.UserCount = loaded.UserCount
		e.trainStatus.ItemCount = loaded.ItemCount
		e.trainStatus.ModelVersion = max(e.trainStatus.ModelVersion, loaded.Version)
		e.trainedCount = loaded.InteractionCount
		e.statusMu.Unlock()
	}
	return nil
}

// NeedsTraining reports whether the models are missing, older than the
// retrain interval, or behind by at least the configured number of new
// interactions. The reason is empty when no training is needed.
func (e *Engine) NeedsTraining(ctx context.Context) (bool, string, error) {
	e.statusMu.RLock()
	lastTrained := e.trainStatus.LastTrainedAt
	trainedCount := e.trainedCount
	e.statusMu.RUnlock()

	if lastTrained.IsZero() {
		return true, "never trained", nil
	}
	if interval := e.config.Training.RetrainInterval; interval > 0 && time.Since(lastTrained) >= interval {
		return true, "model age exceeds retrain interval", nil
	}

	if threshold := e.config.Training.RetrainNewInteractions; threshold > 0 && e.source != nil {
		count, err := e.source.CountInteractions(ctx)
		if err != nil {
			return false, "", fmt.Errorf("count interactions: %w", err)
		}
		if count-trainedCount >= threshold {
			return true, fmt.Sprintf("%d new interactions", count-trainedCount), nil
		}
	}
	return false, "", nil
}

func (e *Engine) setTraining(active bool) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.trainStatus.IsTraining = active
	if active {
		e.trainStatus.LastError = ""
	}
}

func (e *Engine) recordTrainingError(err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.trainStatus.LastError = err.Error()
}

func (e *Engine) completeTraining(start time.Time, interactions, users, items int) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.trainStatus.ModelVersion++
	e.trainStatus.LastTrainedAt = time.Now()
	e.trainStatus.LastTrainingDurationMS = time.Since(start).Milliseconds()
	e.trainStatus.InteractionCount = interactions
	e.trainStatus.UserCount = users
	e.trainStatus.ItemCount = items
	e.trainedCount = interactions
}

func (e *Engine) modelVersion() int {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.trainStatus.ModelVersion
}

// Status returns model readiness, training state and fusion settings.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	training := e.trainStatus
	e.statusMu.RUnlock()

	return Status{
		Models:   e.hybrid.ModelStatus(),
		Training: training,
		Method:   e.config.Method,
		Weights:  e.hybrid.Weights(),
	}
}

// GetMetrics returns request counters since startup.
func (e *Engine) GetMetrics() EngineMetrics {
	m := EngineMetrics{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
	}
	if e.cache != nil {
		m.CacheEntries = e.cache.Len()
	}
	return m
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// countEntities returns the number of distinct users and items.
func countEntities(interactions []Interaction) (users, items int) {
	u := make(map[string]struct{})
	it := make(map[string]struct{})
	for i := range interactions {
		u[interactions[i].UserID] = struct{}{}
		it[interactions[i].ItemID] = struct{}{}
	}
	return len(u), len(it)
}
