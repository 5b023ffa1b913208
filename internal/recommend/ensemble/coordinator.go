// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package ensemble

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/mentormatch/internal/recommend"
	"github.com/tomtom215/mentormatch/internal/recommend/algorithms"
	"github.com/tomtom215/mentormatch/internal/recommend/reranking"
)

// Config contains coordinator parameters.
type Config struct {
	// Weights are the default fusion weights for the weighted method.
	Weights recommend.Weights

	// Adaptive rebalances Weights between the models that have an
	// evaluation history, by their mean recent performance.
	Adaptive bool

	// DiversityLambda is the MMR relevance weight; 1 disables reranking.
	DiversityLambda float64
}

// Coordinator orchestrates the content, collaborative and graph models and
// fuses their scores. It is safe for concurrent use; training swaps model
// state atomically so requests keep being served during retraining.
type Coordinator struct {
	config        Config
	collaborative *algorithms.LatentFactorModel
	graph         *algorithms.GraphEmbeddingModel
	reranker      *reranking.MMR
	performance   *performanceTracker
	logger        zerolog.Logger
}

// New creates a coordinator over the given models.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, collaborative *algorithms.LatentFactorModel, graph *algorithms.GraphEmbeddingModel, logger zerolog.Logger) *Coordinator {
	lambda := cfg.DiversityLambda
	if lambda == 0 {
		lambda = 1
	}
	return &Coordinator{
		config:        cfg,
		collaborative: collaborative,
		graph:         graph,
		reranker:      reranking.NewMMR(lambda),
		performance:   newPerformanceTracker(),
		logger:        logger.With().Str("component", "ensemble").Logger(),
	}
}

// TrainCollaborative trains the latent factor model.
func (c *Coordinator) TrainCollaborative(ctx context.Context, interactions []recommend.Interaction, useFactorization bool) error {
	c.logger.Info().
		Int("interactions", len(interactions)).
		Bool("factorization", useFactorization).
		Msg("training collaborative model")

	if err := c.collaborative.Train(ctx, interactions, useFactorization); err != nil {
		return fmt.Errorf("train collaborative: %w", err)
	}
	return nil
}

// TrainGraph builds the interaction graph and trains the graph embedding
// model. The configured batch size is used.
func (c *Coordinator) TrainGraph(ctx context.Context, interactions []recommend.Interaction, epochs int, learningRate float64) error {
	c.logger.Info().
		Int("interactions", len(interactions)).
		Int("epochs", epochs).
		Float64("learning_rate", learningRate).
		Msg("training graph model")

	if err := c.graph.Train(ctx, interactions, epochs, learningRate, 0); err != nil {
		return fmt.Errorf("train graph: %w", err)
	}
	return nil
}

// request is the per-call view of the eligible candidates.
type request struct {
	recommend.Request
	ids    []string
	byID   map[string]recommend.Candidate
	status recommend.ModelStatus
}

func (c *Coordinator) prepare(req recommend.Request) request {
	r := request{
		Request: req,
		ids:     make([]string, 0, len(req.Candidates)),
		byID:    make(map[string]recommend.Candidate, len(req.Candidates)),
		status:  c.ModelStatus(),
	}
	for _, cand := range req.Candidates {
		if !algorithms.Eligible(cand) {
			continue
		}
		id := cand.ID()
		if _, dup := r.byID[id]; dup {
			continue
		}
		r.byID[id] = cand
		r.ids = append(r.ids, id)
	}
	return r
}

// candidates returns the candidates of ids in ids order.
func (r *request) candidates(ids []string) []recommend.Candidate {
	out := make([]recommend.Candidate, 0, len(ids))
	for _, id := range ids {
		if cand, ok := r.byID[id]; ok {
			out = append(out, cand)
		}
	}
	return out
}

// Recommend scores, fuses, diversifies and explains the candidates of req.
// An empty method means context-aware. Results hold at most TopK entries
// (all eligible candidates when TopK <= 0) with scores in [0, 1].
func (c *Coordinator) Recommend(ctx context.Context, method recommend.Method, req recommend.Request) ([]recommend.Recommendation, error) {
	if method == "" {
		method = recommend.MethodContextAware
	}

	r := c.prepare(req)
	if len(r.ids) == 0 {
		return []recommend.Recommendation{}, nil
	}

	k := req.TopK
	if k <= 0 || k > len(r.ids) {
		k = len(r.ids)
	}

	var ranked []recommend.ScoredID
	switch method {
	case recommend.MethodCascading:
		ranked = c.cascade(&r, k)

	case recommend.MethodWeighted, recommend.MethodContextAware:
		scores, err := c.score(ctx, &r)
		if err != nil {
			return nil, err
		}
		weights := c.fusionWeights()
		if method == recommend.MethodContextAware {
			weights = ContextWeights(req.Profile.Streak, req.Kind)
		}
		ranked = Weighted(r.ids, scores, weights, r.status)

	default:
		return nil, fmt.Errorf("%w: %q", recommend.ErrInvalidMethod, method)
	}

	recs := make([]recommend.Recommendation, len(ranked))
	for i, s := range ranked {
		recs[i] = recommend.Recommendation{
			ItemID:      s.ID,
			Score:       s.Score,
			Explanation: algorithms.Explain(req.Profile, r.byID[s.ID]),
		}
	}

	if c.reranker.Lambda() < 1 && len(recs) > 1 {
		vectors := make(map[string][]float64, len(recs))
		for _, rec := range recs {
			vectors[rec.ItemID] = algorithms.VectorizeCandidate(r.byID[rec.ItemID])
		}
		recs = c.reranker.Rerank(ctx, recs, vectors, k)
	} else if len(recs) > k {
		recs = recs[:k]
	}

	c.logger.Debug().
		Str("user_id", req.UserID).
		Str("kind", string(req.Kind)).
		Str("method", string(method)).
		Int("candidates", len(r.ids)).
		Int("results", len(recs)).
		Bool("collaborative_ready", r.status.Collaborative).
		Bool("graph_ready", r.status.Graph).
		Msg("hybrid recommendation")

	return recs, nil
}

// score runs the ready models in parallel and normalizes their outputs.
func (c *Coordinator) score(ctx context.Context, r *request) (ModelScores, error) {
	var scores ModelScores
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		scores.Content = Normalize(algorithms.ContentScores(r.Profile, r.candidates(r.ids)))
		return nil
	})

	if r.status.Collaborative {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores.Collaborative = Normalize(c.collaborative.RecommendItems(r.UserID, r.ids, 0))
			return nil
		})
	}

	if r.status.Graph {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores.Graph = Normalize(c.graph.RecommendItems(r.UserID, r.ids, 0))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ModelScores{}, fmt.Errorf("score models: %w", err)
	}
	return scores, nil
}

func (c *Coordinator) cascade(r *request, k int) []recommend.ScoredID {
	var graphStage, collaborativeStage Stage
	if r.status.Graph {
		graphStage = func(ids []string, n int) []recommend.ScoredID {
			return c.graph.RecommendItems(r.UserID, ids, n)
		}
	}
	if r.status.Collaborative {
		collaborativeStage = func(ids []string, n int) []recommend.ScoredID {
			return c.collaborative.RecommendItems(r.UserID, ids, n)
		}
	}
	content := func(ids []string) []recommend.ScoredID {
		return algorithms.ContentScores(r.Profile, r.candidates(ids))
	}

	return Cascade(r.ids, graphStage, collaborativeStage, content, k)
}

// RankByModel returns the raw ranking of the collaborative or graph model.
// Content needs a profile and is not supported here.
func (c *Coordinator) RankByModel(model, userID string, candidateIDs []string, k int) []recommend.ScoredID {
	switch model {
	case recommend.ModelCollaborative:
		return c.collaborative.RecommendItems(userID, candidateIDs, k)
	case recommend.ModelGraph:
		return c.graph.RecommendItems(userID, candidateIDs, k)
	}
	return []recommend.ScoredID{}
}

// SimilarItems ranks known items by latent factor similarity to itemID.
func (c *Coordinator) SimilarItems(itemID string, k int) []recommend.ScoredID {
	return c.collaborative.SimilarItems(itemID, k)
}

// ModelStatus reports model readiness. Content scoring is always ready.
func (c *Coordinator) ModelStatus() recommend.ModelStatus {
	cf, gm := c.collaborative.State(), c.graph.State()
	return recommend.ModelStatus{
		Content:       true,
		Collaborative: cf == recommend.StateTrained,
		Graph:         gm == recommend.StateTrained,
		States: map[string]recommend.ModelState{
			recommend.ModelContent:       recommend.StateTrained,
			recommend.ModelCollaborative: cf,
			recommend.ModelGraph:         gm,
		},
	}
}

// UpdatePerformance records an evaluation metric for a model.
func (c *Coordinator) UpdatePerformance(model string, value float64) {
	if !c.performance.record(model, value) {
		c.logger.Warn().Str("model", model).Msg("ignoring performance update for unknown model")
		return
	}
	c.logger.Debug().Str("model", model).Float64("value", value).Msg("updated model performance")
}

// Performance returns the recent metric history of a model.
func (c *Coordinator) Performance(model string) []float64 {
	return c.performance.recent(model)
}

// AdaptiveWeights derives weights from mean recent performance. ok is false
// until some model has a positive history.
func (c *Coordinator) AdaptiveWeights() (recommend.Weights, bool) {
	return c.performance.weights(c.config.Weights)
}

func (c *Coordinator) fusionWeights() recommend.Weights {
	if c.config.Adaptive {
		if w, ok := c.performance.weights(c.config.Weights); ok {
			return w
		}
	}
	return c.config.Weights.Normalize()
}

// Weights returns the weights the weighted method currently uses.
func (c *Coordinator) Weights() map[string]float64 {
	return c.fusionWeights().ToMap()
}

// Persistables returns the models that can be snapshotted.
func (c *Coordinator) Persistables() []recommend.Persistable {
	return []recommend.Persistable{c.collaborative, c.graph}
}

var _ recommend.Hybrid = (*Coordinator)(nil)
