// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package algorithms

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// AggregationPolicy controls how duplicate (user, item) events combine
// into one matrix entry.
type AggregationPolicy string

const (
	// AggregateSum adds duplicate values, rewarding repeated engagement.
	AggregateSum AggregationPolicy = "sum"
	// AggregateMax keeps the strongest event.
	AggregateMax AggregationPolicy = "max"
	// AggregateLast keeps the last event in input order.
	AggregateLast AggregationPolicy = "last"
)

// ParseAggregation converts a config string into a policy. Empty means sum.
func ParseAggregation(s string) (AggregationPolicy, error) {
	switch AggregationPolicy(s) {
	case "", AggregateSum:
		return AggregateSum, nil
	case AggregateMax:
		return AggregateMax, nil
	case AggregateLast:
		return AggregateLast, nil
	}
	return "", fmt.Errorf("unknown aggregation policy %q", s)
}

// TypeMultiplier returns the matrix weight of an interaction type.
func TypeMultiplier(interactionType string) float64 {
	switch interactionType {
	case "view":
		return 1.0
	case "join":
		return 2.0
	case "complete":
		return 3.0
	case "rate_positive":
		return 4.0
	case "bookmark":
		return 2.5
	default:
		return 1.0
	}
}

// LatentFactorConfig contains configuration for the latent factor model.
type LatentFactorConfig struct {
	// Factors is the latent dimension. SVD may use fewer when the matrix is small.
	Factors int

	// Regularization is the ridge penalty of the ALS solves.
	Regularization float64

	// Iterations is the number of ALS sweeps.
	Iterations int

	// Aggregation combines duplicate (user, item) events.
	Aggregation AggregationPolicy

	// Workers is the number of goroutines used for per-entity solves.
	// If <= 0, defaults to 4.
	Workers int

	// Seed for reproducible initialization.
	Seed int64
}

// DefaultLatentFactorConfig returns default configuration.
func DefaultLatentFactorConfig() LatentFactorConfig {
	return LatentFactorConfig{
		Factors:        20,
		Regularization: 0.1,
		Iterations:     20,
		Aggregation:    AggregateSum,
		Workers:        4,
		Seed:           42,
	}
}

// LatentFactorModel learns user and item embeddings plus bias terms from a
// weighted interaction matrix, by truncated SVD or by alternating least
// squares.
//
// The predicted affinity of a known pair is
//
//	global + userBias[u] + itemBias[i] + <userFactors[u], itemFactors[i]>
//
// Unknown users fall back to the item bias, unknown items to the user bias.
type LatentFactorModel struct {
	BaseAlgorithm
	config LatentFactorConfig
	logger zerolog.Logger

	// fit is replaced wholesale at the end of each training run.
	fit *latentFit
}

// latentFit is the learned state of one training run.
type latentFit struct {
	users *Index
	items *Index

	userFactors *mat.Dense
	itemFactors *mat.Dense
	userBias    []float64
	itemBias    []float64
	globalBias  float64

	interactionCount int
}

// NewLatentFactorModel creates an untrained model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLatentFactorModel(cfg LatentFactorConfig, logger zerolog.Logger) *LatentFactorModel {
	if cfg.Factors <= 0 {
		cfg.Factors = 20
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 20
	}
	if cfg.Regularization < 0 {
		cfg.Regularization = 0.1
	}
	if cfg.Aggregation == "" {
		cfg.Aggregation = AggregateSum
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	return &LatentFactorModel{
		BaseAlgorithm: NewBaseAlgorithm(recommend.ModelCollaborative),
		config:        cfg,
		logger:        logger.With().Str("component", "latent_factor").Logger(),
	}
}

// observation is one non-zero matrix entry.
type observation struct {
	row, col int
	value    float64
}

// interactionMatrix is the sparse aggregated user x item matrix of one
// training run. observed is in row-major order.
type interactionMatrix struct {
	rows, cols int
	observed   []observation
	byUser     [][]observation
	byItem     [][]observation
}

// buildMatrix aggregates interactions into sparse per-user and per-item
// observation lists. Entries that aggregate to zero are not observations.
func buildMatrix(interactions []recommend.Interaction, users, items *Index, policy AggregationPolicy) *interactionMatrix {
	nu, ni := users.Len(), items.Len()
	values := make(map[[2]int]float64, len(interactions))

	for i := range interactions {
		inter := &interactions[i]
		u, _ := users.Lookup(inter.UserID)
		it, _ := items.Lookup(inter.ItemID)
		v := TypeMultiplier(inter.Type) * inter.Weight
		key := [2]int{u, it}

		prev, seen := values[key]
		switch {
		case !seen, policy == AggregateLast:
			values[key] = v
		case policy == AggregateMax:
			values[key] = math.Max(prev, v)
		default:
			values[key] = prev + v
		}
	}

	m := &interactionMatrix{
		rows:     nu,
		cols:     ni,
		observed: make([]observation, 0, len(values)),
		byUser:   make([][]observation, nu),
		byItem:   make([][]observation, ni),
	}
	for key, v := range values {
		if v != 0 {
			m.observed = append(m.observed, observation{row: key[0], col: key[1], value: v})
		}
	}
	slices.SortFunc(m.observed, func(a, b observation) int {
		if a.row != b.row {
			return a.row - b.row
		}
		return a.col - b.col
	})
	for _, obs := range m.observed {
		m.byUser[obs.row] = append(m.byUser[obs.row], obs)
		m.byItem[obs.col] = append(m.byItem[obs.col], obs)
	}
	return m
}

// dense materializes the matrix. Only the SVD path needs it.
func (m *interactionMatrix) dense() *mat.Dense {
	d := mat.NewDense(m.rows, m.cols, nil)
	for _, obs := range m.observed {
		d.Set(obs.row, obs.col, obs.value)
	}
	return d
}

// Train fits the model. useFactorization selects truncated SVD; otherwise
// alternating least squares runs for the configured iterations.
//
// Too little data or a failed decomposition never returns an error: the
// model falls back to small random factors with zero biases.
func (m *LatentFactorModel) Train(ctx context.Context, interactions []recommend.Interaction, useFactorization bool) error {
	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	if len(interactions) == 0 {
		m.logger.Warn().Msg("No interactions, latent factor model stays untrained")
		return nil
	}

	start := time.Now()
	users, items := userItemIndexes(interactions)
	matrix := buildMatrix(interactions, users, items, m.config.Aggregation)

	fit := &latentFit{
		users:            users,
		items:            items,
		interactionCount: len(interactions),
	}
	if len(matrix.observed) > 0 {
		sum := 0.0
		for _, obs := range matrix.observed {
			sum += obs.value
		}
		fit.globalBias = sum / float64(len(matrix.observed))
	}

	rng := rand.New(rand.NewSource(m.config.Seed))
	mode := "als"
	if useFactorization {
		mode = "svd"
		if err := fit.factorize(matrix, m.config.Factors); err != nil {
			m.logger.Warn().Err(err).
				Int("users", users.Len()).
				Int("items", items.Len()).
				Msg("SVD failed, using random factors")
			fit.randomInit(rng, m.config.Factors)
		}
	} else {
		fit.randomInit(rng, m.config.Factors)
		if err := m.alternate(ctx, fit, matrix); err != nil {
			return err
		}
	}

	m.acquireTrainLock()
	m.fit = fit
	m.markTrained()
	m.releaseTrainLock()

	m.logger.Info().
		Str("mode", mode).
		Int("users", users.Len()).
		Int("items", items.Len()).
		Int("observed", len(matrix.observed)).
		Float64("global_bias", fit.globalBias).
		Dur("duration", time.Since(start)).
		Msg("Latent factor model trained")
	return nil
}

// randomInit draws N(0, 0.1^2) factors of width k and zeroes biases.
func (f *latentFit) randomInit(rng *rand.Rand, k int) {
	nu, ni := f.users.Len(), f.items.Len()
	f.userFactors = randomDense(rng, nu, k)
	f.itemFactors = randomDense(rng, ni, k)
	f.userBias = make([]float64, nu)
	f.itemBias = make([]float64, ni)
}

func randomDense(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64() * 0.1
	}
	return mat.NewDense(r, c, data)
}

// factorize computes a rank-k thin SVD and splits the singular values
// evenly between the user and item factors.
func (f *latentFit) factorize(matrix *interactionMatrix, factors int) error {
	nu, ni := matrix.rows, matrix.cols
	k := min(factors, min(nu, ni)-1)
	if k < 1 {
		return fmt.Errorf("rank %d too small for %dx%d matrix", k, nu, ni)
	}

	var svd mat.SVD
	if ok := svd.Factorize(matrix.dense(), mat.SVDThin); !ok {
		return fmt.Errorf("factorization did not converge")
	}
	sigma := svd.Values(nil)
	for _, s := range sigma[:k] {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("non-finite singular value")
		}
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	scale := make([]float64, k)
	for j := range scale {
		scale[j] = math.Sqrt(sigma[j])
	}
	diag := mat.NewDiagDense(k, scale)

	userFactors := mat.NewDense(nu, k, nil)
	userFactors.Mul(u.Slice(0, nu, 0, k), diag)
	itemFactors := mat.NewDense(ni, k, nil)
	itemFactors.Mul(v.Slice(0, ni, 0, k), diag)

	f.userFactors = userFactors
	f.itemFactors = itemFactors
	f.userBias = residualMeans(matrix.byUser, f.globalBias, nil)
	f.itemBias = residualMeans(matrix.byItem, f.globalBias, nil)
	return nil
}

// residualMeans returns, per row of groups, the mean of
// (value - global - offset(obs)) over its observations. Rows without
// observations get 0.
func residualMeans(groups [][]observation, global float64, offset func(observation) float64) []float64 {
	means := make([]float64, len(groups))
	for i, obs := range groups {
		if len(obs) == 0 {
			continue
		}
		sum := 0.0
		for _, o := range obs {
			r := o.value - global
			if offset != nil {
				r -= offset(o)
			}
			sum += r
		}
		means[i] = sum / float64(len(obs))
	}
	return means
}

// alternate runs the ALS sweeps: ridge solves for users then items, then
// the biases are refreshed as residual means against the full current
// prediction, the other side's bias included.
func (m *LatentFactorModel) alternate(ctx context.Context, f *latentFit, matrix *interactionMatrix) error {
	lambda := m.config.Regularization
	g := f.globalBias

	for iter := 0; iter < m.config.Iterations; iter++ {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}

		m.solveRows(matrix.byUser, f.userFactors, f.itemFactors, func(o observation) (int, float64) {
			return o.col, o.value - g - f.itemBias[o.col]
		}, lambda)

		m.solveRows(matrix.byItem, f.itemFactors, f.userFactors, func(o observation) (int, float64) {
			return o.row, o.value - g - f.userBias[o.row]
		}, lambda)

		f.userBias = residualMeans(matrix.byUser, g, func(o observation) float64 {
			return f.itemBias[o.col] + f.dot(o.row, o.col)
		})
		f.itemBias = residualMeans(matrix.byItem, g, func(o observation) float64 {
			return f.userBias[o.row] + f.dot(o.row, o.col)
		})

		if (iter+1)%5 == 0 {
			m.logger.Debug().
				Int("iteration", iter+1).
				Int("iterations", m.config.Iterations).
				Float64("rmse", f.rmse(matrix.observed)).
				Msg("ALS progress")
		}
	}
	return nil
}

// solveRows replaces each row of target that has observations with the
// ridge solution against the fixed matrix. target selects the fixed row
// and regression target of one observation. Rows are split across workers.
func (m *LatentFactorModel) solveRows(
	groups [][]observation,
	target, fixed *mat.Dense,
	sel func(observation) (int, float64),
	lambda float64,
) {
	n := len(groups)
	workers := m.config.Workers
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			for row := from; row < to; row++ {
				if len(groups[row]) == 0 {
					continue
				}
				if x, ok := ridgeSolve(groups[row], fixed, sel, lambda); ok {
					target.SetRow(row, x)
				}
			}
		}(start, end)
	}
	wg.Wait()
}

// ridgeSolve solves (FᵀF + λI) x = Fᵀb over the fixed rows F selected by
// the observations.
func ridgeSolve(obs []observation, fixed *mat.Dense, sel func(observation) (int, float64), lambda float64) ([]float64, bool) {
	_, k := fixed.Dims()
	a := mat.NewSymDense(k, nil)
	b := mat.NewVecDense(k, nil)

	for _, o := range obs {
		idx, y := sel(o)
		row := mat.NewVecDense(k, fixed.RawRowView(idx))
		a.SymRankOne(a, 1, row)
		b.AddScaledVec(b, y, row)
	}
	for f := 0; f < k; f++ {
		a.SetSym(f, f, a.At(f, f)+lambda)
	}

	x := mat.NewVecDense(k, nil)
	var chol mat.Cholesky
	if chol.Factorize(a) {
		if err := chol.SolveVecTo(x, b); err == nil {
			return x.RawVector().Data, true
		}
	}
	if err := x.SolveVec(a, b); err != nil {
		return nil, false
	}
	return x.RawVector().Data, true
}

func (f *latentFit) dot(u, i int) float64 {
	return floats.Dot(f.userFactors.RawRowView(u), f.itemFactors.RawRowView(i))
}

func (f *latentFit) rmse(observed []observation) float64 {
	if len(observed) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range observed {
		pred := f.globalBias + f.userBias[o.row] + f.itemBias[o.col] + f.dot(o.row, o.col)
		sum += (o.value - pred) * (o.value - pred)
	}
	return math.Sqrt(sum / float64(len(observed)))
}

// Predict returns one raw affinity per item ID, in input order. An
// untrained model returns zeros.
func (m *LatentFactorModel) Predict(userID string, itemIDs []string) []float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	scores := make([]float64, len(itemIDs))
	f := m.fit
	if f == nil {
		return scores
	}

	u, knownUser := f.users.Lookup(userID)
	for j, itemID := range itemIDs {
		i, knownItem := f.items.Lookup(itemID)
		switch {
		case knownUser && knownItem:
			scores[j] = f.globalBias + f.userBias[u] + f.itemBias[i] + f.dot(u, i)
		case knownItem:
			scores[j] = f.globalBias + f.itemBias[i]
		case knownUser:
			scores[j] = f.globalBias + f.userBias[u]
		default:
			scores[j] = f.globalBias
		}
	}
	return scores
}

// RecommendItems ranks candidates by predicted affinity, ties in input order.
func (m *LatentFactorModel) RecommendItems(userID string, candidates []string, topK int) []recommend.ScoredID {
	if len(candidates) == 0 {
		return []recommend.ScoredID{}
	}
	preds := m.Predict(userID, candidates)
	scored := make([]recommend.ScoredID, len(candidates))
	for j, id := range candidates {
		scored[j] = recommend.ScoredID{ID: id, Score: preds[j]}
	}
	return rankTopK(scored, topK)
}

// SimilarItems ranks all known items by factor dot product with itemID,
// excluding itemID itself. Unknown items and untrained models yield an
// empty list.
func (m *LatentFactorModel) SimilarItems(itemID string, topK int) []recommend.ScoredID {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	f := m.fit
	if f == nil {
		return []recommend.ScoredID{}
	}
	q, ok := f.items.Lookup(itemID)
	if !ok {
		return []recommend.ScoredID{}
	}

	query := f.itemFactors.RawRowView(q)
	scored := make([]recommend.ScoredID, 0, f.items.Len()-1)
	for i := 0; i < f.items.Len(); i++ {
		if i == q {
			continue
		}
		scored = append(scored, recommend.ScoredID{
			ID:    f.items.ID(i),
			Score: floats.Dot(query, f.itemFactors.RawRowView(i)),
		})
	}
	return rankTopK(scored, topK)
}

// UserEmbedding returns a copy of the user's factors, or a zero vector
// when the user is unknown.
func (m *LatentFactorModel) UserEmbedding(userID string) []float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	if m.fit == nil {
		return make([]float64, m.config.Factors)
	}
	return embeddingRow(m.fit.userFactors, m.fit.users, userID)
}

// ItemEmbedding returns a copy of the item's factors, or a zero vector.
func (m *LatentFactorModel) ItemEmbedding(itemID string) []float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	if m.fit == nil {
		return make([]float64, m.config.Factors)
	}
	return embeddingRow(m.fit.itemFactors, m.fit.items, itemID)
}

func embeddingRow(factors *mat.Dense, index *Index, id string) []float64 {
	_, k := factors.Dims()
	i, ok := index.Lookup(id)
	if !ok {
		return make([]float64, k)
	}
	return mat.Row(nil, i, factors)
}

// UserFactorDims returns the shape of the user factor table.
func (m *LatentFactorModel) UserFactorDims() (rows, cols int) {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	if m.fit == nil {
		return 0, 0
	}
	return m.fit.userFactors.Dims()
}

// GlobalBias returns the mean of the observed matrix entries.
func (m *LatentFactorModel) GlobalBias() float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	if m.fit == nil {
		return 0
	}
	return m.fit.globalBias
}

// Counts returns the number of interactions, users and items in the last
// training snapshot.
func (m *LatentFactorModel) Counts() (interactions, users, items int) {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	if m.fit == nil {
		return 0, 0, 0
	}
	return m.fit.interactionCount, m.fit.users.Len(), m.fit.items.Len()
}

// LatentSnapshot is the persisted form of a trained latent factor model.
type LatentSnapshot struct {
	Users            []string
	Items            []string
	Factors          int
	UserFactors      []float64
	ItemFactors      []float64
	UserBias         []float64
	ItemBias         []float64
	GlobalBias       float64
	InteractionCount int
}

// Snapshot returns a copy of the trained state, or nil when untrained.
func (m *LatentFactorModel) Snapshot() any {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	f := m.fit
	if f == nil {
		return nil
	}
	_, k := f.userFactors.Dims()
	return &LatentSnapshot{
		Users:            f.users.IDs(),
		Items:            f.items.IDs(),
		Factors:          k,
		UserFactors:      denseData(f.userFactors),
		ItemFactors:      denseData(f.itemFactors),
		UserBias:         slices.Clone(f.userBias),
		ItemBias:         slices.Clone(f.itemBias),
		GlobalBias:       f.globalBias,
		InteractionCount: f.interactionCount,
	}
}

// Restore replaces the model state with a stored snapshot.
func (m *LatentFactorModel) Restore(decode func(into any) error) error {
	var snap LatentSnapshot
	if err := decode(&snap); err != nil {
		return fmt.Errorf("decode latent snapshot: %w", err)
	}

	nu, ni, k := len(snap.Users), len(snap.Items), snap.Factors
	if k < 1 || nu == 0 || ni == 0 ||
		len(snap.UserFactors) != nu*k || len(snap.ItemFactors) != ni*k ||
		len(snap.UserBias) != nu || len(snap.ItemBias) != ni {
		return fmt.Errorf("latent snapshot has inconsistent dimensions")
	}

	users, items := NewIndex(snap.Users), NewIndex(snap.Items)
	if !slices.Equal(users.ids, snap.Users) || !slices.Equal(items.ids, snap.Items) {
		return fmt.Errorf("latent snapshot ids are not sorted and unique")
	}

	fit := &latentFit{
		users:            users,
		items:            items,
		userFactors:      mat.NewDense(nu, k, snap.UserFactors),
		itemFactors:      mat.NewDense(ni, k, snap.ItemFactors),
		userBias:         snap.UserBias,
		itemBias:         snap.ItemBias,
		globalBias:       snap.GlobalBias,
		interactionCount: snap.InteractionCount,
	}

	m.acquireTrainLock()
	defer m.releaseTrainLock()
	m.fit = fit
	m.markTrained()
	return nil
}

func denseData(d *mat.Dense) []float64 {
	r, c := d.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, d.RawRowView(i)...)
	}
	return out
}

var _ recommend.Persistable = (*LatentFactorModel)(nil)
