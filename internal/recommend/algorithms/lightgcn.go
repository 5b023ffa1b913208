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
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// GraphEmbeddingConfig contains configuration for the graph embedding model.
type GraphEmbeddingConfig struct {
	// EmbeddingDim is the width of every node embedding.
	EmbeddingDim int

	// Layers is the number of propagation layers.
	Layers int

	// LearningRate is the Adam step size used when Train is given none.
	LearningRate float64

	// Epochs is used when Train is given none.
	Epochs int

	// BatchSize is the number of BPR samples per epoch.
	BatchSize int

	// Seed for reproducible initialization and sampling.
	Seed int64
}

// DefaultGraphEmbeddingConfig returns default configuration.
func DefaultGraphEmbeddingConfig() GraphEmbeddingConfig {
	return GraphEmbeddingConfig{
		EmbeddingDim: 64,
		Layers:       3,
		LearningRate: 0.001,
		Epochs:       50,
		BatchSize:    1024,
		Seed:         42,
	}
}

// Adam hyperparameters.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// GraphEmbeddingModel learns user and item embeddings on the bipartite
// interaction graph with LightGCN propagation and a BPR ranking loss.
//
// Users occupy nodes [0, users) and items [users, users+items). Each
// propagation layer multiplies by the symmetrically normalized adjacency
// D^-1/2 A D^-1/2, and the final embedding is the mean of layers 0..L.
// Because propagation is linear and A is symmetric, the loss gradient with
// respect to the base table is the same propagation applied to the
// gradient of the final embeddings.
type GraphEmbeddingModel struct {
	BaseAlgorithm
	config GraphEmbeddingConfig
	logger zerolog.Logger

	// graph is replaced wholesale by BuildGraph and Train.
	graph *embeddingGraph
}

// NewGraphEmbeddingModel creates an untrained model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGraphEmbeddingModel(cfg GraphEmbeddingConfig, logger zerolog.Logger) *GraphEmbeddingModel {
	def := DefaultGraphEmbeddingConfig()
	if cfg.EmbeddingDim <= 0 {
		cfg.EmbeddingDim = def.EmbeddingDim
	}
	if cfg.Layers < 0 {
		cfg.Layers = def.Layers
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}

	return &GraphEmbeddingModel{
		BaseAlgorithm: NewBaseAlgorithm(recommend.ModelGraph),
		config:        cfg,
		logger:        logger.With().Str("component", "graph_embedding").Logger(),
	}
}

// pair is one observed (user, item) interaction in index space.
type pair struct {
	user, item int
}

// adjacency is the normalized adjacency in compressed sparse row form.
// Duplicate edges are kept as separate entries.
type adjacency struct {
	rowPtr []int
	cols   []int
	vals   []float64
}

// embeddingGraph is the graph, base embedding table and propagated
// embeddings of one build.
type embeddingGraph struct {
	users *Index
	items *Index
	pairs []pair
	adj   adjacency

	base  *mat.Dense // (users+items) x dim
	final *mat.Dense // propagated; nil until trained

	interactionCount int
}

func (g *embeddingGraph) numNodes() int {
	return g.users.Len() + g.items.Len()
}

// buildEmbeddingGraph indexes the interactions, builds the normalized
// bidirectional adjacency and initializes the base table.
func buildEmbeddingGraph(interactions []recommend.Interaction, dim int, rng *rand.Rand) *embeddingGraph {
	users, items := userItemIndexes(interactions)
	nu := users.Len()

	pairs := make([]pair, 0, len(interactions))
	for i := range interactions {
		u, _ := users.Lookup(interactions[i].UserID)
		it, _ := items.Lookup(interactions[i].ItemID)
		pairs = append(pairs, pair{user: u, item: it})
	}

	g := &embeddingGraph{
		users:            users,
		items:            items,
		pairs:            pairs,
		adj:              normalizedAdjacency(pairs, nu, nu+items.Len()),
		interactionCount: len(interactions),
	}
	g.base = xavierTables(rng, nu, items.Len(), dim)
	return g
}

// normalizedAdjacency builds D^-1/2 A D^-1/2 with one edge pair per
// interaction. Item nodes are offset by nu.
func normalizedAdjacency(pairs []pair, nu, n int) adjacency {
	degree := make([]float64, n)
	counts := make([]int, n)
	for _, p := range pairs {
		degree[p.user]++
		degree[nu+p.item]++
		counts[p.user]++
		counts[nu+p.item]++
	}

	rowPtr := make([]int, n+1)
	for i := 0; i < n; i++ {
		rowPtr[i+1] = rowPtr[i] + counts[i]
	}
	cols := make([]int, rowPtr[n])
	vals := make([]float64, rowPtr[n])
	next := slices.Clone(rowPtr[:n])

	add := func(row, col int) {
		cols[next[row]] = col
		vals[next[row]] = 1 / math.Sqrt(degree[row]*degree[col])
		next[row]++
	}
	for _, p := range pairs {
		add(p.user, nu+p.item)
		add(nu+p.item, p.user)
	}

	return adjacency{rowPtr: rowPtr, cols: cols, vals: vals}
}

// xavierTables draws the user and item tables from U(-limit, limit) with
// limit = sqrt(6 / (rows + dim)) computed per table.
func xavierTables(rng *rand.Rand, nu, ni, dim int) *mat.Dense {
	data := make([]float64, (nu+ni)*dim)
	fill := func(from, rows int) {
		limit := math.Sqrt(6 / float64(rows+dim))
		for i := from * dim; i < (from+rows)*dim; i++ {
			data[i] = (rng.Float64()*2 - 1) * limit
		}
	}
	fill(0, nu)
	fill(nu, ni)
	return mat.NewDense(nu+ni, dim, data)
}

// multiply computes dst = adj * src row by row.
func (a adjacency) multiply(dst, src *mat.Dense) {
	dst.Zero()
	rows := len(a.rowPtr) - 1
	for row := 0; row < rows; row++ {
		out := dst.RawRowView(row)
		for e := a.rowPtr[row]; e < a.rowPtr[row+1]; e++ {
			floats.AddScaled(out, a.vals[e], src.RawRowView(a.cols[e]))
		}
	}
}

// propagate returns (1/(L+1)) * sum_{l=0..L} adj^l * x.
func (a adjacency) propagate(x *mat.Dense, layers int) *mat.Dense {
	r, c := x.Dims()
	sum := mat.DenseCopyOf(x)
	cur := mat.DenseCopyOf(x)
	next := mat.NewDense(r, c, nil)
	for l := 0; l < layers; l++ {
		a.multiply(next, cur)
		sum.Add(sum, next)
		cur, next = next, cur
	}
	sum.Scale(1/float64(layers+1), sum)
	return sum
}

// BuildGraph indexes interactions and initializes the embedding tables.
// The model moves to the graph-built state and cannot recommend until trained.
func (g *GraphEmbeddingModel) BuildGraph(interactions []recommend.Interaction) {
	rng := rand.New(rand.NewSource(g.config.Seed))
	built := buildEmbeddingGraph(interactions, g.config.EmbeddingDim, rng)

	g.acquireTrainLock()
	defer g.releaseTrainLock()
	g.graph = built
	g.setState(recommend.StateGraphBuilt)
}

// Train builds the graph from interactions and runs BPR training. Zero
// epochs, learningRate or batchSize fall back to the configured values.
// A previously trained model keeps serving until the new one is ready.
func (g *GraphEmbeddingModel) Train(ctx context.Context, interactions []recommend.Interaction, epochs int, learningRate float64, batchSize int) error {
	if ContextCancelled(ctx) {
		return ctx.Err()
	}
	if len(interactions) == 0 {
		g.logger.Warn().Msg("No interactions, graph embedding model stays untrained")
		return nil
	}
	if epochs <= 0 {
		epochs = g.config.Epochs
	}
	if learningRate <= 0 {
		learningRate = g.config.LearningRate
	}
	if batchSize <= 0 {
		batchSize = g.config.BatchSize
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(g.config.Seed))
	graph := buildEmbeddingGraph(interactions, g.config.EmbeddingDim, rng)

	g.acquireTrainLock()
	if g.state != recommend.StateTrained {
		g.graph = graph
		g.setState(recommend.StateGraphBuilt)
	}
	g.releaseTrainLock()

	opt := newAdam(graph.base)
	samples := min(batchSize, len(graph.pairs))
	var loss float64

	for epoch := 0; epoch < epochs; epoch++ {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}

		final := graph.adj.propagate(graph.base, g.config.Layers)
		grad := mat.NewDense(graph.numNodes(), g.config.EmbeddingDim, nil)
		loss = bprStep(rng, graph, final, grad, samples)

		baseGrad := graph.adj.propagate(grad, g.config.Layers)
		opt.step(graph.base, baseGrad, learningRate)

		if (epoch+1)%10 == 0 {
			g.logger.Debug().
				Int("epoch", epoch+1).
				Int("epochs", epochs).
				Float64("loss", loss).
				Msg("Graph embedding training progress")
		}
	}

	graph.final = graph.adj.propagate(graph.base, g.config.Layers)

	g.acquireTrainLock()
	g.graph = graph
	g.markTrained()
	g.releaseTrainLock()

	g.logger.Info().
		Int("users", graph.users.Len()).
		Int("items", graph.items.Len()).
		Int("edges", len(graph.adj.cols)).
		Int("epochs", epochs).
		Float64("loss", loss).
		Dur("duration", time.Since(start)).
		Msg("Graph embedding model trained")
	return nil
}

// bprStep samples BPR triples, accumulates the gradient of the mean loss
// with respect to the final embeddings into grad and returns the loss.
// Negatives are uniform over all items without rejecting observed ones.
func bprStep(rng *rand.Rand, graph *embeddingGraph, final, grad *mat.Dense, samples int) float64 {
	nu, ni := graph.users.Len(), graph.items.Len()
	dim := final.RawMatrix().Cols
	scale := 1 / float64(samples)
	diff := make([]float64, dim)

	var loss float64
	for s := 0; s < samples; s++ {
		p := graph.pairs[rng.Intn(len(graph.pairs))]
		neg := rng.Intn(ni)

		u := final.RawRowView(p.user)
		pos := final.RawRowView(nu + p.item)
		negVec := final.RawRowView(nu + neg)

		x := floats.Dot(u, pos) - floats.Dot(u, negVec)
		loss += softplus(-x)

		// d/dx of -log(sigmoid(x)) is -sigmoid(-x).
		c := -sigmoid(-x) * scale
		floats.SubTo(diff, pos, negVec)
		floats.AddScaled(grad.RawRowView(p.user), c, diff)
		floats.AddScaled(grad.RawRowView(nu+p.item), c, u)
		floats.AddScaled(grad.RawRowView(nu+neg), -c, u)
	}
	return loss * scale
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// softplus computes log(1 + e^x) without overflow.
func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

// adam holds the first and second moment estimates for one parameter table.
type adam struct {
	m, v []float64
	t    int
}

func newAdam(params *mat.Dense) *adam {
	n := len(params.RawMatrix().Data)
	return &adam{m: make([]float64, n), v: make([]float64, n)}
}

func (a *adam) step(params, grad *mat.Dense, lr float64) {
	a.t++
	p := params.RawMatrix().Data
	g := grad.RawMatrix().Data
	c1 := 1 - math.Pow(adamBeta1, float64(a.t))
	c2 := 1 - math.Pow(adamBeta2, float64(a.t))
	for i := range p {
		a.m[i] = adamBeta1*a.m[i] + (1-adamBeta1)*g[i]
		a.v[i] = adamBeta2*a.v[i] + (1-adamBeta2)*g[i]*g[i]
		mHat := a.m[i] / c1
		vHat := a.v[i] / c2
		p[i] -= lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}

// RecommendItems scores the candidates known to the trained graph and
// returns the top k by embedding dot product. Unknown users and untrained
// models yield an empty list.
func (g *GraphEmbeddingModel) RecommendItems(userID string, candidates []string, topK int) []recommend.ScoredID {
	g.acquirePredictLock()
	defer g.releasePredictLock()

	if g.state != recommend.StateTrained || g.graph == nil || g.graph.final == nil {
		return []recommend.ScoredID{}
	}
	graph := g.graph
	u, ok := graph.users.Lookup(userID)
	if !ok {
		return []recommend.ScoredID{}
	}

	nu := graph.users.Len()
	userVec := graph.final.RawRowView(u)
	scored := make([]recommend.ScoredID, 0, len(candidates))
	for _, id := range candidates {
		i, ok := graph.items.Lookup(id)
		if !ok {
			continue
		}
		scored = append(scored, recommend.ScoredID{
			ID:    id,
			Score: floats.Dot(userVec, graph.final.RawRowView(nu+i)),
		})
	}
	return rankTopK(scored, topK)
}

// Counts returns the number of interactions, users and items in the
// current graph.
func (g *GraphEmbeddingModel) Counts() (interactions, users, items int) {
	g.acquirePredictLock()
	defer g.releasePredictLock()
	if g.graph == nil {
		return 0, 0, 0
	}
	return g.graph.interactionCount, g.graph.users.Len(), g.graph.items.Len()
}

// GraphSnapshot is the persisted form of a trained graph embedding model.
type GraphSnapshot struct {
	Users     []string
	Items     []string
	PairUsers []int32
	PairItems []int32
	Dim       int
	Layers    int
	Base      []float64
}

// Snapshot returns a copy of the trained state, or nil when untrained.
func (g *GraphEmbeddingModel) Snapshot() any {
	g.acquirePredictLock()
	defer g.releasePredictLock()

	if g.state != recommend.StateTrained || g.graph == nil {
		return nil
	}
	graph := g.graph
	snap := &GraphSnapshot{
		Users:     graph.users.IDs(),
		Items:     graph.items.IDs(),
		PairUsers: make([]int32, len(graph.pairs)),
		PairItems: make([]int32, len(graph.pairs)),
		Dim:       g.config.EmbeddingDim,
		Layers:    g.config.Layers,
		Base:      slices.Clone(graph.base.RawMatrix().Data),
	}
	for i, p := range graph.pairs {
		snap.PairUsers[i] = int32(p.user)
		snap.PairItems[i] = int32(p.item)
	}
	return snap
}

// Restore rebuilds the graph from a stored snapshot and recomputes the
// propagated embeddings.
func (g *GraphEmbeddingModel) Restore(decode func(into any) error) error {
	var snap GraphSnapshot
	if err := decode(&snap); err != nil {
		return fmt.Errorf("decode graph snapshot: %w", err)
	}

	nu, ni := len(snap.Users), len(snap.Items)
	switch {
	case snap.Dim != g.config.EmbeddingDim:
		return fmt.Errorf("graph snapshot dim %d does not match configured %d", snap.Dim, g.config.EmbeddingDim)
	case snap.Layers != g.config.Layers:
		return fmt.Errorf("graph snapshot layers %d does not match configured %d", snap.Layers, g.config.Layers)
	case nu == 0 || ni == 0 || len(snap.Base) != (nu+ni)*snap.Dim:
		return fmt.Errorf("graph snapshot has inconsistent dimensions")
	case len(snap.PairUsers) == 0 || len(snap.PairUsers) != len(snap.PairItems):
		return fmt.Errorf("graph snapshot has inconsistent edges")
	}

	users, items := NewIndex(snap.Users), NewIndex(snap.Items)
	if !slices.Equal(users.ids, snap.Users) || !slices.Equal(items.ids, snap.Items) {
		return fmt.Errorf("graph snapshot ids are not sorted and unique")
	}

	pairs := make([]pair, len(snap.PairUsers))
	for i := range pairs {
		u, it := int(snap.PairUsers[i]), int(snap.PairItems[i])
		if u < 0 || u >= nu || it < 0 || it >= ni {
			return fmt.Errorf("graph snapshot edge %d out of range", i)
		}
		pairs[i] = pair{user: u, item: it}
	}

	graph := &embeddingGraph{
		users:            users,
		items:            items,
		pairs:            pairs,
		adj:              normalizedAdjacency(pairs, nu, nu+ni),
		base:             mat.NewDense(nu+ni, snap.Dim, snap.Base),
		interactionCount: len(pairs),
	}
	graph.final = graph.adj.propagate(graph.base, g.config.Layers)

	g.acquireTrainLock()
	defer g.releaseTrainLock()
	g.graph = graph
	g.markTrained()
	return nil
}

var _ recommend.Persistable = (*GraphEmbeddingModel)(nil)
