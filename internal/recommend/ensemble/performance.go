// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package ensemble

import (
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// performanceHistorySize is the number of recent values kept per model.
const performanceHistorySize = 100

// performanceTracker keeps a bounded history of evaluation metrics per model.
type performanceTracker struct {
	mu      sync.RWMutex
	history map[string][]float64
}

func newPerformanceTracker() *performanceTracker {
	return &performanceTracker{history: make(map[string][]float64, len(modelOrder))}
}

// record appends value for model. Unknown model names are ignored.
func (p *performanceTracker) record(model string, value float64) bool {
	switch model {
	case recommend.ModelContent, recommend.ModelCollaborative, recommend.ModelGraph:
	default:
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	h := append(p.history[model], value)
	if len(h) > performanceHistorySize {
		h = append([]float64(nil), h[len(h)-performanceHistorySize:]...)
	}
	p.history[model] = h
	return true
}

// recent returns a copy of the history for model.
func (p *performanceTracker) recent(model string) []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return append([]float64(nil), p.history[model]...)
}

// weights rebalances base between the models that have a positive mean
// recent performance, in proportion to those means. Models without
// history, content in practice since holdout evaluation only ranks trained
// models, keep their configured share. It returns false when no model has
// history yet.
func (p *performanceTracker) weights(base recommend.Weights) (recommend.Weights, bool) {
	base = base.Normalize()

	p.mu.RLock()
	defer p.mu.RUnlock()

	means := make(map[string]float64, len(modelOrder))
	share, total := 0.0, 0.0
	for _, model := range modelOrder {
		h := p.history[model]
		if len(h) == 0 {
			continue
		}
		m := stat.Mean(h, nil)
		if m <= 0 {
			continue
		}
		means[model] = m
		share += base.Of(model)
		total += m
	}
	if len(means) == 0 {
		return base, false
	}

	out := base
	for model, m := range means {
		v := share * (m / total)
		switch model {
		case recommend.ModelContent:
			out.Content = v
		case recommend.ModelCollaborative:
			out.Collaborative = v
		case recommend.ModelGraph:
			out.Graph = v
		}
	}
	return out, true
}
