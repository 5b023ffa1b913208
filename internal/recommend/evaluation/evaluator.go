// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package evaluation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// DefaultK are the cutoffs reported by Evaluate when none are given.
var DefaultK = []int{5, 10, 20}

// Metrics maps a metric name such as "ndcg@10" to its mean over users.
type Metrics map[string]float64

// MetricName returns the key used for metric at cutoff k.
func MetricName(metric string, k int) string {
	return fmt.Sprintf("%s@%d", metric, k)
}

// Evaluate averages precision, recall, nDCG and hit rate at each cutoff,
// plus MAP, over every user present in both recs and truth.
func Evaluate(recs, truth map[string][]string, ks []int) Metrics {
	if len(ks) == 0 {
		ks = DefaultK
	}

	values := make(map[string][]float64)
	var aps []float64
	for user, list := range recs {
		relevant, ok := truth[user]
		if !ok {
			continue
		}
		for _, k := range ks {
			values[MetricName("precision", k)] = append(values[MetricName("precision", k)], PrecisionAtK(list, relevant, k))
			values[MetricName("recall", k)] = append(values[MetricName("recall", k)], RecallAtK(list, relevant, k))
			values[MetricName("ndcg", k)] = append(values[MetricName("ndcg", k)], NDCGAtK(list, relevant, k))
			values[MetricName("hit_rate", k)] = append(values[MetricName("hit_rate", k)], HitRateAtK(list, relevant, k))
		}
		aps = append(aps, AveragePrecision(list, relevant))
	}

	metrics := make(Metrics, 4*len(ks)+1)
	for _, k := range ks {
		for _, name := range []string{"precision", "recall", "ndcg", "hit_rate"} {
			key := MetricName(name, k)
			metrics[key] = mean(values[key])
		}
	}
	metrics["map"] = mean(aps)
	return metrics
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return stat.Mean(v, nil)
}

// Result is one recorded evaluation.
type Result struct {
	Model       string    `json:"model"`
	Metrics     Metrics   `json:"metrics"`
	Users       int       `json:"users"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// ModelEvaluator evaluates models and keeps the results for comparison.
type ModelEvaluator struct {
	mu      sync.RWMutex
	history []Result
	logger  zerolog.Logger
}

// NewModelEvaluator creates an evaluator with an empty history.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelEvaluator(logger zerolog.Logger) *ModelEvaluator {
	return &ModelEvaluator{
		logger: logger.With().Str("component", "evaluation").Logger(),
	}
}

// Evaluate scores recs against truth, records the result under model and
// returns the metrics.
func (e *ModelEvaluator) Evaluate(model string, recs, truth map[string][]string, ks []int) Metrics {
	metrics := Evaluate(recs, truth, ks)

	users := 0
	for user := range recs {
		if _, ok := truth[user]; ok {
			users++
		}
	}

	e.mu.Lock()
	e.history = append(e.history, Result{
		Model:       model,
		Metrics:     metrics,
		Users:       users,
		EvaluatedAt: time.Now(),
	})
	e.mu.Unlock()

	event := e.logger.Info().Str("model", model).Int("users", users)
	for _, name := range sortedNames(metrics) {
		event = event.Float64(name, metrics[name])
	}
	event.Msg("Model evaluated")

	return metrics
}

// BestModel returns the model with the highest recorded value of metric.
// Ties go to the earlier result. ok is false when nothing was evaluated.
func (e *ModelEvaluator) BestModel(metric string) (model string, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	best := -1.0
	for _, r := range e.history {
		if v := r.Metrics[metric]; v > best {
			best = v
			model = r.Model
			ok = true
		}
	}
	return model, ok
}

// Compare returns metric -> model -> value using each model's most recent
// result.
func (e *ModelEvaluator) Compare() map[string]map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	comparison := make(map[string]map[string]float64)
	for _, r := range e.history {
		for name, v := range r.Metrics {
			if comparison[name] == nil {
				comparison[name] = make(map[string]float64)
			}
			comparison[name][r.Model] = v
		}
	}
	return comparison
}

// History returns a copy of every recorded result, oldest first.
func (e *ModelEvaluator) History() []Result {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Result, len(e.history))
	copy(out, e.history)
	return out
}

func sortedNames(m Metrics) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
