// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/mentormatch/internal/metrics"
	"github.com/tomtom215/mentormatch/internal/models"
)

// GraphExport handles POST /api/v1/graph/export.
// It mirrors the current interaction graph into Neo4j. The export is
// idempotent: nodes and edges are merged on id.
func (h *Handler) GraphExport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.exporter == nil || h.graphSource == nil {
		respondEngineError(w, r, nil, ErrGraphExportDisabled)
		return
	}

	g, err := h.graphSource(r.Context())
	if err != nil {
		metrics.RecordGraphExport(err)
		respondEngineError(w, r, nil, fmt.Errorf("build graph: %w", err))
		return
	}

	stats, err := h.exporter.Export(r.Context(), g)
	metrics.RecordGraphExport(err)
	if err != nil {
		respondEngineError(w, r, nil, fmt.Errorf("export graph: %w", err))
		return
	}

	result := models.GraphExport{
		Nodes:      make(map[string]int, len(stats.Nodes)),
		Edges:      make(map[string]int, len(stats.Edges)),
		Statements: stats.Statements,
		DurationMS: stats.DurationMS,
		ExportedAt: time.Now().UTC(),
	}
	for t, n := range stats.Nodes {
		result.Nodes[string(t)] = n
	}
	for t, n := range stats.Edges {
		result.Edges[string(t)] = n
	}

	respondSuccess(w, r, http.StatusOK, result, start)
}
