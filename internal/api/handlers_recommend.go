// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mentormatch/internal/logging"
	"github.com/tomtom215/mentormatch/internal/models"
	"github.com/tomtom215/mentormatch/internal/recommend"
)

// Recommend handles POST /api/v1/recommend/{kind}.
// kind is mentor, session or group (plural accepted).
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	kind, err := recommend.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidKind, "kind must be one of: mentor, session, group", nil)
		return
	}

	var req RecommendRequest
	if apiErr := decodeJSON(w, r, &req, false); apiErr != nil {
		respondErrorWithData(w, r, http.StatusBadRequest, apiErr, nil, nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorWithData(w, r, http.StatusBadRequest, apiErr, nil, nil)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), req.toRequest(kind))
	if err != nil {
		respondEngineError(w, r, nil, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("kind", string(kind)).
		Str("user", logging.SanitizeUserID(req.UserID)).
		Int("candidates", len(req.Candidates)).
		Int("results", len(resp.Items)).
		Msg("recommendations served")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      resp.CacheHit,
			RequestID:   resp.RequestID,
		},
	})
}

// RecommendStatus handles GET /api/v1/recommend/status.
func (h *Handler) RecommendStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := models.RecommendStatus{
		Status:  h.engine.Status(),
		Metrics: h.engine.GetMetrics(),
	}
	if h.perfMon != nil {
		status.Endpoints = h.perfMon.Stats()
	}

	respondSuccess(w, r, http.StatusOK, status, start)
}

// Train handles POST /api/v1/recommend/train.
//
// Training runs synchronously and returns the per-model outcome. Explicit
// requests bypass the minimum data requirements of scheduled runs. A run
// where some models failed answers 500 with the partial result as data.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req TrainRequest
	if apiErr := decodeJSON(w, r, &req, true); apiErr != nil {
		respondErrorWithData(w, r, http.StatusBadRequest, apiErr, nil, nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorWithData(w, r, http.StatusBadRequest, apiErr, nil, nil)
		return
	}

	ctx := r.Context()
	if h.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.trainTimeout)
		defer cancel()
	}

	logging.Ctx(ctx).Info().Strs("models", req.Models).Msg("training requested")

	result, err := h.engine.Train(ctx, req.toOptions())
	if err != nil {
		respondEngineError(w, r, result, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, result, start)
}

// SimilarItems handles GET /api/v1/items/{id}/similar?k=.
// Unknown items return an empty list.
func (h *Handler) SimilarItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := SimilarItemsRequest{
		ItemID: chi.URLParam(r, "id"),
		K:      getIntParam(r, "k", defaultSimilarK),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorWithData(w, r, http.StatusBadRequest, apiErr, nil, nil)
		return
	}

	items := h.engine.SimilarItems(req.ItemID, req.K)
	respondSuccess(w, r, http.StatusOK, models.SimilarItems{
		ItemID: req.ItemID,
		Items:  items,
		Count:  len(items),
	}, start)
}
