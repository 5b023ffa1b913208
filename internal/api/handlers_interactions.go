// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mentormatch/internal/models"
)

// Interactions handles POST /api/v1/interactions.
// The interactions are stored for the next training run; models are not
// updated in place.
func (h *Handler) Interactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req InteractionsRequest
	if apiErr := decodeJSON(w, r, &req, false); apiErr != nil {
		respondErrorWithData(w, r, http.StatusBadRequest, apiErr, nil, nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorWithData(w, r, http.StatusBadRequest, apiErr, nil, nil)
		return
	}

	for i := range req.Interactions {
		if req.Interactions[i].Timestamp.IsZero() {
			req.Interactions[i].Timestamp = start.UTC()
		}
	}

	if err := h.engine.Ingest(r.Context(), req.Interactions); err != nil {
		respondEngineError(w, r, nil, err)
		return
	}

	respondSuccess(w, r, http.StatusAccepted, models.IngestResult{Accepted: len(req.Interactions)}, start)
}
