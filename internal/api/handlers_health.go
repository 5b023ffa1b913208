// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/mentormatch/internal/models"
	"github.com/tomtom215/mentormatch/internal/recommend"
)

// healthCheckTimeout bounds each dependency check.
const healthCheckTimeout = 2 * time.Second

// Health handles GET /health.
//
// The service is "healthy" when every registered check passes and
// "degraded" otherwise. Untrained models do not degrade health: content
// scoring serves without them.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "healthy"

	checks := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			checks[name] = "error: " + sanitizeLogValue(err.Error())
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	ms := h.engine.Status().Models
	respondSuccess(w, r, http.StatusOK, models.HealthStatus{
		Status:  status,
		Version: Version,
		Uptime:  time.Since(h.startTime).Seconds(),
		Checks:  checks,
		Models: map[string]bool{
			recommend.ModelContent:       ms.Ready(recommend.ModelContent),
			recommend.ModelCollaborative: ms.Ready(recommend.ModelCollaborative),
			recommend.ModelGraph:         ms.Ready(recommend.ModelGraph),
		},
	}, start)
}
