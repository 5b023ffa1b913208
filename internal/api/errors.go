// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// API error codes.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidKind        = "INVALID_KIND"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	CodeInsufficientData   = "INSUFFICIENT_DATA"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrGraphExportDisabled is returned when no graph sink is configured.
var ErrGraphExportDisabled = errors.New("graph export is not enabled")

// classifyError maps an engine error to an HTTP status, error code and
// client-safe message.
func classifyError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidKind):
		return http.StatusBadRequest, CodeInvalidKind, "kind must be one of: mentor, session, group"
	case errors.Is(err, recommend.ErrInvalidMethod):
		return http.StatusBadRequest, CodeValidation, "method must be one of: weighted, cascading, context_aware"
	case errors.Is(err, recommend.ErrUnknownModel):
		return http.StatusBadRequest, CodeValidation, "models must be collaborative or graph"
	case errors.Is(err, recommend.ErrTrainingInProgress):
		return http.StatusConflict, CodeTrainingInProgress, "Training is already in progress"
	case errors.Is(err, recommend.ErrInsufficientData):
		return http.StatusUnprocessableEntity, CodeInsufficientData, "Not enough interactions to train any model"
	case errors.Is(err, recommend.ErrNoInteractionSource), errors.Is(err, ErrGraphExportDisabled):
		return http.StatusServiceUnavailable, CodeUnavailable, err.Error()
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, "Not found"
	default:
		return http.StatusInternalServerError, CodeInternal, "Internal server error"
	}
}
