// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator caches struct metadata and reports
// field names by their json tag, so error messages match the request body
// a client sent.
//
// # Custom Tags
//
//   - rec_kind: mentor, session or group (plural accepted)
//   - ensemble_method: weighted, cascading or context_aware (empty allowed)
//   - trainable_model: collaborative or graph
//
// # Usage
//
//	type TrainRequest struct {
//	    Models []string `json:"models" validate:"omitempty,dive,trainable_model"`
//	    Epochs int      `json:"epochs" validate:"gte=0,lte=10000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// ToAPIError produces a VALIDATION_ERROR with per-field details. A single
// failure reports field, tag and value; several failures are joined into
// one message with a fields list in the details.
package validation
