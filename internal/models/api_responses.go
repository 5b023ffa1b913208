// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package models

import (
	"time"
)

// APIResponse is the envelope of every HTTP response.
//
// Status is "success" or "error". On error, Error is set and Data may still
// carry a partial result (for example a training run where one model failed).
//
//	{
//	  "status": "success",
//	  "data": {"recommendations": [...]},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 4}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response timing and cache information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error code with a human-readable message.
//
// Codes:
//   - VALIDATION_ERROR: malformed body or failed field validation
//   - INVALID_KIND: unknown recommendation kind in the path
//   - NOT_FOUND: unknown route or item
//   - TRAINING_IN_PROGRESS: another training run holds the lock
//   - INSUFFICIENT_DATA: no model met its data requirements
//   - SERVICE_UNAVAILABLE: an optional backend is not configured
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
