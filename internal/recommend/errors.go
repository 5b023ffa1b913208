// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package recommend

import "errors"

var (
	// ErrInvalidKind is returned for an unknown recommendation kind.
	ErrInvalidKind = errors.New("invalid recommendation kind")

	// ErrInvalidMethod is returned for an unknown ensemble method.
	ErrInvalidMethod = errors.New("invalid ensemble method")

	// ErrTrainingInProgress is returned when a training run is already active.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrNoInteractionSource is returned by Train when no source is configured.
	ErrNoInteractionSource = errors.New("no interaction source configured")

	// ErrUnknownModel is returned when a training request names an unknown model.
	ErrUnknownModel = errors.New("unknown model")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid recommend config")

	// ErrNotFound is returned when a stored model or item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientData is returned when scheduled training lacks data.
	ErrInsufficientData = errors.New("insufficient training data")
)
