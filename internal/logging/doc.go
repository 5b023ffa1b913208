// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package logging provides centralized zerolog-based structured logging for Mentormatch.
//
// Production output is JSON; development output is human-readable console
// text. Components never construct their own root logger: they receive a
// zerolog.Logger by value and add a component field.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("kind", "mentor").Int("results", 10).Msg("Recommendations served")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Training failed")
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// Every line carries service=mentormatch.
//
// # Component Loggers
//
//	engineLogger := logging.Logger().With().Str("component", "recommend").Logger()
//
// # Context-Aware Logging
//
// The request ID middleware stores request_id and correlation_id in the
// request context. Ctx returns a logger that carries both fields.
//
// # slog Adapter
//
// Suture reports supervisor events through sutureslog, which needs a
// *slog.Logger. NewSlogLogger forwards those records into zerolog with
// component=supervisor:
//
//	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
//
// # Sanitization
//
// Request values written to the log go through SanitizeValue, which masks
// credential keys, replaces control characters and truncates long input.
//
// # Thread Safety
//
// All exported functions are safe for concurrent use.
package logging
