// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

/*
Package services provides suture.Service implementations for the long-running
parts of the server.

Each service translates a component lifecycle into suture's context-aware
Serve pattern and implements fmt.Stringer so supervisor events name it.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server and binds the listen address on every start
  - A port conflict fails the service so the supervisor backs off
  - Drains in-flight requests for a configurable timeout on shutdown

Training Scheduler (RecommendService):
  - Restores persisted model snapshots at start
  - Checks staleness every CheckInterval and retrains in the background
  - Scheduled runs enforce the per-model minimum data requirements

Storage GC (StorageGCService):
  - Runs badger value log GC until nothing is left to rewrite
  - Idles when the database is in-memory

# Error Semantics

Serve returns ctx.Err() on shutdown. Any other error makes the supervisor
restart the service with backoff. Training failures are logged and do not
stop the scheduler.
*/
package services
