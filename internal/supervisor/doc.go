// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

/*
Package supervisor provides process supervision using suture v4.

Long-running services are organized into a small tree so a failure in one
layer does not take down the other:

	RootSupervisor ("mentormatch")
	├── TrainingSupervisor ("training-layer")
	│   ├── RecommendService
	│   └── StorageGCService (persistent storage only)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A training crash never stops the API from serving the last good models.
Crashed services restart with backoff; FailureThreshold and FailureDecay
bound restart storms.

Supervisor events are logged through sutureslog, which writes to the zerolog
backed slog handler from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddTrainingService(services.NewRecommendService(engine, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second, logger))

	errCh := tree.ServeBackground(ctx)
*/
package supervisor
