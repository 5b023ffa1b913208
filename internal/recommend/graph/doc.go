// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package graph turns mentorship, session and group events into a
// heterogeneous interaction graph and into weighted training interactions.
//
// Edge rules:
//
//	mentored_by  user -> mentor   1.0  accepted requests only
//	attended     user -> session  1.0  completed, 0.7 attended or registered
//	organizes    user -> session  1.5
//	member_of    user -> group    1.0
//	group_peer   user -> user     0.5  one per co-member pair
package graph
