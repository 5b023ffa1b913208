// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package graphsink exports the interaction graph to Neo4j for ad-hoc
// exploration with Cypher.
//
// Node types map to the labels User, Mentor, StudySession and StudyGroup.
// Edge types map to upper-case relationship types (MENTORED_BY, ATTENDED,
// ORGANIZES, MEMBER_OF, GROUP_PEER) carrying a weight property. Rows are
// sent in UNWIND batches and merged on id.
//
// The Client interface has two implementations: the Bolt client built on
// the official driver and MemoryClient, which only records queries.
package graphsink
