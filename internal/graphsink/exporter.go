// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graphsink

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mentormatch/internal/recommend/graph"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 500

var nodeLabels = map[graph.NodeType]string{
	graph.NodeUser:    "User",
	graph.NodeMentor:  "Mentor",
	graph.NodeSession: "StudySession",
	graph.NodeGroup:   "StudyGroup",
}

// edgeTargets is the target label of each edge type. Every edge starts at
// a User.
var edgeTargets = map[graph.EdgeType]graph.NodeType{
	graph.EdgeMentoredBy: graph.NodeMentor,
	graph.EdgeAttended:   graph.NodeSession,
	graph.EdgeOrganizes:  graph.NodeSession,
	graph.EdgeMemberOf:   graph.NodeGroup,
	graph.EdgeGroupPeer:  graph.NodeUser,
}

var edgeOrder = []graph.EdgeType{
	graph.EdgeMentoredBy,
	graph.EdgeAttended,
	graph.EdgeOrganizes,
	graph.EdgeMemberOf,
	graph.EdgeGroupPeer,
}

// ExportStats reports what an export wrote.
type ExportStats struct {
	Nodes      map[graph.NodeType]int `json:"nodes"`
	Edges      map[graph.EdgeType]int `json:"edges"`
	Statements int                    `json:"statements"`
	DurationMS int64                  `json:"duration_ms"`
}

// Exporter mirrors an interaction graph into Neo4j. Writes use MERGE so
// repeated exports are idempotent.
type Exporter struct {
	client    Client
	batchSize int
	logger    zerolog.Logger
}

// NewExporter creates an exporter. batchSize <= 0 uses DefaultBatchSize.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewExporter(client Client, batchSize int, logger zerolog.Logger) *Exporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Exporter{
		client:    client,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "graph_export").Logger(),
	}
}

// EnsureConstraints creates a uniqueness constraint on id for every label.
func (e *Exporter) EnsureConstraints(ctx context.Context) error {
	for _, t := range graph.NodeTypes {
		label := nodeLabels[t]
		cypher := fmt.Sprintf("CREATE CONSTRAINT %s_id IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE",
			strings.ToLower(label), label)
		if _, err := e.client.ExecuteWrite(ctx, cypher, nil); err != nil {
			return fmt.Errorf("create constraint for %s: %w", label, err)
		}
	}
	return nil
}

// Export writes every node (with its features) and every edge of g.
func (e *Exporter) Export(ctx context.Context, g *graph.Graph) (ExportStats, error) {
	start := time.Now()
	stats := ExportStats{
		Nodes: make(map[graph.NodeType]int, len(graph.NodeTypes)),
		Edges: make(map[graph.EdgeType]int, len(edgeOrder)),
	}

	for _, t := range graph.NodeTypes {
		ids := g.Nodes(t)
		rows := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			props := map[string]any{}
			if f, ok := g.Features(id); ok && f.Type == t {
				props = maps.Clone(f.Features)
			}
			rows = append(rows, map[string]any{"id": id, "props": props})
		}

		cypher := fmt.Sprintf("UNWIND $rows AS row MERGE (n:%s {id: row.id}) SET n += row.props", nodeLabels[t])
		n, err := e.writeBatches(ctx, cypher, rows)
		stats.Statements += n
		if err != nil {
			return stats, fmt.Errorf("export %s nodes: %w", t, err)
		}
		stats.Nodes[t] = len(rows)
	}

	byType := make(map[graph.EdgeType][]map[string]any, len(edgeOrder))
	for _, edge := range g.Edges() {
		byType[edge.Type] = append(byType[edge.Type], map[string]any{
			"source": edge.Source,
			"target": edge.Target,
			"weight": edge.Weight,
		})
	}

	for _, t := range edgeOrder {
		rows := byType[t]
		if len(rows) == 0 {
			continue
		}
		cypher := fmt.Sprintf(
			"UNWIND $rows AS row MATCH (a:User {id: row.source}) MATCH (b:%s {id: row.target}) "+
				"MERGE (a)-[r:%s]->(b) SET r.weight = row.weight",
			nodeLabels[edgeTargets[t]], strings.ToUpper(string(t)))
		n, err := e.writeBatches(ctx, cypher, rows)
		stats.Statements += n
		if err != nil {
			return stats, fmt.Errorf("export %s edges: %w", t, err)
		}
		stats.Edges[t] = len(rows)
	}

	stats.DurationMS = time.Since(start).Milliseconds()
	e.logger.Info().
		Int("statements", stats.Statements).
		Int64("duration_ms", stats.DurationMS).
		Msg("Graph exported")
	return stats, nil
}

func (e *Exporter) writeBatches(ctx context.Context, cypher string, rows []map[string]any) (int, error) {
	statements := 0
	for start := 0; start < len(rows); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return statements, err
		}
		end := min(start+e.batchSize, len(rows))
		if _, err := e.client.ExecuteWrite(ctx, cypher, map[string]any{"rows": rows[start:end]}); err != nil {
			return statements, err
		}
		statements++
	}
	return statements, nil
}

// Ping verifies the graph database is reachable.
func (e *Exporter) Ping(ctx context.Context) error {
	return e.client.VerifyConnectivity(ctx)
}

// CountNodes returns the number of stored nodes per label.
func (e *Exporter) CountNodes(ctx context.Context) (map[string]int, error) {
	res, err := e.client.ExecuteRead(ctx, "MATCH (n) RETURN labels(n)[0] AS label, count(n) AS count", nil)
	if err != nil {
		return nil, fmt.Errorf("count nodes: %w", err)
	}

	counts := make(map[string]int, len(res.Records))
	for _, rec := range res.Records {
		label, _ := rec["label"].(string)
		switch v := rec["count"].(type) {
		case int64:
			counts[label] = int(v)
		case int:
			counts[label] = v
		}
	}
	return counts, nil
}
