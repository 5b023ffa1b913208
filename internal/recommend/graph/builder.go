// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graph

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// NodeType partitions graph nodes.
type NodeType string

const (
	NodeUser    NodeType = "user"
	NodeMentor  NodeType = "mentor"
	NodeSession NodeType = "session"
	NodeGroup   NodeType = "group"
)

// NodeTypes lists every node type in a stable order.
var NodeTypes = []NodeType{NodeUser, NodeMentor, NodeSession, NodeGroup}

// EdgeType labels a directed edge.
type EdgeType string

const (
	EdgeMentoredBy EdgeType = "mentored_by"
	EdgeAttended   EdgeType = "attended"
	EdgeOrganizes  EdgeType = "organizes"
	EdgeMemberOf   EdgeType = "member_of"
	EdgeGroupPeer  EdgeType = "group_peer"
)

// Edge weights.
const (
	WeightMentorship       = 1.0
	WeightSessionCompleted = 1.0
	WeightSessionActive    = 0.7
	WeightOrganizer        = 1.5
	WeightMembership       = 1.0
	WeightPeer             = 0.5
)

// Edge is a directed, weighted relation between two nodes.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"edge_type"`
	Weight float64  `json:"weight"`
}

// NodeFeatures is an attribute map attached to a node.
type NodeFeatures struct {
	Type     NodeType       `json:"type"`
	Features map[string]any `json:"features"`
}

// Stats summarizes a graph.
type Stats struct {
	TotalNodes int              `json:"total_nodes"`
	TotalEdges int              `json:"total_edges"`
	Nodes      map[NodeType]int `json:"nodes"`
	Edges      map[EdgeType]int `json:"edges"`
}

// Graph is a heterogeneous interaction graph grown incrementally from domain
// events. Node sets are kept per type, so the same ID may appear as both a
// user and a mentor. It is safe for concurrent use.
type Graph struct {
	mu       sync.RWMutex
	nodes    map[NodeType]map[string]struct{}
	edges    []Edge
	features map[string]NodeFeatures
	logger   zerolog.Logger
}

// New creates an empty graph.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(logger zerolog.Logger) *Graph {
	g := &Graph{
		nodes:    make(map[NodeType]map[string]struct{}, len(NodeTypes)),
		features: make(map[string]NodeFeatures),
		logger:   logger.With().Str("component", "graph_builder").Logger(),
	}
	for _, t := range NodeTypes {
		g.nodes[t] = make(map[string]struct{})
	}
	return g
}

func (g *Graph) addNode(t NodeType, id string) {
	if _, ok := g.nodes[t]; !ok {
		g.nodes[t] = make(map[string]struct{})
	}
	g.nodes[t][id] = struct{}{}
}

// AddMentorships adds both ends of every request as nodes. Only accepted
// requests produce a mentored_by edge.
func (g *Graph) AddMentorships(reqs []MentorshipRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()

	added := 0
	for _, r := range reqs {
		g.addNode(NodeUser, r.MenteeID)
		g.addNode(NodeMentor, r.MentorID)
		if r.Status != MentorshipAccepted {
			continue
		}
		g.edges = append(g.edges, Edge{
			Source: r.MenteeID,
			Target: r.MentorID,
			Type:   EdgeMentoredBy,
			Weight: WeightMentorship,
		})
		added++
	}

	g.logger.Debug().Int("edges", added).Msg("added user-mentor edges")
}

// AddSessions adds attendance edges for active participants and one
// organizes edge per session with an organizer. Cancelled participants are
// kept as nodes but produce no edge.
func (g *Graph) AddSessions(sessions []StudySession) {
	g.mu.Lock()
	defer g.mu.Unlock()

	added := 0
	for _, s := range sessions {
		g.addNode(NodeSession, s.ID)

		for _, p := range s.Participants {
			g.addNode(NodeUser, p.UserID)

			var weight float64
			switch p.status() {
			case ParticipantCompleted:
				weight = WeightSessionCompleted
			case ParticipantAttended, ParticipantRegistered:
				weight = WeightSessionActive
			default:
				continue
			}
			g.edges = append(g.edges, Edge{Source: p.UserID, Target: s.ID, Type: EdgeAttended, Weight: weight})
			added++
		}

		if s.OrganizerID != "" {
			g.addNode(NodeUser, s.OrganizerID)
			g.edges = append(g.edges, Edge{Source: s.OrganizerID, Target: s.ID, Type: EdgeOrganizes, Weight: WeightOrganizer})
			added++
		}
	}

	g.logger.Debug().Int("edges", added).Msg("added user-session edges")
}

// AddGroups adds a member_of edge per member and a group_peer edge for every
// unordered pair of co-members. Peer edges are quadratic in group size.
func (g *Graph) AddGroups(groups []StudyGroup) {
	g.mu.Lock()
	defer g.mu.Unlock()

	added := 0
	for _, grp := range groups {
		g.addNode(NodeGroup, grp.ID)

		for _, m := range grp.Members {
			g.addNode(NodeUser, m.UserID)
			g.edges = append(g.edges, Edge{Source: m.UserID, Target: grp.ID, Type: EdgeMemberOf, Weight: WeightMembership})
			added++
		}
		for i := range grp.Members {
			for j := i + 1; j < len(grp.Members); j++ {
				g.edges = append(g.edges, Edge{
					Source: grp.Members[i].UserID,
					Target: grp.Members[j].UserID,
					Type:   EdgeGroupPeer,
					Weight: WeightPeer,
				})
				added++
			}
		}
	}

	g.logger.Debug().Int("edges", added).Msg("added group edges")
}

// AddNodeFeatures attaches an attribute map to a node, replacing any
// previous features for id.
func (g *Graph) AddNodeFeatures(id string, t NodeType, features map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	copied := make(map[string]any, len(features))
	for k, v := range features {
		copied[k] = v
	}
	g.features[id] = NodeFeatures{Type: t, Features: copied}
}

// Features returns the features attached to id.
func (g *Graph) Features(id string) (NodeFeatures, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	f, ok := g.features[id]
	return f, ok
}

// Nodes returns the sorted IDs of every node of type t.
func (g *Graph) Nodes(t NodeType) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return sortedKeys(g.nodes[t])
}

// HasNode reports whether id is a node of type t.
func (g *Graph) HasNode(t NodeType, id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.nodes[t][id]
	return ok
}

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Stats counts nodes and edges per type.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{
		TotalEdges: len(g.edges),
		Nodes:      make(map[NodeType]int, len(g.nodes)),
		Edges:      make(map[EdgeType]int),
	}
	for t, set := range g.nodes {
		s.Nodes[t] = len(set)
		s.TotalNodes += len(set)
	}
	for _, e := range g.edges {
		s.Edges[e.Type]++
	}
	return s
}

// Bipartite extracts the subgraph of nodes typed a or b and the edges that
// connect an a-node to a b-node in either direction. Features of kept nodes
// are carried over.
func (g *Graph) Bipartite(a, b NodeType) *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	sub := New(g.logger)
	for _, t := range []NodeType{a, b} {
		for id := range g.nodes[t] {
			sub.addNode(t, id)
		}
	}

	inA, inB := g.nodes[a], g.nodes[b]
	for _, e := range g.edges {
		_, srcA := inA[e.Source]
		_, srcB := inB[e.Source]
		_, dstA := inA[e.Target]
		_, dstB := inB[e.Target]
		if (srcA && dstB) || (srcB && dstA) {
			sub.edges = append(sub.edges, e)
		}
	}

	for id, f := range g.features {
		if f.Type == a || f.Type == b {
			sub.features[id] = f
		}
	}

	g.logger.Debug().
		Str("type_a", string(a)).
		Str("type_b", string(b)).
		Int("edges", len(sub.edges)).
		Msg("extracted bipartite graph")

	return sub
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
