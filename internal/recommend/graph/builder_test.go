// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graph

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func edgesOfType(edges []Edge, t EdgeType) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func TestAddMentorships(t *testing.T) {
	t.Parallel()

	g := New(zerolog.Nop())
	g.AddMentorships([]MentorshipRequest{
		{MenteeID: "u1", MentorID: "m1", Status: MentorshipAccepted},
		{MenteeID: "u2", MentorID: "m2", Status: MentorshipPending},
		{MenteeID: "u3", MentorID: "m1", Status: MentorshipDeclined},
	})

	edges := g.Edges()
	want := []Edge{{Source: "u1", Target: "m1", Type: EdgeMentoredBy, Weight: 1.0}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("Edges() = %v, want %v", edges, want)
	}
	if got := g.Nodes(NodeUser); !reflect.DeepEqual(got, []string{"u1", "u2", "u3"}) {
		t.Errorf("users = %v", got)
	}
	if got := g.Nodes(NodeMentor); !reflect.DeepEqual(got, []string{"m1", "m2"}) {
		t.Errorf("mentors = %v", got)
	}
}

func TestAddSessions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		session       StudySession
		wantAttended  map[string]float64
		wantOrganizer int
	}{
		{
			name: "three completed with organizer",
			session: StudySession{
				ID:          "s1",
				OrganizerID: "org",
				Participants: []SessionParticipant{
					{UserID: "a", Status: ParticipantCompleted},
					{UserID: "b", Status: ParticipantCompleted},
					{UserID: "c", Status: ParticipantCompleted},
				},
			},
			wantAttended:  map[string]float64{"a": 1.0, "b": 1.0, "c": 1.0},
			wantOrganizer: 1,
		},
		{
			name: "mixed statuses without organizer",
			session: StudySession{
				ID: "s2",
				Participants: []SessionParticipant{
					{UserID: "a", Status: ParticipantAttended},
					{UserID: "b"},
					{UserID: "c", Status: ParticipantCancelled},
				},
			},
			wantAttended:  map[string]float64{"a": 0.7, "b": 0.7},
			wantOrganizer: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(zerolog.Nop())
			g.AddSessions([]StudySession{tt.session})
			edges := g.Edges()

			attended := edgesOfType(edges, EdgeAttended)
			got := make(map[string]float64, len(attended))
			for _, e := range attended {
				if e.Target != tt.session.ID {
					t.Errorf("edge target = %s, want %s", e.Target, tt.session.ID)
				}
				got[e.Source] = e.Weight
			}
			if len(attended) != len(tt.wantAttended) || !reflect.DeepEqual(got, tt.wantAttended) {
				t.Errorf("attended = %v, want %v", got, tt.wantAttended)
			}

			organizer := edgesOfType(edges, EdgeOrganizes)
			if len(organizer) != tt.wantOrganizer {
				t.Fatalf("organizer edges = %d, want %d", len(organizer), tt.wantOrganizer)
			}
			for _, e := range organizer {
				if e.Weight != 1.5 {
					t.Errorf("organizer weight = %v, want 1.5", e.Weight)
				}
			}

			// cancelled participants still become nodes
			for _, p := range tt.session.Participants {
				if !g.HasNode(NodeUser, p.UserID) {
					t.Errorf("participant %s missing from nodes", p.UserID)
				}
			}
		})
	}
}

func TestAddGroups(t *testing.T) {
	t.Parallel()

	g := New(zerolog.Nop())
	g.AddGroups([]StudyGroup{{
		ID:      "g1",
		Members: []GroupMember{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}, {UserID: "d"}},
	}})
	edges := g.Edges()

	members := edgesOfType(edges, EdgeMemberOf)
	if len(members) != 4 {
		t.Errorf("member_of edges = %d, want 4", len(members))
	}
	peers := edgesOfType(edges, EdgeGroupPeer)
	if len(peers) != 6 {
		t.Fatalf("group_peer edges = %d, want 6", len(peers))
	}
	seen := make(map[[2]string]bool)
	for _, e := range peers {
		if e.Weight != 0.5 {
			t.Errorf("peer weight = %v, want 0.5", e.Weight)
		}
		key := [2]string{e.Source, e.Target}
		if e.Source > e.Target {
			key = [2]string{e.Target, e.Source}
		}
		if seen[key] {
			t.Errorf("duplicate peer pair %v", key)
		}
		seen[key] = true
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	g := New(zerolog.Nop())
	g.AddMentorships([]MentorshipRequest{{MenteeID: "u1", MentorID: "m1", Status: MentorshipAccepted}})
	g.AddSessions([]StudySession{{ID: "s1", OrganizerID: "u2", Participants: []SessionParticipant{{UserID: "u1"}}}})
	g.AddGroups([]StudyGroup{{ID: "g1", Members: []GroupMember{{UserID: "u1"}, {UserID: "u3"}}}})

	s := g.Stats()
	if s.TotalNodes != 6 {
		t.Errorf("TotalNodes = %d, want 6", s.TotalNodes)
	}
	if s.TotalEdges != 6 {
		t.Errorf("TotalEdges = %d, want 6", s.TotalEdges)
	}
	wantNodes := map[NodeType]int{NodeUser: 3, NodeMentor: 1, NodeSession: 1, NodeGroup: 1}
	if !reflect.DeepEqual(s.Nodes, wantNodes) {
		t.Errorf("Nodes = %v, want %v", s.Nodes, wantNodes)
	}
	wantEdges := map[EdgeType]int{
		EdgeMentoredBy: 1,
		EdgeAttended:   1,
		EdgeOrganizes:  1,
		EdgeMemberOf:   2,
		EdgeGroupPeer:  1,
	}
	if !reflect.DeepEqual(s.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", s.Edges, wantEdges)
	}
}

func TestBipartite(t *testing.T) {
	t.Parallel()

	g := New(zerolog.Nop())
	g.AddMentorships([]MentorshipRequest{{MenteeID: "u1", MentorID: "m1", Status: MentorshipAccepted}})
	g.AddSessions([]StudySession{{ID: "s1", Participants: []SessionParticipant{{UserID: "u1", Status: ParticipantCompleted}}}})
	g.AddGroups([]StudyGroup{{ID: "g1", Members: []GroupMember{{UserID: "u1"}, {UserID: "u2"}}}})
	g.AddNodeFeatures("m1", NodeMentor, map[string]any{"domains": 2})
	g.AddNodeFeatures("g1", NodeGroup, map[string]any{"members": 2})

	sub := g.Bipartite(NodeUser, NodeMentor)

	want := []Edge{{Source: "u1", Target: "m1", Type: EdgeMentoredBy, Weight: 1.0}}
	if got := sub.Edges(); !reflect.DeepEqual(got, want) {
		t.Errorf("bipartite edges = %v, want %v", got, want)
	}
	if sub.HasNode(NodeSession, "s1") || sub.HasNode(NodeGroup, "g1") {
		t.Error("bipartite graph kept nodes of other types")
	}
	if got := sub.Nodes(NodeUser); !reflect.DeepEqual(got, []string{"u1", "u2"}) {
		t.Errorf("users = %v", got)
	}
	if _, ok := sub.Features("m1"); !ok {
		t.Error("mentor features should be carried over")
	}
	if _, ok := sub.Features("g1"); ok {
		t.Error("group features should be dropped")
	}

	// original graph is untouched
	if got := len(g.Edges()); got != 5 {
		t.Errorf("source graph edges = %d, want 5", got)
	}
}

func TestAddNodeFeatures_Copies(t *testing.T) {
	t.Parallel()

	g := New(zerolog.Nop())
	in := map[string]any{"level": "advanced"}
	g.AddNodeFeatures("u1", NodeUser, in)
	in["level"] = "beginner"

	f, ok := g.Features("u1")
	if !ok {
		t.Fatal("Features() missing")
	}
	if f.Type != NodeUser || f.Features["level"] != "advanced" {
		t.Errorf("Features() = %+v", f)
	}
}
