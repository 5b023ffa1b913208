// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graph

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

func TestEventsFromInteractions(t *testing.T) {
	t.Parallel()

	interactions := []recommend.Interaction{
		{UserID: "u1", ItemID: "m1", Type: "mentorship_pending", Weight: 1},
		{UserID: "u1", ItemID: "m1", Type: "mentorship_accepted", Weight: 4},
		{UserID: "u1", ItemID: "s1", Type: "session_registered", Weight: 1},
		{UserID: "u2", ItemID: "s1", Type: "session_completed", Weight: 3},
		{UserID: "u1", ItemID: "s1", Type: "session_attended", Weight: 2.5},
		{UserID: "u1", ItemID: "g1", Type: "group_membership", Weight: 2},
		{UserID: "u2", ItemID: "g1", Type: "group_membership", Weight: 2},
		{UserID: "u2", ItemID: "g1", Type: "group_membership", Weight: 2},
		{UserID: "u1", ItemID: "m1", Type: "goal_active", Weight: 3},
		{UserID: "u2", ItemID: "s1", Type: "rate_positive", Weight: 2.4},
		{UserID: "u3", ItemID: "x", Type: "view", Weight: 1},
	}

	events := EventsFromInteractions(interactions)

	if len(events.Mentorships) != 1 || events.Mentorships[0].Status != MentorshipAccepted {
		t.Errorf("Mentorships = %+v, want one accepted", events.Mentorships)
	}
	if len(events.Sessions) != 1 || len(events.Sessions[0].Participants) != 2 {
		t.Fatalf("Sessions = %+v", events.Sessions)
	}
	if p := events.Sessions[0].Participants[0]; p.UserID != "u1" || p.Status != ParticipantAttended {
		t.Errorf("first participant = %+v, want u1 attended", p)
	}
	if len(events.Groups) != 1 || len(events.Groups[0].Members) != 2 {
		t.Errorf("Groups = %+v, want one group with 2 members", events.Groups)
	}
	if len(events.Goals) != 1 || events.Goals[0].Status != GoalActive {
		t.Errorf("Goals = %+v", events.Goals)
	}
	if len(events.Feedback) != 1 {
		t.Errorf("Feedback = %+v", events.Feedback)
	}

	s := events.Graph(zerolog.Nop()).Stats()
	want := map[EdgeType]int{EdgeMentoredBy: 1, EdgeAttended: 2, EdgeMemberOf: 2, EdgeGroupPeer: 1}
	for typ, n := range want {
		if s.Edges[typ] != n {
			t.Errorf("Edges[%s] = %d, want %d", typ, s.Edges[typ], n)
		}
	}
}

func TestEventsFromInteractions_RoundTrip(t *testing.T) {
	t.Parallel()

	original := Events{
		Mentorships: []MentorshipRequest{{MenteeID: "u1", MentorID: "m1", Status: MentorshipAccepted}},
		Sessions: []StudySession{{ID: "s1", Participants: []SessionParticipant{
			{UserID: "u1", Status: ParticipantCompleted},
			{UserID: "u2"},
		}}},
		Groups: []StudyGroup{{ID: "g1", Members: []GroupMember{{UserID: "u1"}, {UserID: "u2"}, {UserID: "u3"}}}},
	}

	before := original.Graph(zerolog.Nop()).Stats()
	after := EventsFromInteractions(original.Interactions()).Graph(zerolog.Nop()).Stats()

	if before.TotalEdges != after.TotalEdges || before.TotalNodes != after.TotalNodes {
		t.Errorf("rebuilt graph = %d nodes / %d edges, want %d / %d",
			after.TotalNodes, after.TotalEdges, before.TotalNodes, before.TotalEdges)
	}
}
