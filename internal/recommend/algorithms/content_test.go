// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package algorithms

import (
	"math"
	"testing"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

func rate(v float64) *float64 { return &v }

func TestVectorizeLayouts(t *testing.T) {
	user := VectorizeUser(recommend.UserProfile{
		Interests:      []string{"programming", "databases"},
		SkillLevel:     "advanced",
		Streak:         250,
		GoalCategories: []string{"career"},
	})
	mentor := VectorizeMentor(recommend.MentorProfile{Domains: []string{"programming"}, ActiveMentees: 15})
	session := VectorizeSession(recommend.SessionProfile{})
	group := VectorizeGroup(recommend.GroupProfile{Category: "Algorithms", MemberIDs: []string{"a", "b", "c"}, MaxMembers: 6})

	for name, v := range map[string][]float64{"user": user, "mentor": mentor, "session": session, "group": group} {
		if len(v) != VectorLen {
			t.Errorf("%s vector len = %d, want %d", name, len(v), VectorLen)
		}
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"user programming", user[1], 1},
		{"user databases", user[6], 1},
		{"user skill", user[8], 1.0},
		{"user streak capped", user[9], 1.0},
		{"user career goal", user[11], 1},
		{"mentor experience", mentor[8], 1.0},
		{"mentor default success rate", mentor[9], 0.8},
		{"mentor availability floor", mentor[10], 0},
		{"session defaults to other", session[7], 1},
		{"session default level", session[8], 0.66},
		{"session default duration", session[9], 0.25},
		{"group lowercased category", group[5], 1},
		{"group activity", group[8], 0.1},
		{"group availability", group[9], 0.5},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLevelValue(t *testing.T) {
	tests := map[string]float64{
		"beginner":     0.33,
		"intermediate": 0.66,
		"advanced":     1.0,
		"":             0.66,
		"expert":       0.66,
	}
	for level, want := range tests {
		if got := LevelValue(level); got != want {
			t.Errorf("LevelValue(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"negative clamps to zero", []float64{1, 0}, []float64{-1, 0}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"truncates to shorter", []float64{1, 0, 5}, []float64{1, 0}, 1},
		{"empty", nil, []float64{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Similarity() = %v outside [0, 1]", got)
			}
		})
	}
}

func TestContentScores(t *testing.T) {
	user := recommend.UserProfile{Interests: []string{"programming", "algorithms"}, SkillLevel: "beginner"}

	t.Run("mentor formula", func(t *testing.T) {
		m := recommend.MentorProfile{ID: "m1", Domains: []string{"programming"}, SuccessRate: rate(0.5)}
		got := ContentScores(user, []recommend.Candidate{recommend.MentorCandidate(m)})
		sim := Similarity(VectorizeUser(user), VectorizeMentor(m))
		want := 0.8*sim + 0.2*0.5
		if len(got) != 1 || math.Abs(got[0].Score-want) > 1e-12 {
			t.Errorf("mentor score = %v, want %v", got, want)
		}
	})

	t.Run("session availability", func(t *testing.T) {
		full := recommend.SessionProfile{ID: "full", Subject: "programming", CurrentParticipants: 20}
		open := recommend.SessionProfile{ID: "open", Subject: "programming", CurrentParticipants: 0}
		got := ContentScores(user, []recommend.Candidate{
			recommend.SessionCandidate(full),
			recommend.SessionCandidate(open),
		})
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].ID != "full" || got[1].ID != "open" {
			t.Errorf("ContentScores should keep input order: %v", got)
		}
	})

	t.Run("group match and capacity", func(t *testing.T) {
		groups := []recommend.Candidate{
			recommend.GroupCandidate(recommend.GroupProfile{ID: "match", Category: "Programming", MemberIDs: make([]string, 15)}),
			recommend.GroupCandidate(recommend.GroupProfile{ID: "other", Category: "History", MemberIDs: make([]string, 15)}),
			recommend.GroupCandidate(recommend.GroupProfile{ID: "full", Category: "programming", MemberIDs: make([]string, 4), MaxMembers: 4}),
		}
		got := ContentScores(user, groups)
		if len(got) != 2 {
			t.Fatalf("full group should be excluded, got %v", got)
		}
		if math.Abs(got[0].Score-(0.6*1.0+0.4*0.5)) > 1e-12 {
			t.Errorf("matching group score = %v, want 0.8", got[0].Score)
		}
		if math.Abs(got[1].Score-(0.6*0.5+0.4*0.5)) > 1e-12 {
			t.Errorf("other group score = %v, want 0.5", got[1].Score)
		}
	})

	t.Run("empty and invalid candidates", func(t *testing.T) {
		if got := ContentScores(user, nil); got == nil || len(got) != 0 {
			t.Errorf("ContentScores(nil) = %v, want empty", got)
		}
		invalid := []recommend.Candidate{{Kind: recommend.KindMentor}}
		if got := ContentScores(user, invalid); len(got) != 0 {
			t.Errorf("invalid candidate scored: %v", got)
		}
	})
}

func TestRecommendContent(t *testing.T) {
	user := recommend.UserProfile{Interests: []string{"databases"}}
	candidates := []recommend.Candidate{
		recommend.MentorCandidate(recommend.MentorProfile{ID: "a", Domains: []string{"mathematics"}}),
		recommend.MentorCandidate(recommend.MentorProfile{ID: "b", Domains: []string{"databases"}}),
		recommend.MentorCandidate(recommend.MentorProfile{ID: "c", Domains: []string{"mathematics"}}),
	}

	got := RecommendContent(user, candidates, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "b" {
		t.Errorf("top = %s, want b", got[0].ID)
	}
	if got[1].ID != "a" {
		t.Errorf("tie should keep input order, got %s", got[1].ID)
	}
}

func TestExplain(t *testing.T) {
	user := recommend.UserProfile{
		Interests:  []string{"programming", "algorithms", "databases"},
		SkillLevel: "intermediate",
	}

	tests := []struct {
		name      string
		candidate recommend.Candidate
		want      string
	}{
		{
			name: "mentor with expertise and success rate",
			candidate: recommend.MentorCandidate(recommend.MentorProfile{
				ID: "m", Domains: []string{"databases", "algorithms", "programming"}, SuccessRate: rate(0.92),
			}),
			want: "Expertise in programming, algorithms • 92% success rate",
		},
		{
			name:      "mentor at threshold",
			candidate: recommend.MentorCandidate(recommend.MentorProfile{ID: "m", SuccessRate: rate(0.8)}),
			want:      "Recommended for you",
		},
		{
			name: "session level and interest",
			candidate: recommend.SessionCandidate(recommend.SessionProfile{
				ID: "s", Subject: "algorithms", Level: "intermediate",
			}),
			want: "Matches your intermediate level • Based on your interest in algorithms",
		},
		{
			name:      "session without signal",
			candidate: recommend.SessionCandidate(recommend.SessionProfile{ID: "s", Subject: "mathematics", Level: "advanced"}),
			want:      "Recommended for you",
		},
		{
			name:      "group size",
			candidate: recommend.GroupCandidate(recommend.GroupProfile{ID: "g", MemberIDs: []string{"a", "b", "c"}}),
			want:      "Active group with 3 members",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Explain(user, tt.candidate); got != tt.want {
				t.Errorf("Explain() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	idx := NewIndex([]string{"c", "a", "b", "a"})
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}
	for i, want := range []string{"a", "b", "c"} {
		if idx.ID(i) != want {
			t.Errorf("ID(%d) = %q, want %q", i, idx.ID(i), want)
		}
		if got, ok := idx.Lookup(want); !ok || got != i {
			t.Errorf("Lookup(%q) = %d, %v", want, got, ok)
		}
	}
	if _, ok := idx.Lookup("z"); ok {
		t.Error("Lookup of unknown id should fail")
	}

	var empty *Index
	if empty.Len() != 0 || empty.IDs() != nil {
		t.Error("nil index should be empty")
	}
}
