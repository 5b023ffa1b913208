// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package recommend

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"mentor", KindMentor, false},
		{"mentors", KindMentor, false},
		{" Sessions ", KindSession, false},
		{"group", KindGroup, false},
		{"course", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKind) {
					t.Errorf("ParseKind(%q) error = %v, want ErrInvalidKind", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseKind(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"", "", false},
		{"weighted", MethodWeighted, false},
		{"CASCADING", MethodCascading, false},
		{"context-aware", MethodContextAware, false},
		{"context_aware", MethodContextAware, false},
		{"stacking", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCandidate_ID(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		want string
	}{
		{"mentor", MentorCandidate(MentorProfile{ID: "m1"}), "m1"},
		{"session", SessionCandidate(SessionProfile{ID: "s1"}), "s1"},
		{"group", GroupCandidate(GroupProfile{ID: "g1"}), "g1"},
		{"kind mismatch", Candidate{Kind: KindGroup, Mentor: &MentorProfile{ID: "m1"}}, ""},
		{"empty", Candidate{Kind: KindMentor}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.ID(); got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
			if tt.c.Valid() != (tt.want != "") {
				t.Errorf("Valid() = %v", tt.c.Valid())
			}
		})
	}
}

func TestRequest_CandidateIDs(t *testing.T) {
	req := Request{
		Kind: KindMentor,
		Candidates: []Candidate{
			MentorCandidate(MentorProfile{ID: "b"}),
			{Kind: KindMentor},
			MentorCandidate(MentorProfile{ID: "a"}),
		},
	}
	got := req.CandidateIDs()
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("CandidateIDs() = %v, want [b a]", got)
	}
}

func TestModelState_JSON(t *testing.T) {
	status := ModelStatus{
		Content: true,
		States:  map[string]ModelState{ModelGraph: StateGraphBuilt},
	}
	data, err := json.Marshal(status)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `"graph":"graph_built"`; !strings.Contains(string(data), want) {
		t.Errorf("json = %s, want it to contain %s", data, want)
	}
	if !status.Ready(ModelContent) || status.Ready(ModelGraph) || status.Ready("other") {
		t.Errorf("Ready() mismatch for %+v", status)
	}
}
