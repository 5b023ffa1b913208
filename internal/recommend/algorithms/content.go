// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package algorithms

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

const (
	defaultMaxParticipants = 20
	defaultMaxMembers      = 50

	explanationSeparator = " • "
	fallbackExplanation  = "Recommended for you"
)

// ContentScores scores every candidate against the user profile. Results
// keep the input order. Groups at capacity and empty variants are omitted.
//
// Mentor:  0.8 * similarity + 0.2 * success rate
// Session: 0.9 * similarity + 0.1 * availability
// Group:   0.6 * category match + 0.4 * activity
func ContentScores(user recommend.UserProfile, candidates []recommend.Candidate) []recommend.ScoredID {
	if len(candidates) == 0 {
		return []recommend.ScoredID{}
	}

	userVec := VectorizeUser(user)
	scores := make([]recommend.ScoredID, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if !Eligible(*c) {
			continue
		}
		score, ok := contentScore(user, userVec, c)
		if !ok {
			continue
		}
		scores = append(scores, recommend.ScoredID{ID: c.ID(), Score: score})
	}
	return scores
}

// RecommendContent ranks candidates by content score, ties in input order.
func RecommendContent(user recommend.UserProfile, candidates []recommend.Candidate, topK int) []recommend.ScoredID {
	return rankTopK(ContentScores(user, candidates), topK)
}

func contentScore(user recommend.UserProfile, userVec []float64, c *recommend.Candidate) (float64, bool) {
	switch c.Kind {
	case recommend.KindMentor:
		sim := Similarity(userVec, VectorizeMentor(*c.Mentor))
		return 0.8*sim + 0.2*successRate(*c.Mentor), true

	case recommend.KindSession:
		s := c.Session
		maxParticipants := s.MaxParticipants
		if maxParticipants <= 0 {
			maxParticipants = defaultMaxParticipants
		}
		availability := 1.0 - float64(s.CurrentParticipants)/float64(maxParticipants)
		sim := Similarity(userVec, VectorizeSession(*s))
		return 0.9*sim + 0.1*availability, true

	case recommend.KindGroup:
		g := c.Group
		members := len(g.MemberIDs)
		categoryMatch := 0.5
		if slices.Contains(user.Interests, categoryKey(g.Category)) {
			categoryMatch = 1.0
		}
		activity := math.Min(float64(members)/30.0, 1.0)
		return 0.6*categoryMatch + 0.4*activity, true
	}
	return 0, false
}

// Explain builds a short justification for recommending c to user.
func Explain(user recommend.UserProfile, c recommend.Candidate) string {
	var parts []string

	switch {
	case c.Kind == recommend.KindMentor && c.Mentor != nil:
		var common []string
		for _, interest := range user.Interests {
			if slices.Contains(c.Mentor.Domains, interest) && !slices.Contains(common, interest) {
				common = append(common, interest)
			}
			if len(common) == 2 {
				break
			}
		}
		if len(common) > 0 {
			parts = append(parts, "Expertise in "+strings.Join(common, ", "))
		}
		if rate := c.Mentor.SuccessRate; rate != nil && *rate > 0.8 {
			parts = append(parts, fmt.Sprintf("%d%% success rate", int(*rate*100)))
		}

	case c.Kind == recommend.KindSession && c.Session != nil:
		if c.Session.Level != "" && user.SkillLevel == c.Session.Level {
			parts = append(parts, fmt.Sprintf("Matches your %s level", c.Session.Level))
		}
		if c.Session.Subject != "" && slices.Contains(user.Interests, c.Session.Subject) {
			parts = append(parts, "Based on your interest in "+c.Session.Subject)
		}

	case c.Kind == recommend.KindGroup && c.Group != nil:
		parts = append(parts, fmt.Sprintf("Active group with %d members", len(c.Group.MemberIDs)))
	}

	if len(parts) == 0 {
		return fallbackExplanation
	}
	return strings.Join(parts, explanationSeparator)
}

// Eligible reports whether c can be recommended at all: the variant is set
// and, for groups, the group still has room.
func Eligible(c recommend.Candidate) bool {
	if !c.Valid() {
		return false
	}
	if c.Kind == recommend.KindGroup {
		return len(c.Group.MemberIDs) < groupCapacity(*c.Group)
	}
	return true
}

func groupCapacity(g recommend.GroupProfile) int {
	if g.MaxMembers <= 0 {
		return defaultMaxMembers
	}
	return g.MaxMembers
}

// categoryKey lowercases a group category; an unset category is "general".
func categoryKey(s string) string {
	if s == "" {
		return "general"
	}
	return strings.ToLower(s)
}
