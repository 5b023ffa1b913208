// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package algorithms

import (
	"math"
	"slices"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// Subjects is the fixed subject vocabulary shared by every profile layout.
var Subjects = []string{
	"mathematics",
	"programming",
	"data-science",
	"machine-learning",
	"web-development",
	"algorithms",
	"databases",
	"other",
}

// GoalCategories is the fixed goal vocabulary of the user layout.
var GoalCategories = []string{
	"skill-development",
	"career",
	"academic",
	"project",
	"certification",
}

// VectorLen is the length of every profile vector.
const VectorLen = 15

const (
	defaultLevel       = 0.66
	defaultSuccessRate = 0.8
	defaultDuration    = 1.0
)

var levelValues = map[string]float64{
	"beginner":     0.33,
	"intermediate": 0.66,
	"advanced":     1.0,
}

// LevelValue maps a skill or difficulty level to its ordinal encoding.
func LevelValue(level string) float64 {
	if v, ok := levelValues[level]; ok {
		return v
	}
	return defaultLevel
}

// VectorizeUser encodes a learner profile:
// subject interests, skill level, streak activity and goal categories.
func VectorizeUser(u recommend.UserProfile) []float64 {
	v := make([]float64, 0, VectorLen)
	v = appendOneHots(v, Subjects, u.Interests)
	v = append(v,
		LevelValue(u.SkillLevel),
		math.Min(float64(u.Streak)/100.0, 1.0),
	)
	v = appendOneHots(v, GoalCategories, u.GoalCategories)
	return v
}

// VectorizeMentor encodes a mentor profile:
// domain expertise, experience, success rate and availability, padded to
// align with the user goal block.
func VectorizeMentor(m recommend.MentorProfile) []float64 {
	v := make([]float64, 0, VectorLen)
	v = appendOneHots(v, Subjects, m.Domains)
	v = append(v,
		1.0,
		successRate(m),
		math.Max(0, 1-float64(m.ActiveMentees)/10.0),
	)
	return pad(v)
}

// VectorizeSession encodes a study session profile.
func VectorizeSession(s recommend.SessionProfile) []float64 {
	subject := s.Subject
	if subject == "" {
		subject = "other"
	}
	duration := s.DurationHours
	if duration == 0 {
		duration = defaultDuration
	}

	v := make([]float64, 0, VectorLen)
	v = appendOneHots(v, Subjects, []string{subject})
	v = append(v,
		LevelValue(s.Level),
		math.Min(duration/4.0, 1.0),
		math.Min(float64(s.CurrentParticipants)/20.0, 1.0),
	)
	return pad(v)
}

// VectorizeGroup encodes a study group profile: category, activity and
// remaining capacity.
func VectorizeGroup(g recommend.GroupProfile) []float64 {
	members := float64(len(g.MemberIDs))
	maxMembers := float64(groupCapacity(g))

	v := make([]float64, 0, VectorLen)
	v = appendOneHots(v, Subjects, []string{categoryKey(g.Category)})
	v = append(v,
		math.Min(members/30.0, 1.0),
		math.Max(0, 1-members/maxMembers),
	)
	return pad(v)
}

// VectorizeCandidate dispatches on the candidate variant. An empty variant
// yields a zero vector.
func VectorizeCandidate(c recommend.Candidate) []float64 {
	switch {
	case c.Kind == recommend.KindMentor && c.Mentor != nil:
		return VectorizeMentor(*c.Mentor)
	case c.Kind == recommend.KindSession && c.Session != nil:
		return VectorizeSession(*c.Session)
	case c.Kind == recommend.KindGroup && c.Group != nil:
		return VectorizeGroup(*c.Group)
	}
	return make([]float64, VectorLen)
}

// Similarity is the cosine similarity of a and b clamped to [0, 1].
// Vectors of different length are truncated to the shorter one; zero
// vectors have no similarity.
func Similarity(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	sim := cosineSimilarity(a[:n], b[:n])
	if math.IsNaN(sim) || sim < 0 {
		return 0
	}
	return math.Min(sim, 1)
}

func appendOneHots(v []float64, vocab, values []string) []float64 {
	for _, term := range vocab {
		if slices.Contains(values, term) {
			v = append(v, 1)
		} else {
			v = append(v, 0)
		}
	}
	return v
}

func pad(v []float64) []float64 {
	for len(v) < VectorLen {
		v = append(v, 0)
	}
	return v
}

func successRate(m recommend.MentorProfile) float64 {
	if m.SuccessRate == nil {
		return defaultSuccessRate
	}
	return *m.SuccessRate
}
