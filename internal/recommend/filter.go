// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package recommend

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	filterEnv     *cel.Env
	filterEnvErr  error
	filterEnvOnce sync.Once
)

// candidateEnv returns the shared CEL environment. It declares two dynamic
// variables: candidate and user.
func candidateEnv() (*cel.Env, error) {
	filterEnvOnce.Do(func() {
		filterEnv, filterEnvErr = cel.NewEnv(
			cel.Variable("candidate", cel.DynType),
			cel.Variable("user", cel.DynType),
		)
	})
	return filterEnv, filterEnvErr
}

// CandidateFilter drops candidates that do not satisfy a CEL expression
// before scoring. Expressions see two maps:
//
//	candidate: id, kind, domains, success_rate, active_mentees, subject,
//	           level, duration, current_participants, max_participants,
//	           category, members, max_members
//	user:      id, interests, skill_level, streak, goal_categories
//
// Every key is present for every kind; attributes that do not apply to a
// kind hold their zero value. Counts are ints and rates are doubles, e.g.
//
//	candidate.kind != "mentor" || candidate.success_rate >= 0.5
//	candidate.level == user.skill_level
//
// A nil *CandidateFilter matches everything. The compiled program is safe
// for concurrent use.
type CandidateFilter struct {
	expr string
	prg  cel.Program
}

// NewCandidateFilter compiles expr. An empty expression returns a nil
// filter and no error.
func NewCandidateFilter(expr string) (*CandidateFilter, error) {
	if expr == "" {
		return nil, nil
	}

	env, err := candidateEnv()
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: filter expression: %v", ErrInvalidConfig, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: filter expression must return bool, got %s", ErrInvalidConfig, out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: filter program: %v", ErrInvalidConfig, err)
	}

	return &CandidateFilter{expr: expr, prg: prg}, nil
}

// Expression returns the source expression.
func (f *CandidateFilter) Expression() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter for one candidate.
func (f *CandidateFilter) Match(user UserProfile, c Candidate) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, _, err := f.prg.Eval(map[string]any{
		"candidate": candidateVars(c),
		"user":      userVars(user),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate filter for %s: %w", c.ID(), err)
	}

	match, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", out.Value())
	}
	return match, nil
}

// Apply returns the candidates that match, preserving order. Candidates
// whose evaluation fails are dropped; the first such error is returned
// alongside the kept candidates.
func (f *CandidateFilter) Apply(user UserProfile, candidates []Candidate) ([]Candidate, error) {
	if f == nil {
		return candidates, nil
	}

	var firstErr error
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		ok, err := f.Match(user, c)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			kept = append(kept, c)
		}
	}
	return kept, firstErr
}

func candidateVars(c Candidate) map[string]any {
	vars := map[string]any{
		"id":                   c.ID(),
		"kind":                 string(c.Kind),
		"domains":              []string{},
		"success_rate":         0.0,
		"active_mentees":       int64(0),
		"subject":              "",
		"level":                "",
		"duration":             0.0,
		"current_participants": int64(0),
		"max_participants":     int64(0),
		"category":             "",
		"members":              int64(0),
		"max_members":          int64(0),
	}

	switch {
	case c.Mentor != nil:
		m := c.Mentor
		if m.Domains != nil {
			vars["domains"] = m.Domains
		}
		if m.SuccessRate != nil {
			vars["success_rate"] = *m.SuccessRate
		}
		vars["active_mentees"] = int64(m.ActiveMentees)
	case c.Session != nil:
		s := c.Session
		vars["subject"] = s.Subject
		vars["level"] = s.Level
		vars["duration"] = s.DurationHours
		vars["current_participants"] = int64(s.CurrentParticipants)
		vars["max_participants"] = int64(s.MaxParticipants)
	case c.Group != nil:
		g := c.Group
		vars["category"] = g.Category
		vars["members"] = int64(len(g.MemberIDs))
		vars["max_members"] = int64(g.MaxMembers)
	}
	return vars
}

func userVars(u UserProfile) map[string]any {
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	goals := u.GoalCategories
	if goals == nil {
		goals = []string{}
	}
	return map[string]any{
		"id":              u.ID,
		"interests":       interests,
		"skill_level":     u.SkillLevel,
		"streak":          int64(u.Streak),
		"goal_categories": goals,
	}
}
