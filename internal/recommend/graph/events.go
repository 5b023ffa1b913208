// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graph

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// Mentorship request statuses.
const (
	MentorshipAccepted  = "accepted"
	MentorshipPending   = "pending"
	MentorshipDeclined  = "declined"
	MentorshipCancelled = "cancelled"
)

// Session participant statuses. A missing status means registered.
const (
	ParticipantCompleted  = "completed"
	ParticipantAttended   = "attended"
	ParticipantRegistered = "registered"
	ParticipantCancelled  = "cancelled"
)

// Goal statuses.
const (
	GoalAchieved  = "achieved"
	GoalActive    = "active"
	GoalDelayed   = "delayed"
	GoalCancelled = "cancelled"
)

// MentorshipRequest links a mentee to a mentor.
type MentorshipRequest struct {
	ID          string    `json:"id,omitempty"`
	MenteeID    string    `json:"mentee_id" validate:"required"`
	MentorID    string    `json:"mentor_id" validate:"required"`
	Status      string    `json:"status,omitempty"`
	RequestedAt time.Time `json:"requested_at,omitempty"`
}

// SessionParticipant is one roster entry of a study session.
type SessionParticipant struct {
	UserID string `json:"user_id" validate:"required"`
	Status string `json:"status,omitempty"`
}

func (p SessionParticipant) status() string {
	if p.Status == "" {
		return ParticipantRegistered
	}
	return p.Status
}

// StudySession is a scheduled session with its roster.
type StudySession struct {
	ID           string               `json:"id" validate:"required"`
	OrganizerID  string               `json:"organizer_id,omitempty"`
	Participants []SessionParticipant `json:"participants,omitempty" validate:"dive"`
	ScheduledAt  time.Time            `json:"scheduled_at,omitempty"`
}

// GroupMember is one membership of a study group.
type GroupMember struct {
	UserID       string    `json:"user_id" validate:"required"`
	MessageCount int       `json:"message_count,omitempty"`
	JoinedAt     time.Time `json:"joined_at,omitempty"`
}

// StudyGroup is a group with its members.
type StudyGroup struct {
	ID      string        `json:"id" validate:"required"`
	Members []GroupMember `json:"members,omitempty" validate:"dive"`
}

// Goal is a mentee goal tracked with a mentor.
type Goal struct {
	ID       string `json:"id,omitempty"`
	MenteeID string `json:"mentee_id" validate:"required"`
	MentorID string `json:"mentor_id" validate:"required"`
	Status   string `json:"status,omitempty"`
	// Progress is a percentage in [0, 100].
	Progress  float64   `json:"progress,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// SessionFeedback is a 1-5 rating of a session. A zero rating means unrated
// and counts as 3.
type SessionFeedback struct {
	UserID    string    `json:"user_id" validate:"required"`
	SessionID string    `json:"session_id" validate:"required"`
	Rating    int       `json:"rating,omitempty" validate:"gte=0,lte=5"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Events is the collection of domain events that feed both the training
// interactions and the interaction graph.
type Events struct {
	Mentorships []MentorshipRequest `json:"mentorships,omitempty" validate:"dive"`
	Sessions    []StudySession      `json:"sessions,omitempty" validate:"dive"`
	Groups      []StudyGroup        `json:"groups,omitempty" validate:"dive"`
	Goals       []Goal              `json:"goals,omitempty" validate:"dive"`
	Feedback    []SessionFeedback   `json:"feedback,omitempty" validate:"dive"`
}

var (
	mentorshipWeights = map[string]float64{
		MentorshipAccepted:  4.0,
		MentorshipPending:   1.0,
		MentorshipDeclined:  0,
		MentorshipCancelled: 0.5,
	}
	sessionWeights = map[string]float64{
		ParticipantCompleted:  3.0,
		ParticipantAttended:   2.5,
		ParticipantRegistered: 1.0,
		ParticipantCancelled:  0,
	}
	goalWeights = map[string]float64{
		GoalAchieved:  5.0,
		GoalActive:    3.0,
		GoalDelayed:   2.0,
		GoalCancelled: 0.5,
	}
)

// Interactions converts the events into weighted training interactions.
// Declined mentorships and cancelled participations are dropped. Unknown
// statuses weigh 1.0 (goals: 3.0).
func (e Events) Interactions() []recommend.Interaction {
	out := make([]recommend.Interaction, 0, len(e.Mentorships)+len(e.Goals)+len(e.Feedback))

	for _, r := range e.Mentorships {
		status := r.Status
		if status == "" {
			status = MentorshipPending
		}
		w := weightOr(mentorshipWeights, status, 1.0)
		if w <= 0 {
			continue
		}
		out = append(out, recommend.Interaction{
			UserID:    r.MenteeID,
			ItemID:    r.MentorID,
			Type:      "mentorship_" + status,
			Weight:    w,
			Timestamp: r.RequestedAt,
		})
	}

	for _, s := range e.Sessions {
		for _, p := range s.Participants {
			status := p.status()
			w := weightOr(sessionWeights, status, 1.0)
			if w <= 0 {
				continue
			}
			out = append(out, recommend.Interaction{
				UserID:    p.UserID,
				ItemID:    s.ID,
				Type:      "session_" + status,
				Weight:    w,
				Timestamp: s.ScheduledAt,
			})
		}
	}

	for _, g := range e.Groups {
		for _, m := range g.Members {
			out = append(out, recommend.Interaction{
				UserID:    m.UserID,
				ItemID:    g.ID,
				Type:      "group_membership",
				Weight:    2.0 + messageBonus(m.MessageCount),
				Timestamp: m.JoinedAt,
			})
		}
	}

	for _, goal := range e.Goals {
		status := goal.Status
		if status == "" {
			status = GoalActive
		}
		progress := math.Max(0, math.Min(goal.Progress, 100))
		out = append(out, recommend.Interaction{
			UserID:    goal.MenteeID,
			ItemID:    goal.MentorID,
			Type:      "goal_" + status,
			Weight:    weightOr(goalWeights, status, 3.0) + progress/100*2,
			Timestamp: goal.CreatedAt,
		})
	}

	for _, f := range e.Feedback {
		rating := f.Rating
		if rating == 0 {
			rating = 3
		}
		typ := "rate_neutral"
		if rating >= 4 {
			typ = "rate_positive"
		}
		out = append(out, recommend.Interaction{
			UserID:    f.UserID,
			ItemID:    f.SessionID,
			Type:      typ,
			Weight:    float64(rating) / 5 * 3,
			Timestamp: f.CreatedAt,
		})
	}

	return out
}

// Graph builds the interaction graph of the events.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e Events) Graph(logger zerolog.Logger) *Graph {
	g := New(logger)
	g.AddMentorships(e.Mentorships)
	g.AddSessions(e.Sessions)
	g.AddGroups(e.Groups)

	s := g.Stats()
	g.logger.Info().
		Int("nodes", s.TotalNodes).
		Int("edges", s.TotalEdges).
		Msg("interaction graph built")
	return g
}

func messageBonus(messages int) float64 {
	switch {
	case messages > 50:
		return 2.0
	case messages > 10:
		return 1.0
	case messages > 0:
		return 0.5
	}
	return 0
}

func weightOr(weights map[string]float64, status string, fallback float64) float64 {
	if w, ok := weights[status]; ok {
		return w
	}
	return fallback
}
