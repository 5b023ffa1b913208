// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kind identifies the type of entity being recommended.
type Kind string

const (
	// KindMentor recommends mentors.
	KindMentor Kind = "mentor"
	// KindSession recommends study sessions.
	KindSession Kind = "session"
	// KindGroup recommends study groups.
	KindGroup Kind = "group"
)

// ParseKind converts a string (singular or plural) into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "mentor":
		return KindMentor, nil
	case "session":
		return KindSession, nil
	case "group":
		return KindGroup, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Method selects the ensemble fusion policy.
type Method string

const (
	// MethodWeighted fuses normalized scores with the default weights.
	MethodWeighted Method = "weighted"
	// MethodCascading narrows candidates graph -> collaborative -> content.
	MethodCascading Method = "cascading"
	// MethodContextAware picks weights from user engagement and kind.
	MethodContextAware Method = "context_aware"
)

// ParseMethod converts a string into a Method. Empty input returns "".
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case MethodWeighted:
		return MethodWeighted, nil
	case MethodCascading:
		return MethodCascading, nil
	case MethodContextAware, "context-aware", "contextaware":
		return MethodContextAware, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
}

// Interaction is a weighted user-item event used for training.
type Interaction struct {
	// UserID is the learner who interacted.
	UserID string `json:"user_id" validate:"required"`

	// ItemID is the mentor, session or group interacted with.
	ItemID string `json:"item_id" validate:"required"`

	// Type is the interaction type (view, join, complete, rate_positive, bookmark, ...).
	Type string `json:"interaction_type,omitempty"`

	// Weight is the recorded strength of the interaction. Must be >= 0.
	Weight float64 `json:"weight" validate:"gte=0"`

	// Timestamp is when the interaction happened. Zero means unknown.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// UserProfile is the learner attributes used by content scoring.
type UserProfile struct {
	ID             string   `json:"id,omitempty"`
	Interests      []string `json:"interests,omitempty"`
	SkillLevel     string   `json:"skill_level,omitempty"`
	Streak         int      `json:"streak,omitempty" validate:"gte=0"`
	GoalCategories []string `json:"goal_categories,omitempty"`
}

// MentorProfile is the fixed attribute set of a mentor candidate.
type MentorProfile struct {
	ID      string   `json:"id" validate:"required"`
	Domains []string `json:"domains,omitempty"`
	// SuccessRate is in [0, 1]. Nil means unknown.
	SuccessRate   *float64 `json:"success_rate,omitempty"`
	ActiveMentees int      `json:"active_mentees,omitempty"`
}

// SessionProfile is the fixed attribute set of a study session candidate.
type SessionProfile struct {
	ID                  string  `json:"id" validate:"required"`
	Subject             string  `json:"subject,omitempty"`
	Level               string  `json:"level,omitempty"`
	DurationHours       float64 `json:"duration,omitempty"`
	CurrentParticipants int     `json:"current_participants,omitempty"`
	MaxParticipants     int     `json:"max_participants,omitempty"`
}

// GroupProfile is the fixed attribute set of a study group candidate.
type GroupProfile struct {
	ID         string   `json:"id" validate:"required"`
	Category   string   `json:"category,omitempty"`
	MemberIDs  []string `json:"members,omitempty"`
	MaxMembers int      `json:"max_members,omitempty"`
}

// Candidate is a tagged variant: exactly one of Mentor, Session or Group is
// set, matching Kind.
type Candidate struct {
	Kind    Kind            `json:"kind"`
	Mentor  *MentorProfile  `json:"mentor,omitempty"`
	Session *SessionProfile `json:"session,omitempty"`
	Group   *GroupProfile   `json:"group,omitempty"`
}

// MentorCandidate wraps a mentor profile.
func MentorCandidate(m MentorProfile) Candidate {
	return Candidate{Kind: KindMentor, Mentor: &m}
}

// SessionCandidate wraps a session profile.
func SessionCandidate(s SessionProfile) Candidate {
	return Candidate{Kind: KindSession, Session: &s}
}

// GroupCandidate wraps a group profile.
func GroupCandidate(g GroupProfile) Candidate {
	return Candidate{Kind: KindGroup, Group: &g}
}

// ID returns the identifier of the wrapped profile, or "" if the variant is empty.
func (c Candidate) ID() string {
	switch c.Kind {
	case KindMentor:
		if c.Mentor != nil {
			return c.Mentor.ID
		}
	case KindSession:
		if c.Session != nil {
			return c.Session.ID
		}
	case KindGroup:
		if c.Group != nil {
			return c.Group.ID
		}
	}
	return ""
}

// Valid reports whether the variant matching Kind is present and has an ID.
func (c Candidate) Valid() bool {
	return c.ID() != ""
}

// ScoredID is a raw per-model score for one item.
type ScoredID struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Recommendation is a fused, explained result.
type Recommendation struct {
	// ItemID is the recommended entity.
	ItemID string `json:"item_id"`

	// Score is the fused score in [0, 1].
	Score float64 `json:"score"`

	// Explanation is a short human-readable justification.
	Explanation string `json:"explanation"`
}

// Request is a recommendation request for one user and one candidate kind.
type Request struct {
	Kind       Kind        `json:"kind"`
	UserID     string      `json:"user_id"`
	Profile    UserProfile `json:"profile"`
	Candidates []Candidate `json:"candidates"`
	TopK       int         `json:"top_k,omitempty"`

	// Method overrides the configured ensemble method when non-empty.
	Method Method `json:"method,omitempty"`
}

// CandidateIDs returns the candidate identifiers in input order.
func (r *Request) CandidateIDs() []string {
	ids := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		if id := c.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ModelState is the lifecycle state of a trainable model.
type ModelState int

const (
	// StateUntrained means the model cannot score anything.
	StateUntrained ModelState = iota
	// StateGraphBuilt means the graph and embedding tables exist but are not trained.
	StateGraphBuilt
	// StateTrained means predictions are valid.
	StateTrained
)

// String returns a human-readable name for the state.
func (s ModelState) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateGraphBuilt:
		return "graph_built"
	case StateTrained:
		return "trained"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON.
func (s ModelState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Model names used in status, metrics and weights.
const (
	ModelContent       = "content"
	ModelCollaborative = "collaborative"
	ModelGraph         = "graph"
)

// ModelStatus reports which models are ready to contribute to fusion.
type ModelStatus struct {
	Content       bool `json:"content"`
	Collaborative bool `json:"collaborative"`
	Graph         bool `json:"graph"`

	// States holds the lifecycle state per model name.
	States map[string]ModelState `json:"states"`
}

// Ready reports whether the named model is ready.
func (s ModelStatus) Ready(model string) bool {
	switch model {
	case ModelContent:
		return s.Content
	case ModelCollaborative:
		return s.Collaborative
	case ModelGraph:
		return s.Graph
	}
	return false
}

// TrainingStatus represents the engine's training state.
type TrainingStatus struct {
	IsTraining             bool      `json:"is_training"`
	LastTrainedAt          time.Time `json:"last_trained_at"`
	LastTrainingDurationMS int64     `json:"last_training_duration_ms"`
	LastError              string    `json:"last_error,omitempty"`
	InteractionCount       int       `json:"interaction_count"`
	UserCount              int       `json:"user_count"`
	ItemCount              int       `json:"item_count"`
	ModelVersion           int       `json:"model_version"`
}

// Status is the combined engine status returned by the status endpoint.
type Status struct {
	Models   ModelStatus        `json:"models"`
	Training TrainingStatus     `json:"training"`
	Method   Method             `json:"method"`
	Weights  map[string]float64 `json:"weights"`
}

// Hybrid is the ensemble the engine delegates model work to.
type Hybrid interface {
	// TrainCollaborative trains the latent factor model.
	TrainCollaborative(ctx context.Context, interactions []Interaction, useFactorization bool) error

	// TrainGraph builds the interaction graph and trains the graph embedding model.
	TrainGraph(ctx context.Context, interactions []Interaction, epochs int, learningRate float64) error

	// Recommend scores, fuses and explains the candidates of req.
	Recommend(ctx context.Context, method Method, req Request) ([]Recommendation, error)

	// RankByModel returns the raw ranking of a single model (content excluded).
	RankByModel(model, userID string, candidateIDs []string, k int) []ScoredID

	// SimilarItems ranks known items by latent factor similarity to itemID.
	SimilarItems(itemID string, k int) []ScoredID

	// ModelStatus reports model readiness.
	ModelStatus() ModelStatus

	// UpdatePerformance records an evaluation metric for a model.
	UpdatePerformance(model string, value float64)

	// Weights returns the coordinator's default fusion weights.
	Weights() map[string]float64

	// Persistables returns the models that can be snapshotted.
	Persistables() []Persistable
}

// Persistable is a model whose trained state can be saved and restored.
type Persistable interface {
	// Name is the storage key of the model.
	Name() string

	// Snapshot returns a gob-encodable copy of the trained state, or nil
	// when there is nothing to save.
	Snapshot() any

	// Restore replaces the model state from a stored snapshot. decode fills
	// a pointer to the model's snapshot type.
	Restore(decode func(into any) error) error
}

// ModelStore persists model snapshots.
type ModelStore interface {
	SaveModel(ctx context.Context, name string, snapshot any, info SnapshotInfo) error
	LoadLatestModel(ctx context.Context, name string, into any) (SnapshotInfo, error)
}

// SnapshotInfo describes a stored model snapshot.
type SnapshotInfo struct {
	Version            int       `json:"version"`
	TrainedAt          time.Time `json:"trained_at"`
	InteractionCount   int       `json:"interaction_count"`
	UserCount          int       `json:"user_count"`
	ItemCount          int       `json:"item_count"`
	TrainingDurationMS int64     `json:"training_duration_ms"`
}

// InteractionSink accepts new interactions for later training.
type InteractionSink interface {
	Append(ctx context.Context, interactions []Interaction) error
}

// InteractionSource supplies training data.
type InteractionSource interface {
	ListInteractions(ctx context.Context) ([]Interaction, error)
	CountInteractions(ctx context.Context) (int, error)
}
