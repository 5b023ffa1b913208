// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package api

import (
	"github.com/tomtom215/mentormatch/internal/recommend"
)

const (
	// maxRequestBodyBytes bounds every JSON request body.
	maxRequestBodyBytes = 8 << 20

	// defaultSimilarK is used when the k query parameter is absent.
	defaultSimilarK = 10
)

// RecommendRequest is the body of POST /api/v1/recommend/{kind}. The kind
// comes from the path.
type RecommendRequest struct {
	UserID     string                `json:"user_id" validate:"required,max=256"`
	Profile    recommend.UserProfile `json:"profile"`
	Candidates []recommend.Candidate `json:"candidates" validate:"max=1000,dive"`
	TopK       int                   `json:"top_k" validate:"gte=0,lte=1000"`
	Method     string                `json:"method" validate:"omitempty,ensemble_method"`
}

// toRequest converts the body into an engine request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (req RecommendRequest) toRequest(kind recommend.Kind) recommend.Request {
	return recommend.Request{
		Kind:       kind,
		UserID:     req.UserID,
		Profile:    req.Profile,
		Candidates: req.Candidates,
		TopK:       req.TopK,
		Method:     recommend.Method(req.Method),
	}
}

// TrainRequest is the body of POST /api/v1/recommend/train. Every field is
// optional; an empty body trains both models with the configured settings.
type TrainRequest struct {
	Models           []string `json:"models" validate:"omitempty,max=2,dive,trainable_model"`
	UseFactorization *bool    `json:"use_factorization"`
	Epochs           int      `json:"epochs" validate:"gte=0,lte=10000"`
	LearningRate     float64  `json:"learning_rate" validate:"gte=0,lte=1"`
}

func (req *TrainRequest) toOptions() recommend.TrainOptions {
	return recommend.TrainOptions{
		Models:           req.Models,
		UseFactorization: req.UseFactorization,
		Epochs:           req.Epochs,
		LearningRate:     req.LearningRate,
	}
}

// InteractionsRequest is the body of POST /api/v1/interactions.
type InteractionsRequest struct {
	Interactions []recommend.Interaction `json:"interactions" validate:"required,min=1,max=10000,dive"`
}

// SimilarItemsRequest holds the validated parameters of GET /api/v1/items/{id}/similar.
type SimilarItemsRequest struct {
	ItemID string `validate:"required,max=256"`
	K      int    `validate:"min=1,max=100"`
}
