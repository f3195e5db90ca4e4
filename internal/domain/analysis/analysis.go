package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/career-compass/internal/domain/profile"
)

type RoadmapStep struct {
	Step    int    `json:"step"`
	Action  string `json:"action"`
	Details string `json:"details"`
}

type CareerPath struct {
	CareerPath        string        `json:"career_path"`
	SuitabilityReason string        `json:"suitability_reason"`
	RequiredSkills    []string      `json:"required_skills"`
	Roadmap           []RoadmapStep `json:"roadmap"`
}

// CareerAnalysis is an immutable history record. Result holds the serialized
// career paths exactly as they were stored.
type CareerAnalysis struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

func New(userID uuid.UUID, paths []CareerPath, now time.Time) (*CareerAnalysis, error) {
	if paths == nil {
		paths = []CareerPath{}
	}
	raw, err := json.Marshal(paths)
	if err != nil {
		return nil, fmt.Errorf("marshal career paths: %w", err)
	}
	return &CareerAnalysis{
		ID:        uuid.New(),
		UserID:    userID,
		Result:    raw,
		CreatedAt: now,
	}, nil
}

// ProfileSnapshot is the profile data handed to the AI service.
type ProfileSnapshot struct {
	Name           string `json:"name"`
	Degree         string `json:"degree"`
	Qualifications string `json:"qualifications"`
	Skills         string `json:"skills"`
	CVText         string `json:"cv_text"`
}

func SnapshotOf(p *profile.Profile) ProfileSnapshot {
	return ProfileSnapshot{
		Name:           deref(p.Name),
		Degree:         deref(p.Degree),
		Qualifications: deref(p.Qualifications),
		Skills:         deref(p.Skills),
		CVText:         deref(p.CVText),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type Repository interface {
	Save(ctx context.Context, a *CareerAnalysis) error
	// ListByUser returns the user's analyses, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*CareerAnalysis, error)
	// CountByUser grows with every Save; history is append-only.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
