package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProfileEventType string

const (
	ProfileEventCVUploaded ProfileEventType = "profile.cv_uploaded"
)

type ProfileEvent struct {
	EventType  ProfileEventType `json:"event_type"`
	UserID     uuid.UUID        `json:"user_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type ProfileEventPublisher interface {
	PublishProfileEvent(ctx context.Context, e ProfileEvent) error
}
