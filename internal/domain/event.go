package domain

import (
	"context"
	"time"
)

const (
	EventUserCreated   = "user.created"
	EventUserBanned    = "user.banned"
	EventUserActivated = "user.activated"
	EventUserDeleted   = "user.deleted"
)

type UserEvent struct {
	Type       string    `json:"event_type"`
	UserID     uint      `json:"user_id"`
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	PublishUserEvent(ctx context.Context, evt UserEvent) error
}
