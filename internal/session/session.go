package session

import (
	"context"
	"time"

	"github.com/excellence-college/school-portal/internal/models"
)

// Session is one admin's authenticated working state. Token and user live in
// a single record so they are persisted and cleared together.
type Session struct {
	ID          string      `json:"id"`
	Token       string      `json:"token"`
	User        models.User `json:"user"`
	CreatedAt   time.Time   `json:"createdAt"`
	ValidatedAt time.Time   `json:"validatedAt"`
}

// Store abstracts session persistence.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, sess *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
