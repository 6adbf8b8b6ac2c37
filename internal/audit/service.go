package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for support events.
//
// It MUST be append-only. No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Service records support interactions for internal ops.
//
// Callers should treat recording as best-effort: log the error and move on.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

const maxQueryLen = 500

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Intent == "" || e.Outcome == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	if len(e.Query) > maxQueryLen {
		e.Query = e.Query[:maxQueryLen]
	}
	return s.repo.Append(ctx, e)
}

// Recent returns the newest events, newest first. limit is clamped to 1..500.
func (s *Service) Recent(ctx context.Context, limit int) ([]Event, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return s.repo.Recent(ctx, limit)
}
