package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"studyai_go_backend/internal/kvstore"
	"studyai_go_backend/internal/models"

	"github.com/google/uuid"
)

// ContentService owns generated-artifact records. Records are written once
// and never updated or deleted; retrieval is a prefix scan per user and kind.
type ContentService struct {
	store kvstore.Store
}

func NewContentService(store kvstore.Store) *ContentService {
	return &ContentService{store: store}
}

// recordKey builds "{kind}:{userId}:{unixMilli}:{suffix}". The timestamp keeps
// prefix scans in creation order; the random suffix keeps keys unique when two
// records land in the same millisecond.
func recordKey(kind models.ContentKind, userID string, now time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s:%s:%013d:%s", kind, userID, now.UnixMilli(), suffix)
}

// Store persists payload as a new record of the given kind for the user and
// returns the record id. The record is retrievable by ListByUser as soon as
// Store returns.
func (s *ContentService) Store(ctx context.Context, kind models.ContentKind, userID string, payload interface{}) (string, error) {
	key := recordKey(kind, userID, time.Now())
	if err := s.store.Set(ctx, key, payload); err != nil {
		return "", err
	}
	return key, nil
}

// ListByUser returns all records of the given kind owned by the user, oldest
// first. The result is never nil.
func (s *ContentService) ListByUser(ctx context.Context, kind models.ContentKind, userID string) ([]json.RawMessage, error) {
	return s.store.GetByPrefix(ctx, fmt.Sprintf("%s:%s:", kind, userID))
}
