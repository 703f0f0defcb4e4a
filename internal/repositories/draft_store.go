package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"bunkmate/internal/models"
)

// DraftStore holds one in-progress ListingDraft per user for the lifetime
// of the create/edit session. It performs no validation.
type DraftStore interface {
	Read(ctx context.Context, userID int) (models.ListingDraft, error)
	Update(ctx context.Context, userID int, patch models.DraftUpdate) (models.ListingDraft, error)
	Replace(ctx context.Context, userID int, draft models.ListingDraft) error
	Reset(ctx context.Context, userID int) error
}

// RedisDraftStore keeps drafts as JSON values so they survive process
// restarts and navigation across wizard steps.
type RedisDraftStore struct {
	RDB *redis.Client
	TTL time.Duration
}

func draftKey(userID int) string {
	return fmt.Sprintf("drafts:user:%d", userID)
}

func (s *RedisDraftStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 72 * time.Hour
	}
	return s.TTL
}

func (s *RedisDraftStore) Read(ctx context.Context, userID int) (models.ListingDraft, error) {
	data, err := s.RDB.Get(ctx, draftKey(userID)).Bytes()
	if err == redis.Nil {
		return models.DefaultDraft(), nil
	}
	if err != nil {
		return models.ListingDraft{}, fmt.Errorf("draft store: read: %w", err)
	}
	var draft models.ListingDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return models.ListingDraft{}, fmt.Errorf("draft store: decode: %w", err)
	}
	return draft, nil
}

func (s *RedisDraftStore) Update(ctx context.Context, userID int, patch models.DraftUpdate) (models.ListingDraft, error) {
	draft, err := s.Read(ctx, userID)
	if err != nil {
		return models.ListingDraft{}, err
	}
	patch.Apply(&draft)
	if err := s.Replace(ctx, userID, draft); err != nil {
		return models.ListingDraft{}, err
	}
	return draft, nil
}

func (s *RedisDraftStore) Replace(ctx context.Context, userID int, draft models.ListingDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("draft store: encode: %w", err)
	}
	if err := s.RDB.Set(ctx, draftKey(userID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("draft store: write: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Reset(ctx context.Context, userID int) error {
	return s.Replace(ctx, userID, models.DefaultDraft())
}

// MemoryDraftStore is the in-process fallback used by tests and local runs
// without Redis.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[int]models.ListingDraft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[int]models.ListingDraft)}
}

func (s *MemoryDraftStore) Read(ctx context.Context, userID int) (models.ListingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[userID]
	if !ok {
		return models.DefaultDraft(), nil
	}
	return draft, nil
}

func (s *MemoryDraftStore) Update(ctx context.Context, userID int, patch models.DraftUpdate) (models.ListingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[userID]
	if !ok {
		draft = models.DefaultDraft()
	}
	patch.Apply(&draft)
	s.drafts[userID] = draft
	return draft, nil
}

func (s *MemoryDraftStore) Replace(ctx context.Context, userID int, draft models.ListingDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = draft
	return nil
}

func (s *MemoryDraftStore) Reset(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = models.DefaultDraft()
	return nil
}
