package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frozen-seaweed/dtnews/internal/logger"
	"github.com/frozen-seaweed/dtnews/internal/recommend"
)

// ProfileStore caches computed token-weight profiles per user. It sits in
// front of recommend.BuildWeights, which is the expensive aggregation over
// the like store.
type ProfileStore struct {
	kv KV
}

// NewProfileStore wraps a KV backend.
func NewProfileStore(kv KV) *ProfileStore {
	return &ProfileStore{kv: kv}
}

// SaveUserProfile persists the weights mapping for a user.
func (s *ProfileStore) SaveUserProfile(ctx context.Context, userID string, weights recommend.Profile) error {
	raw, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.kv.Set(ctx, profileKey(userID), string(raw)); err != nil {
		return fmt.Errorf("save profile %s: %w", profileKey(userID), err)
	}
	return nil
}

// UserProfile returns the cached profile for a user. An absent or
// undecodable value yields an empty profile with no error — a miss is cheap
// and simply sends the caller back to building from likes. Backend failures
// still propagate.
func (s *ProfileStore) UserProfile(ctx context.Context, userID string) (recommend.Profile, error) {
	raw, err := s.kv.Get(ctx, profileKey(userID))
	if errors.Is(err, ErrNotFound) {
		return recommend.Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", profileKey(userID), err)
	}

	var weights recommend.Profile
	if err := json.Unmarshal([]byte(raw), &weights); err != nil {
		logger.Warn("discarding corrupt profile", "key", profileKey(userID), "error", err)
		return recommend.Profile{}, nil
	}
	if weights == nil {
		weights = recommend.Profile{}
	}
	return weights, nil
}
