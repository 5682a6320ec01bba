// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/uptowngym/internal/platform/apperr"
)

type memoryRepository struct {
	mu   sync.Mutex
	byID map[string]*Profile
	err  error
}

func newMemoryRepository(seed ...*Profile) *memoryRepository {
	repository := &memoryRepository{byID: map[string]*Profile{}}
	for _, profile := range seed {
		repository.byID[profile.ID] = profile
	}
	return repository
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if profile, ok := m.byID[id]; ok {
		clone := *profile
		return &clone, nil
	}
	return nil, apperr.NotFound("Profile")
}

func (m *memoryRepository) FindByEmail(_ context.Context, email string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, profile := range m.byID {
		if profile.Email == email {
			clone := *profile
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Profile")
}

func (m *memoryRepository) List(_ context.Context, limit, offset int) ([]*Profile, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*Profile, 0, len(m.byID))
	for _, profile := range m.byID {
		all = append(all, profile)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (m *memoryRepository) Create(_ context.Context, profile *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[profile.ID]; exists {
		return apperr.Conflict("Profile already exists")
	}
	profile.CreatedAt = time.Now().UTC()
	profile.UpdatedAt = profile.CreatedAt
	clone := *profile
	m.byID[profile.ID] = &clone
	return nil
}

func (m *memoryRepository) Update(_ context.Context, id string, patch Patch) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("Profile")
	}
	patch.Apply(profile)
	profile.UpdatedAt = time.Now().UTC()
	clone := *profile
	return &clone, nil
}
