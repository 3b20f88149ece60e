package repository

import (
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/security"
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRefreshTokenRepository : хранилище в памяти процесса (storage.driver: memory).
// Данные не переживают рестарт.
type MemoryRefreshTokenRepository struct {
	mu     sync.RWMutex
	byID   map[string]*model.RefreshToken
	byHash map[string]string
}

func NewMemoryRefreshTokenRepository() *MemoryRefreshTokenRepository {
	return &MemoryRefreshTokenRepository{
		byID:   make(map[string]*model.RefreshToken),
		byHash: make(map[string]string),
	}
}

func (r *MemoryRefreshTokenRepository) Create(_ context.Context, record *model.RefreshToken, token string) error {
	record.TokenHash = security.HashRefreshToken(token)

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *record
	r.byID[record.UUID] = &stored
	r.byHash[record.TokenHash] = record.UUID
	return nil
}

func (r *MemoryRefreshTokenRepository) FindByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[security.HashRefreshToken(token)]
	if !ok {
		return nil, nil
	}
	return r.copyOf(id), nil
}

func (r *MemoryRefreshTokenRepository) FindByID(_ context.Context, id string) (*model.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.copyOf(id), nil
}

func (r *MemoryRefreshTokenRepository) FindByUserID(_ context.Context, userID string) ([]*model.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*model.RefreshToken
	for id, record := range r.byID {
		if record.UserUUID == userID {
			records = append(records, r.copyOf(id))
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

func (r *MemoryRefreshTokenRepository) Rotate(_ context.Context, id, oldToken, newToken string, updatedAt time.Time) error {
	oldHash := security.HashRefreshToken(oldToken)
	newHash := security.HashRefreshToken(newToken)

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok || record.TokenHash != oldHash {
		return model.ErrRefreshTokenConflict
	}

	delete(r.byHash, oldHash)
	record.TokenHash = newHash
	record.UpdatedAt = updatedAt
	r.byHash[newHash] = id
	return nil
}

func (r *MemoryRefreshTokenRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deleteLocked(id)
	return nil
}

func (r *MemoryRefreshTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, record := range r.byID {
		if record.IsExpired(now) {
			r.deleteLocked(id)
			deleted++
		}
	}

	return deleted, nil
}

func (r *MemoryRefreshTokenRepository) deleteLocked(id string) {
	record, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byHash, record.TokenHash)
	delete(r.byID, id)
}

func (r *MemoryRefreshTokenRepository) copyOf(id string) *model.RefreshToken {
	record, ok := r.byID[id]
	if !ok {
		return nil
	}
	copied := *record
	return &copied
}
