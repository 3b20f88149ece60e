package repository

import (
	"bearer-auth-server/internal/model"
	"context"
	"strings"
	"sync"
)

type MemoryUserRepository struct {
	mu      sync.RWMutex
	byUUID  map[string]model.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byUUID:  make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	email := strings.ToLower(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return nil, model.ErrEmailTaken
	}
	r.byUUID[user.UUID] = *user
	r.byEmail[email] = user.UUID

	created := *user
	return &created, nil
}

func (r *MemoryUserRepository) FindByUUID(_ context.Context, uuid string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byUUID[uuid]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	uuid, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return r.FindByUUID(ctx, uuid)
}

// Delete : убирает пользователя, уже выданные ему refresh-токены перестанут обновляться
func (r *MemoryUserRepository) Delete(uuid string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.byUUID[uuid]; ok {
		delete(r.byEmail, strings.ToLower(user.Email))
		delete(r.byUUID, uuid)
	}
}
