package repository

import (
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/ports"
	"context"
	"log/slog"
)

// CachedUserRepository : FindByUUID сначала смотрит в Redis.
// Ошибки кэша не мешают запросу, он уходит в основное хранилище.
type CachedUserRepository struct {
	ports.UserRepository
	cache ports.CacheRepository
}

func NewCachedUserRepository(users ports.UserRepository, cache ports.CacheRepository) *CachedUserRepository {
	return &CachedUserRepository{
		UserRepository: users,
		cache:          cache,
	}
}

func (r *CachedUserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	cached, err := r.cache.GetUser(ctx, uuid)
	if err != nil {
		slog.WarnContext(ctx, "кэш пользователей недоступен", "user_id", uuid, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	user, err := r.UserRepository.FindByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetUser(ctx, user); err != nil {
		slog.WarnContext(ctx, "не удалось положить пользователя в кэш", "user_id", uuid, "error", err)
	}

	return user, nil
}
