package ports

import (
	"bearer-auth-server/internal/model"
	"context"
)

// CacheRepository : Redis слой для пользователей
type CacheRepository interface {
	SetUser(ctx context.Context, user *model.User) error
	// GetUser : (nil, nil) при промахе
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	DeleteUser(ctx context.Context, uuid string) error
}
