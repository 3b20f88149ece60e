package ports

import (
	"bearer-auth-server/internal/model"
	"context"
)

// UserRepository : источник principal'ов. Find* возвращают model.ErrUserNotFound, если записи нет.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
