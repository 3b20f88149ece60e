package ports

import (
	"bearer-auth-server/internal/model"
	"context"
	"time"
)

// RefreshTokenStore : хранилище refresh-токенов.
// Токен передается в открытом виде, реализация сама хранит и ищет его по хэшу.
type RefreshTokenStore interface {
	Create(ctx context.Context, record *model.RefreshToken, token string) error
	// FindByToken : (nil, nil), если записи нет
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	FindByID(ctx context.Context, id string) (*model.RefreshToken, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.RefreshToken, error)
	// Rotate : условная замена значения, model.ErrRefreshTokenConflict если oldToken уже не актуален
	Rotate(ctx context.Context, id, oldToken, newToken string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AccessTokenIssuer : выпуск подписанных access-токенов
type AccessTokenIssuer interface {
	IssueAccessToken(user *model.User) (string, error)
	// Ready : ошибка конфигурации, при которой выпуск заведомо невозможен
	Ready() error
}
