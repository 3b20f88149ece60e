package service

import (
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/ports"
	"context"
	"log/slog"
	"strings"
	"time"
)

// AccountService : данные защищенных маршрутов аккаунта
type AccountService struct {
	avatars    ports.S3Storage
	presignTTL time.Duration
}

// NewAccountService : avatars может быть nil, тогда image отдается как есть
func NewAccountService(avatars ports.S3Storage, presignTTL time.Duration) *AccountService {
	return &AccountService{
		avatars:    avatars,
		presignTTL: presignTTL,
	}
}

// Profile : principal из токена; image, хранящийся как ключ объекта, заменяется presigned ссылкой
func (s *AccountService) Profile(ctx context.Context, principal *model.Principal) (*model.Principal, error) {
	profile := *principal
	if s.avatars == nil || profile.Image == "" || isAbsoluteURL(profile.Image) {
		return &profile, nil
	}

	url, err := s.avatars.GeneratePresignedGetURL(ctx, profile.Image, s.presignTTL)
	if err != nil {
		slog.WarnContext(ctx, "не удалось подписать ссылку на аватар", "user_id", profile.ID, "error", err)
		return &profile, nil
	}

	profile.Image = url
	return &profile, nil
}

func isAbsoluteURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
