package service

import (
	"bearer-auth-server/config"
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/ports"
	"bearer-auth-server/internal/security"
	"bearer-auth-server/internal/util"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultRefreshTokenTTL = 30 * 24 * time.Hour

// TokenService : жизненный цикл пары токенов одной login-сессии
type TokenService struct {
	store  ports.RefreshTokenStore
	users  ports.UserRepository
	issuer ports.AccessTokenIssuer
	cfg    *config.RefreshTokenConfig
	now    func() time.Time
}

func NewTokenService(
	store ports.RefreshTokenStore,
	users ports.UserRepository,
	issuer ports.AccessTokenIssuer,
	cfg *config.RefreshTokenConfig,
) *TokenService {
	return &TokenService{
		store:  store,
		users:  users,
		issuer: issuer,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *TokenService) refreshTokenTTL() time.Duration {
	if s.cfg.TTLDuration > 0 {
		return s.cfg.TTLDuration
	}
	return defaultRefreshTokenTTL
}

// IssueTokens : создает запись refresh-токена и выпускает access-токен.
// Вызывается только после того, как пользователь прошел первичную аутентификацию.
func (s *TokenService) IssueTokens(ctx context.Context, user *model.User, meta model.ClientMetadata) (*model.TokensPair, error) {
	if err := s.issuer.Ready(); err != nil {
		return nil, fmt.Errorf("[TokenService] выпуск access токена невозможен: %w", err)
	}

	refreshToken, err := security.GenerateRefreshToken()
	if err != nil {
		return nil, util.LogError("[TokenService] ошибка генерации refresh токена", err)
	}

	now := s.now().UTC()
	record := &model.RefreshToken{
		UUID:      uuid.NewString(),
		UserUUID:  user.UUID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpireAt:  now.Add(s.refreshTokenTTL()),
		UserAgent: meta.UserAgent,
		IpAddress: meta.IpAddress,
	}

	if err := s.store.Create(ctx, record, refreshToken); err != nil {
		return nil, fmt.Errorf("[TokenService] не удалось сохранить refresh токен: %w", err)
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		// запись без access-токена клиенту не нужна
		if deleteErr := s.store.Delete(ctx, record.UUID); deleteErr != nil {
			slog.WarnContext(ctx, "не удалось удалить запись после ошибки выпуска", "record_id", record.UUID, "error", deleteErr)
		}
		return nil, fmt.Errorf("[TokenService] ошибка выпуска access токена: %w", err)
	}

	slog.InfoContext(ctx, "выпущена пара токенов", "user_id", user.UUID, "record_id", record.UUID)

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    model.TokenTypeBearer,
	}, nil
}

// RefreshTokens : обмен refresh-токена на новую пару.
// При ротации старое значение перестает действовать сразу; из двух параллельных
// запросов с одним токеном успешен только один, второй получает ErrInvalidRefreshToken.
func (s *TokenService) RefreshTokens(ctx context.Context, refreshToken string, meta model.ClientMetadata) (*model.TokensPair, error) {
	if refreshToken == "" {
		return nil, model.ErrInvalidRefreshToken
	}

	record, err := s.store.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("[TokenService] ошибка поиска refresh токена: %w", err)
	}
	if record == nil {
		return nil, model.ErrInvalidRefreshToken
	}

	now := s.now().UTC()
	if record.IsExpired(now) {
		if s.cfg.DeleteExpired {
			if err := s.store.Delete(ctx, record.UUID); err != nil {
				slog.WarnContext(ctx, "не удалось удалить просроченный refresh токен", "record_id", record.UUID, "error", err)
			}
		}
		return nil, model.ErrExpiredRefreshToken
	}

	// до ротации: иначе ошибка конфигурации сожжет действующий токен клиента
	if err := s.issuer.Ready(); err != nil {
		return nil, fmt.Errorf("[TokenService] выпуск access токена невозможен: %w", err)
	}

	nextRefreshToken := refreshToken
	if s.cfg.RotateOnRefresh() {
		nextRefreshToken, err = security.GenerateRefreshToken()
		if err != nil {
			return nil, util.LogError("[TokenService] ошибка генерации refresh токена", err)
		}

		err = s.store.Rotate(ctx, record.UUID, refreshToken, nextRefreshToken, now)
		if errors.Is(err, model.ErrRefreshTokenConflict) {
			slog.WarnContext(ctx, "refresh токен уже ротирован параллельным запросом", "record_id", record.UUID, "user_id", record.UserUUID)
			return nil, model.ErrInvalidRefreshToken
		}
		if err != nil {
			return nil, fmt.Errorf("[TokenService] не удалось ротировать refresh токен: %w", err)
		}
	}

	user, err := s.users.FindByUUID(ctx, record.UserUUID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("[TokenService] ошибка поиска пользователя: %w", err)
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("[TokenService] ошибка выпуска access токена: %w", err)
	}

	slog.InfoContext(ctx, "токены обновлены",
		"user_id", user.UUID,
		"record_id", record.UUID,
		"rotated", nextRefreshToken != refreshToken,
		"user_agent", meta.UserAgent,
	)

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: nextRefreshToken,
		TokenType:    model.TokenTypeBearer,
	}, nil
}

// RevokeToken : неизвестный токен считается уже отозванным, ответ одинаковый в обоих случаях
func (s *TokenService) RevokeToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	record, err := s.store.FindByToken(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("[TokenService] ошибка поиска refresh токена: %w", err)
	}
	if record == nil {
		return nil
	}

	if err := s.store.Delete(ctx, record.UUID); err != nil {
		return fmt.Errorf("[TokenService] не удалось отозвать refresh токен: %w", err)
	}

	slog.InfoContext(ctx, "refresh токен отозван", "user_id", record.UserUUID, "record_id", record.UUID)
	return nil
}

// AfterAuthentication : выдает пару токенов после входа или регистрации
// и кладет ее в событие. Ошибка логируется и не ломает основную аутентификацию.
func (s *TokenService) AfterAuthentication(ctx context.Context, event *model.AuthEvent) error {
	if event == nil || event.User == nil {
		return nil
	}

	switch event.Kind {
	case model.AuthEventSignIn, model.AuthEventSignUp:
	default:
		return nil
	}

	tokens, err := s.IssueTokens(ctx, event.User, event.Metadata)
	if err != nil {
		slog.ErrorContext(ctx, "не удалось выдать токены после аутентификации", "user_id", event.User.UUID, "kind", event.Kind, "error", err)
		return nil
	}

	event.Tokens = tokens
	return nil
}

// PurgeExpired : удаляет просроченные записи, запускается по таймеру из main
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("[TokenService] ошибка очистки просроченных токенов: %w", err)
	}

	if deleted > 0 {
		slog.InfoContext(ctx, "удалены просроченные refresh токены", "count", deleted)
	}
	return deleted, nil
}

// RunJanitor : периодическая очистка до отмены ctx
func (s *TokenService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil {
				slog.ErrorContext(ctx, "ошибка очистки refresh токенов", "error", err)
			}
		}
	}
}
