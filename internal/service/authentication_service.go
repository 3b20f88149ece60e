package service

import (
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/ports"
	"bearer-auth-server/internal/security"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// AuthenticationService : первичная аутентификация по email и паролю.
// Токены выдают наблюдатели (TokenService.AfterAuthentication), а не сам сервис.
type AuthenticationService struct {
	userRepository ports.UserRepository
	observers      []ports.AuthObserver
	locale         string
	now            func() time.Time
}

func NewAuthenticationService(userRepository ports.UserRepository, locale string, observers ...ports.AuthObserver) *AuthenticationService {
	return &AuthenticationService{
		userRepository: userRepository,
		observers:      observers,
		locale:         locale,
		now:            time.Now,
	}
}

// Authenticate : проверка пары email/пароль без побочных эффектов.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (s *AuthenticationService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepository.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthenticationService) SignIn(ctx context.Context, email, password string, meta model.ClientMetadata) (*model.AuthEvent, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	event := &model.AuthEvent{
		Kind:     model.AuthEventSignIn,
		User:     user,
		Metadata: meta,
		Locale:   s.locale,
	}
	s.notify(ctx, event)

	return event, nil
}

func (s *AuthenticationService) SignUp(ctx context.Context, email, password, name string, meta model.ClientMetadata) (*model.AuthEvent, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, model.ErrInvalidEmail
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] не удалось создать хэш пароля: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		UUID:         uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.userRepository.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, model.ErrEmailTaken
		}
		return nil, fmt.Errorf("[AuthService] ошибка создания пользователя: %w", err)
	}

	slog.InfoContext(ctx, "зарегистрирован пользователь", "user_id", created.UUID)

	event := &model.AuthEvent{
		Kind:     model.AuthEventSignUp,
		User:     created,
		Metadata: meta,
		Locale:   s.locale,
	}
	s.notify(ctx, event)

	return event, nil
}

func (s *AuthenticationService) FindUser(ctx context.Context, uuid string) (*model.User, error) {
	return s.userRepository.FindByUUID(ctx, uuid)
}

func (s *AuthenticationService) notify(ctx context.Context, event *model.AuthEvent) {
	for _, observer := range s.observers {
		if err := observer.AfterAuthentication(ctx, event); err != nil {
			slog.ErrorContext(ctx, "ошибка обработчика аутентификации", "kind", event.Kind, "user_id", event.User.UUID, "error", err)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	length := utf8.RuneCountInString(password)
	if length < minPasswordLength {
		return fmt.Errorf("%w: минимум %d символов", model.ErrInvalidPassword, minPasswordLength)
	}
	if length > maxPasswordLength {
		return fmt.Errorf("%w: максимум %d символов", model.ErrInvalidPassword, maxPasswordLength)
	}
	return nil
}
