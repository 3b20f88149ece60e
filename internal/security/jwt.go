package security

import (
	"bearer-auth-server/config"
	"bearer-auth-server/internal/model"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultAccessTokenTTL = 60 * time.Minute

// AccessClaims : содержимое access-токена. iss и aud совпадают с base URL сервиса,
// чтобы токен нельзя было предъявить другому развертыванию.
type AccessClaims struct {
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	EmailVerified bool             `json:"emailVerified"`
	Image         string           `json:"image,omitempty"`
	CreatedAt     *jwt.NumericDate `json:"createdAt,omitempty"`
	UpdatedAt     *jwt.NumericDate `json:"updatedAt,omitempty"`
	jwt.RegisteredClaims
}

type JWTService struct {
	*config.JWTConfig
	baseURL string
	keys    *KeyManager
	now     func() time.Time
}

func NewJWTService(cfg *config.JWTConfig, baseURL string, keys *KeyManager) *JWTService {
	return &JWTService{
		JWTConfig: cfg,
		baseURL:   baseURL,
		keys:      keys,
		now:       time.Now,
	}
}

// AccessTokenTTL : срок жизни access-токена, по умолчанию 60 минут
func (s *JWTService) AccessTokenTTL() time.Duration {
	if s.AccessTokenTTLDuration > 0 {
		return s.AccessTokenTTLDuration
	}
	return defaultAccessTokenTTL
}

// Ready : без base URL токен не выпускается
func (s *JWTService) Ready() error {
	if s.baseURL == "" {
		return model.ErrMissingBaseURL
	}
	return nil
}

// IssueAccessToken : подписывает EdDSA токен для пользователя
func (s *JWTService) IssueAccessToken(user *model.User) (string, error) {
	if err := s.Ready(); err != nil {
		return "", err
	}

	now := s.now()
	claims := AccessClaims{
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Image:         user.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UUID,
			Issuer:    s.baseURL,
			Audience:  jwt.ClaimStrings{s.baseURL},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.AccessTokenTTL())),
			ID:        uuid.NewString(),
		},
	}
	if !user.CreatedAt.IsZero() {
		claims.CreatedAt = jwt.NewNumericDate(user.CreatedAt)
	}
	if !user.UpdatedAt.IsZero() {
		claims.UpdatedAt = jwt.NewNumericDate(user.UpdatedAt)
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	jwtToken.Header["kid"] = s.keys.KeyID()

	accessToken, err := jwtToken.SignedString(s.keys.SigningKey())
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return accessToken, nil
}
