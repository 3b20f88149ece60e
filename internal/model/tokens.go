package model

import "time"

const TokenTypeBearer = "Bearer"

// RefreshToken : запись об одной login-сессии.
// В БД хранится только sha256 от значения токена, само значение остается у клиента.
// При ротации меняются TokenHash и UpdatedAt, UUID записи остается прежним.
type RefreshToken struct {
	UUID      string    `db:"uuid"`
	UserUUID  string    `db:"user_uuid"`
	TokenHash string    `db:"token_hash"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	ExpireAt  time.Time `db:"expire_at"`
	UserAgent string    `db:"user_agent"`
	IpAddress string    `db:"ip_address"`
}

// IsExpired : запись с ExpireAt == now уже считается просроченной
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpireAt)
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJFZERTQSIsImtpZCI6IjEyMyJ9...
	AccessToken string `json:"accessToken"`

	// Refresh токен (для получения новой пары)
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshToken string `json:"refreshToken"`

	// Тип токена, всегда Bearer
	// example: Bearer
	TokenType string `json:"tokenType"`
}

// ClientMetadata : информация о клиенте, сохраняется только для справки
type ClientMetadata struct {
	UserAgent string
	IpAddress string
}
