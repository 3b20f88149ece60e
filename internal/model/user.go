package model

import "time"

// User : учетная запись (principal), которой выдаются токены
type User struct {
	UUID          string    `db:"uuid" json:"id"`
	Email         string    `db:"email" json:"email"`
	Name          string    `db:"name" json:"name"`
	EmailVerified bool      `db:"email_verified" json:"emailVerified"`
	Image         string    `db:"image" json:"image,omitempty"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// Principal : представление пользователя, собранное только из проверенных claims access-токена
type Principal struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	EmailVerified bool       `json:"emailVerified"`
	Image         string     `json:"image,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}
