package model

import "errors"

var (
	// ErrInvalidRefreshToken : токен не найден (неверный, уже ротирован или отозван)
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrExpiredRefreshToken : запись найдена, но срок действия истек
	ErrExpiredRefreshToken = errors.New("expired refresh token")
	// ErrPrincipalNotFound : владелец refresh-токена больше не существует
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrRefreshTokenConflict : условное обновление не затронуло ни одной строки
	ErrRefreshTokenConflict = errors.New("refresh token was changed concurrently")
	// ErrStorage : хранилище недоступно или вернуло ошибку
	ErrStorage = errors.New("storage error")
	// ErrMissingBaseURL : не задан base URL, используемый как iss и aud
	ErrMissingBaseURL = errors.New("base url is not configured")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("password does not meet requirements")
)
