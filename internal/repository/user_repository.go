package repository

import (
	"bearer-auth-server/config"
	"bearer-auth-server/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	userColumns       = `uuid, email, name, email_verified, image, password_hash, created_at, updated_at`
	pqUniqueViolation = "23505"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя, занятый email дает model.ErrEmailTaken
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (` + userColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + userColumns

	var created model.User
	err := r.DB.QueryRowxContext(ctx, query,
		user.UUID,
		user.Email,
		user.Name,
		user.EmailVerified,
		user.Image,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).StructScan(&created)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, model.ErrEmailTaken
		}
		return nil, storageError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return &created, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uuid = $1`
	return r.findOne(ctx, query, uuid)
}

// FindByEmail : ищет пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("[UserRepo] %w", model.ErrUserNotFound)
		}
		return nil, storageError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}
