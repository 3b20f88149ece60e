package repository

import (
	"bearer-auth-server/config"
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/security"
	"bearer-auth-server/internal/util"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const refreshTokenColumns = `uuid, user_uuid, token_hash, created_at, updated_at, expire_at, user_agent, ip_address`

type RefreshTokenRepository struct {
	*config.Database
}

func NewRefreshTokenRepository(database *config.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{database}
}

// storageError : ошибка драйвера, обернутая в model.ErrStorage
func storageError(message string, err error) error {
	return util.LogError(message, fmt.Errorf("%w: %w", model.ErrStorage, err))
}

// Create : сохраняет запись, в token_hash попадает хэш значения токена
func (r *RefreshTokenRepository) Create(ctx context.Context, record *model.RefreshToken, token string) error {
	record.TokenHash = security.HashRefreshToken(token)

	query := `INSERT INTO refresh_tokens (` + refreshTokenColumns + `)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.DB.ExecContext(ctx, query,
		record.UUID,
		record.UserUUID,
		record.TokenHash,
		record.CreatedAt,
		record.UpdatedAt,
		record.ExpireAt,
		record.UserAgent,
		record.IpAddress,
	)
	if err != nil {
		return storageError("[RefreshTokenRepo] ошибка вставки данных в БД", err)
	}

	return nil
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`
	return r.findOne(ctx, query, security.HashRefreshToken(token))
}

func (r *RefreshTokenRepository) FindByID(ctx context.Context, id string) (*model.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE uuid = $1`
	return r.findOne(ctx, query, id)
}

func (r *RefreshTokenRepository) findOne(ctx context.Context, query string, arg string) (*model.RefreshToken, error) {
	var record model.RefreshToken
	err := r.DB.GetContext(ctx, &record, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageError("[RefreshTokenRepo] ошибка при выполнении запроса", err)
	}

	return &record, nil
}

// FindByUserID : все сессии пользователя, от старых к новым
func (r *RefreshTokenRepository) FindByUserID(ctx context.Context, userID string) ([]*model.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE user_uuid = $1 ORDER BY created_at ASC`

	var records []*model.RefreshToken
	if err := r.DB.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, storageError("[RefreshTokenRepo] не удалось получить сессии пользователя", err)
	}

	return records, nil
}

// Rotate : меняет значение токена, только если в записи все еще хранится oldToken.
// Если строка не обновилась, токен уже ротирован или удален параллельным запросом.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, id, oldToken, newToken string, updatedAt time.Time) error {
	query := `UPDATE refresh_tokens SET token_hash = $3, updated_at = $4 WHERE uuid = $1 AND token_hash = $2`

	result, err := r.DB.ExecContext(ctx, query,
		id,
		security.HashRefreshToken(oldToken),
		security.HashRefreshToken(newToken),
		updatedAt,
	)
	if err != nil {
		return storageError("[RefreshTokenRepo] не удалось обновить рефреш токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageError("[RefreshTokenRepo] не удалось проверить, обновлен ли токен", err)
	}
	if rowsAffected == 0 {
		return model.ErrRefreshTokenConflict
	}

	return nil
}

// Delete : удаление отсутствующей записи не считается ошибкой
func (r *RefreshTokenRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE uuid = $1`, id); err != nil {
		return storageError("[RefreshTokenRepo] не удалось удалить рефреш токен", err)
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expire_at <= $1`, now)
	if err != nil {
		return 0, storageError("[RefreshTokenRepo] не удалось удалить просроченные токены", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, storageError("[RefreshTokenRepo] не удалось получить число удаленных строк", err)
	}

	return deleted, nil
}
