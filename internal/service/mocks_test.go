package service_test

import (
	"bearer-auth-server/internal/model"
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// ===== MOCKS =====

// MockRefreshTokenStore
type MockRefreshTokenStore struct {
	mock.Mock
}

func (m *MockRefreshTokenStore) Create(ctx context.Context, record *model.RefreshToken, token string) error {
	args := m.Called(ctx, record, token)
	return args.Error(0)
}

func (m *MockRefreshTokenStore) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, token)
	if record, ok := args.Get(0).(*model.RefreshToken); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshTokenStore) FindByID(ctx context.Context, id string) (*model.RefreshToken, error) {
	args := m.Called(ctx, id)
	if record, ok := args.Get(0).(*model.RefreshToken); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshTokenStore) FindByUserID(ctx context.Context, userID string) ([]*model.RefreshToken, error) {
	args := m.Called(ctx, userID)
	if records, ok := args.Get(0).([]*model.RefreshToken); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshTokenStore) Rotate(ctx context.Context, id, oldToken, newToken string, updatedAt time.Time) error {
	args := m.Called(ctx, id, oldToken, newToken, updatedAt)
	return args.Error(0)
}

func (m *MockRefreshTokenStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRefreshTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if fn, ok := args.Get(0).(func(context.Context, *model.User) *model.User); ok {
		return fn(ctx, user), args.Error(1)
	}
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	args := m.Called(ctx, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAccessTokenIssuer
type MockAccessTokenIssuer struct {
	mock.Mock
	ReadyErr error
}

func (m *MockAccessTokenIssuer) Ready() error {
	return m.ReadyErr
}

func (m *MockAccessTokenIssuer) IssueAccessToken(user *model.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

// MockAuthObserver
type MockAuthObserver struct {
	mock.Mock
}

func (m *MockAuthObserver) AfterAuthentication(ctx context.Context, event *model.AuthEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}
