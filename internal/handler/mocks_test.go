package handler_test

import (
	"bearer-auth-server/internal/model"
	"context"

	"github.com/stretchr/testify/mock"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueTokens(ctx context.Context, user *model.User, meta model.ClientMetadata) (*model.TokensPair, error) {
	args := m.Called(ctx, user, meta)
	if pair, ok := args.Get(0).(*model.TokensPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) RefreshTokens(ctx context.Context, refreshToken string, meta model.ClientMetadata) (*model.TokensPair, error) {
	args := m.Called(ctx, refreshToken, meta)
	if pair, ok := args.Get(0).(*model.TokensPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) RevokeToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) SignIn(ctx context.Context, email, password string, meta model.ClientMetadata) (*model.AuthEvent, error) {
	args := m.Called(ctx, email, password, meta)
	if event, ok := args.Get(0).(*model.AuthEvent); ok {
		return event, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) SignUp(ctx context.Context, email, password, name string, meta model.ClientMetadata) (*model.AuthEvent, error) {
	args := m.Called(ctx, email, password, name, meta)
	if event, ok := args.Get(0).(*model.AuthEvent); ok {
		return event, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if user, ok := args.Get(0).(*model.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) FindUser(ctx context.Context, uuid string) (*model.User, error) {
	args := m.Called(ctx, uuid)
	if user, ok := args.Get(0).(*model.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Profile(ctx context.Context, principal *model.Principal) (*model.Principal, error) {
	args := m.Called(ctx, principal)
	if profile, ok := args.Get(0).(*model.Principal); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}
