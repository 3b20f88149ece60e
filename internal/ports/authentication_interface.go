package ports

import (
	"bearer-auth-server/internal/model"
	"context"
)

// AuthObserver : вызывается после успешной первичной аутентификации.
// Может дополнить event, например положить в него пару токенов.
type AuthObserver interface {
	AfterAuthentication(ctx context.Context, event *model.AuthEvent) error
}

type TokenService interface {
	IssueTokens(ctx context.Context, user *model.User, meta model.ClientMetadata) (*model.TokensPair, error)
	RefreshTokens(ctx context.Context, refreshToken string, meta model.ClientMetadata) (*model.TokensPair, error)
	RevokeToken(ctx context.Context, refreshToken string) error
}

type AuthenticationService interface {
	SignIn(ctx context.Context, email, password string, meta model.ClientMetadata) (*model.AuthEvent, error)
	SignUp(ctx context.Context, email, password, name string, meta model.ClientMetadata) (*model.AuthEvent, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	FindUser(ctx context.Context, uuid string) (*model.User, error)
}

type AccountService interface {
	Profile(ctx context.Context, principal *model.Principal) (*model.Principal, error)
}
