package service_test

import (
	"bearer-auth-server/config"
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/repository"
	"bearer-auth-server/internal/security"
	"bearer-auth-server/internal/service"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://auth.example.test"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func boolPtr(v bool) *bool { return &v }

func testPrincipal() *model.User {
	return &model.User{
		UUID:          "user-1",
		Email:         "ada@example.test",
		Name:          "Ada",
		EmailVerified: true,
		CreatedAt:     fixedNow.Add(-24 * time.Hour),
		UpdatedAt:     fixedNow.Add(-24 * time.Hour),
	}
}

func newTestTokenService(cfg *config.RefreshTokenConfig) (*service.TokenService, *MockRefreshTokenStore, *MockUserRepository, *MockAccessTokenIssuer) {
	store := new(MockRefreshTokenStore)
	users := new(MockUserRepository)
	issuer := new(MockAccessTokenIssuer)
	svc := service.NewTokenService(store, users, issuer, cfg)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, store, users, issuer
}

func TestIssueTokens_Success(t *testing.T) {
	svc, store, _, issuer := newTestTokenService(&config.RefreshTokenConfig{TTLDuration: 48 * time.Hour})
	ctx := context.Background()
	user := testPrincipal()
	meta := model.ClientMetadata{UserAgent: "curl/8", IpAddress: "10.0.0.1"}

	var stored *model.RefreshToken
	var storedToken string
	store.On("Create", ctx, mock.AnythingOfType("*model.RefreshToken"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*model.RefreshToken)
			storedToken = args.String(2)
		}).Return(nil)
	issuer.On("IssueAccessToken", user).Return("access-token", nil)

	tokens, err := svc.IssueTokens(ctx, user, meta)

	require.NoError(t, err)
	assert.Equal(t, "access-token", tokens.AccessToken)
	assert.Equal(t, model.TokenTypeBearer, tokens.TokenType)
	assert.Equal(t, storedToken, tokens.RefreshToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.UUID)
	assert.Equal(t, "user-1", stored.UserUUID)
	assert.Equal(t, fixedNow, stored.CreatedAt)
	assert.Equal(t, fixedNow.Add(48*time.Hour), stored.ExpireAt)
	assert.Equal(t, "curl/8", stored.UserAgent)
	assert.Equal(t, "10.0.0.1", stored.IpAddress)
	store.AssertExpectations(t)
	issuer.AssertExpectations(t)
}

func TestIssueTokens_DefaultTTL(t *testing.T) {
	svc, store, _, issuer := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	store.On("Create", ctx, mock.MatchedBy(func(record *model.RefreshToken) bool {
		return record.ExpireAt.Equal(fixedNow.Add(30 * 24 * time.Hour))
	}), mock.Anything).Return(nil)
	issuer.On("IssueAccessToken", mock.Anything).Return("access-token", nil)

	_, err := svc.IssueTokens(ctx, testPrincipal(), model.ClientMetadata{})

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestIssueTokens_StorageError(t *testing.T) {
	svc, store, _, issuer := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	store.On("Create", ctx, mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: %w", model.ErrStorage, errors.New("db down")))

	tokens, err := svc.IssueTokens(ctx, testPrincipal(), model.ClientMetadata{})

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, model.ErrStorage)
	issuer.AssertNotCalled(t, "IssueAccessToken", mock.Anything)
}

func TestIssueTokens_IssuerFailureRemovesRecord(t *testing.T) {
	svc, store, _, issuer := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	var recordID string
	store.On("Create", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { recordID = args.Get(1).(*model.RefreshToken).UUID }).
		Return(nil)
	issuer.On("IssueAccessToken", mock.Anything).Return("", model.ErrMissingBaseURL)
	store.On("Delete", ctx, mock.MatchedBy(func(id string) bool { return id == recordID })).Return(nil)

	_, err := svc.IssueTokens(ctx, testPrincipal(), model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrMissingBaseURL)
	store.AssertExpectations(t)
}

func TestIssueTokens_IssuerNotReadySkipsStore(t *testing.T) {
	svc, store, _, issuer := newTestTokenService(&config.RefreshTokenConfig{})
	issuer.ReadyErr = model.ErrMissingBaseURL

	_, err := svc.IssueTokens(context.Background(), testPrincipal(), model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrMissingBaseURL)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshTokens_IssuerNotReadyKeepsToken(t *testing.T) {
	svc, store, users, issuer := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()
	issuer.ReadyErr = model.ErrMissingBaseURL

	store.On("FindByToken", ctx, "old").
		Return(&model.RefreshToken{UUID: "rt-1", UserUUID: "user-1", ExpireAt: fixedNow.Add(time.Hour)}, nil)

	_, err := svc.RefreshTokens(ctx, "old", model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrMissingBaseURL)
	store.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "FindByUUID", mock.Anything, mock.Anything)
}

func TestRefreshTokens_UnknownToken(t *testing.T) {
	svc, store, _, _ := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	store.On("FindByToken", ctx, "unknown").Return(nil, nil)

	_, err := svc.RefreshTokens(ctx, "unknown", model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrInvalidRefreshToken)
}

func TestRefreshTokens_EmptyToken(t *testing.T) {
	svc, store, _, _ := newTestTokenService(&config.RefreshTokenConfig{})

	_, err := svc.RefreshTokens(context.Background(), "", model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrInvalidRefreshToken)
	store.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
}

func TestRefreshTokens_ExpiryBoundaryIsExpired(t *testing.T) {
	svc, store, _, issuer := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	store.On("FindByToken", ctx, "token").
		Return(&model.RefreshToken{UUID: "rt-1", UserUUID: "user-1", ExpireAt: fixedNow}, nil)

	_, err := svc.RefreshTokens(ctx, "token", model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrExpiredRefreshToken)
	store.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	issuer.AssertNotCalled(t, "IssueAccessToken", mock.Anything)
}

func TestRefreshTokens_ExpiredRecordDeletedWhenConfigured(t *testing.T) {
	svc, store, _, _ := newTestTokenService(&config.RefreshTokenConfig{DeleteExpired: true})
	ctx := context.Background()

	store.On("FindByToken", ctx, "token").
		Return(&model.RefreshToken{UUID: "rt-1", UserUUID: "user-1", ExpireAt: fixedNow.Add(-time.Second)}, nil)
	store.On("Delete", ctx, "rt-1").Return(nil)

	_, err := svc.RefreshTokens(ctx, "token", model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrExpiredRefreshToken)
	store.AssertExpectations(t)
}

func TestRefreshTokens_RotatesInPlace(t *testing.T) {
	svc, store, users, issuer := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()
	user := testPrincipal()

	store.On("FindByToken", ctx, "old").
		Return(&model.RefreshToken{UUID: "rt-1", UserUUID: "user-1", ExpireAt: fixedNow.Add(time.Hour)}, nil)
	store.On("Rotate", ctx, "rt-1", "old", mock.AnythingOfType("string"), fixedNow).Return(nil)
	users.On("FindByUUID", ctx, "user-1").Return(user, nil)
	issuer.On("IssueAccessToken", user).Return("access-token", nil)

	tokens, err := svc.RefreshTokens(ctx, "old", model.ClientMetadata{})

	require.NoError(t, err)
	assert.Equal(t, "access-token", tokens.AccessToken)
	assert.NotEqual(t, "old", tokens.RefreshToken)
	assert.Equal(t, model.TokenTypeBearer, tokens.TokenType)

	rotateCall := store.Calls[1]
	assert.Equal(t, tokens.RefreshToken, rotateCall.Arguments.String(3))
	store.AssertExpectations(t)
}

func TestRefreshTokens_LostRotationRaceIsInvalid(t *testing.T) {
	svc, store, users, _ := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	store.On("FindByToken", ctx, "old").
		Return(&model.RefreshToken{UUID: "rt-1", UserUUID: "user-1", ExpireAt: fixedNow.Add(time.Hour)}, nil)
	store.On("Rotate", ctx, "rt-1", "old", mock.Anything, fixedNow).Return(model.ErrRefreshTokenConflict)

	_, err := svc.RefreshTokens(ctx, "old", model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrInvalidRefreshToken)
	users.AssertNotCalled(t, "FindByUUID", mock.Anything, mock.Anything)
}

func TestRefreshTokens_NoRotation(t *testing.T) {
	svc, store, users, issuer := newTestTokenService(&config.RefreshTokenConfig{Rotate: boolPtr(false)})
	ctx := context.Background()
	user := testPrincipal()

	store.On("FindByToken", ctx, "same").
		Return(&model.RefreshToken{UUID: "rt-1", UserUUID: "user-1", ExpireAt: fixedNow.Add(time.Hour)}, nil)
	users.On("FindByUUID", ctx, "user-1").Return(user, nil)
	issuer.On("IssueAccessToken", user).Return("access-token", nil)

	for i := 0; i < 3; i++ {
		tokens, err := svc.RefreshTokens(ctx, "same", model.ClientMetadata{})

		require.NoError(t, err)
		assert.Equal(t, "same", tokens.RefreshToken)
	}
	store.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshTokens_PrincipalNotFound(t *testing.T) {
	svc, store, users, issuer := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	store.On("FindByToken", ctx, "old").
		Return(&model.RefreshToken{UUID: "rt-1", UserUUID: "ghost", ExpireAt: fixedNow.Add(time.Hour)}, nil)
	store.On("Rotate", ctx, "rt-1", "old", mock.Anything, fixedNow).Return(nil)
	users.On("FindByUUID", ctx, "ghost").Return(nil, fmt.Errorf("[UserRepo] %w", model.ErrUserNotFound))

	_, err := svc.RefreshTokens(ctx, "old", model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrPrincipalNotFound)
	issuer.AssertNotCalled(t, "IssueAccessToken", mock.Anything)
}

func TestRefreshTokens_StorageErrorPropagates(t *testing.T) {
	svc, store, _, _ := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	store.On("FindByToken", ctx, "old").Return(nil, fmt.Errorf("%w: %w", model.ErrStorage, errors.New("timeout")))

	_, err := svc.RefreshTokens(ctx, "old", model.ClientMetadata{})

	assert.ErrorIs(t, err, model.ErrStorage)
	assert.NotErrorIs(t, err, model.ErrInvalidRefreshToken)
}

func TestRevokeToken_Idempotent(t *testing.T) {
	svc, store, _, _ := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	store.On("FindByToken", ctx, "token").
		Return(&model.RefreshToken{UUID: "rt-1", UserUUID: "user-1"}, nil).Once()
	store.On("Delete", ctx, "rt-1").Return(nil).Once()
	store.On("FindByToken", ctx, "token").Return(nil, nil)

	assert.NoError(t, svc.RevokeToken(ctx, "token"))
	assert.NoError(t, svc.RevokeToken(ctx, "token"))
	assert.NoError(t, svc.RevokeToken(ctx, ""))

	store.AssertNumberOfCalls(t, "Delete", 1)
}

func TestAfterAuthentication_MergesTokens(t *testing.T) {
	svc, store, _, issuer := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()
	event := &model.AuthEvent{Kind: model.AuthEventSignUp, User: testPrincipal()}

	store.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	issuer.On("IssueAccessToken", event.User).Return("access-token", nil)

	require.NoError(t, svc.AfterAuthentication(ctx, event))

	require.NotNil(t, event.Tokens)
	assert.Equal(t, "access-token", event.Tokens.AccessToken)
}

func TestAfterAuthentication_FailureDoesNotBreakSignIn(t *testing.T) {
	svc, store, _, _ := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()
	event := &model.AuthEvent{Kind: model.AuthEventSignIn, User: testPrincipal()}

	store.On("Create", ctx, mock.Anything, mock.Anything).Return(model.ErrStorage)

	assert.NoError(t, svc.AfterAuthentication(ctx, event))
	assert.Nil(t, event.Tokens)
}

func TestPurgeExpired(t *testing.T) {
	svc, store, _, _ := newTestTokenService(&config.RefreshTokenConfig{})
	ctx := context.Background()

	store.On("DeleteExpired", ctx, fixedNow).Return(int64(4), nil)

	deleted, err := svc.PurgeExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	svc, store, _, _ := newTestTokenService(&config.RefreshTokenConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	store.On("DeleteExpired", mock.Anything, fixedNow).Return(int64(0), nil)

	done := make(chan struct{})
	go func() {
		svc.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor не остановился")
	}
	assert.NotEmpty(t, store.Calls)
}

// ===== END-TO-END =====

type lifecycle struct {
	tokens   *service.TokenService
	users    *repository.MemoryUserRepository
	verifier *security.Verifier
}

func newLifecycle(t *testing.T, rotate bool) *lifecycle {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	keys := security.NewKeyManagerFromKey(key, "")
	issuer := security.NewJWTService(&config.JWTConfig{}, testBaseURL, keys)
	users := repository.NewMemoryUserRepository()
	_, err = users.CreateUser(context.Background(), testPrincipal())
	require.NoError(t, err)

	return &lifecycle{
		tokens:   service.NewTokenService(repository.NewMemoryRefreshTokenRepository(), users, issuer, &config.RefreshTokenConfig{Rotate: boolPtr(rotate)}),
		users:    users,
		verifier: security.NewVerifier(security.NewKeyCache(security.NewLocalKeySource(keys), time.Hour), testBaseURL),
	}
}

func TestLifecycle_IssueRefreshRotate(t *testing.T) {
	l := newLifecycle(t, true)
	ctx := context.Background()

	issued, err := l.tokens.IssueTokens(ctx, testPrincipal(), model.ClientMetadata{})
	require.NoError(t, err)

	refreshed, err := l.tokens.RefreshTokens(ctx, issued.RefreshToken, model.ClientMetadata{})
	require.NoError(t, err)
	assert.NotEqual(t, issued.RefreshToken, refreshed.RefreshToken)

	principal, err := l.verifier.Verify(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)

	_, err = l.tokens.RefreshTokens(ctx, issued.RefreshToken, model.ClientMetadata{})
	assert.ErrorIs(t, err, model.ErrInvalidRefreshToken)

	_, err = l.tokens.RefreshTokens(ctx, refreshed.RefreshToken, model.ClientMetadata{})
	assert.NoError(t, err)
}

func TestLifecycle_NoRotationKeepsToken(t *testing.T) {
	l := newLifecycle(t, false)
	ctx := context.Background()

	issued, err := l.tokens.IssueTokens(ctx, testPrincipal(), model.ClientMetadata{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		refreshed, err := l.tokens.RefreshTokens(ctx, issued.RefreshToken, model.ClientMetadata{})
		require.NoError(t, err)
		assert.Equal(t, issued.RefreshToken, refreshed.RefreshToken)
	}
}

func TestLifecycle_ConcurrentRefreshSingleWinner(t *testing.T) {
	l := newLifecycle(t, true)
	ctx := context.Background()

	issued, err := l.tokens.IssueTokens(ctx, testPrincipal(), model.ClientMetadata{})
	require.NoError(t, err)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.tokens.RefreshTokens(ctx, issued.RefreshToken, model.ClientMetadata{})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, model.ErrInvalidRefreshToken)
	}
	assert.Equal(t, 1, successes)
}

func TestLifecycle_RevokeThenRefresh(t *testing.T) {
	l := newLifecycle(t, true)
	ctx := context.Background()

	issued, err := l.tokens.IssueTokens(ctx, testPrincipal(), model.ClientMetadata{})
	require.NoError(t, err)

	require.NoError(t, l.tokens.RevokeToken(ctx, issued.RefreshToken))
	require.NoError(t, l.tokens.RevokeToken(ctx, issued.RefreshToken))

	_, err = l.tokens.RefreshTokens(ctx, issued.RefreshToken, model.ClientMetadata{})
	assert.ErrorIs(t, err, model.ErrInvalidRefreshToken)
}

func TestLifecycle_DeletedPrincipal(t *testing.T) {
	l := newLifecycle(t, true)
	ctx := context.Background()

	issued, err := l.tokens.IssueTokens(ctx, testPrincipal(), model.ClientMetadata{})
	require.NoError(t, err)
	l.users.Delete("user-1")

	_, err = l.tokens.RefreshTokens(ctx, issued.RefreshToken, model.ClientMetadata{})
	assert.ErrorIs(t, err, model.ErrPrincipalNotFound)
}

func TestLifecycle_MissingBaseURLDoesNotSpendToken(t *testing.T) {
	ctx := context.Background()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keys := security.NewKeyManagerFromKey(key, "")

	store := repository.NewMemoryRefreshTokenRepository()
	users := repository.NewMemoryUserRepository()
	_, err = users.CreateUser(ctx, testPrincipal())
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, &model.RefreshToken{
		UUID:     "rt-1",
		UserUUID: "user-1",
		ExpireAt: time.Now().Add(time.Hour),
	}, "tok"))

	cfg := &config.RefreshTokenConfig{}
	misconfigured := service.NewTokenService(store, users, security.NewJWTService(&config.JWTConfig{}, "", keys), cfg)
	for i := 0; i < 2; i++ {
		_, err = misconfigured.RefreshTokens(ctx, "tok", model.ClientMetadata{})
		assert.ErrorIs(t, err, model.ErrMissingBaseURL)
	}

	fixed := service.NewTokenService(store, users, security.NewJWTService(&config.JWTConfig{}, testBaseURL, keys), cfg)
	refreshed, err := fixed.RefreshTokens(ctx, "tok", model.ClientMetadata{})
	require.NoError(t, err)
	assert.NotEqual(t, "tok", refreshed.RefreshToken)
}
