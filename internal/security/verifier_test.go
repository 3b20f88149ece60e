package security

import (
	"bearer-auth-server/config"
	"bearer-auth-server/internal/model"
	"context"
	"crypto/ed25519"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://auth.example.test"

func testUser() *model.User {
	return &model.User{
		UUID:          "user-1",
		Email:         "ada@example.test",
		Name:          "Ada",
		EmailVerified: true,
		Image:         "avatars/ada.png",
		CreatedAt:     time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestIssuer(t *testing.T, baseURL string) (*JWTService, *KeyManager) {
	t.Helper()
	keys := NewKeyManagerFromKey(newTestKey(t), "test-key")
	return NewJWTService(&config.JWTConfig{}, baseURL, keys), keys
}

func newTestVerifier(keys *KeyManager, baseURL string) *Verifier {
	return NewVerifier(NewKeyCache(NewLocalKeySource(keys), time.Hour), baseURL)
}

func signClaims(t *testing.T, key ed25519.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":   "user-1",
		"email": "ada@example.test",
		"iss":   testBaseURL,
		"aud":   testBaseURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
}

func requireVerificationError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var verificationErr *VerificationError
	require.True(t, errors.As(err, &verificationErr), "ожидалась VerificationError, получено %v", err)
	assert.Equal(t, status, verificationErr.Status)
	assert.Equal(t, code, verificationErr.Code)
}

func TestIssueAccessToken_Claims(t *testing.T) {
	issuer, keys := newTestIssuer(t, testBaseURL)
	fixed := time.Now().Truncate(time.Second)
	issuer.now = func() time.Time { return fixed }

	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		assert.Equal(t, "test-key", token.Header["kid"])
		return keys.SigningKey().Public(), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(*AccessClaims)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ada@example.test", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
	assert.True(t, claims.EmailVerified)
	assert.Equal(t, "avatars/ada.png", claims.Image)
	assert.Equal(t, testBaseURL, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{testBaseURL}, claims.Audience)
	assert.Equal(t, fixed.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixed.Add(60*time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, testUser().CreatedAt.Unix(), claims.CreatedAt.Unix())
}

func TestIssueAccessToken_ConfiguredTTL(t *testing.T) {
	keys := NewKeyManagerFromKey(newTestKey(t), "")
	issuer := NewJWTService(&config.JWTConfig{AccessTokenTTLDuration: 5 * time.Minute}, testBaseURL, keys)

	assert.Equal(t, 5*time.Minute, issuer.AccessTokenTTL())
}

func TestIssueAccessToken_MissingBaseURL(t *testing.T) {
	issuer, _ := newTestIssuer(t, "")

	token, err := issuer.IssueAccessToken(testUser())

	assert.Empty(t, token)
	assert.ErrorIs(t, err, model.ErrMissingBaseURL)
}

func TestVerify_RoundTrip(t *testing.T) {
	issuer, keys := newTestIssuer(t, testBaseURL)
	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	principal, err := newTestVerifier(keys, testBaseURL).Verify(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)
	assert.Equal(t, "ada@example.test", principal.Email)
	assert.Equal(t, "Ada", principal.Name)
	assert.True(t, principal.EmailVerified)
	assert.Equal(t, "avatars/ada.png", principal.Image)
	require.NotNil(t, principal.CreatedAt)
	assert.True(t, testUser().CreatedAt.Equal(*principal.CreatedAt))
}

func TestVerify_ExpiredToken(t *testing.T) {
	issuer, keys := newTestIssuer(t, testBaseURL)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = newTestVerifier(keys, testBaseURL).Verify(context.Background(), token)

	requireVerificationError(t, err, http.StatusUnauthorized, CodeJWTExpired)
}

func TestVerify_WrongAudienceOrIssuer(t *testing.T) {
	issuer, keys := newTestIssuer(t, "https://other.example.test")
	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = newTestVerifier(keys, testBaseURL).Verify(context.Background(), token)

	requireVerificationError(t, err, http.StatusUnauthorized, CodeUnauthorized)
}

func TestVerify_UnknownSigningKey(t *testing.T) {
	issuer, _ := newTestIssuer(t, testBaseURL)
	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	otherKeys := NewKeyManagerFromKey(newTestKey(t), "test-key")
	_, err = newTestVerifier(otherKeys, testBaseURL).Verify(context.Background(), token)

	requireVerificationError(t, err, http.StatusUnauthorized, CodeUnauthorized)
}

func TestVerify_ExpiredAndForgedIsUnauthorized(t *testing.T) {
	issuer, _ := newTestIssuer(t, testBaseURL)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	otherKeys := NewKeyManagerFromKey(newTestKey(t), "test-key")
	_, err = newTestVerifier(otherKeys, testBaseURL).Verify(context.Background(), token)

	requireVerificationError(t, err, http.StatusUnauthorized, CodeUnauthorized)
}

func TestVerify_MalformedToken(t *testing.T) {
	_, keys := newTestIssuer(t, testBaseURL)

	_, err := newTestVerifier(keys, testBaseURL).Verify(context.Background(), "not.a.jwt")

	requireVerificationError(t, err, http.StatusUnauthorized, CodeUnauthorized)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	_, keys := newTestIssuer(t, testBaseURL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newTestVerifier(keys, testBaseURL).Verify(context.Background(), signed)

	requireVerificationError(t, err, http.StatusUnauthorized, CodeUnauthorized)
}

func TestVerify_MissingRequiredClaims(t *testing.T) {
	_, keys := newTestIssuer(t, testBaseURL)
	verifier := newTestVerifier(keys, testBaseURL)

	for _, name := range []string{"sub", "email"} {
		claims := validClaims()
		delete(claims, name)

		_, err := verifier.Verify(context.Background(), signClaims(t, keys.SigningKey(), "test-key", claims))

		requireVerificationError(t, err, http.StatusUnauthorized, CodeJWTInvalid)
	}
}

func TestVerify_WrongTypedClaims(t *testing.T) {
	_, keys := newTestIssuer(t, testBaseURL)
	verifier := newTestVerifier(keys, testBaseURL)

	cases := map[string]interface{}{
		"email":         42,
		"name":          true,
		"emailVerified": "yes",
		"image":         12,
		"createdAt":     "yesterday",
	}
	for name, value := range cases {
		claims := validClaims()
		claims[name] = value

		_, err := verifier.Verify(context.Background(), signClaims(t, keys.SigningKey(), "test-key", claims))

		requireVerificationError(t, err, http.StatusUnauthorized, CodeJWTInvalid)
	}
}

func TestVerify_OptionalClaimsMayBeAbsent(t *testing.T) {
	_, keys := newTestIssuer(t, testBaseURL)

	principal, err := newTestVerifier(keys, testBaseURL).Verify(context.Background(), signClaims(t, keys.SigningKey(), "test-key", validClaims()))

	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)
	assert.Empty(t, principal.Name)
	assert.False(t, principal.EmailVerified)
	assert.Nil(t, principal.CreatedAt)
}

func TestVerify_MissingBaseURL(t *testing.T) {
	source := &stubKeySource{err: errors.New("must not be called")}
	verifier := NewVerifier(NewKeyCache(source, time.Hour), "")

	_, err := verifier.Verify(context.Background(), "whatever")

	requireVerificationError(t, err, http.StatusInternalServerError, CodeServerError)
	assert.ErrorIs(t, err, model.ErrMissingBaseURL)
	assert.Equal(t, 0, source.callCount())
}

func TestVerify_KeysUnavailable(t *testing.T) {
	issuer, _ := newTestIssuer(t, testBaseURL)
	token, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	verifier := NewVerifier(NewKeyCache(&stubKeySource{err: errors.New("issuer is down")}, time.Hour), testBaseURL)
	_, err = verifier.Verify(context.Background(), token)

	requireVerificationError(t, err, http.StatusInternalServerError, CodeServerError)
}

func TestVerify_PreviousKeyAfterRotation(t *testing.T) {
	oldKeys := NewKeyManagerFromKey(newTestKey(t), "")
	token, err := NewJWTService(&config.JWTConfig{}, testBaseURL, oldKeys).IssueAccessToken(testUser())
	require.NoError(t, err)

	oldPublic := oldKeys.SigningKey().Public().(ed25519.PublicKey)
	rotated := NewKeyManagerFromKey(newTestKey(t), "", oldPublic)

	principal, err := newTestVerifier(rotated, testBaseURL).Verify(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)
}
