package security

import (
	"bearer-auth-server/internal/model"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CodeJWTExpired   = "JWT_EXPIRED"
	CodeJWTInvalid   = "JWT_INVALID"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeServerError  = "SERVER_ERROR"
)

var (
	errUnknownKey     = errors.New("ключ подписи не найден в JWKS")
	errMissingClaim   = errors.New("отсутствует обязательный claim")
	errWrongClaimType = errors.New("claim имеет неверный тип")
)

// VerificationError : отказ в проверке access-токена с HTTP статусом и кодом для клиента
type VerificationError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Verifier : проверка подписи, iss, aud и exp по ключам из KeyCache
type Verifier struct {
	keys    *KeyCache
	baseURL string
}

func NewVerifier(keys *KeyCache, baseURL string) *Verifier {
	return &Verifier{
		keys:    keys,
		baseURL: baseURL,
	}
}

// Verify : возвращает Principal, собранный только из проверенных claims
func (v *Verifier) Verify(ctx context.Context, tokenStr string) (*model.Principal, error) {
	if v.baseURL == "" {
		return nil, &VerificationError{
			Status:  http.StatusInternalServerError,
			Code:    CodeServerError,
			Message: "Server misconfiguration",
			Err:     model.ErrMissingBaseURL,
		}
	}

	keys, err := v.keys.GetKeys(ctx)
	if err != nil {
		return nil, &VerificationError{
			Status:  http.StatusInternalServerError,
			Code:    CodeServerError,
			Message: "Signing keys are unavailable",
			Err:     err,
		}
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(v.baseURL),
		jwt.WithAudience(v.baseURL),
		jwt.WithExpirationRequired(),
	)

	claims := jwt.MapClaims{}
	_, err = parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		key, ok := keys.Lookup(kid)
		if !ok {
			return nil, errUnknownKey
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &VerificationError{
				Status:  http.StatusUnauthorized,
				Code:    CodeJWTExpired,
				Message: "Invalid or expired access token.",
				Err:     err,
			}
		}
		return nil, &VerificationError{
			Status:  http.StatusUnauthorized,
			Code:    CodeUnauthorized,
			Message: "You are not authorized to access this resource",
			Err:     err,
		}
	}

	principal, err := principalFromClaims(claims)
	if err != nil {
		return nil, &VerificationError{
			Status:  http.StatusUnauthorized,
			Code:    CodeJWTInvalid,
			Message: "Invalid access token claims.",
			Err:     err,
		}
	}

	return principal, nil
}

func principalFromClaims(claims jwt.MapClaims) (*model.Principal, error) {
	sub, err := requiredString(claims, "sub")
	if err != nil {
		return nil, err
	}
	email, err := requiredString(claims, "email")
	if err != nil {
		return nil, err
	}

	principal := &model.Principal{ID: sub, Email: email}

	if principal.Name, err = optionalString(claims, "name"); err != nil {
		return nil, err
	}
	if principal.Image, err = optionalString(claims, "image"); err != nil {
		return nil, err
	}
	if raw, ok := claims["emailVerified"]; ok && raw != nil {
		verified, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: emailVerified", errWrongClaimType)
		}
		principal.EmailVerified = verified
	}
	if principal.CreatedAt, err = optionalTime(claims, "createdAt"); err != nil {
		return nil, err
	}
	if principal.UpdatedAt, err = optionalTime(claims, "updatedAt"); err != nil {
		return nil, err
	}

	return principal, nil
}

func requiredString(claims jwt.MapClaims, name string) (string, error) {
	raw, ok := claims[name]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: %s", errMissingClaim, name)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s", errWrongClaimType, name)
	}
	if value == "" {
		return "", fmt.Errorf("%w: %s", errMissingClaim, name)
	}
	return value, nil
}

func optionalString(claims jwt.MapClaims, name string) (string, error) {
	raw, ok := claims[name]
	if !ok || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s", errWrongClaimType, name)
	}
	return value, nil
}

func optionalTime(claims jwt.MapClaims, name string) (*time.Time, error) {
	raw, ok := claims[name]
	if !ok || raw == nil {
		return nil, nil
	}
	seconds, ok := raw.(float64)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errWrongClaimType, name)
	}
	value := time.Unix(int64(seconds), 0).UTC()
	return &value, nil
}
