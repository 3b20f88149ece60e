package security

import (
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/util"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const PrincipalContextKey contextKey = "principal"

// TokenVerifier : проверка access-токена, реализуется Verifier
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Principal, error)
}

// JWTMiddleware : пропускает запрос дальше только с валидным bearer токеном
func JWTMiddleware(verifier TokenVerifier) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(verifier, next))
	}
}

func handleAuthentication(verifier TokenVerifier, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		token, ok := BearerToken(request)
		if !ok {
			util.WriteJSON(writer, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}

		principal, err := verifier.Verify(request.Context(), token)
		if err != nil {
			var verificationErr *VerificationError
			if !errors.As(err, &verificationErr) {
				slog.ErrorContext(request.Context(), "ошибка проверки токена", "error", err)
				util.HandleError(writer, "Server misconfiguration", CodeServerError, http.StatusInternalServerError)
				return
			}

			if verificationErr.Status >= http.StatusInternalServerError {
				slog.ErrorContext(request.Context(), "проверка токена невозможна", "code", verificationErr.Code, "error", verificationErr.Err)
			} else {
				slog.DebugContext(request.Context(), "токен отклонен", "code", verificationErr.Code, "error", verificationErr.Err)
			}
			util.HandleError(writer, verificationErr.Message, verificationErr.Code, verificationErr.Status)
			return
		}

		next.ServeHTTP(writer, request.WithContext(WithPrincipal(request.Context(), principal)))
	}
}

// BearerToken : значение заголовка Authorization после "Bearer "
func BearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func WithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, principal)
}

func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	principal, ok := ctx.Value(PrincipalContextKey).(*model.Principal)
	return principal, ok && principal != nil
}
