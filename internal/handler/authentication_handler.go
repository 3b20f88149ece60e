package handler

import (
	"bearer-auth-server/internal/model"
	"bearer-auth-server/internal/model/requestresponse"
	"bearer-auth-server/internal/ports"
	"bearer-auth-server/internal/security"
	"bearer-auth-server/internal/util"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
)

const (
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeExpiredRefreshToken = "EXPIRED_REFRESH_TOKEN"
	CodePrincipalNotFound   = "PRINCIPAL_NOT_FOUND"
	CodeStorageError        = "STORAGE_ERROR"
	CodeInvalidCredentials  = "INVALID_EMAIL_OR_PASSWORD"
	CodeUserAlreadyExists   = "USER_ALREADY_EXISTS"
	CodeInvalidEmail        = "INVALID_EMAIL"
	CodeInvalidPassword     = "INVALID_PASSWORD"
	CodeBadRequest          = "BAD_REQUEST"

	headerAccessToken  = "x-access-token"
	headerRefreshToken = "x-refresh-token"
)

type AuthenticationHandler struct {
	tokens         ports.TokenService
	authentication ports.AuthenticationService
}

func NewAuthenticationHandler(tokens ports.TokenService, authentication ports.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{
		tokens:         tokens,
		authentication: authentication,
	}
}

// IssueTokens godoc
// @Summary Выпуск пары токенов для текущей сессии
// @Description Выдает новую пару access/refresh для пользователя, указанного в bearer токене
// @Tags Tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {object} requestresponse.TokensResponse "Пара токенов"
// @Failure 401 {object} requestresponse.ErrorResponse "Нет активной сессии" example({"error": "Unauthorized"})
// @Failure 500 {object} requestresponse.ErrorResponse "Ошибка хранилища" example({"error": "Failed to issue tokens", "code": "STORAGE_ERROR"})
// @Router /api/auth/tokens [post]
func (h *AuthenticationHandler) IssueTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := security.PrincipalFromContext(ctx)
	if !ok {
		util.HandleError(w, "Unauthorized", "", http.StatusUnauthorized)
		return
	}

	user, err := h.authentication.FindUser(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			util.HandleError(w, "Principal no longer exists", CodePrincipalNotFound, http.StatusUnauthorized)
			return
		}
		slog.ErrorContext(ctx, "ошибка поиска пользователя сессии", "user_id", principal.ID, "error", err)
		util.HandleError(w, "Failed to issue tokens", CodeStorageError, http.StatusInternalServerError)
		return
	}

	pair, err := h.tokens.IssueTokens(ctx, user, clientMetadata(r))
	if err != nil {
		slog.ErrorContext(ctx, "ошибка выпуска токенов", "user_id", user.UUID, "error", err)
		writeIssueError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.TokensResponseFromModel(pair))
}

// Refresh godoc
// @Summary Обновление пары токенов
// @Description Обменивает refresh токен на новую пару. При включенной ротации старый refresh токен перестает действовать.
// @Tags Tokens
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest false "Refresh токен" example({"refreshToken": "vcSi0369y1I62wOpxZFpgZ..."})
// @Param refreshToken query string false "Refresh токен, если тело пустое"
// @Success 200 {object} requestresponse.TokensResponse "Новая пара токенов"
// @Failure 400 {object} requestresponse.ErrorResponse "Не передан refresh токен" example({"error": "Refresh token is required"})
// @Failure 401 {object} requestresponse.ErrorResponse "Токен недействителен или истек" example({"error": "Invalid refresh token", "code": "INVALID_REFRESH_TOKEN"})
// @Failure 500 {object} requestresponse.ErrorResponse "Ошибка хранилища" example({"error": "Failed to refresh tokens", "code": "STORAGE_ERROR"})
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken, ok := readRefreshToken(r)
	if !ok {
		util.HandleError(w, "Refresh token is required", CodeBadRequest, http.StatusBadRequest)
		return
	}

	pair, err := h.tokens.RefreshTokens(ctx, refreshToken, clientMetadata(r))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidRefreshToken):
			util.HandleError(w, "Invalid refresh token", CodeInvalidRefreshToken, http.StatusUnauthorized)
		case errors.Is(err, model.ErrExpiredRefreshToken):
			util.HandleError(w, "Refresh token has expired", CodeExpiredRefreshToken, http.StatusUnauthorized)
		case errors.Is(err, model.ErrPrincipalNotFound):
			util.HandleError(w, "Principal no longer exists", CodePrincipalNotFound, http.StatusUnauthorized)
		case errors.Is(err, model.ErrMissingBaseURL):
			slog.ErrorContext(ctx, "обновление токенов невозможно, не задан baseURL", "error", err)
			util.HandleError(w, "Server misconfiguration", security.CodeServerError, http.StatusInternalServerError)
		default:
			slog.ErrorContext(ctx, "ошибка обновления токенов", "error", err)
			util.HandleError(w, "Failed to refresh tokens", CodeStorageError, http.StatusInternalServerError)
		}
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.TokensResponseFromModel(pair))
}

// Revoke godoc
// @Summary Отзыв refresh токена
// @Description Удаляет запись refresh токена. Ответ одинаковый для известного и неизвестного токена, ошибка хранилища дает 500.
// @Tags Tokens
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Refresh токен" example({"refreshToken": "vcSi0369y1I62wOpxZFpgZ..."})
// @Success 200 {object} requestresponse.RevokeResponse "Токен отозван" example({"success": true})
// @Failure 400 {object} requestresponse.ErrorResponse "Не передан refresh токен" example({"error": "Refresh token is required"})
// @Failure 500 {object} requestresponse.ErrorResponse "Ошибка хранилища, токен не отозван" example({"error": "Failed to revoke token", "code": "STORAGE_ERROR"})
// @Router /api/auth/revoke [post]
func (h *AuthenticationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken, ok := readRefreshToken(r)
	if !ok {
		util.HandleError(w, "Refresh token is required", CodeBadRequest, http.StatusBadRequest)
		return
	}

	// неизвестный токен RevokeToken считает уже отозванным, ошибка здесь только от хранилища
	if err := h.tokens.RevokeToken(ctx, refreshToken); err != nil {
		slog.ErrorContext(ctx, "ошибка отзыва refresh токена", "error", err)
		util.HandleError(w, "Failed to revoke token", CodeStorageError, http.StatusInternalServerError)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.RevokeResponse{Success: true})
}

// SignInBasic godoc
// @Summary Вход по Basic авторизации
// @Description Проверяет email и пароль из заголовка Authorization: Basic и выдает пару токенов
// @Tags Authentication
// @Produce json
// @Security BasicAuth
// @Success 200 {object} requestresponse.SignInResponse "Пользователь и пара токенов"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверные учетные данные" example({"error": "Invalid email or password", "code": "INVALID_EMAIL_OR_PASSWORD"})
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка" example({"error": "Failed to issue tokens", "code": "STORAGE_ERROR"})
// @Router /api/auth/sign-in [get]
// @Router /api/auth/sign-in [post]
func (h *AuthenticationHandler) SignInBasic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, password, ok := r.BasicAuth()
	if !ok || email == "" || password == "" {
		w.Header().Set("WWW-Authenticate", `Basic realm="sign-in"`)
		util.HandleError(w, "Invalid email or password", CodeInvalidCredentials, http.StatusUnauthorized)
		return
	}

	user, err := h.authentication.Authenticate(ctx, email, password)
	if err != nil {
		writeAuthenticationError(w, r, err)
		return
	}

	pair, err := h.tokens.IssueTokens(ctx, user, clientMetadata(r))
	if err != nil {
		slog.ErrorContext(ctx, "ошибка выпуска токенов", "user_id", user.UUID, "error", err)
		writeIssueError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, signInResponse(user, pair))
}

// SignInEmail godoc
// @Summary Вход по email и паролю
// @Description Первичная аутентификация. Пара токенов добавляется в тело ответа и в заголовки x-access-token, x-refresh-token.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.SignInRequest true "Тело запроса" example({"email": "user@example.com", "password": "P@ssw0rd123"})
// @Success 200 {object} requestresponse.SignInResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля" example({"error": "email and password are required", "code": "BAD_REQUEST"})
// @Failure 401 {object} requestresponse.ErrorResponse "Неверные учетные данные" example({"error": "Invalid email or password", "code": "INVALID_EMAIL_OR_PASSWORD"})
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка" example({"error": "Internal server error", "code": "STORAGE_ERROR"})
// @Router /api/auth/sign-in/email [post]
func (h *AuthenticationHandler) SignInEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req requestresponse.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Email == "" || req.Password == "" {
		util.HandleError(w, "email and password are required", CodeBadRequest, http.StatusBadRequest)
		return
	}

	event, err := h.authentication.SignIn(ctx, req.Email, req.Password, clientMetadata(r))
	if err != nil {
		writeAuthenticationError(w, r, err)
		return
	}

	writeAuthEvent(w, http.StatusOK, event)
}

// SignUpEmail godoc
// @Summary Регистрация по email и паролю
// @Description Создает пользователя, отправляет приветственное письмо и сразу выдает пару токенов
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.SignUpRequest true "Тело запроса" example({"email": "user@example.com", "password": "P@ssw0rd123", "name": "Jane"})
// @Success 200 {object} requestresponse.SignInResponse "Пользователь создан"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный email или пароль" example({"error": "Invalid email", "code": "INVALID_EMAIL"})
// @Failure 422 {object} requestresponse.ErrorResponse "Email уже занят" example({"error": "User already exists", "code": "USER_ALREADY_EXISTS"})
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка" example({"error": "Internal server error", "code": "STORAGE_ERROR"})
// @Router /api/auth/sign-up/email [post]
func (h *AuthenticationHandler) SignUpEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req requestresponse.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	event, err := h.authentication.SignUp(ctx, req.Email, req.Password, req.Name, clientMetadata(r))
	if err != nil {
		writeAuthenticationError(w, r, err)
		return
	}

	writeAuthEvent(w, http.StatusOK, event)
}

// writeIssueError : не заданный baseURL это ошибка развертывания, а не хранилища
func writeIssueError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrMissingBaseURL) {
		util.HandleError(w, "Server misconfiguration", security.CodeServerError, http.StatusInternalServerError)
		return
	}
	util.HandleError(w, "Failed to issue tokens", CodeStorageError, http.StatusInternalServerError)
}

func writeAuthEvent(w http.ResponseWriter, status int, event *model.AuthEvent) {
	if event.Tokens != nil {
		w.Header().Set(headerAccessToken, event.Tokens.AccessToken)
		w.Header().Set(headerRefreshToken, event.Tokens.RefreshToken)
		w.Header().Add("Access-Control-Expose-Headers", headerAccessToken+", "+headerRefreshToken)
	}

	util.WriteJSON(w, status, signInResponse(event.User, event.Tokens))
}

func signInResponse(user *model.User, pair *model.TokensPair) requestresponse.SignInResponse {
	resp := requestresponse.SignInResponse{User: requestresponse.UserViewFromModel(user)}
	if pair != nil {
		resp.AccessToken = pair.AccessToken
		resp.RefreshToken = pair.RefreshToken
		resp.TokenType = pair.TokenType
	}
	return resp
}

func writeAuthenticationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		util.HandleError(w, "Invalid email or password", CodeInvalidCredentials, http.StatusUnauthorized)
	case errors.Is(err, model.ErrEmailTaken):
		util.HandleError(w, "User already exists", CodeUserAlreadyExists, http.StatusUnprocessableEntity)
	case errors.Is(err, model.ErrInvalidEmail):
		util.HandleError(w, "Invalid email", CodeInvalidEmail, http.StatusBadRequest)
	case errors.Is(err, model.ErrInvalidPassword):
		util.HandleError(w, err.Error(), CodeInvalidPassword, http.StatusBadRequest)
	default:
		slog.ErrorContext(r.Context(), "ошибка аутентификации", "error", err)
		util.HandleError(w, "Internal server error", CodeStorageError, http.StatusInternalServerError)
	}
}

// readRefreshToken : сначала тело {refreshToken}, затем query ?refreshToken=
func readRefreshToken(r *http.Request) (string, bool) {
	var req requestresponse.RefreshTokenRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.DebugContext(r.Context(), "тело запроса не разобрано", "error", err)
		}
	}

	if req.RefreshToken == "" {
		req.RefreshToken = r.URL.Query().Get("refreshToken")
	}
	return req.RefreshToken, req.RefreshToken != ""
}

func clientMetadata(r *http.Request) model.ClientMetadata {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return model.ClientMetadata{
		UserAgent: r.UserAgent(),
		IpAddress: ip,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		util.HandleError(w, "invalid request body", CodeBadRequest, http.StatusBadRequest)
		return err
	}
	return nil
}
