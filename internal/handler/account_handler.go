package handler

import (
	"bearer-auth-server/internal/model/requestresponse"
	"bearer-auth-server/internal/ports"
	"bearer-auth-server/internal/security"
	"bearer-auth-server/internal/util"
	"log/slog"
	"net/http"
)

type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Profile godoc
// @Summary Профиль текущего пользователя
// @Description Данные пользователя из проверенного access токена
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} requestresponse.ProfileResponse "Профиль"
// @Failure 401 {object} requestresponse.ErrorResponse "Токен отсутствует или недействителен" example({"error": "Invalid or expired access token.", "code": "JWT_EXPIRED"})
// @Router /api/account/v1/profile [get]
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := security.PrincipalFromContext(ctx)
	if !ok {
		util.HandleError(w, "Unauthorized", "", http.StatusUnauthorized)
		return
	}

	profile, err := h.accounts.Profile(ctx, principal)
	if err != nil {
		slog.ErrorContext(ctx, "ошибка получения профиля", "user_id", principal.ID, "error", err)
		util.HandleError(w, "Internal server error", security.CodeServerError, http.StatusInternalServerError)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.ProfileResponse{User: *profile})
}

// Posts godoc
// @Summary Демонстрационный защищенный ресурс
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} requestresponse.PostsResponse "Список постов"
// @Failure 401 {object} requestresponse.ErrorResponse "Токен отсутствует или недействителен"
// @Router /api/account/v1/posts [get]
func (h *AccountHandler) Posts(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, requestresponse.PostsResponse{
		Posts: []requestresponse.Post{
			{ID: 1, Title: "Hello World"},
			{ID: 2, Title: "Bearer tokens in practice"},
		},
	})
}
