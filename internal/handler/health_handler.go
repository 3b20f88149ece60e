package handler

import (
	"bearer-auth-server/internal/model/requestresponse"
	"bearer-auth-server/internal/security"
	"bearer-auth-server/internal/util"
	"net/http"
)

// KeyPublisher : источник публичных ключей издателя
type KeyPublisher interface {
	JWKS() *security.JSONWebKeySet
}

type HealthHandler struct {
	keys KeyPublisher
}

func NewHealthHandler(keys KeyPublisher) *HealthHandler {
	return &HealthHandler{keys: keys}
}

// Health godoc
// @Summary Проверка доступности сервиса
// @Tags Health
// @Produce json
// @Success 200 {object} requestresponse.HealthResponse "Сервис работает" example({"status": "ok"})
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, requestresponse.HealthResponse{Status: "ok"})
}

// JWKS godoc
// @Summary Публичные ключи подписи access токенов
// @Description JWKS с текущим ключом и ключами, оставленными для проверки после ротации
// @Tags Health
// @Produce json
// @Success 200 {object} security.JSONWebKeySet "Набор ключей"
// @Router /.well-known/jwks.json [get]
func (h *HealthHandler) JWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	util.WriteJSON(w, http.StatusOK, h.keys.JWKS())
}
