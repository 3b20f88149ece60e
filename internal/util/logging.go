package util

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// LogError : логирует ошибку и возвращает ее, обернув сообщением
func LogError(message string, err error) error {
	slog.Error(message, "error", err)
	return fmt.Errorf("%s: %w", message, err)
}

// NewLogger : создает slog.Logger по настройкам logging из конфига
func NewLogger(w io.Writer, level string, format string) *slog.Logger {
	options := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}

	return slog.New(handler)
}

// ParseLevel : уровень по строке, по умолчанию info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WriteJSON : пишет JSON-ответ с заданным статусом
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("ошибка кодирования ответа", "error", err)
	}
}

// HandleError : ответ об ошибке в формате {error, code}
func HandleError(w http.ResponseWriter, message string, code string, statusCode int) {
	WriteJSON(w, statusCode, struct {
		Error string `json:"error"`
		Code  string `json:"code,omitempty"`
	}{
		Error: message,
		Code:  code,
	})
}
