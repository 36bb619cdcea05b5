package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// splitID parses "<prefix>/<uuid>[/rest]" into the ID and the remainder.
func splitID(path, prefix string) (uuid.UUID, string, error) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	idStr, tail, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(idStr)
	return id, tail, err
}
