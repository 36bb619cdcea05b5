package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/scriptevent/pkg/script"
	"github.com/jwebster45206/scriptevent/pkg/storage"
)

type SaveResponse struct {
	SaveID string                  `json:"save_id"`
	Scopes map[string][]script.Var `json:"scopes"`
}

type SavesHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSavesHandler(storage storage.Storage, logger *slog.Logger) *SavesHandler {
	return &SavesHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles saved variable snapshots
// Routes:
// GET /v1/saves/{id}    - Read every scope of a save
// DELETE /v1/saves/{id} - Delete a save
func (h *SavesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	saveID, tail, err := splitID(r.URL.Path, "/v1/saves")
	if err != nil || tail != "" {
		h.logger.Warn("Invalid save ID", "path", r.URL.Path)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid save ID format")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, saveID)
	case http.MethodDelete:
		if err := h.storage.DeleteSave(r.Context(), saveID); err != nil {
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete save")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
	}
}

func (h *SavesHandler) handleRead(w http.ResponseWriter, r *http.Request, saveID uuid.UUID) {
	scopes, err := h.storage.ListScopes(r.Context(), saveID)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read save")
		return
	}
	if len(scopes) == 0 {
		writeError(w, h.logger, http.StatusNotFound, "Save not found")
		return
	}

	resp := SaveResponse{SaveID: saveID.String(), Scopes: make(map[string][]script.Var, len(scopes))}
	for _, scope := range scopes {
		vars, err := h.storage.LoadVars(r.Context(), saveID, scope)
		if err != nil {
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to read save")
			return
		}
		if vars == nil {
			vars = []script.Var{}
		}
		resp.Scopes[scope] = vars
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}
