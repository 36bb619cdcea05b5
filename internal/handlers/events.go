package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/jwebster45206/scriptevent/internal/queue"
)

// EventQueue is the part of the queue the handler needs.
type EventQueue interface {
	Enqueue(ctx context.Context, worldID uuid.UUID, ev queue.QueuedEvent) error
	Depth(ctx context.Context, worldID uuid.UUID) (int, error)
	SetPaused(ctx context.Context, worldID uuid.UUID, paused bool) error
	Paused(ctx context.Context, worldID uuid.UUID) (bool, error)
}

type EventRequest struct {
	Entity string `json:"entity"`
	Event  string `json:"event"`
	Params string `json:"params,omitempty"`
}

type EventsResponse struct {
	WorldID string `json:"world_id"`
	Queued  int    `json:"queued,omitempty"`
	Depth   int    `json:"depth"`
}

type PauseResponse struct {
	WorldID string `json:"world_id"`
	Paused  bool   `json:"paused"`
}

type EventsHandler struct {
	queue  EventQueue
	logger *slog.Logger
}

func NewEventsHandler(queue EventQueue, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		queue:  queue,
		logger: logger,
	}
}

// ServeHTTP handles event queue operations
// Routes:
// POST /v1/worlds/{id}/events - Queue one event or a list of events
// GET /v1/worlds/{id}/events  - Report the queue depth
// POST /v1/worlds/{id}/pause   - Pause the world
// DELETE /v1/worlds/{id}/pause - Resume the world
// GET /v1/worlds/{id}/pause    - Report whether the world is paused
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	worldID, tail, err := splitID(r.URL.Path, "/v1/worlds")
	if err == nil && tail == "pause" {
		h.servePause(w, r, worldID)
		return
	}
	if err != nil || tail != "events" {
		h.logger.Warn("Invalid events path", "path", r.URL.Path)
		writeError(w, h.logger, http.StatusNotFound, "Expected /v1/worlds/{id}/events or /v1/worlds/{id}/pause")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleEnqueue(w, r, worldID)
	case http.MethodGet:
		h.writeDepth(w, r, worldID, 0, http.StatusOK)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET")
	}
}

func (h *EventsHandler) handleEnqueue(w http.ResponseWriter, r *http.Request, worldID uuid.UUID) {
	var reqs []EventRequest
	body := http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(body)
	raw := json.RawMessage{}
	if err := dec.Decode(&raw); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		if err := json.Unmarshal(raw, &reqs); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid event list")
			return
		}
	} else {
		var one EventRequest
		if err := json.Unmarshal(raw, &one); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid event")
			return
		}
		reqs = []EventRequest{one}
	}
	if len(reqs) == 0 {
		writeError(w, h.logger, http.StatusBadRequest, "No events given")
		return
	}
	for _, req := range reqs {
		if req.Entity == "" || req.Event == "" {
			writeError(w, h.logger, http.StatusBadRequest, "Each event needs an entity and an event name")
			return
		}
	}

	for _, req := range reqs {
		ev := queue.QueuedEvent{Entity: req.Entity, Event: req.Event, Params: req.Params}
		if err := h.queue.Enqueue(r.Context(), worldID, ev); err != nil {
			h.logger.Error("Failed to enqueue event", "error", err, "world_id", worldID)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to enqueue event")
			return
		}
	}
	h.writeDepth(w, r, worldID, len(reqs), http.StatusAccepted)
}

func (h *EventsHandler) writeDepth(w http.ResponseWriter, r *http.Request, worldID uuid.UUID, queued, status int) {
	depth, err := h.queue.Depth(r.Context(), worldID)
	if err != nil {
		h.logger.Error("Failed to read queue depth", "error", err, "world_id", worldID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read queue depth")
		return
	}
	writeJSON(w, h.logger, status, EventsResponse{WorldID: worldID.String(), Queued: queued, Depth: depth})
}

func (h *EventsHandler) servePause(w http.ResponseWriter, r *http.Request, worldID uuid.UUID) {
	switch r.Method {
	case http.MethodPost, http.MethodDelete:
		paused := r.Method == http.MethodPost
		if err := h.queue.SetPaused(r.Context(), worldID, paused); err != nil {
			h.logger.Error("Failed to set world pause", "error", err, "world_id", worldID)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to set world pause")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, PauseResponse{WorldID: worldID.String(), Paused: paused})
	case http.MethodGet:
		paused, err := h.queue.Paused(r.Context(), worldID)
		if err != nil {
			h.logger.Error("Failed to read world pause", "error", err, "world_id", worldID)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to read world pause")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, PauseResponse{WorldID: worldID.String(), Paused: paused})
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, DELETE, GET")
	}
}
