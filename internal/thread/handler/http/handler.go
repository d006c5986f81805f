package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"

	"go.uber.org/zap"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/engine"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/identity"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/service"
)

type Handler struct {
	svc    service.ThreadService
	logger *zap.Logger
}

func New(svc service.ThreadService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

type replyRequest struct {
	ParentID *string `json:"parent_id,omitempty"`
	Body     string  `json:"body"`
}

func (h *Handler) GetThread(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	postID := r.PathValue("post")

	forest, err := h.svc.Thread(r.Context(), postID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, stdhttp.StatusOK, map[string]any{"items": forest})
}

func (h *Handler) PostReply(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	postID := r.PathValue("post")

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, stdhttp.StatusBadRequest, map[string]any{"error": "bad json"})
		return
	}

	node, err := h.svc.Reply(r.Context(), postID, req.ParentID, req.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, stdhttp.StatusCreated, node)
}

func (h *Handler) DeleteComment(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	deleted, err := h.svc.DeleteSubtree(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, stdhttp.StatusOK, map[string]any{"deleted": deleted})
}

func (h *Handler) GetSubtree(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	node, err := h.svc.Subtree(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, stdhttp.StatusOK, node)
}

func (h *Handler) GetPath(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	items, err := h.svc.Path(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, stdhttp.StatusOK, map[string]any{"items": items})
}

func (h *Handler) writeError(w stdhttp.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrNoSession):
		writeJSON(w, stdhttp.StatusUnauthorized, map[string]any{"error": "authentication required"})
	case errors.Is(err, engine.ErrValidation), errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, stdhttp.StatusBadRequest, map[string]any{"error": "invalid input"})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, stdhttp.StatusNotFound, map[string]any{"error": "not found"})
	case errors.Is(err, engine.ErrPersistence):
		writeJSON(w, stdhttp.StatusBadGateway, map[string]any{"error": "could not store reply"})
	default:
		h.logger.Error("internal error", zap.Error(err))
		writeJSON(w, stdhttp.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func writeJSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
