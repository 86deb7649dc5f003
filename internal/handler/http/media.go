package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/saree-catalogue-portal/internal/storage/memory"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/httputil"
)

// MediaHandler serves uploads kept by the in-memory store.
type MediaHandler struct {
	store *memory.Storage
}

// NewMediaHandler creates a media handler over store.
func NewMediaHandler(store *memory.Storage) *MediaHandler {
	return &MediaHandler{store: store}
}

// Serve handles GET /media/*
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	body, contentType, ok := h.store.Open(key)
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound("file", key), nil)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}
