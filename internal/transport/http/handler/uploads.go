package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/travel-planner-api/internal/application/upload"
)

// UploadHandler serves stored avatars back to browsers.
type UploadHandler struct {
	svc upload.Service
}

func NewUploadHandler(svc upload.Service) *UploadHandler { return &UploadHandler{svc: svc} }

func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.svc.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err, "File not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("stream upload", "err", err)
	}
}
