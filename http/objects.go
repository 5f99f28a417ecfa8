package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sagarc03/filekeep"
)

func objectPath(r *http.Request) (string, bool) {
	path := chi.URLParam(r, "*")
	return path, filekeep.IsValidPath(path)
}

func (h *Handler) handleGetObject(w http.ResponseWriter, r *http.Request) {
	path, ok := objectPath(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return
	}

	content, info, err := h.config.Objects.Open(r.Context(), path)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}

	http.ServeContent(w, r, path, info.ModTime, content)
}

// handlePutObject stores the body, replacing any existing object.
func (h *Handler) handlePutObject(w http.ResponseWriter, r *http.Request) {
	h.writeObject(w, r, true)
}

// handlePostObject stores the body only if nothing exists at the path yet.
func (h *Handler) handlePostObject(w http.ResponseWriter, r *http.Request) {
	h.writeObject(w, r, false)
}

func (h *Handler) writeObject(w http.ResponseWriter, r *http.Request, overwrite bool) {
	path, ok := objectPath(r)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return
	}

	body := r.Body
	if h.config.MaxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	info, err := h.config.Objects.Write(r.Context(), path, body, overwrite)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload exceeds the maximum size")
			return
		}
		HandleError(w, err)
		return
	}

	w.Header().Set("ETag", `"`+info.ETag+`"`)
	w.WriteHeader(http.StatusOK)
}
