package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/gatherly/gatherly-server/internal/blob"
)

// handleServeBlob serves a locally stored upload.
// GET /blobs/{name}.
func (s *Server) handleServeBlob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := s.opts.Blobs.Open(name)
	switch {
	case errors.Is(err, blob.ErrInvalidName), errors.Is(err, os.ErrNotExist):
		http.NotFound(w, r)
		return
	case err != nil:
		s.logger.Error("Failed to open blob", "name", name, "error", err)
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	// Names are random and never reused.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
