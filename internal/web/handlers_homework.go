package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkarpin/clubsite/internal/club"
)

// handleListHomework returns homework image metadata, newest first. The
// images themselves are served from /uploads/{file_name}.
func (s *Server) handleListHomework(w http.ResponseWriter, r *http.Request) {
	images, err := s.service.ListHomework(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, images)
}

// handleUploadHomework accepts a multipart image upload.
func (s *Server) handleUploadHomework(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: image exceeds %d bytes", club.ErrInvalidInput, maxSize))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: invalid multipart form", club.ErrInvalidInput))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: no file provided", club.ErrInvalidInput))
		return
	}
	defer file.Close()

	img, err := s.service.SaveHomework(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, img)
}

// handleDeleteHomework removes a homework image and its file.
func (s *Server) handleDeleteHomework(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteHomework(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
