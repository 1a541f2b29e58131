package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkarpin/clubsite/internal/club"
	"github.com/mkarpin/clubsite/internal/web/middleware"
)

// settingKeys maps URL path keys to store keys.
var settingKeys = map[string]string{
	"sheet-url":  club.SettingSheetURL,
	"tournament": club.SettingTournament,
}

// handleListMembers runs the spreadsheet pipeline and returns the member
// list. With no spreadsheet configured it returns an empty list.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.service.Members(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

// handleGetSetting returns a settings blob.
func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key, ok := settingKeys[chi.URLParam(r, "key")]
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %q", club.ErrUnknownSetting, chi.URLParam(r, "key")))
		return
	}

	value, err := s.service.Setting(r.Context(), key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"value": value})
}

type putSettingRequest struct {
	Value string `json:"value"`
}

// handlePutSetting stores a settings blob.
func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key, ok := settingKeys[chi.URLParam(r, "key")]
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %q", club.ErrUnknownSetting, chi.URLParam(r, "key")))
		return
	}

	var req putSettingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.SetSetting(r.Context(), key, req.Value); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"value": req.Value})
}

type loginRequest struct {
	Password string `json:"password"`
}

// handleLogin checks the admin password so the admin page can unlock itself.
// It is the same comparison the admin gate performs per request.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	if s.cfg.Security.AdminPassword == "" || !middleware.PasswordMatches(req.Password, s.cfg.Security.AdminPassword) {
		respondJSON(w, http.StatusForbidden, map[string]bool{"ok": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
