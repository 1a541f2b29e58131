package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via club.MapError to get a user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is returned as JSON

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkarpin/clubsite/internal/club"
	"github.com/mkarpin/clubsite/internal/sheets"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and returns the mapped
// user-facing message as JSON with a status derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := club.MapError(err)
	statusCode := statusFor(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor chooses the HTTP status code for an internal error.
func statusFor(err error) int {
	var (
		statusErr *sheets.StatusError
		urlErr    *url.Error
	)

	switch {
	case errors.Is(err, club.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, club.ErrInvalidInput),
		errors.Is(err, club.ErrUnknownSetting),
		errors.Is(err, club.ErrUnsupportedImage),
		errors.Is(err, sheets.ErrInvalidSheetURL),
		errors.Is(err, sheets.ErrMalformedURL):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, sheets.ErrTooManyRedirects),
		errors.Is(err, sheets.ErrNotShared),
		errors.As(err, &statusErr),
		errors.As(err, &urlErr):
		// Upstream spreadsheet trouble is the backend's failure to proxy.
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
