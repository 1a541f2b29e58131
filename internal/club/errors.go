package club

// errors.go maps internal errors to user-friendly messages with support
// codes. Handlers log the technical error and return only the UserMessage.
//
// Code groups:
//
//	SHEET001-SHEET006: members spreadsheet pipeline
//	VAL001-VAL003:     request validation
//	NF001:             missing documents
//	REQ001-REQ002:     cancelled or timed out requests
//	GEN001:            anything unrecognized

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mkarpin/clubsite/internal/sheets"
)

// UserMessage is a user-facing error with a support code and an optional
// suggested action.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// MapError converts an internal error to a UserMessage.
func MapError(err error) UserMessage {
	var (
		statusErr *sheets.StatusError
		urlErr    *url.Error
	)

	switch {
	case errors.Is(err, sheets.ErrInvalidSheetURL):
		return UserMessage{
			Code:    "SHEET001",
			Message: "The spreadsheet link is not a valid Google Sheets link.",
			Action:  "Paste the full share link from Google Sheets.",
		}
	case errors.Is(err, sheets.ErrMalformedURL):
		return UserMessage{
			Code:    "SHEET002",
			Message: "The spreadsheet link could not be read as a URL.",
			Action:  "Check the configured link for typos.",
		}
	case errors.Is(err, sheets.ErrTooManyRedirects):
		return UserMessage{
			Code:    "SHEET003",
			Message: "The spreadsheet link redirected too many times.",
			Action:  "Re-copy the share link from Google Sheets.",
		}
	case errors.Is(err, sheets.ErrNotShared):
		return UserMessage{
			Code:    "SHEET004",
			Message: "The spreadsheet is not shared publicly.",
			Action:  "In Google Sheets, set sharing to \"anyone with the link\".",
		}
	case errors.As(err, &statusErr):
		return UserMessage{
			Code:    "SHEET005",
			Message: fmt.Sprintf("The spreadsheet service returned HTTP %d.", statusErr.Code),
			Action:  "Check the sheet's sharing permissions and try again.",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return UserMessage{
			Code:    "REQ002",
			Message: "The request timed out.",
			Action:  "Please try again in a few moments.",
		}
	case errors.Is(err, context.Canceled):
		return UserMessage{
			Code:    "REQ001",
			Message: "The request was cancelled.",
			Action:  "Please try again.",
		}
	case errors.Is(err, ErrNotFound):
		return UserMessage{
			Code:    "NF001",
			Message: "The requested item was not found.",
			Action:  "It may have been deleted. Refresh and try again.",
		}
	case errors.Is(err, ErrInvalidInput):
		return UserMessage{
			Code:    "VAL001",
			Message: firstLine(err),
		}
	case errors.Is(err, ErrUnsupportedImage):
		return UserMessage{
			Code:    "VAL002",
			Message: "Only PNG, JPEG, GIF, and WebP images can be uploaded.",
			Action:  "Convert the file to a supported format.",
		}
	case errors.Is(err, ErrUnknownSetting):
		return UserMessage{
			Code:    "VAL003",
			Message: "Unknown setting.",
		}
	case errors.As(err, &urlErr):
		return UserMessage{
			Code:    "SHEET006",
			Message: "The members spreadsheet could not be reached.",
			Action:  "Please try again in a few moments.",
		}
	default:
		return UserMessage{
			Code:    "GEN001",
			Message: "Something went wrong.",
			Action:  "Please try again in a few moments.",
		}
	}
}

// firstLine keeps validation messages readable when errors are wrapped.
func firstLine(err error) string {
	msg := err.Error()
	for i := 0; i < len(msg); i++ {
		if msg[i] == '\n' {
			return msg[:i]
		}
	}
	return msg
}
