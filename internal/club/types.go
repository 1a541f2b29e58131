// Package club provides the business logic for the club website backend:
// news posts, events, homework images, site settings, and the members list
// derived from the club's Google Sheets spreadsheet.
package club

import (
	"context"
	"errors"
	"time"
)

// Setting keys. Settings are small free-form blobs managed from the admin
// page; the store treats them as opaque strings.
const (
	// SettingSheetURL is the link to the members spreadsheet.
	SettingSheetURL = "sheet_url"

	// SettingTournament is the tournament info blob shown on the site.
	SettingTournament = "tournament_info"
)

// ErrNotFound is returned by Store implementations when a document does not exist.
var ErrNotFound = errors.New("not found")

// NewsPost is a news item shown on the front page, newest first.
type NewsPost struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Body      string    `bson:"body" json:"body"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Event is a club event with a scheduled date.
type Event struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Location    string    `bson:"location" json:"location"`
	Date        time.Time `bson:"date" json:"date"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// HomeworkImage is the stored metadata for an uploaded homework image.
// The image bytes themselves live on disk under the uploads directory,
// named by ID plus the original extension.
type HomeworkImage struct {
	ID           string    `bson:"_id" json:"id"`
	FileName     string    `bson:"file_name" json:"file_name"`
	OriginalName string    `bson:"original_name" json:"original_name"`
	ContentType  string    `bson:"content_type" json:"content_type"`
	Size         int64     `bson:"size" json:"size"`
	UploadedAt   time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// Store is the document store behind the service. The MongoDB implementation
// lives in internal/store; tests use an in-memory fake.
type Store interface {
	ListNews(ctx context.Context) ([]NewsPost, error)
	CreateNews(ctx context.Context, post NewsPost) error
	DeleteNews(ctx context.Context, id string) error

	ListEvents(ctx context.Context) ([]Event, error)
	CreateEvent(ctx context.Context, event Event) error
	DeleteEvent(ctx context.Context, id string) error

	ListHomework(ctx context.Context) ([]HomeworkImage, error)
	GetHomework(ctx context.Context, id string) (HomeworkImage, error)
	CreateHomework(ctx context.Context, img HomeworkImage) error
	DeleteHomework(ctx context.Context, id string) error

	// GetSetting returns "" (not ErrNotFound) for keys that were never set.
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
