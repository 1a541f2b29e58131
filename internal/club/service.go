package club

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpin/clubsite/internal/sheets"
)

// Validation sentinels. Handlers map these to 4xx responses via MapError.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrUnknownSetting   = errors.New("unknown setting")
)

// imageExtensions is the allow-list for homework uploads.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// settingKeys are the settings the API exposes.
var settingKeys = map[string]bool{
	SettingSheetURL:   true,
	SettingTournament: true,
}

// SheetSource fetches raw CSV for a spreadsheet URL. Satisfied by
// *sheets.Client; tests substitute a stub.
type SheetSource interface {
	FetchCSV(ctx context.Context, url string) (string, error)
}

// Service provides the business logic for the club backend.
type Service struct {
	store      Store
	sheet      SheetSource
	uploadsDir string
}

// NewService creates a Service and ensures the uploads directory exists.
func NewService(store Store, sheet SheetSource, uploadsDir string) (*Service, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &Service{
		store:      store,
		sheet:      sheet,
		uploadsDir: uploadsDir,
	}, nil
}

// UploadsDir returns the directory homework images are written to.
func (s *Service) UploadsDir() string {
	return s.uploadsDir
}

// ListNews returns news posts, newest first.
func (s *Service) ListNews(ctx context.Context) ([]NewsPost, error) {
	return s.store.ListNews(ctx)
}

// CreateNews validates and stores a news post.
func (s *Service) CreateNews(ctx context.Context, title, body string) (NewsPost, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return NewsPost{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	post := NewsPost{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateNews(ctx, post); err != nil {
		return NewsPost{}, fmt.Errorf("create news post: %w", err)
	}
	return post, nil
}

// DeleteNews removes a news post by id.
func (s *Service) DeleteNews(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.DeleteNews(ctx, id)
}

// ListEvents returns events ordered by date.
func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	return s.store.ListEvents(ctx)
}

// CreateEvent validates and stores an event.
func (s *Service) CreateEvent(ctx context.Context, title, description, location string, date time.Time) (Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Event{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if date.IsZero() {
		return Event{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	event := Event{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Location:    location,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event by id.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.DeleteEvent(ctx, id)
}

// ListHomework returns homework image metadata, newest first.
func (s *Service) ListHomework(ctx context.Context) ([]HomeworkImage, error) {
	return s.store.ListHomework(ctx)
}

// SaveHomework writes an uploaded image to the uploads directory and records
// its metadata. The stored filename is a fresh UUID plus the original
// extension, so user-supplied names never touch the filesystem.
func (s *Service) SaveHomework(ctx context.Context, originalName, contentType string, r io.Reader) (HomeworkImage, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !imageExtensions[ext] {
		return HomeworkImage{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}

	id := uuid.NewString()
	fileName := id + ext
	path := filepath.Join(s.uploadsDir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return HomeworkImage{}, fmt.Errorf("create image file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return HomeworkImage{}, fmt.Errorf("write image file: %w", err)
	}

	img := HomeworkImage{
		ID:           id,
		FileName:     fileName,
		OriginalName: filepath.Base(originalName),
		ContentType:  contentType,
		Size:         size,
		UploadedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateHomework(ctx, img); err != nil {
		os.Remove(path)
		return HomeworkImage{}, fmt.Errorf("record homework image: %w", err)
	}
	return img, nil
}

// DeleteHomework removes a homework image document and its file on disk.
func (s *Service) DeleteHomework(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	img, err := s.store.GetHomework(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteHomework(ctx, id); err != nil {
		return fmt.Errorf("delete homework image: %w", err)
	}
	// The document is gone either way; a missing file is not an error.
	if err := os.Remove(filepath.Join(s.uploadsDir, img.FileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

// Setting returns the value of a site setting, or "" if it was never set.
func (s *Service) Setting(ctx context.Context, key string) (string, error) {
	if !settingKeys[key] {
		return "", fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	return s.store.GetSetting(ctx, key)
}

// SetSetting stores a site setting value.
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	if !settingKeys[key] {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	return s.store.SetSetting(ctx, key, value)
}

// Members runs the spreadsheet pipeline: it reads the configured sheet link,
// fetches the CSV export, and parses member rows out of it. An unset link
// yields an empty list rather than an error; the page just shows no members
// until an admin configures one.
func (s *Service) Members(ctx context.Context) ([]sheets.Member, error) {
	url, err := s.store.GetSetting(ctx, SettingSheetURL)
	if err != nil {
		return nil, fmt.Errorf("load sheet url: %w", err)
	}
	if strings.TrimSpace(url) == "" {
		return []sheets.Member{}, nil
	}

	csv, err := s.sheet.FetchCSV(ctx, url)
	if err != nil {
		return nil, err
	}
	return sheets.ParseMembers(csv), nil
}
