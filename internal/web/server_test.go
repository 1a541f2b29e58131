package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkarpin/clubsite/internal/club"
	"github.com/mkarpin/clubsite/internal/config"
	"github.com/mkarpin/clubsite/internal/sheets"
)

const testPassword = "club-secret"

// memStore is an in-memory club.Store for handler tests.
type memStore struct {
	news     []club.NewsPost
	events   []club.Event
	homework []club.HomeworkImage
	settings map[string]string
}

func newMemStore() *memStore {
	return &memStore{settings: make(map[string]string)}
}

func (m *memStore) ListNews(ctx context.Context) ([]club.NewsPost, error) { return m.news, nil }

func (m *memStore) CreateNews(ctx context.Context, post club.NewsPost) error {
	m.news = append(m.news, post)
	return nil
}

func (m *memStore) DeleteNews(ctx context.Context, id string) error {
	for i, p := range m.news {
		if p.ID == id {
			m.news = append(m.news[:i], m.news[i+1:]...)
			return nil
		}
	}
	return club.ErrNotFound
}

func (m *memStore) ListEvents(ctx context.Context) ([]club.Event, error) { return m.events, nil }

func (m *memStore) CreateEvent(ctx context.Context, event club.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memStore) DeleteEvent(ctx context.Context, id string) error {
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return club.ErrNotFound
}

func (m *memStore) ListHomework(ctx context.Context) ([]club.HomeworkImage, error) {
	return m.homework, nil
}

func (m *memStore) GetHomework(ctx context.Context, id string) (club.HomeworkImage, error) {
	for _, img := range m.homework {
		if img.ID == id {
			return img, nil
		}
	}
	return club.HomeworkImage{}, club.ErrNotFound
}

func (m *memStore) CreateHomework(ctx context.Context, img club.HomeworkImage) error {
	m.homework = append(m.homework, img)
	return nil
}

func (m *memStore) DeleteHomework(ctx context.Context, id string) error {
	for i, img := range m.homework {
		if img.ID == id {
			m.homework = append(m.homework[:i], m.homework[i+1:]...)
			return nil
		}
	}
	return club.ErrNotFound
}

func (m *memStore) GetSetting(ctx context.Context, key string) (string, error) {
	return m.settings[key], nil
}

func (m *memStore) SetSetting(ctx context.Context, key, value string) error {
	m.settings[key] = value
	return nil
}

// stubSheet serves canned CSV or a canned error.
type stubSheet struct {
	csv string
	err error
}

func (s *stubSheet) FetchCSV(ctx context.Context, url string) (string, error) {
	return s.csv, s.err
}

func newTestServer(t *testing.T, store club.Store, sheet club.SheetSource) *Server {
	t.Helper()

	svc, err := club.NewService(store, sheet, t.TempDir())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 30 * time.Second
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Security.AdminPassword = testPassword

	return NewServer(svc, cfg)
}

func doJSON(t *testing.T, srv *Server, method, path, password string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if password != "" {
		req.Header.Set("X-Admin-Password", password)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{})

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCreateNews_RequiresPassword(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{})
	body := map[string]string{"title": "Hello", "body": "World"}

	rec := doJSON(t, srv, http.MethodPost, "/api/news", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no password = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/news", "wrong", body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong password = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/news", testPassword, body)
	if rec.Code != http.StatusCreated {
		t.Errorf("right password = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
}

func TestAdminGate_NoPasswordConfigured(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{})
	srv.cfg.Security.AdminPassword = ""

	rec := doJSON(t, srv, http.MethodPost, "/api/news", "anything", map[string]string{"title": "x"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if !strings.Contains(rec.Body.String(), "AUTH_DISABLED") {
		t.Errorf("body = %s, want AUTH_DISABLED code", rec.Body)
	}
}

func TestNewsRoundTrip(t *testing.T) {
	store := newMemStore()
	srv := newTestServer(t, store, &stubSheet{})

	rec := doJSON(t, srv, http.MethodPost, "/api/news", testPassword, map[string]string{
		"title": "Club night",
		"body":  "Doors at 7.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/news = %d: %s", rec.Code, rec.Body)
	}

	var created club.NewsPost
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created post: %v", err)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/news", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/news = %d", rec.Code)
	}
	var posts []club.NewsPost
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decode posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Club night" {
		t.Errorf("posts = %v", posts)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/news/"+created.ID, testPassword, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/news/"+created.ID, testPassword, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateEvent_BadDate(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{})

	rec := doJSON(t, srv, http.MethodPost, "/api/events", testPassword, map[string]string{
		"title": "Blitz night",
		"date":  "next tuesday",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body)
	}
}

func TestCreateEvent(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{})

	rec := doJSON(t, srv, http.MethodPost, "/api/events", testPassword, map[string]string{
		"title":    "Spring open",
		"location": "club room",
		"date":     "2026-03-14",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var event club.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Date.Year() != 2026 {
		t.Errorf("Date = %v", event.Date)
	}
}

func TestMembers_NoSheetConfigured(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{csv: "Name,Rank\nAlice,1200\n"})

	rec := doJSON(t, srv, http.MethodGet, "/api/members", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestMembers(t *testing.T) {
	store := newMemStore()
	store.settings[club.SettingSheetURL] = "https://docs.google.com/spreadsheets/d/abc/edit"
	srv := newTestServer(t, store, &stubSheet{csv: "Name,Rank\nAlice,1200\n\"Bob, Jr.\",1100\n"})

	rec := doJSON(t, srv, http.MethodGet, "/api/members", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var members []sheets.Member
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 2 || members[1].Name != "Bob, Jr." {
		t.Errorf("members = %v", members)
	}
}

func TestMembers_SheetNotShared(t *testing.T) {
	store := newMemStore()
	store.settings[club.SettingSheetURL] = "https://docs.google.com/spreadsheets/d/abc/edit"
	srv := newTestServer(t, store, &stubSheet{err: sheets.ErrNotShared})

	rec := doJSON(t, srv, http.MethodGet, "/api/members", "", nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != "SHEET004" {
		t.Errorf("Code = %q, want SHEET004", errResp.Code)
	}
	if errResp.Action == "" {
		t.Error("error response has no suggested action")
	}
}

func TestSettings(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{})

	rec := doJSON(t, srv, http.MethodGet, "/api/settings/nonsense", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown key status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/settings/sheet-url", testPassword, map[string]string{
		"value": "https://docs.google.com/spreadsheets/d/abc/edit",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/settings/sheet-url", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode setting: %v", err)
	}
	if resp["value"] != "https://docs.google.com/spreadsheets/d/abc/edit" {
		t.Errorf("value = %q", resp["value"])
	}
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{})

	rec := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{"password": "wrong"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong password = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{"password": testPassword})
	if rec.Code != http.StatusOK {
		t.Errorf("right password = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestUploadHomework(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "puzzle.png")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	part.Write([]byte("fake image bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/homework", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Admin-Password", testPassword)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/homework = %d: %s", rec.Code, rec.Body)
	}

	var img club.HomeworkImage
	if err := json.Unmarshal(rec.Body.Bytes(), &img); err != nil {
		t.Fatalf("decode image: %v", err)
	}

	// The stored file is served back from /uploads.
	req = httptest.NewRequest(http.MethodGet, "/uploads/"+img.FileName, nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /uploads/%s = %d, want %d", img.FileName, rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "fake image bytes" {
		t.Errorf("served bytes = %q", rec.Body)
	}
}

func TestUploadHomework_RejectsNonImage(t *testing.T) {
	srv := newTestServer(t, newMemStore(), &stubSheet{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "notes.txt")
	part.Write([]byte("plain text"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/homework", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Admin-Password", testPassword)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body)
	}
}
