package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/wallview/internal/gallery"
	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
	tu "github.com/desertthunder/wallview/internal/testing"
)

type fakeStore struct {
	images    []models.Image
	files     map[string]string
	queries   []gallery.Query
	deleted   []string
	deleteErr error
}

func (s *fakeStore) Categories() ([]models.Category, error) {
	return []models.Category{{ID: "c1", Name: "nature"}, {ID: "c2", Name: "city"}}, nil
}

func (s *fakeStore) Page(q gallery.Query) (*models.Page, error) {
	s.queries = append(s.queries, q)
	if q.Category != "nature" {
		return nil, fmt.Errorf("%w: %s", shared.ErrCategoryNotFound, q.Category)
	}
	return &models.Page{
		Images:      s.images,
		CurrentPage: q.Page,
		TotalPages:  shared.TotalPages(len(s.images), q.PerPage),
		TotalCount:  len(s.images),
		ViewMode:    string(q.ViewMode),
	}, nil
}

func (s *fakeStore) Detail(id string) (*models.ImageDetail, error) {
	for _, img := range s.images {
		if img.ID == id {
			return &models.ImageDetail{ID: id, Filename: img.Filename, Category: "nature", Width: 640, Height: 480}, nil
		}
	}
	return nil, shared.ErrImageNotFound
}

func (s *fakeStore) Delete(id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeStore) File(id string) (string, string, error) {
	path, ok := s.files[id]
	if !ok {
		return "", "", shared.ErrImageNotFound
	}
	return path, filepath.Base(path), nil
}

func newTestAPI(t *testing.T) (*fakeStore, http.Handler) {
	t.Helper()
	store := &fakeStore{
		images: []models.Image{
			{ID: "a", Filename: "a.jpg", UploadTime: "2024-05-01 12:00:00", SortIndex: 1},
			{ID: "b", Filename: "b.jpg", UploadTime: "2024-05-01 11:00:00", SortIndex: 2},
		},
		files: map[string]string{},
	}
	var buf bytes.Buffer
	logger := shared.NewLogger(&buf)
	return store, NewGalleryRouter(logger, NewAPI(store, logger))
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestAPI(t *testing.T) {
	t.Run("categories", func(t *testing.T) {
		_, h := newTestAPI(t)
		rec := do(t, h, http.MethodGet, "/api/categories")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		cats := decode[[]models.Category](t, rec)
		if len(cats) != 2 || cats[0].Name != "nature" {
			t.Errorf("categories = %+v", cats)
		}
	})

	t.Run("page query parameters", func(t *testing.T) {
		tests := []struct {
			name    string
			target  string
			page    int
			perPage int
			search  string
			sort    gallery.SortOrder
			mode    gallery.ViewMode
		}{
			{"defaults", "/api/images/nature", 1, shared.DefaultPerPage, "", gallery.SortDesc, gallery.Waterfall},
			{"explicit", "/api/images/nature?page=2&per_page=5&sort=asc&view_mode=grid", 2, 5, "", gallery.SortAsc, gallery.Grid},
			{"clamped", "/api/images/nature?page=-3&per_page=1000", 1, shared.MaxPerPage, "", gallery.SortDesc, gallery.Waterfall},
			{"zero per page", "/api/images/nature?per_page=0", 1, shared.DefaultPerPage, "", gallery.SortDesc, gallery.Waterfall},
			{"garbage numbers", "/api/images/nature?page=abc&per_page=x", 1, shared.DefaultPerPage, "", gallery.SortDesc, gallery.Waterfall},
			{"search trimmed", "/api/images/nature?search=%20sunset%20", 1, shared.DefaultPerPage, "sunset", gallery.SortDesc, gallery.Waterfall},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store, h := newTestAPI(t)
				rec := do(t, h, http.MethodGet, tt.target)
				if rec.Code != http.StatusOK {
					t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
				}

				q := store.queries[len(store.queries)-1]
				if q.Category != "nature" || q.Page != tt.page || q.PerPage != tt.perPage ||
					q.Search != tt.search || q.Sort != tt.sort || q.ViewMode != tt.mode {
					t.Errorf("query = %+v", q)
				}

				page := decode[models.Page](t, rec)
				if page.TotalCount != 2 || page.ViewMode != string(tt.mode) {
					t.Errorf("page = %+v", page)
				}
			})
		}
	})

	t.Run("page errors", func(t *testing.T) {
		tests := []struct {
			target string
			status int
		}{
			{"/api/images/nature?sort=sideways", http.StatusBadRequest},
			{"/api/images/nature?view_mode=carousel", http.StatusBadRequest},
			{"/api/images/desert", http.StatusNotFound},
		}

		for _, tt := range tests {
			_, h := newTestAPI(t)
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.status {
				t.Errorf("GET %s = %d, want %d", tt.target, rec.Code, tt.status)
			}
			if body := decode[errorBody](t, rec); body.Error == "" {
				t.Errorf("GET %s: empty error body", tt.target)
			}
		}
	})

	t.Run("detail", func(t *testing.T) {
		_, h := newTestAPI(t)
		rec := do(t, h, http.MethodGet, "/api/image/a")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		detail := decode[models.ImageDetail](t, rec)
		if detail.Filename != "a.jpg" || detail.Width != 640 {
			t.Errorf("detail = %+v", detail)
		}

		if rec := do(t, h, http.MethodGet, "/api/image/missing"); rec.Code != http.StatusNotFound {
			t.Errorf("missing detail = %d, want 404", rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		store, h := newTestAPI(t)
		rec := do(t, h, http.MethodDelete, "/api/images/b")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if body := decode[map[string]bool](t, rec); !body["success"] {
			t.Errorf("body = %v", body)
		}
		if len(store.deleted) != 1 || store.deleted[0] != "b" {
			t.Errorf("deleted = %v", store.deleted)
		}

		store.deleteErr = errors.New("disk on fire")
		if rec := do(t, h, http.MethodDelete, "/api/images/a"); rec.Code != http.StatusInternalServerError {
			t.Errorf("failing delete = %d, want 500", rec.Code)
		}

		store.deleteErr = shared.ErrImageNotFound
		if rec := do(t, h, http.MethodDelete, "/api/images/zzz"); rec.Code != http.StatusNotFound {
			t.Errorf("missing delete = %d, want 404", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		_, h := newTestAPI(t)
		if rec := do(t, h, http.MethodPost, "/api/categories"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST /api/categories = %d, want 405", rec.Code)
		}
	})

	t.Run("uploads", func(t *testing.T) {
		store, h := newTestAPI(t)
		path := filepath.Join(t.TempDir(), "a.png")
		tu.MustWritePNG(t, path, 4, 3)
		store.files["a"] = path

		rec := do(t, h, http.MethodGet, "/uploads/a/a.png")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		want, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(rec.Body.Bytes(), want) {
			t.Error("served bytes differ from file")
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("Content-Type = %q, want image/png", ct)
		}

		if rec := do(t, h, http.MethodGet, "/uploads/nope/x.png"); rec.Code != http.StatusNotFound {
			t.Errorf("unknown upload = %d, want 404", rec.Code)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{shared.ErrCategoryNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: x", shared.ErrImageNotFound), http.StatusNotFound},
		{shared.ErrInvalidSort, http.StatusBadRequest},
		{shared.ErrInvalidViewMode, http.StatusBadRequest},
		{shared.ErrEmptySearch, http.StatusBadRequest},
		{shared.ErrScanInProgress, http.StatusConflict},
		{fmt.Errorf("%w: notes.txt", shared.ErrUnsupportedImage), http.StatusUnsupportedMediaType},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
