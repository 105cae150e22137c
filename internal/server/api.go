package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/gallery"
	"github.com/desertthunder/wallview/internal/shared"
)

// API serves the gallery JSON endpoints and image files from a [gallery.Store].
type API struct {
	store  gallery.Store
	logger *log.Logger
	mux    *http.ServeMux
}

// NewAPI creates the gallery API over store.
func NewAPI(store gallery.Store, logger *log.Logger) *API {
	a := &API{store: store, logger: logger, mux: http.NewServeMux()}
	a.mux.HandleFunc("GET /api/categories", a.categories)
	a.mux.HandleFunc("GET /api/images/{category}", a.page)
	a.mux.HandleFunc("GET /api/image/{id}", a.detail)
	a.mux.HandleFunc("DELETE /api/images/{id}", a.delete)
	a.mux.HandleFunc("GET /uploads/{id}/{name}", a.file)
	return a
}

// Routes returns the HTTP routes this handler serves.
func (a *API) Routes() []string {
	return []string{
		"GET /api/categories",
		"GET /api/images/{category}",
		"GET /api/image/{id}",
		"DELETE /api/images/{id}",
		"GET /uploads/{id}/{name}",
	}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.store.Categories()
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// page serves one page of a category.
//
// page below 1 becomes 1; per_page below 1 becomes the default and above the maximum is capped.
// Unparseable numbers count as 0.
func (a *API) page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sort, err := gallery.ParseSort(q.Get("sort"))
	if err != nil {
		a.fail(w, err)
		return
	}
	mode, err := gallery.ParseViewMode(q.Get("view_mode"))
	if err != nil {
		a.fail(w, err)
		return
	}

	pageNum, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	pageNum, perPage = shared.ClampPage(pageNum, perPage)

	page, err := a.store.Page(gallery.Query{
		Category: r.PathValue("category"),
		Page:     pageNum,
		PerPage:  perPage,
		Search:   strings.TrimSpace(q.Get("search")),
		Sort:     sort,
		ViewMode: mode,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (a *API) detail(w http.ResponseWriter, r *http.Request) {
	detail, err := a.store.Detail(r.PathValue("id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *API) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.store.Delete(id); err != nil {
		a.fail(w, err)
		return
	}
	a.logger.Info("image deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *API) file(w http.ResponseWriter, r *http.Request) {
	path, _, err := a.store.File(r.PathValue("id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

func (a *API) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrCategoryNotFound), errors.Is(err, shared.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidSort),
		errors.Is(err, shared.ErrInvalidViewMode),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrEmptySearch):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrScanInProgress):
		return http.StatusConflict
	case errors.Is(err, shared.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Default().Warn("failed to encode response", "error", err)
	}
}
