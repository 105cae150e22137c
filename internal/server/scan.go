package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/tasks"
)

// Scanner indexes a category folder.
type Scanner interface {
	Scan(ctx context.Context, progress chan<- tasks.ProgressUpdate, categoryID, root string) (*tasks.ScanResult, error)
	Running() bool
}

// CategoryFinder resolves a category by name.
type CategoryFinder interface {
	GetByName(name string) (*models.PersistedCategory, error)
}

// ScanHandler runs a folder scan on request.
//
// Only one scan runs at a time; a request made while one is running gets 409
// and the status endpoint reports it, so clients can keep their submit control disabled.
type ScanHandler struct {
	scanner    Scanner
	categories CategoryFinder
	logger     *log.Logger
	mux        *http.ServeMux
}

// scanResponse is the body returned after a completed scan.
type scanResponse struct {
	Success bool          `json:"success"`
	Found   int           `json:"found"`
	Indexed int           `json:"indexed"`
	Removed int           `json:"removed"`
	Failed  []scanFailure `json:"failed,omitempty"`
}

type scanFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewScanHandler creates a [ScanHandler].
func NewScanHandler(scanner Scanner, categories CategoryFinder, logger *log.Logger) *ScanHandler {
	h := &ScanHandler{scanner: scanner, categories: categories, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /api/admin/scan/{category}", h.scan)
	h.mux.HandleFunc("GET /api/admin/scan", h.status)
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *ScanHandler) Routes() []string {
	return []string{"POST /api/admin/scan/{category}", "GET /api/admin/scan"}
}

func (h *ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *ScanHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"running": h.scanner.Running()})
}

func (h *ScanHandler) scan(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.GetByName(r.PathValue("category"))
	if err != nil {
		h.fail(w, err)
		return
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			h.logger.Debug("scan progress", "phase", update.Phase, "step", update.Step, "total", update.Total, "message", update.Message)
		}
	}()

	result, err := h.scanner.Scan(r.Context(), progress, category.ID(), category.FolderPath())
	close(progress)
	<-done

	if err != nil {
		h.fail(w, err)
		return
	}

	failed := make([]scanFailure, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, scanFailure{Path: f.Path, Error: f.Error.Error()})
	}

	h.logger.Info("scan complete", "category", category.Name(), "indexed", result.Indexed, "removed", result.Removed)
	writeJSON(w, http.StatusOK, scanResponse{
		Success: true,
		Found:   result.Found,
		Indexed: result.Indexed,
		Removed: result.Removed,
		Failed:  failed,
	})
}

func (h *ScanHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("scan failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
