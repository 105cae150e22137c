package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/imaging"
	"github.com/desertthunder/wallview/internal/shared"
)

// MaxUploadBytes caps the size of one upload request.
const MaxUploadBytes = 64 << 20

// uploadFields are the multipart fields read for files: a single "file" or a batch under "images[]".
var uploadFields = []string{"file", "images[]"}

// Uploader saves an uploaded image into a category folder and indexes it.
type Uploader interface {
	Upload(categoryID, root, name string, r io.Reader) (*imaging.Info, error)
}

// UploadHandler accepts multipart image uploads for a category.
//
// Each file is saved and indexed on its own. The request succeeds when at least
// one file was stored; rejected files are listed in the response.
type UploadHandler struct {
	uploader   Uploader
	categories CategoryFinder
	logger     *log.Logger
	mux        *http.ServeMux
}

type uploadResponse struct {
	Success  bool            `json:"success"`
	Uploaded []uploadedImage `json:"uploaded"`
	Failed   []scanFailure   `json:"failed,omitempty"`
}

type uploadedImage struct {
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
}

// NewUploadHandler creates an [UploadHandler].
func NewUploadHandler(uploader Uploader, categories CategoryFinder, logger *log.Logger) *UploadHandler {
	h := &UploadHandler{uploader: uploader, categories: categories, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /api/admin/upload/{category}", h.upload)
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *UploadHandler) Routes() []string {
	return []string{"POST /api/admin/upload/{category}"}
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.GetByName(r.PathValue("category"))
	if err != nil {
		h.fail(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: err.Error()})
			return
		}
		h.fail(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	var files []*multipart.FileHeader
	for _, field := range uploadFields {
		files = append(files, r.MultipartForm.File[field]...)
	}
	if len(files) == 0 {
		h.fail(w, fmt.Errorf("%w: no file selected", shared.ErrInvalidInput))
		return
	}

	resp := uploadResponse{Uploaded: []uploadedImage{}}
	var firstErr error
	for _, fh := range files {
		info, err := h.save(category.ID(), category.FolderPath(), fh)
		if err != nil {
			h.logger.Warn("upload rejected", "category", category.Name(), "file", fh.Filename, "error", err)
			resp.Failed = append(resp.Failed, scanFailure{Path: fh.Filename, Error: err.Error()})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		resp.Uploaded = append(resp.Uploaded, uploadedImage{
			Filename: filepath.Base(info.Path),
			Width:    info.Width,
			Height:   info.Height,
			Size:     info.Size,
		})
	}

	if len(resp.Uploaded) == 0 {
		h.fail(w, firstErr)
		return
	}
	resp.Success = true
	h.logger.Info("upload complete", "category", category.Name(), "uploaded", len(resp.Uploaded), "failed", len(resp.Failed))
	writeJSON(w, http.StatusOK, resp)
}

func (h *UploadHandler) save(categoryID, root string, fh *multipart.FileHeader) (*imaging.Info, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return h.uploader.Upload(categoryID, root, fh.Filename, f)
}

func (h *UploadHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("upload failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
