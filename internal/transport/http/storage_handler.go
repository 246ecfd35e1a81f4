package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "insightdesk/internal/errors"
	"insightdesk/internal/middleware"
	"insightdesk/internal/storage"
)

// CreateUploadRequest reserves a signed upload URL.
type CreateUploadRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
	FileName      string `json:"fileName" validate:"required,filename"`
	ContentType   string `json:"contentType" validate:"required"`
}

// StorageHandler handles browser-side upload reservations
type StorageHandler struct {
	service      StorageService
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(service StorageService, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StorageHandler {
	return &StorageHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "storage")),
		errorHandler: errorHandler,
	}
}

// Routes returns the storage routes
func (h *StorageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(h.validator.ValidateRequest).Post("/create-upload", h.CreateUpload)

	return r
}

// CreateUpload handles POST /storage/create-upload
func (h *StorageHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	var req CreateUploadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	req.TransactionID = strings.TrimSpace(req.TransactionID)

	if err := h.validator.ValidateStructWithMessage(&req, "transactionId, fileName, and contentType are required."); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	upload, err := h.service.CreateUpload(r.Context(), req.TransactionID, req.FileName, req.ContentType)
	switch {
	case err == nil:
		render.JSON(w, r, upload)
	case errors.Is(err, storage.ErrNotConfigured):
		h.errorHandler.HandleError(w, r, apierrors.NotConfiguredError("Supabase storage is not configured."))
	case storage.IsRejected(err), storage.IsUnavailable(err):
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusBadGateway, "UPSTREAM_FAILED", "Unable to create signed upload URL."))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
