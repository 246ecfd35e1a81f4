package http

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "insightdesk/internal/errors"
	"insightdesk/internal/services"
)

const (
	formFieldFile          = "file"
	formFieldTransactionID = "transactionId"

	// multipartMemory is kept in memory before ParseMultipartForm spills
	// file parts to disk.
	multipartMemory = 8 << 20
)

// AnalysisHandler handles uploads, stored sessions and their downloads
type AnalysisHandler struct {
	service        AnalysisService
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisService, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("handler", "analysis")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Analyze)
	r.Get("/{id}", h.GetSession)
	r.Get("/{id}/{artifact}", h.Download)

	return r
}

// Analyze handles POST /api/analyses
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		// Leave room for the multipart envelope and the transactionId field.
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory/8)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("A multipart form with a file is required."))
		return
	}
	defer r.MultipartForm.RemoveAll()

	transactionID := strings.TrimSpace(r.FormValue(formFieldTransactionID))
	if transactionID == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(formFieldTransactionID, "transactionId is required."))
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(formFieldFile, "A file is required."))
		return
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "upload received",
		slog.String("transaction_id", transactionID),
		slog.String("file_name", header.Filename),
		slog.Int64("size", header.Size))

	result, err := h.service.Analyze(r.Context(), services.AnalysisRequest{
		TransactionID: transactionID,
		FileName:      header.Filename,
		Data:          data,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// Demo handles GET /api/demo
func (h *AnalysisHandler) Demo(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Demo(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	render.JSON(w, r, result)
}

// GetSession handles GET /api/analyses/{id}
func (h *AnalysisHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}
	render.JSON(w, r, result)
}

// Download handles GET /api/analyses/{id}/{artifact}
func (h *AnalysisHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kind := services.ArtifactKind(chi.URLParam(r, "artifact"))

	artifact, err := h.service.Artifact(r.Context(), id, kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err))
		return
	}

	disposition := "attachment"
	if kind == services.ArtifactDashboardHTML {
		disposition = "inline"
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": artifact.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		h.logger.WarnContext(r.Context(), "artifact write failed",
			slog.String("session_id", id),
			slog.String("artifact", string(kind)),
			slog.String("error", err.Error()))
	}
}
