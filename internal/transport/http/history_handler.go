package http

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "insightdesk/internal/errors"
	"insightdesk/internal/middleware"
	"insightdesk/internal/tablesource"
	"insightdesk/internal/transactions"
)

const defaultHistoryLimit = 100

// HistoryResponse is the body of GET /history/transactions.
type HistoryResponse struct {
	Transactions []*transactions.Record `json:"transactions"`
	Count        int                    `json:"count"`
}

// historyQuery holds the query parameters of GET /history/transactions.
type historyQuery struct {
	Limit  int    `json:"limit" validate:"min=1,max=1000"`
	Status string `json:"status" validate:"omitempty,oneof=paid completed failed"`
	Since  string `json:"since" validate:"omitempty,rfc3339"`
}

// HistoryHandler serves the transaction history. Authentication is applied
// by the router with middleware.BasicAuth.
type HistoryHandler struct {
	service      HistoryService
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service HistoryService, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HistoryHandler {
	return &HistoryHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "history")),
		errorHandler: errorHandler,
	}
}

// Routes returns the history routes behind the given guards
func (h *HistoryHandler) Routes(guards ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(guards...)

	r.Get("/auth-check", h.AuthCheck)
	r.Get("/transactions", h.ListTransactions)
	r.Get("/export.xlsx", h.Export)

	return r
}

// AuthCheck handles GET /history/auth-check
func (h *HistoryHandler) AuthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]bool{"ok": true})
}

// ListTransactions handles GET /history/transactions
func (h *HistoryHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if records == nil {
		records = []*transactions.Record{}
	}

	render.JSON(w, r, HistoryResponse{Transactions: records, Count: len(records)})
}

func (h *HistoryHandler) parseFilter(r *http.Request) (transactions.Filter, error) {
	q := r.URL.Query()
	params := historyQuery{
		Limit:  defaultHistoryLimit,
		Status: q.Get("status"),
		Since:  q.Get("since"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return transactions.Filter{}, apierrors.ErrValidation("limit", "limit must be a valid integer")
		}
		params.Limit = n
	}
	if err := h.validator.ValidateStructWithMessage(&params, "Invalid history query."); err != nil {
		return transactions.Filter{}, err
	}

	filter := transactions.Filter{Status: transactions.Status(params.Status), Limit: params.Limit}
	if params.Since != "" {
		filter.Since, _ = time.Parse(time.RFC3339, params.Since)
	}
	return filter, nil
}

// Export handles GET /history/export.xlsx
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Export(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "history export downloaded",
		slog.String("user", middleware.UserFromContext(r.Context())),
		slog.Int("rows", export.Rows))

	w.Header().Set("Content-Type", tablesource.FormatXLSX.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}
