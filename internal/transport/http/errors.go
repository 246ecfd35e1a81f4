package http

import (
	"errors"
	"net/http"

	apierrors "insightdesk/internal/errors"
	"insightdesk/internal/services"
)

// serviceError translates service sentinels into API errors. Anything else
// is returned unchanged for the ErrorHandler to classify.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return apierrors.New(http.StatusNotFound, "NOT_FOUND", "Analysis session not found.")
	case errors.Is(err, services.ErrUnknownArtifact):
		return apierrors.New(http.StatusNotFound, "NOT_FOUND", "Unknown artifact.")
	case errors.Is(err, services.ErrArtifactUnavailable):
		return apierrors.New(http.StatusNotFound, "NOT_FOUND", "This artifact is not available for the session.")
	case errors.Is(err, services.ErrTransactionNotPaid):
		return apierrors.New(http.StatusPaymentRequired, "PAYMENT_REQUIRED", "Transaction is not paid.")
	case errors.Is(err, services.ErrAlreadyAnalyzed):
		return apierrors.New(http.StatusConflict, "CONFLICT", "This transaction has already been analyzed.")
	case errors.Is(err, services.ErrAnalysisInProgress):
		return apierrors.New(http.StatusConflict, "CONFLICT", "An analysis is already running for this transaction.")
	case errors.Is(err, services.ErrEmptyUpload):
		return apierrors.NewValidationError("Uploaded file is empty.")
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.NewValidationError(err.Error())
	}
	return err
}
