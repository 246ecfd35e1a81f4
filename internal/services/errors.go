package services

import "errors"

// Analysis errors
var (
	ErrSessionNotFound     = errors.New("analysis session not found")
	ErrTransactionNotPaid  = errors.New("transaction is not paid")
	ErrAlreadyAnalyzed     = errors.New("transaction has already been analyzed")
	ErrAnalysisInProgress  = errors.New("analysis already running for transaction")
	ErrUnknownArtifact     = errors.New("unknown artifact")
	ErrArtifactUnavailable = errors.New("artifact unavailable")
	ErrEmptyUpload         = errors.New("uploaded file is empty")
)

// History errors
var (
	ErrHistoryNotConfigured = errors.New("history credentials are not configured")
	ErrInvalidCredentials   = errors.New("invalid history credentials")
)

// General errors
var (
	ErrInvalidInput = errors.New("invalid input")
)
