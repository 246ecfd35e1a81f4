package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	apierrors "insightdesk/internal/errors"
	"insightdesk/internal/exporter"
	"insightdesk/internal/infrastructure"
	"insightdesk/internal/insights"
	"insightdesk/internal/render"
	"insightdesk/internal/storage"
	"insightdesk/internal/tablesource"
	"insightdesk/internal/transactions"
)

// ArtifactKind names a downloadable output of a session.
type ArtifactKind string

const (
	ArtifactOriginal      ArtifactKind = "original"
	ArtifactCleanedCSV    ArtifactKind = "cleaned.csv"
	ArtifactCleanedExcel  ArtifactKind = "cleaned.xlsx"
	ArtifactDashboardPDF  ArtifactKind = "dashboard.pdf"
	ArtifactDashboardHTML ArtifactKind = "dashboard.html"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypePDF  = "application/pdf"
	contentTypeHTML = "text/html; charset=utf-8"
)

// Artifact is one downloadable file.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// AnalysisRequest is one paid upload.
type AnalysisRequest struct {
	TransactionID string
	FileName      string
	Data          []byte
}

// AnalysisResult is the response of an analysis run.
type AnalysisResult struct {
	SessionID     string                  `json:"sessionId"`
	TransactionID string                  `json:"transactionId,omitempty"`
	SourceName    string                  `json:"sourceName"`
	CreatedAt     time.Time               `json:"createdAt"`
	Overview      insights.Overview       `json:"overview"`
	Summary       string                  `json:"summary"`
	Narrative     []string                `json:"narrative"`
	Report        *insights.InsightReport `json:"report"`
	Charts        render.ChartSet         `json:"charts"`
	Downloads     map[string]string       `json:"downloads"`
	Artifacts     transactions.Artifacts  `json:"artifacts"`
	StorageStatus string                  `json:"storageStatus,omitempty"`
	Warnings      []string                `json:"warnings"`
}

// AnalysisDeps are the collaborators of an AnalysisService. Store is nil
// when artifact storage is not configured; Hub and Metrics are optional.
// Timeout bounds reading and analysis; UploadTimeout separately bounds the
// artifact uploads and transaction writes that follow.
type AnalysisDeps struct {
	Source        tablesource.Source
	Transactions  transactions.Log
	Store         storage.ArtifactStore
	Renderer      *render.Renderer
	CSV           *exporter.CSVWriter
	Workbook      *exporter.WorkbookWriter
	Sessions      *SessionStore
	Hub           WebSocketHub
	Metrics       *infrastructure.InsightMetrics
	Timeout       time.Duration
	UploadTimeout time.Duration
}

// AnalysisService runs the insight pipeline for paid uploads and serves the
// resulting sessions.
type AnalysisService struct {
	source   tablesource.Source
	txlog    transactions.Log
	store    storage.ArtifactStore
	renderer *render.Renderer
	csv      *exporter.CSVWriter
	workbook *exporter.WorkbookWriter
	sessions *SessionStore
	notify   statusNotifier
	metrics  *infrastructure.InsightMetrics
	timeout  time.Duration
	upload   time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewAnalysisService wires an AnalysisService. Missing writers and stores
// get defaults.
func NewAnalysisService(deps AnalysisDeps, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Source == nil {
		deps.Source = tablesource.NewReader(logger)
	}
	if deps.Renderer == nil {
		deps.Renderer = render.NewRenderer(nil)
	}
	if deps.CSV == nil {
		deps.CSV = exporter.NewCSVWriter("")
	}
	if deps.Workbook == nil {
		deps.Workbook = exporter.NewWorkbookWriter(logger)
	}
	if deps.Sessions == nil {
		deps.Sessions = NewSessionStore(2 * time.Hour)
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 25 * time.Second
	}
	if deps.UploadTimeout <= 0 {
		deps.UploadTimeout = 25 * time.Second
	}

	return &AnalysisService{
		source:   deps.Source,
		txlog:    deps.Transactions,
		store:    deps.Store,
		renderer: deps.Renderer,
		csv:      deps.CSV,
		workbook: deps.Workbook,
		sessions: deps.Sessions,
		notify:   statusNotifier{hub: deps.Hub},
		metrics:  deps.Metrics,
		timeout:  deps.Timeout,
		upload:   deps.UploadTimeout,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "analysis_service")),
		inFlight: make(map[string]struct{}),
	}
}

// StorageConfigured reports whether artifacts are pushed to storage.
func (s *AnalysisService) StorageConfigured() bool {
	return s.store != nil
}

// Analyze runs the pipeline over one paid upload. The transaction must be
// paid and not yet completed; a failed run may be retried.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if strings.TrimSpace(req.TransactionID) == "" {
		return nil, fmt.Errorf("%w: transactionId is required", ErrInvalidInput)
	}
	if len(req.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	format, err := tablesource.DetectFormat(req.FileName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := infrastructure.StartSpan(ctx, "analysis.analyze",
		attribute.String("transaction_id", req.TransactionID),
		attribute.String("format", string(format)))
	defer span.End()

	record, err := s.claim(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	defer s.release(req.TransactionID)

	s.logger.InfoContext(ctx, "analysis started",
		slog.String("transaction_id", req.TransactionID),
		slog.String("file_name", req.FileName),
		slog.Int("bytes", len(req.Data)))
	s.notify.analysis(EventAnalysisStarted, req.TransactionID, "", "Analysis started")

	start := s.now()
	raw, err := s.source.Read(ctx, req.FileName, bytes.NewReader(req.Data))
	if err != nil && ctx.Err() == nil && !tablesource.IsUnsupportedFileType(err) {
		err = apierrors.NewParsingError("The uploaded file could not be read as a spreadsheet.", err).
			WithContext("file_name", req.FileName)
	}
	var report *insights.InsightReport
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		report, err = insights.Analyze(raw)
	}
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "upload", 0, time.Since(start), err)
		infrastructure.RecordError(ctx, err)
		s.markFailed(ctx, record, err)
		return nil, err
	}

	session := insights.NewSession(uuid.NewString(), req.TransactionID, req.FileName, report, s.now())
	artifacts, warnings, err := s.buildArtifacts(ctx, session, req.Data, true)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "upload", report.TotalRows, time.Since(start), err)
		s.markFailed(ctx, record, err)
		return nil, err
	}
	s.metrics.RecordAnalysis(ctx, "upload", report.TotalRows, time.Since(start), nil)
	s.sessions.Put(session, artifacts)

	uploadedAt := s.now().UTC()
	record.Status = transactions.StatusCompleted
	record.UploadedAt = &uploadedAt
	record.FileName = req.FileName
	if s.store == nil {
		record.StorageStatus = transactions.StorageNotConfigured
	} else {
		record.StorageStatus = transactions.StorageUploading
	}
	if err := s.persistRecord(ctx, record); err != nil {
		warnings = append(warnings, "Transaction record could not be updated.")
	}

	if s.store != nil {
		uploadCtx, cancelUpload := context.WithTimeout(context.WithoutCancel(ctx), s.upload)
		urls, err := s.uploadArtifacts(uploadCtx, session, format, artifacts)
		cancelUpload()
		if err != nil {
			s.logger.WarnContext(ctx, "artifact upload failed",
				slog.String("transaction_id", req.TransactionID),
				slog.String("error", err.Error()))
			warnings = append(warnings, fmt.Sprintf("Artifact upload failed: %v", err))
			record.StorageStatus = transactions.StorageFailed
		} else {
			record.StorageStatus = transactions.StorageStored
			record.Artifacts = urls
			s.notify.analysis(EventArtifactsStored, req.TransactionID, session.ID, "Artifacts stored")
		}
		if err := s.persistRecord(ctx, record); err != nil {
			warnings = append(warnings, "Transaction record could not be updated.")
		}
	}

	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("transaction_id", req.TransactionID),
		slog.String("session_id", session.ID),
		slog.Int("rows", report.TotalRows),
		slog.String("storage_status", record.StorageStatus),
		slog.Duration("duration", time.Since(start)))
	s.notify.analysis(EventAnalysisCompleted, req.TransactionID, session.ID, "Analysis completed")

	result := s.result(session, warnings)
	result.Artifacts = record.Artifacts
	result.StorageStatus = record.StorageStatus
	return result, nil
}

// Demo analyzes the built-in sample dataset. It needs no payment and stores
// nothing remotely.
func (s *AnalysisService) Demo(ctx context.Context) (*AnalysisResult, error) {
	start := s.now()
	report, err := insights.Analyze(insights.DemoRows())
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "demo", 0, time.Since(start), err)
		return nil, err
	}

	session := insights.NewSession(uuid.NewString(), "", insights.DemoSourceName, report, s.now())
	artifacts, warnings, err := s.buildArtifacts(ctx, session, nil, false)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "demo", report.TotalRows, time.Since(start), err)
		return nil, err
	}
	s.metrics.RecordAnalysis(ctx, "demo", report.TotalRows, time.Since(start), nil)
	s.sessions.Put(session, artifacts)

	return s.result(session, warnings), nil
}

// Session returns a stored session as an analysis result.
func (s *AnalysisService) Session(ctx context.Context, id string) (*AnalysisResult, error) {
	session, _, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	result := s.result(session, nil)
	if session.TransactionID != "" && s.txlog != nil {
		if record, err := s.txlog.Get(ctx, session.TransactionID); err == nil {
			result.Artifacts = record.Artifacts
			result.StorageStatus = record.StorageStatus
		}
	}
	return result, nil
}

// Artifact returns one download of a stored session. The dashboard PDF is
// printed on first request when it was not produced during analysis.
func (s *AnalysisService) Artifact(ctx context.Context, sessionID string, kind ArtifactKind) (*Artifact, error) {
	session, artifacts, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case ArtifactOriginal:
		if artifacts.Original == nil {
			return nil, fmt.Errorf("%w: no original upload for this session", ErrArtifactUnavailable)
		}
		format, _ := tablesource.DetectFormat(session.SourceName)
		return &Artifact{Name: session.OriginalName(), ContentType: format.ContentType(), Data: artifacts.Original}, nil

	case ArtifactCleanedCSV:
		return &Artifact{Name: session.CleanedCSVName(), ContentType: contentTypeCSV, Data: artifacts.CleanedCSV}, nil

	case ArtifactCleanedExcel:
		return &Artifact{Name: session.CleanedExcelName(), ContentType: tablesource.FormatXLSX.ContentType(), Data: artifacts.CleanedExcel}, nil

	case ArtifactDashboardHTML:
		page, err := s.renderer.HTML(session)
		if err != nil {
			return nil, fmt.Errorf("failed to render dashboard: %w", err)
		}
		return &Artifact{Name: session.BaseName() + "_dashboard.html", ContentType: contentTypeHTML, Data: page}, nil

	case ArtifactDashboardPDF:
		pdf := artifacts.DashboardPDF
		if pdf == nil {
			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			pdf, err = s.renderer.PDF(ctx, session)
			if errors.Is(err, render.ErrPDFDisabled) {
				return nil, fmt.Errorf("%w: %v", ErrArtifactUnavailable, err)
			}
			if err != nil {
				return nil, err
			}
			s.sessions.SetPDF(sessionID, pdf)
		}
		return &Artifact{Name: session.DashboardPDFName(), ContentType: contentTypePDF, Data: pdf}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownArtifact, kind)
}

// claim reserves a transaction for one analysis run.
func (s *AnalysisService) claim(ctx context.Context, transactionID string) (*transactions.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.inFlight[transactionID]; running {
		return nil, ErrAnalysisInProgress
	}

	record, err := s.txlog.Get(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}
	switch record.Status {
	case transactions.StatusPaid, transactions.StatusFailed:
	case transactions.StatusCompleted:
		return nil, ErrAlreadyAnalyzed
	default:
		return nil, ErrTransactionNotPaid
	}

	s.inFlight[transactionID] = struct{}{}
	return record, nil
}

func (s *AnalysisService) release(transactionID string) {
	s.mu.Lock()
	delete(s.inFlight, transactionID)
	s.mu.Unlock()
}

// markFailed records a pipeline failure. The context may already be done,
// so the write gets a fresh short deadline.
func (s *AnalysisService) markFailed(ctx context.Context, record *transactions.Record, cause error) {
	s.logger.WarnContext(ctx, "analysis failed",
		slog.String("transaction_id", record.ID),
		slog.String("error", cause.Error()))
	s.notify.analysis(EventAnalysisFailed, record.ID, "", cause.Error())

	if record.Status == transactions.StatusCompleted {
		return
	}
	record.Status = transactions.StatusFailed
	_ = s.persistRecord(ctx, record)
}

// persistRecord writes record on its own deadline, detached from ctx.
func (s *AnalysisService) persistRecord(ctx context.Context, record *transactions.Record) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return s.updateRecord(writeCtx, record)
}

func (s *AnalysisService) updateRecord(ctx context.Context, record *transactions.Record) error {
	if err := s.txlog.Update(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to update transaction",
			slog.String("transaction_id", record.ID),
			slog.String("error", err.Error()))
		s.metrics.RecordTransaction(ctx, "update", "error")
		return err
	}
	s.metrics.RecordTransaction(ctx, "update", string(record.Status))
	s.notify.transaction(EventTransactionUpdated, record.ID, string(record.Status), record.StorageStatus)
	return nil
}

// buildArtifacts produces the cleaned exports and, when printPDF is set,
// the dashboard PDF. A PDF failure only adds a warning.
func (s *AnalysisService) buildArtifacts(ctx context.Context, session *insights.AnalysisSession, original []byte, printPDF bool) (*SessionArtifacts, []string, error) {
	warnings := []string{}

	cleanedCSV, err := s.csv.CleanedCSV(session.Report.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to export cleaned csv: %w", err)
	}
	cleanedXLSX, err := s.workbook.CleanedWorkbook(session.Report.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to export cleaned workbook: %w", err)
	}

	artifacts := &SessionArtifacts{
		Original:     original,
		CleanedCSV:   cleanedCSV,
		CleanedExcel: cleanedXLSX,
	}

	if printPDF {
		pdf, err := s.renderer.PDF(ctx, session)
		switch {
		case errors.Is(err, render.ErrPDFDisabled):
			warnings = append(warnings, "Dashboard PDF generation is disabled.")
		case err != nil:
			s.logger.WarnContext(ctx, "dashboard pdf skipped",
				slog.String("session_id", session.ID),
				slog.String("error", err.Error()))
			warnings = append(warnings, "Dashboard PDF could not be generated.")
		default:
			artifacts.DashboardPDF = pdf
		}
	}

	return artifacts, warnings, nil
}

// uploadArtifacts pushes every produced artifact concurrently.
func (s *AnalysisService) uploadArtifacts(ctx context.Context, session *insights.AnalysisSession, format tablesource.Format, artifacts *SessionArtifacts) (transactions.Artifacts, error) {
	var urls transactions.Artifacts

	type upload struct {
		kind        string
		name        string
		contentType string
		blob        []byte
		dst         *string
	}
	uploads := []upload{
		{"original", session.OriginalName(), format.ContentType(), artifacts.Original, &urls.OriginalURL},
		{"cleaned_csv", session.CleanedCSVName(), contentTypeCSV, artifacts.CleanedCSV, &urls.CleanedCSVURL},
		{"cleaned_xlsx", session.CleanedExcelName(), tablesource.FormatXLSX.ContentType(), artifacts.CleanedExcel, &urls.CleanedExcelURL},
	}
	if artifacts.DashboardPDF != nil {
		uploads = append(uploads, upload{"dashboard_pdf", session.DashboardPDFName(), contentTypePDF, artifacts.DashboardPDF, &urls.DashboardPDFURL})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range uploads {
		u := u
		g.Go(func() error {
			url, err := s.store.Store(gctx, session.TransactionID, u.blob, u.name, u.contentType)
			s.metrics.RecordUpload(gctx, u.kind, len(u.blob), err)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(u.name), err)
			}
			*u.dst = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return transactions.Artifacts{}, err
	}
	return urls, nil
}

func (s *AnalysisService) result(session *insights.AnalysisSession, warnings []string) *AnalysisResult {
	if warnings == nil {
		warnings = []string{}
	}
	r := session.Report
	return &AnalysisResult{
		SessionID:     session.ID,
		TransactionID: session.TransactionID,
		SourceName:    session.SourceName,
		CreatedAt:     session.CreatedAt,
		Overview:      r.Overview(),
		Summary:       insights.Summary(r),
		Narrative:     r.Narrative,
		Report:        r,
		Charts:        s.renderer.Charts(r),
		Downloads:     downloadLinks(session),
		Warnings:      warnings,
	}
}

func downloadLinks(session *insights.AnalysisSession) map[string]string {
	base := "/api/analyses/" + session.ID + "/"
	links := map[string]string{
		"cleanedCsv":    base + string(ArtifactCleanedCSV),
		"cleanedExcel":  base + string(ArtifactCleanedExcel),
		"dashboardPdf":  base + string(ArtifactDashboardPDF),
		"dashboardHtml": base + string(ArtifactDashboardHTML),
	}
	if session.TransactionID != "" {
		links["original"] = base + string(ArtifactOriginal)
	}
	return links
}
