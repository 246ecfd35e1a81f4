package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"insightdesk/internal/config"
)

// ErrPDFDisabled is returned by the no-op printer.
var ErrPDFDisabled = errors.New("pdf rendering disabled")

// PDFPrinter turns a rendered dashboard page into a PDF document.
type PDFPrinter interface {
	PrintPDF(ctx context.Context, html []byte) ([]byte, error)
}

// ChromePrinter prints through a headless Chrome started per call.
type ChromePrinter struct {
	execPath string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPrinter returns a ChromePrinter, or a DisabledPrinter when PDF output
// is switched off.
func NewPrinter(cfg config.RendererConfig, logger *slog.Logger) PDFPrinter {
	if !cfg.PDFEnabled {
		return DisabledPrinter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.PDFTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ChromePrinter{
		execPath: cfg.ChromePath,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "pdf_printer")),
	}
}

// PrintPDF loads html into a blank tab and prints it with backgrounds.
func (p *ChromePrinter) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts, chromedp.Flag("headless", true))
	if p.execPath != "" {
		opts = append(opts, chromedp.ExecPath(p.execPath))
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, p.timeout)
	defer cancelTimeout()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		p.logger.WarnContext(ctx, "pdf rendering failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return nil, fmt.Errorf("print dashboard pdf: %w", err)
	}

	p.logger.DebugContext(ctx, "pdf rendered",
		slog.Int("bytes", len(pdf)),
		slog.Duration("duration", time.Since(start)),
	)
	return pdf, nil
}

// DisabledPrinter never produces a PDF.
type DisabledPrinter struct{}

// PrintPDF always returns ErrPDFDisabled.
func (DisabledPrinter) PrintPDF(context.Context, []byte) ([]byte, error) {
	return nil, ErrPDFDisabled
}
