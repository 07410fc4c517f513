package capture

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	appLog "aviancal/internal/log"
)

// A4 in inches, as page.PrintToPDF expects.
const (
	A4Width        = 8.27
	A4Height       = 11.69
	DefaultTimeout = 30 * time.Second

	readySelector = `[data-ready="true"]`
)

// PDFOptions defines a headless print of a served page.
type PDFOptions struct {
	// URL to print, e.g. "http://127.0.0.1:8080/print?schedule=vibora&year=2025".
	URL string

	// Landscape flips the A4 sheet.
	Landscape bool

	// Timeout bounds browser start, navigation and printing. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// ExecPath overrides the Chromium binary chromedp would otherwise look
	// up on PATH.
	ExecPath string
}

// PrintPDF starts a headless Chromium via chromedp, waits for the page root
// to report data-ready="true", prints it on A4 with backgrounds and writes
// the PDF bytes to w.
func PrintPDF(parentCtx context.Context, opts PDFOptions, w io.Writer) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, allocOpts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady(readySelector, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(A4Width).
				WithPaperHeight(A4Height).
				WithLandscape(opts.Landscape).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	}

	start := time.Now()
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	appLog.Debug("pdf printed", "url", opts.URL, "bytes", len(pdf), "elapsed", time.Since(start).String())

	if _, err := w.Write(pdf); err != nil {
		return fmt.Errorf("capture: failed to write PDF: %w", err)
	}
	return nil
}
