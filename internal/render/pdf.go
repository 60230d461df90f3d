package render

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/KaramelBytes/tablescribe/internal/utils"
)

// PDFOptions control the headless Chrome session.
type PDFOptions struct {
	Timeout time.Duration
	// ExecPath overrides the browser binary discovered on PATH.
	ExecPath string
}

// PDF lays out the HTML document in headless Chrome and writes the printed
// PDF to outPath. Requires Chrome/Chromium to be installed on the system.
func PDF(ctx context.Context, html, outPath string, opt PDFOptions) error {
	if opt.Timeout <= 0 {
		opt.Timeout = 60 * time.Second
	}

	tmp, err := os.CreateTemp("", "tablescribe-*.html")
	if err != nil {
		return &Error{Stage: "pdf", Path: outPath, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return &Error{Stage: "pdf", Path: outPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Stage: "pdf", Path: outPath, Err: err}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opt.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(opt.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, opt.Timeout)
	defer cancelTimeout()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(fileURL(tmpPath)),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithMarginTop(0.5).
				WithMarginBottom(0.5).
				WithMarginLeft(0.6).
				WithMarginRight(0.6).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return &Error{Stage: "pdf", Path: outPath, Err: err}
	}

	if err := utils.SafeWriteFile(outPath, pdf); err != nil {
		return &Error{Stage: "pdf", Path: outPath, Err: err}
	}
	return nil
}

func fileURL(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}
