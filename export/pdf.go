package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os/exec"
	"strings"
	"time"

	"notevault/model"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

var noteTemplate = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Georgia, serif; margin: 0; color: #1a1a1a; }
h1 { font-size: 24pt; margin-bottom: 4pt; }
.meta { color: #666; font-size: 10pt; margin-bottom: 16pt; }
.tags { font-size: 10pt; margin-bottom: 16pt; }
.tag { background: #eee; border-radius: 3px; padding: 2px 6px; margin-right: 4px; }
.body { font-size: 12pt; line-height: 1.5; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Created {{.Created}} &middot; Updated {{.Updated}}</div>
{{if .Tags}}<div class="tags">{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</div>{{end}}
<div class="body">{{.Body}}</div>
</body>
</html>`))

type noteTemplateData struct {
	Title   string
	Created string
	Updated string
	Tags    []string
	Body    string
}

// PDF renders a note to PDF by printing an HTML template through
// headless Chrome.
func PDF(note *model.Note) (*Result, error) {
	data := noteTemplateData{
		Title:   note.Title,
		Created: note.CreatedAt.Format("Jan 2, 2006 3:04 PM"),
		Updated: note.UpdatedAt.Format("Jan 2, 2006 3:04 PM"),
		Tags:    note.Tags,
		Body:    note.Body,
	}

	var buf bytes.Buffer
	if err := noteTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	pdfData, err := printPDF(buf.String())
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:     pdfData,
		Filename: sanitizeFilename(note.Title) + ".pdf",
		MimeType: "application/pdf",
	}, nil
}

// percentEncodeForDataURL encodes a string for use in a data URL.
// Unlike url.QueryEscape, spaces become %20 rather than +.
func percentEncodeForDataURL(s string) string {
	var result strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == '~':
			result.WriteRune(r)
		case r == ' ':
			result.WriteString("%20")
		default:
			for _, b := range []byte(string(r)) {
				result.WriteString(fmt.Sprintf("%%%02X", b))
			}
		}
	}
	return result.String()
}

func printPDF(html string) ([]byte, error) {
	if _, err := exec.LookPath("chromium-browser"); err != nil {
		if _, fallbackErr := exec.LookPath("chromium"); fallbackErr != nil {
			return nil, fmt.Errorf("%w: chromium not installed", ErrPDFDependencyMissing)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	dataURL := "data:text/html;charset=utf-8," + percentEncodeForDataURL(html)

	var pdfData []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11.0).
				WithMarginTop(0.75).
				WithMarginBottom(0.75).
				WithMarginLeft(0.75).
				WithMarginRight(0.75).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome pdf generation failed: %w", err)
	}

	return pdfData, nil
}
