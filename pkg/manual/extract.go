package manual

import (
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads a PDF and returns the concatenation of each page's
// plain text, newline-separated, in page order. A page that fails to
// extract is logged and skipped; an unreadable or encrypted file fails the
// whole call. A PDF with no extractable text yields an empty string, which
// callers treat as "nothing to ingest".
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		text, err := extractPage(r, i)
		if err != nil {
			log.Printf("manual: %s page %d: %v (skipped)", path, i, err)
			continue
		}
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// extractPage isolates per-page failures; the parser panics on some
// malformed content streams.
func extractPage(r *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("content stream: %v", rec)
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
