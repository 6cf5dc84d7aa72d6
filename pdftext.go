package scixtract

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPages extracts raw per-page text from a PDF file. A document that
// cannot be opened or yields no text at all returns UnreadableDocumentError.
func ExtractPages(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &UnreadableDocumentError{Path: path, Err: err}
	}

	pages, err := extractPagesNative(path)
	if err == nil && hasText(pages) {
		return pages, nil
	}

	// Some PDFs defeat the pure-Go reader; fall back to pdftotext when it
	// is on PATH. The fallback has no page boundaries, so it yields a
	// single page.
	if text, ferr := extractTextCommand(path); ferr == nil && strings.TrimSpace(text) != "" {
		return []string{text}, nil
	}

	if err == nil {
		err = fmt.Errorf("no extractable text")
	}
	return nil, &UnreadableDocumentError{Path: path, Err: err}
}

func extractPagesNative(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// Keep page order intact; a single unreadable page is not
			// fatal to the document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// extractTextCommand extracts text using the pdftotext utility.
func extractTextCommand(path string) (string, error) {
	cmd := exec.Command("pdftotext", path, "-")
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w: %s", err, stderr.String())
	}
	return out.String(), nil
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
