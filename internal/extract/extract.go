// Package extract turns uploaded study material into plain text. PDF
// documents are decoded page by page with ledongthuc/pdf; plain text is
// decoded as UTF-8 with invalid sequences dropped.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/phrazzld/flashdeck/internal/domain"
)

// Format identifies the declared type of an uploaded document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
)

// ParseFormat accepts "pdf", "txt" or "text" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "pdf":
		return FormatPDF, nil
	case "txt", "text", "md":
		return FormatText, nil
	default:
		return "", &ExtractionError{Format: Format(s), Reason: "unsupported format"}
	}
}

// FormatFromFilename infers the format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	return ParseFormat(filepath.Ext(name))
}

// ExtractionError reports a document that could not be turned into text.
// It is fatal to that upload and never retried.
type ExtractionError struct {
	Format Format
	Reason string
	Err    error
}

// Error implements the error interface for ExtractionError.
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Format, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match domain.ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == domain.ErrExtraction
}

// Extractor converts raw bytes in a declared format to text.
type Extractor interface {
	Extract(data []byte, format Format) (string, error)
}

// DocumentExtractor is the default Extractor.
type DocumentExtractor struct{}

// New returns the default extractor.
func New() *DocumentExtractor {
	return &DocumentExtractor{}
}

// Ensure DocumentExtractor implements Extractor
var _ Extractor = (*DocumentExtractor)(nil)

// Extract implements Extractor.
func (x *DocumentExtractor) Extract(data []byte, format Format) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Format: format, Reason: "document is empty"}
	}

	switch format {
	case FormatText:
		return decodeText(data), nil
	case FormatPDF:
		return extractPDF(data)
	default:
		return "", &ExtractionError{Format: format, Reason: "unsupported format"}
	}
}

// decodeText drops invalid UTF-8 and a leading byte-order mark.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return normalizeNewlines(string(data))
	}
	return normalizeNewlines(strings.ToValidUTF8(string(data), ""))
}

// extractPDF reads every page's plain text, separating pages by a blank line.
// The decoder panics on some malformed inputs, so panics become ExtractionErrors.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = &ExtractionError{Format: FormatPDF, Reason: fmt.Sprintf("malformed document: %v", p)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatPDF, Reason: "cannot open document", Err: err}
	}

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{
				Format: FormatPDF,
				Reason: fmt.Sprintf("cannot read page %d", pageIndex),
				Err:    err,
			}
		}

		pageText = strings.TrimSpace(normalizeNewlines(strings.ReplaceAll(pageText, "\x00", "")))
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
