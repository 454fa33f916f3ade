package analyzer

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the text of a .pdf or .txt file. The suffix match is
// case-sensitive. PDF page texts are concatenated without a separator.
func ExtractText(path string) (string, error) {
	switch {
	case strings.HasSuffix(path, ".pdf"):
		return extractPDF(path)
	case strings.HasSuffix(path, ".txt"):
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file format for text extraction: %s", path)
	}
}

func extractPDF(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		// GetPlainText pads page text with newlines; pages join without a separator.
		sb.WriteString(strings.Trim(text, "\n"))
	}
	return sb.String(), nil
}
