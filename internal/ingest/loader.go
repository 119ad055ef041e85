// Package ingest loads source documents, splits them into chunks, and drives
// the embed-and-upload pipeline that populates the vector index.
package ingest

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/domain"
)

// LoadDir walks dir recursively and extracts text from every PDF. A file that
// fails to parse is logged and skipped; an unreadable directory aborts.
func LoadDir(dir string, logger *zap.Logger) ([]domain.Document, error) {
	var docs []domain.Document

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}

		text, err := extractPDF(path)
		if err != nil {
			logger.Warn("skipping unreadable PDF",
				zap.String("path", path),
				zap.Error(err),
			)
			return nil
		}

		docs = append(docs, domain.Document{Source: path, Text: text})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return docs, nil
}

func extractPDF(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteByte('\n')
		}
	}

	return buf.String(), nil
}
