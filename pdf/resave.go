package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Optimize rewrites a PDF, dropping duplicate objects and compressing
// streams.
func Optimize(doc []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(doc), &out, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("pdfcpu optimize failed: %w", err)
	}
	return out.Bytes(), nil
}

// PageCount returns the number of pages in doc.
func PageCount(doc []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(doc), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("pdfcpu page count failed: %w", err)
	}
	return n, nil
}
