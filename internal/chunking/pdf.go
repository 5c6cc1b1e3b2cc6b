package chunking

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFSplitter implements PageSplitter in memory with pdfcpu.
type PDFSplitter struct{}

// NewPDFSplitter returns a PDFSplitter. pdfcpu's on-disk config directory is disabled so the
// splitter works on read-only filesystems.
func NewPDFSplitter() *PDFSplitter {
	api.DisableConfigDir()
	return &PDFSplitter{}
}

// newConfig returns a fresh configuration per call; pdfcpu mutates it while processing.
func newConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

func (s *PDFSplitter) PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), newConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

func (s *PDFSplitter) ExtractPages(data []byte, start, end int) ([]byte, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("invalid page range [%d,%d)", start, end)
	}

	// pdfcpu page selections are one-based and inclusive.
	selection := []string{fmt.Sprintf("%d-%d", start+1, end)}
	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(data), &out, selection, newConfig()); err != nil {
		return nil, fmt.Errorf("failed to trim pdf to pages %s: %w", selection[0], err)
	}
	return out.Bytes(), nil
}
