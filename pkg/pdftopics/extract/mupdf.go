//go:build mupdf

package extract

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

func newMuPDFBackend() (Backend, error) {
	return mupdfBackend{}, nil
}

// mupdfBackend uses MuPDF through cgo. Unlike the pure-Go parsers it can
// hand back raw bytes, so the UTF-8 check in Extract matters here.
type mupdfBackend struct{}

func (mupdfBackend) Text(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i+1, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
