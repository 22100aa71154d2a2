// Package extract turns PDF files into plain-text sidecar files.
//
// The PDF parsing itself is done by a Backend; the Extractor only validates
// the decoded text and persists it next to the other sidecars.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/pdftopics/pkg/pdftopics/internalerr"
)

// Backend method names accepted by NewBackend.
const (
	MethodPlain   = "plain"
	MethodPages   = "pages"
	MethodDslipak = "dslipak"
	MethodMuPDF   = "mupdf"
)

// Document is one successfully extracted PDF.
type Document struct {
	Path        string // source PDF
	SidecarPath string // extracted text on disk
	Text        string
}

// Backend decodes the text layer of a PDF file.
type Backend interface {
	Text(path string) (string, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(path string) (string, error)

// Text implements Backend.
func (f BackendFunc) Text(path string) (string, error) { return f(path) }

// KnownMethod reports whether name is a backend method this package knows about.
// A known method may still be unavailable in the current build (mupdf).
func KnownMethod(name string) bool {
	switch name {
	case MethodPlain, MethodPages, MethodDslipak, MethodMuPDF:
		return true
	}
	return false
}

// NewBackend returns the backend registered under method.
func NewBackend(method string) (Backend, error) {
	switch method {
	case MethodPlain:
		return plainBackend{}, nil
	case MethodPages:
		return pagesBackend{}, nil
	case MethodDslipak:
		return dslipakBackend{}, nil
	case MethodMuPDF:
		return newMuPDFBackend()
	}
	return nil, fmt.Errorf("%w: unknown extract method %q", internalerr.ErrInvalidConfig, method)
}

// Extractor reads PDFs through a Backend and writes sidecar text files.
type Extractor struct {
	backend  Backend
	reserved map[string]struct{}
}

// New creates an Extractor using the given backend.
func New(b Backend) *Extractor {
	return &Extractor{backend: b, reserved: make(map[string]struct{})}
}

// Reserve marks file names inside the output directory that sidecars must
// never overwrite, such as the report. A PDF whose sidecar would take a
// reserved name gets "<basename>.pdf.txt" instead.
func (e *Extractor) Reserve(names ...string) {
	for _, name := range names {
		e.reserved[name] = struct{}{}
	}
}

// Extract decodes inputPath and writes the text verbatim to
// outputDir/<basename>.txt, overwriting any previous sidecar but never a
// reserved file.
//
// Text that is not valid UTF-8 fails with internalerr.ErrDecode; backend
// failures wrap internalerr.ErrExtract. Write failures wrap neither.
func (e *Extractor) Extract(ctx context.Context, inputPath, outputDir string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	text, err := e.readText(inputPath)
	if err != nil {
		return Document{}, fmt.Errorf("extract %s: %w: %w", inputPath, internalerr.ErrExtract, err)
	}
	if !utf8.ValidString(text) {
		return Document{}, fmt.Errorf("extract %s: %w", inputPath, internalerr.ErrDecode)
	}

	sidecar := e.sidecarPath(inputPath, outputDir)
	if err := os.WriteFile(sidecar, []byte(text), 0o644); err != nil {
		return Document{}, fmt.Errorf("write sidecar %s: %w", sidecar, err)
	}

	return Document{Path: inputPath, SidecarPath: sidecar, Text: text}, nil
}

// readText shields the run from parser panics on malformed files.
func (e *Extractor) readText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return e.backend.Text(path)
}

func (e *Extractor) sidecarPath(inputPath, outputDir string) string {
	sidecar := SidecarPath(inputPath, outputDir)
	if _, ok := e.reserved[filepath.Base(sidecar)]; ok {
		return filepath.Join(outputDir, filepath.Base(inputPath)+".txt")
	}
	return sidecar
}

// SidecarPath returns the sidecar location for a source file:
// the base name with its extension replaced by ".txt", inside outputDir.
func SidecarPath(inputPath, outputDir string) string {
	base := filepath.Base(inputPath)
	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".txt")
}
