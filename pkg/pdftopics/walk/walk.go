// Package walk discovers PDF files below a root folder and extracts them lazily.
package walk

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/pdftopics/pkg/pdftopics/extract"
	"github.com/cognicore/pdftopics/pkg/pdftopics/internalerr"
)

// Extractor is the part of extract.Extractor the walker needs.
type Extractor interface {
	Extract(ctx context.Context, inputPath, outputDir string) (extract.Document, error)
}

// Walker drives an Extractor over every ".pdf" file of a directory tree.
type Walker struct {
	Extractor Extractor
	OutputDir string

	// SkipCorrupt makes any extraction failure recoverable. By default only
	// undecodable text is skipped and other failures end the walk.
	SkipCorrupt bool

	// OnSkip, if set, is called for every skipped file.
	OnSkip func(path string, err error)

	Log logrus.FieldLogger
}

// Walk returns a lazy sequence of extracted documents. Files are extracted
// only as the sequence is consumed; breaking out of the range stops the walk.
// A fatal error is yielded once with a zero Document and ends the sequence.
// Call Walk again to restart.
func (w *Walker) Walk(ctx context.Context, root string) iter.Seq2[extract.Document, error] {
	return func(yield func(extract.Document, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				// Unreadable entries below the root are skipped.
				w.logger().WithFields(logrus.Fields{"path": path, "error": err}).Warn("Unable to read " + path)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".pdf") {
				return nil
			}

			doc, err := w.Extractor.Extract(ctx, path, w.OutputDir)
			if err != nil {
				if w.recoverable(err) {
					w.skip(path, err)
					return nil
				}
				return err
			}
			w.logger().WithField("path", path).Debug("extracted")

			if !yield(doc, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield(extract.Document{}, err)
		}
	}
}

// Collect drains a walk into a slice, stopping at the first fatal error.
func Collect(seq iter.Seq2[extract.Document, error]) ([]extract.Document, error) {
	var docs []extract.Document
	for doc, err := range seq {
		if err != nil {
			return docs, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (w *Walker) recoverable(err error) bool {
	if errors.Is(err, internalerr.ErrDecode) {
		return true
	}
	return w.SkipCorrupt && errors.Is(err, internalerr.ErrExtract)
}

func (w *Walker) skip(path string, err error) {
	w.logger().WithFields(logrus.Fields{"path": path, "error": err}).Warn("Unable to extract text from " + path)
	if w.OnSkip != nil {
		w.OnSkip(path, err)
	}
}

func (w *Walker) logger() logrus.FieldLogger {
	if w.Log == nil {
		return logrus.StandardLogger()
	}
	return w.Log
}
