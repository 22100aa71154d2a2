// Package report appends per-document topic summaries to a text report.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/pdftopics/pkg/pdftopics/corpus"
	"github.com/cognicore/pdftopics/pkg/pdftopics/extract"
	"github.com/cognicore/pdftopics/pkg/pdftopics/topic"
)

const DefaultTopTerms = 20

// Vectorizer maps a sidecar file to a bag-of-words vector.
type Vectorizer interface {
	VectorizeFile(path string) (corpus.BagOfWords, error)
}

// Model is the part of topic.Model the reporter queries.
type Model interface {
	Infer(bow corpus.BagOfWords) (topic.Distribution, error)
	TopTerms(topicID, n int) []topic.TermWeight
}

// Reporter writes one block per document.
type Reporter struct {
	Model     Model
	Corpus    Vectorizer
	TopTerms  int     // terms listed per topic, DefaultTopTerms when zero
	MinWeight float64 // topics at or below this weight are omitted
}

// Open opens path for appending, creating it if needed.
func Open(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Report writes the block for doc:
//
//	<doc.Path>
//	<weight> [('<term>', <w>), ...]
//	<blank line>
//
// with one weight line per topic above MinWeight, in topic order.
// The block is written in a single call so a failure never leaves half of it.
func (r *Reporter) Report(w io.Writer, doc extract.Document) error {
	bow, err := r.Corpus.VectorizeFile(doc.SidecarPath)
	if err != nil {
		return fmt.Errorf("report %s: %w", doc.Path, err)
	}
	dist, err := r.Model.Infer(bow)
	if err != nil {
		return fmt.Errorf("report %s: %w", doc.Path, err)
	}

	n := r.TopTerms
	if n <= 0 {
		n = DefaultTopTerms
	}

	var b strings.Builder
	b.WriteString(doc.Path)
	b.WriteByte('\n')
	for _, tw := range dist {
		if tw.Weight <= r.MinWeight {
			continue
		}
		b.WriteString(formatFloat(tw.Weight))
		b.WriteByte(' ')
		writeTerms(&b, r.Model.TopTerms(tw.Topic, n))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("report %s: write: %w", doc.Path, err)
	}
	return nil
}

func writeTerms(b *strings.Builder, terms []topic.TermWeight) {
	b.WriteByte('[')
	for i, tw := range terms {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("('")
		b.WriteString(tw.Term)
		b.WriteString("', ")
		b.WriteString(formatFloat(tw.Weight))
		b.WriteByte(')')
	}
	b.WriteByte(']')
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
