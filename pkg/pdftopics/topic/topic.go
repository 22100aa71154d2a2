// Package topic fits an LDA topic model over a corpus and queries it.
package topic

import (
	"context"
	"fmt"
	"sort"

	"github.com/james-bowman/nlp"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/pdftopics/pkg/pdftopics/corpus"
	"github.com/cognicore/pdftopics/pkg/pdftopics/internalerr"
)

const maxBatchSize = 100

// Options configures training. Zero Iterations, TransformationPasses, Alpha
// and Eta keep the library defaults.
type Options struct {
	NumTopics            int
	Iterations           int
	TransformationPasses int
	Alpha                float64
	Eta                  float64
	Processes            int
}

// Source is what the trainer needs from a corpus.
type Source interface {
	Dictionary() *corpus.Dictionary
	Matrix() (mat.Matrix, error)
}

// TopicWeight is the weight of one topic in a document.
type TopicWeight struct {
	Topic  int
	Weight float64
}

// Distribution holds one weight per topic, in topic order.
type Distribution []TopicWeight

// Sum returns the total weight.
func (d Distribution) Sum() float64 {
	s := 0.0
	for _, tw := range d {
		s += tw.Weight
	}
	return s
}

// TermWeight is a term and its normalized weight within a topic.
type TermWeight struct {
	ID     int
	Term   string
	Weight float64
}

// Model is a trained topic model bound to the dictionary it was trained on.
type Model struct {
	dict       *corpus.Dictionary
	lda        *nlp.LatentDirichletAllocation
	topicTerms *mat.Dense // K × W, rows sum to 1
}

// Train fits a model with opts.NumTopics topics over src.
func Train(ctx context.Context, src Source, opts Options) (*Model, error) {
	if opts.NumTopics < 1 {
		return nil, fmt.Errorf("topic: num_topics %d: %w", opts.NumTopics, internalerr.ErrInvalidConfig)
	}
	dict := src.Dictionary()
	if dict == nil || dict.NumDocs() == 0 || dict.Len() == 0 {
		return nil, internalerr.ErrEmptyCorpus
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	termDocs, err := src.Matrix()
	if err != nil {
		return nil, fmt.Errorf("topic: build matrix: %w", err)
	}
	_, numDocs := termDocs.Dims()

	lda := nlp.NewLatentDirichletAllocation(opts.NumTopics)
	lda.BatchSize = min(maxBatchSize, numDocs)
	lda.Processes = max(opts.Processes, 1)
	if opts.Iterations > 0 {
		lda.Iterations = opts.Iterations
	}
	if opts.TransformationPasses > 0 {
		lda.TransformationPasses = opts.TransformationPasses
	}
	if opts.Alpha > 0 {
		lda.Alpha = opts.Alpha
	}
	if opts.Eta > 0 {
		lda.Eta = opts.Eta
	}

	if _, err := lda.FitTransform(termDocs); err != nil {
		return nil, fmt.Errorf("topic: fit: %w", err)
	}

	topicTerms := mat.DenseCopyOf(lda.Components())
	normalizeRows(topicTerms)

	return &Model{dict: dict, lda: lda, topicTerms: topicTerms}, nil
}

// NumTopics returns K.
func (m *Model) NumTopics() int {
	k, _ := m.topicTerms.Dims()
	return k
}

// Infer returns the topic distribution of bow, normalized to sum to 1.
// A vector with no known terms gets the uniform distribution.
func (m *Model) Infer(bow corpus.BagOfWords) (Distribution, error) {
	k := m.NumTopics()
	dist := make(Distribution, k)
	for i := range dist {
		dist[i].Topic = i
	}

	if len(bow) == 0 {
		for i := range dist {
			dist[i].Weight = 1 / float64(k)
		}
		return dist, nil
	}

	theta, err := m.lda.Transform(corpus.TermDocMatrix(m.dict.Len(), bow))
	if err != nil {
		return nil, fmt.Errorf("topic: infer: %w", err)
	}

	total := 0.0
	for i := range dist {
		dist[i].Weight = theta.At(i, 0)
		total += dist[i].Weight
	}
	if total <= 0 {
		for i := range dist {
			dist[i].Weight = 1 / float64(k)
		}
		return dist, nil
	}
	for i := range dist {
		dist[i].Weight /= total
	}
	return dist, nil
}

// TopTerms returns up to n terms of topic ordered by weight, ties by id.
func (m *Model) TopTerms(topic, n int) []TermWeight {
	k, w := m.topicTerms.Dims()
	if topic < 0 || topic >= k || n <= 0 {
		return nil
	}

	terms := make([]TermWeight, w)
	for id := 0; id < w; id++ {
		terms[id] = TermWeight{ID: id, Term: m.dict.Token(id), Weight: m.topicTerms.At(topic, id)}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].Weight != terms[j].Weight {
			return terms[i].Weight > terms[j].Weight
		}
		return terms[i].ID < terms[j].ID
	})
	return terms[:min(n, w)]
}

func normalizeRows(m *mat.Dense) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if sum <= 0 {
			for j := range row {
				row[j] = 1 / float64(cols)
			}
			continue
		}
		for j := range row {
			row[j] /= sum
		}
	}
}
