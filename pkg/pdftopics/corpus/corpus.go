// Package corpus turns a directory of sidecar text files into a token
// dictionary and bag-of-words vectors.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/pdftopics/pkg/pdftopics/internalerr"
)

// Tokenizer splits text into tokens. ingest.Tokenizer satisfies it.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Options controls corpus building.
type Options struct {
	// NoAbove prunes tokens present in more than this fraction of documents.
	// Zero disables pruning.
	NoAbove float64

	// Exclude lists base names inside the directory that are not documents.
	Exclude []string
}

// Corpus is the dictionary built over the ".txt" files of one directory
// together with the tokenizer that produced it.
type Corpus struct {
	dir       string
	tokenizer Tokenizer
	files     []string
	dict      *Dictionary
	pruned    []string
}

// Build reads every ".txt" file directly inside dir, in name order, and
// builds the dictionary. With NoAbove set, over-frequent tokens are banned
// and the dictionary is rebuilt from scratch without them.
func Build(dir string, tokenizer Tokenizer, opts Options) (*Corpus, error) {
	if opts.NoAbove < 0 || opts.NoAbove > 1 {
		return nil, fmt.Errorf("corpus: no_above %v outside [0, 1]: %w", opts.NoAbove, internalerr.ErrInvalidConfig)
	}

	files, err := listTextFiles(dir, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("corpus: list %s: %w", dir, err)
	}

	c := &Corpus{dir: dir, tokenizer: tokenizer, files: files}

	dict, err := c.buildDictionary(nil)
	if err != nil {
		return nil, err
	}
	if opts.NoAbove > 0 {
		if banned := dict.AboveFraction(opts.NoAbove); len(banned) > 0 {
			c.pruned = banned
			dict, err = c.buildDictionary(banned)
			if err != nil {
				return nil, err
			}
		}
	}
	c.dict = dict
	return c, nil
}

func (c *Corpus) buildDictionary(banned []string) (*Dictionary, error) {
	dict := NewDictionary(banned...)
	for _, path := range c.files {
		text, err := readText(path)
		if err != nil {
			return nil, fmt.Errorf("corpus: read %s: %w", path, err)
		}
		dict.AddDocument(c.tokenizer.Tokenize(text))
	}
	return dict, nil
}

// Dictionary returns the final (possibly pruned) dictionary.
func (c *Corpus) Dictionary() *Dictionary { return c.dict }

// Files returns the building documents in order.
func (c *Corpus) Files() []string { return append([]string(nil), c.files...) }

// Len returns the number of building documents.
func (c *Corpus) Len() int { return len(c.files) }

// Pruned returns the tokens banned by NoAbove, sorted.
func (c *Corpus) Pruned() []string { return append([]string(nil), c.pruned...) }

// VectorizeText maps text through the dictionary. Tokens the dictionary
// does not know, pruned ones included, are dropped.
func (c *Corpus) VectorizeText(text string) BagOfWords {
	return c.dict.Doc2Bow(c.tokenizer.Tokenize(text))
}

// VectorizeFile reads path and vectorizes its contents. The file need not
// be one of the building documents.
func (c *Corpus) VectorizeFile(path string) (BagOfWords, error) {
	text, err := readText(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	return c.VectorizeText(text), nil
}

// Vectors returns one vector per building document, in Files order.
func (c *Corpus) Vectors() ([]BagOfWords, error) {
	out := make([]BagOfWords, 0, len(c.files))
	for _, path := range c.files {
		bow, err := c.VectorizeFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, bow)
	}
	return out, nil
}

// Matrix returns the term × document count matrix of the building documents.
func (c *Corpus) Matrix() (mat.Matrix, error) {
	if len(c.files) == 0 || c.dict.Len() == 0 {
		return nil, internalerr.ErrEmptyCorpus
	}
	vectors, err := c.Vectors()
	if err != nil {
		return nil, err
	}
	return TermDocMatrix(c.dict.Len(), vectors...), nil
}

// TermDocMatrix lays vectors out as columns of a vocabSize × len(vectors)
// sparse matrix. Both dimensions must be positive.
func TermDocMatrix(vocabSize int, vectors ...BagOfWords) mat.Matrix {
	dok := sparse.NewDOK(vocabSize, len(vectors))
	for j, bow := range vectors {
		for _, tc := range bow {
			dok.Set(tc.ID, j, float64(tc.Count))
		}
	}
	return dok.ToCSC()
}

func listTextFiles(dir string, exclude []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		if _, ok := skip[e.Name()]; ok {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// readText drops undecodable bytes silently.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
