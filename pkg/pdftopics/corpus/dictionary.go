package corpus

import (
	"bufio"
	"fmt"
	"os"
	"sort"
)

// TermCount is one entry of a bag-of-words vector.
type TermCount struct {
	ID    int
	Count int
}

// BagOfWords is a sparse token-id → count vector, sorted by ID.
type BagOfWords []TermCount

// Total returns the number of token occurrences in the vector.
func (b BagOfWords) Total() int {
	n := 0
	for _, tc := range b {
		n += tc.Count
	}
	return n
}

// Dictionary maps tokens to stable integer ids and tracks document frequency.
// Ids never change once assigned; a rebuilt dictionary is a new value.
type Dictionary struct {
	token2id map[string]int
	id2token []string
	dfs      []int
	numDocs  int
	banned   map[string]struct{}
}

// NewDictionary creates an empty dictionary. Banned tokens are never added.
func NewDictionary(banned ...string) *Dictionary {
	d := &Dictionary{
		token2id: make(map[string]int),
		banned:   make(map[string]struct{}, len(banned)),
	}
	for _, tok := range banned {
		d.banned[tok] = struct{}{}
	}
	return d
}

// AddDocument counts one document. New tokens get ids in sorted order so a
// given sequence of documents always yields the same ids.
func (d *Dictionary) AddDocument(tokens []string) {
	d.numDocs++

	seen := make(map[string]struct{}, len(tokens))
	var fresh []string
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, ok := d.banned[tok]; ok {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := d.token2id[tok]; !ok {
			fresh = append(fresh, tok)
		}
	}

	sort.Strings(fresh)
	for _, tok := range fresh {
		d.token2id[tok] = len(d.id2token)
		d.id2token = append(d.id2token, tok)
		d.dfs = append(d.dfs, 0)
	}
	for tok := range seen {
		d.dfs[d.token2id[tok]]++
	}
}

// Doc2Bow converts tokens to a bag-of-words vector. Unknown tokens are dropped.
func (d *Dictionary) Doc2Bow(tokens []string) BagOfWords {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if id, ok := d.token2id[tok]; ok {
			counts[id]++
		}
	}
	bow := make(BagOfWords, 0, len(counts))
	for id, c := range counts {
		bow = append(bow, TermCount{ID: id, Count: c})
	}
	sort.Slice(bow, func(i, j int) bool { return bow[i].ID < bow[j].ID })
	return bow
}

// ID returns the id of token.
func (d *Dictionary) ID(token string) (int, bool) {
	id, ok := d.token2id[token]
	return id, ok
}

// Token returns the token for id, or "" when id is out of range.
func (d *Dictionary) Token(id int) string {
	if id < 0 || id >= len(d.id2token) {
		return ""
	}
	return d.id2token[id]
}

// Len returns the vocabulary size.
func (d *Dictionary) Len() int { return len(d.id2token) }

// NumDocs returns the number of documents added.
func (d *Dictionary) NumDocs() int { return d.numDocs }

// DocFreq returns how many added documents contain token.
func (d *Dictionary) DocFreq(token string) int {
	if id, ok := d.token2id[token]; ok {
		return d.dfs[id]
	}
	return 0
}

// Tokens returns the vocabulary ordered by id.
func (d *Dictionary) Tokens() []string {
	return append([]string(nil), d.id2token...)
}

// AboveFraction lists tokens whose document frequency exceeds
// fraction*NumDocs, sorted.
func (d *Dictionary) AboveFraction(fraction float64) []string {
	limit := fraction * float64(d.numDocs)
	var out []string
	for id, df := range d.dfs {
		if float64(df) > limit {
			out = append(out, d.id2token[id])
		}
	}
	sort.Strings(out)
	return out
}

// Save writes "id<TAB>token<TAB>df" lines ordered by id.
func (d *Dictionary) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for id, tok := range d.id2token {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%d\n", id, tok, d.dfs[id]); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
