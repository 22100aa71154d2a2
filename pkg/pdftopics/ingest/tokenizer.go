package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Options configures a Tokenizer.
type Options struct {
	Stopwords    []string
	MinLength    int    // in runes; tokens shorter than this are dropped
	Deaccent     bool   // strip diacritics ("café" → "cafe")
	Bigrams      bool   // append adjacent-pair bigrams after the unigrams
	DropNumeric  bool   // drop tokens made only of digits ("2019", "001")
	StemLanguage string // snowball language, empty disables stemming
}

// Tokenizer handles text tokenization and normalization.
// It holds configuration only, so Tokenize is a pure function of its input.
type Tokenizer struct {
	stopwords    map[string]struct{}
	minLength    int
	deaccent     bool
	bigrams      bool
	dropNumeric  bool
	stemLanguage string
}

// NewTokenizer creates a tokenizer from opts.
func NewTokenizer(opts Options) *Tokenizer {
	stops := make(map[string]struct{}, len(opts.Stopwords))
	for _, w := range opts.Stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{
		stopwords:    stops,
		minLength:    opts.MinLength,
		deaccent:     opts.Deaccent,
		bigrams:      opts.Bigrams,
		dropNumeric:  opts.DropNumeric,
		stemLanguage: opts.StemLanguage,
	}
}

// Tokenize returns the unigrams of text in order, followed by the bigrams
// when enabled. Dictionary building and vectorization must share one
// Tokenizer, otherwise token ids stop lining up.
func (t *Tokenizer) Tokenize(text string) []string {
	tokens := t.Unigrams(text)
	if !t.bigrams {
		return tokens
	}
	return AppendBigrams(tokens)
}

// Unigrams splits text on runes that are neither letters nor digits and
// normalizes each piece.
func (t *Tokenizer) Unigrams(text string) []string {
	var tokens []string
	var current strings.Builder
	var deacc transform.Transformer
	if t.deaccent {
		deacc = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := t.processToken(current.String(), deacc); word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range text {
		// Combining marks stay attached so decomposed input deaccents like
		// precomposed input.
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// AppendBigrams returns unigrams followed by "u[i] u[i+1]" for every
// adjacent pair, max(len-1, 0) of them.
func AppendBigrams(unigrams []string) []string {
	if len(unigrams) < 2 {
		return append([]string(nil), unigrams...)
	}
	out := make([]string, 0, 2*len(unigrams)-1)
	out = append(out, unigrams...)
	for i := 0; i+1 < len(unigrams); i++ {
		out = append(out, unigrams[i]+" "+unigrams[i+1])
	}
	return out
}

// processToken applies deaccenting (or NFC composition), length, numeric and
// stopword filtering, then stemming.
// A token that fails normalization is dropped rather than reported.
func (t *Tokenizer) processToken(token string, deacc transform.Transformer) string {
	word := token
	if deacc != nil {
		out, _, err := transform.String(deacc, word)
		if err != nil {
			return ""
		}
		word = out
	} else {
		word = norm.NFC.String(word)
	}
	// A leading mark has no base letter inside the token.
	word = strings.TrimLeftFunc(word, isMark)
	if word == "" || utf8.RuneCountInString(word) < t.minLength {
		return ""
	}

	if t.dropNumeric && isNumericOnly(word) {
		return ""
	}

	if t.isStopword(word) {
		return ""
	}

	if t.stemLanguage != "" {
		if stemmed, err := snowball.Stem(word, t.stemLanguage, false); err == nil && stemmed != "" {
			word = stemmed
		}
	}

	return word
}

func isMark(r rune) bool { return unicode.Is(unicode.Mn, r) }

// isNumericOnly returns true if the token contains only digits.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

func (t *Tokenizer) isStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}
