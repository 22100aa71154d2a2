package config

import (
	"fmt"

	"github.com/kljensen/snowball"

	"github.com/cognicore/pdftopics/pkg/pdftopics/extract"
	"github.com/cognicore/pdftopics/pkg/pdftopics/internalerr"
)

// BuiltinStoplist selects the embedded English stopword list.
const BuiltinStoplist = "builtin"

// Config is the root configuration of a run.
type Config struct {
	OutputDir  string          `yaml:"output_dir"`
	ReportFile string          `yaml:"report_file"`
	Extract    ExtractConfig   `yaml:"extract"`
	Tokenizer  TokenizerConfig `yaml:"tokenizer"`
	Corpus     CorpusConfig    `yaml:"corpus"`
	Model      ModelConfig     `yaml:"model"`
	Report     ReportConfig    `yaml:"report"`
}

// ExtractConfig selects the PDF backend and the failure policy.
type ExtractConfig struct {
	Method string `yaml:"method"`
	// SkipCorrupt treats every extraction failure like a decode failure.
	// When false only undecodable text is skipped.
	SkipCorrupt bool `yaml:"skip_corrupt"`
}

// TokenizerConfig configures ingest.Tokenizer.
type TokenizerConfig struct {
	Deaccent     bool   `yaml:"deaccent"`
	MinLength    int    `yaml:"min_length"`
	Bigrams      bool   `yaml:"bigrams"`
	DropNumeric  bool   `yaml:"drop_numeric"`
	Stoplist     string `yaml:"stoplist"` // "", "builtin" or a YAML file path
	StemLanguage string `yaml:"stem_language"`
}

// CorpusConfig configures the dictionary passes.
type CorpusConfig struct {
	// NoAbove prunes tokens present in more than this fraction of documents.
	// Zero disables the second pass.
	NoAbove        float64 `yaml:"no_above"`
	DictionaryFile string  `yaml:"dictionary_file"`
}

// ModelConfig configures the LDA trainer. Zero values keep the library defaults.
type ModelConfig struct {
	NumTopics            int     `yaml:"num_topics"`
	Iterations           int     `yaml:"iterations"`
	TransformationPasses int     `yaml:"transformation_passes"`
	Alpha                float64 `yaml:"alpha"`
	Eta                  float64 `yaml:"eta"`
	Processes            int     `yaml:"processes"`
}

// ReportConfig configures the topics report.
type ReportConfig struct {
	TopTerms  int     `yaml:"top_terms"`
	MinWeight float64 `yaml:"min_weight"`
}

// Default returns the single-folder profile: library-style tokenization
// (alphabetic tokens of three or more letters, no pure numbers), no
// vocabulary pruning, 10 topics.
func Default() Config {
	return Config{
		OutputDir:  "output",
		ReportFile: "topics.txt",
		Extract:    ExtractConfig{Method: extract.MethodPlain},
		Tokenizer: TokenizerConfig{
			Deaccent:    true,
			MinLength:   3,
			DropNumeric: true,
			Stoplist:    BuiltinStoplist,
		},
		Model:  ModelConfig{NumTopics: 10, Processes: 1},
		Report: ReportConfig{TopTerms: 20},
	}
}

// NGram returns the training/input profile: unigrams plus bigrams, tokens
// present in more than 90% of documents pruned, 50 topics.
func NGram() Config {
	return Config{
		OutputDir:  "output",
		ReportFile: "topics.txt",
		Extract:    ExtractConfig{Method: extract.MethodPages},
		Tokenizer: TokenizerConfig{
			Deaccent:  true,
			MinLength: 1,
			Bigrams:   true,
		},
		Corpus: CorpusConfig{NoAbove: 0.9},
		Model:  ModelConfig{NumTopics: 50, Processes: 1},
		Report: ReportConfig{TopTerms: 20},
	}
}

// Validate checks value ranges and names. Errors wrap internalerr.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", internalerr.ErrInvalidConfig)
	}
	if c.ReportFile == "" {
		return fmt.Errorf("%w: report_file is required", internalerr.ErrInvalidConfig)
	}
	if !extract.KnownMethod(c.Extract.Method) {
		return fmt.Errorf("%w: unknown extract method %q", internalerr.ErrInvalidConfig, c.Extract.Method)
	}
	if c.Tokenizer.MinLength < 1 {
		return fmt.Errorf("%w: tokenizer.min_length must be >= 1, got %d", internalerr.ErrInvalidConfig, c.Tokenizer.MinLength)
	}
	if lang := c.Tokenizer.StemLanguage; lang != "" {
		if _, err := snowball.Stem("testing", lang, false); err != nil {
			return fmt.Errorf("%w: stem_language %q: %v", internalerr.ErrInvalidConfig, lang, err)
		}
	}
	if c.Corpus.NoAbove < 0 || c.Corpus.NoAbove > 1 {
		return fmt.Errorf("%w: corpus.no_above must be in [0,1], got %g", internalerr.ErrInvalidConfig, c.Corpus.NoAbove)
	}
	if c.Model.NumTopics < 1 {
		return fmt.Errorf("%w: model.num_topics must be >= 1, got %d", internalerr.ErrInvalidConfig, c.Model.NumTopics)
	}
	if c.Model.Iterations < 0 || c.Model.TransformationPasses < 0 || c.Model.Processes < 0 {
		return fmt.Errorf("%w: model iterations, passes and processes must not be negative", internalerr.ErrInvalidConfig)
	}
	if c.Report.TopTerms < 1 {
		return fmt.Errorf("%w: report.top_terms must be >= 1, got %d", internalerr.ErrInvalidConfig, c.Report.TopTerms)
	}
	if c.Report.MinWeight < 0 {
		return fmt.Errorf("%w: report.min_weight must not be negative", internalerr.ErrInvalidConfig)
	}
	return nil
}
