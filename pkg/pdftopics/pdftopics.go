// Package pdftopics wires extraction, corpus building, topic modelling and
// reporting into a single run.
package pdftopics

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/cognicore/pdftopics/pkg/pdftopics/config"
	"github.com/cognicore/pdftopics/pkg/pdftopics/corpus"
	"github.com/cognicore/pdftopics/pkg/pdftopics/extract"
	"github.com/cognicore/pdftopics/pkg/pdftopics/ingest"
	"github.com/cognicore/pdftopics/pkg/pdftopics/report"
	"github.com/cognicore/pdftopics/pkg/pdftopics/topic"
	"github.com/cognicore/pdftopics/pkg/pdftopics/walk"
)

// Options configures a run.
type Options struct {
	Config config.Config

	// TrainingRoot is walked to build the corpus and train the model.
	TrainingRoot string

	// InputRoot is walked again for the report. Empty, or the same folder as
	// TrainingRoot, reports the training documents without a second walk.
	InputRoot string

	Log logrus.FieldLogger
}

// Result summarizes a finished run.
type Result struct {
	RunID          string
	ReportPath     string
	Extracted      int
	Skipped        int
	Reported       int
	VocabularySize int
	Pruned         int
}

// Run recreates the output directory, extracts and models the training
// folder, then appends one block per reported document to the report file.
func Run(ctx context.Context, opts Options) (Result, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:      newRunID(),
		ReportPath: filepath.Join(cfg.OutputDir, cfg.ReportFile),
	}
	log := logger(opts.Log).WithField("run_id", res.RunID)

	if err := ResetDir(cfg.OutputDir); err != nil {
		return res, fmt.Errorf("reset output dir: %w", err)
	}

	backend, err := extract.NewBackend(cfg.Extract.Method)
	if err != nil {
		return res, err
	}
	extractor := extract.New(backend)
	extractor.Reserve(reservedNames(cfg)...)
	walker := &walk.Walker{
		Extractor:   extractor,
		OutputDir:   cfg.OutputDir,
		SkipCorrupt: cfg.Extract.SkipCorrupt,
		OnSkip:      func(string, error) { res.Skipped++ },
		Log:         log,
	}

	log.WithFields(logrus.Fields{"stage": "extract", "path": opts.TrainingRoot}).Info("walking training folder")
	docs, err := walk.Collect(walker.Walk(ctx, opts.TrainingRoot))
	res.Extracted = len(docs)
	if err != nil {
		return res, err
	}

	stopwords, err := cfg.Stopwords()
	if err != nil {
		return res, err
	}
	tokenizer := ingest.NewTokenizer(ingest.Options{
		Stopwords:    stopwords,
		MinLength:    cfg.Tokenizer.MinLength,
		Deaccent:     cfg.Tokenizer.Deaccent,
		Bigrams:      cfg.Tokenizer.Bigrams,
		DropNumeric:  cfg.Tokenizer.DropNumeric,
		StemLanguage: cfg.Tokenizer.StemLanguage,
	})

	c, err := corpus.Build(cfg.OutputDir, tokenizer, corpus.Options{
		NoAbove: cfg.Corpus.NoAbove,
		Exclude: reservedNames(cfg),
	})
	if err != nil {
		return res, err
	}
	res.VocabularySize = c.Dictionary().Len()
	res.Pruned = len(c.Pruned())
	log.WithFields(logrus.Fields{
		"stage":      "corpus",
		"documents":  c.Len(),
		"vocabulary": res.VocabularySize,
		"pruned":     res.Pruned,
	}).Info("corpus built")

	if path := cfg.Corpus.DictionaryFile; path != "" {
		if err := c.Dictionary().Save(path); err != nil {
			return res, fmt.Errorf("save dictionary %s: %w", path, err)
		}
	}

	model, err := topic.Train(ctx, c, topic.Options{
		NumTopics:            cfg.Model.NumTopics,
		Iterations:           cfg.Model.Iterations,
		TransformationPasses: cfg.Model.TransformationPasses,
		Alpha:                cfg.Model.Alpha,
		Eta:                  cfg.Model.Eta,
		Processes:            cfg.Model.Processes,
	})
	if err != nil {
		return res, fmt.Errorf("train: %w", err)
	}
	log.WithFields(logrus.Fields{"stage": "train", "topics": model.NumTopics()}).Info("model trained")

	f, err := report.Open(res.ReportPath)
	if err != nil {
		return res, fmt.Errorf("open report: %w", err)
	}
	reporter := &report.Reporter{
		Model:     model,
		Corpus:    c,
		TopTerms:  cfg.Report.TopTerms,
		MinWeight: cfg.Report.MinWeight,
	}

	err = reportDocuments(ctx, reporter, f, walker, docs, opts, &res)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close report: %w", cerr)
	}
	if err != nil {
		return res, err
	}

	log.WithFields(logrus.Fields{
		"stage":     "report",
		"path":      res.ReportPath,
		"extracted": res.Extracted,
		"skipped":   res.Skipped,
		"reported":  res.Reported,
	}).Info("run finished")
	return res, nil
}

func reportDocuments(ctx context.Context, r *report.Reporter, f *os.File, w *walk.Walker, docs []extract.Document, opts Options, res *Result) error {
	if opts.InputRoot == "" || sameDir(opts.InputRoot, opts.TrainingRoot) {
		for _, doc := range docs {
			if err := r.Report(f, doc); err != nil {
				return err
			}
			res.Reported++
		}
		return nil
	}

	for doc, err := range w.Walk(ctx, opts.InputRoot) {
		if err != nil {
			return err
		}
		res.Extracted++
		if err := r.Report(f, doc); err != nil {
			return err
		}
		res.Reported++
	}
	return nil
}

// reservedNames lists the files of the output directory that are not sidecars.
func reservedNames(cfg config.Config) []string {
	names := []string{cfg.ReportFile}
	if path := cfg.Corpus.DictionaryFile; path != "" && sameDir(filepath.Dir(path), cfg.OutputDir) {
		names = append(names, filepath.Base(path))
	}
	return names
}

// ResetDir removes path and everything below it, then recreates it empty.
// A missing path is not an error.
func ResetDir(path string) error {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.MkdirAll(path, 0o755)
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func newRunID() string {
	return ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String()
}

func logger(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}
