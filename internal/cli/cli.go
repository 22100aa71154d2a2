// Package cli holds the flag handling shared by the pdftopics commands.
package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/cognicore/pdftopics/pkg/pdftopics"
	"github.com/cognicore/pdftopics/pkg/pdftopics/config"
)

// Flags are the options every command accepts.
type Flags struct {
	ConfigPath *string
	OutputDir  *string
	Verbose    *bool
}

// Register adds the common flags to app.
func Register(app *kingpin.Application) *Flags {
	return &Flags{
		ConfigPath: app.Flag("config", "YAML file overriding the built-in profile").Short('c').String(),
		OutputDir:  app.Flag("output", "directory for sidecar files and the topics report, recreated on every run (default: output)").Short('o').String(),
		Verbose:    app.Flag("verbose", "log every extracted file").Short('v').Bool(),
	}
}

// Logger configures a text logger with full timestamps.
func (f *Flags) Logger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if f.Verbose != nil && *f.Verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Config loads the config file over profile. --output wins over both.
func (f *Flags) Config(profile config.Config) (*config.Config, error) {
	path := ""
	if f.ConfigPath != nil {
		path = *f.ConfigPath
	}
	cfg, err := config.Load(path, profile)
	if err != nil {
		return nil, err
	}
	if f.OutputDir != nil && *f.OutputDir != "" {
		cfg.OutputDir = *f.OutputDir
	}
	return cfg, nil
}

// Run loads the configuration and runs the pipeline, logging the outcome.
func (f *Flags) Run(ctx context.Context, profile config.Config, trainingRoot, inputRoot string, log *logrus.Logger) error {
	cfg, err := f.Config(profile)
	if err != nil {
		return err
	}

	res, err := pdftopics.Run(ctx, pdftopics.Options{
		Config:       *cfg,
		TrainingRoot: trainingRoot,
		InputRoot:    inputRoot,
		Log:          log,
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"run_id":     res.RunID,
		"extracted":  res.Extracted,
		"skipped":    res.Skipped,
		"reported":   res.Reported,
		"vocabulary": res.VocabularySize,
		"pruned":     res.Pruned,
	}).Infof("topics written to %s", res.ReportPath)
	return nil
}
