package main

import (
	"context"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/cognicore/pdftopics/internal/cli"
	"github.com/cognicore/pdftopics/pkg/pdftopics/config"
)

var (
	app      = kingpin.New("pdftopics-ngram", "train a unigram+bigram topic model on one folder of PDFs and report the topics of another")
	flags    = cli.Register(app)
	training = app.Arg("training_folder", "PDFs the model is trained on").Required().ExistingDir()
	input    = app.Arg("input_folder", "PDFs whose topics are reported").Required().ExistingDir()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))
	log := flags.Logger()

	if err := flags.Run(context.Background(), config.NGram(), *training, *input, log); err != nil {
		log.Fatal(err)
	}
}
