package main

import (
	"context"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/cognicore/pdftopics/internal/cli"
	"github.com/cognicore/pdftopics/pkg/pdftopics/config"
)

var (
	app   = kingpin.New("pdftopics", "extract the text of every PDF in a folder, fit a topic model and report each document's topics")
	flags = cli.Register(app)
	input = app.Arg("input_folder", "folder searched recursively for .pdf files").Required().ExistingDir()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))
	log := flags.Logger()

	if err := flags.Run(context.Background(), config.Default(), *input, "", log); err != nil {
		log.Fatal(err)
	}
}
