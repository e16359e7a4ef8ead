// Command knnread recognizes lines of characters in scanned images and
// builds the nearest-neighbor training files it reads them with.
//
// Usage:
//
//	knnread read [--annotate out.png] <image|pdf>...
//	knnread train --text "0123456789" <image>
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	"github.com/alparslanahmed/knnreader"
)

type readCmd struct {
	Inputs   []string `arg:"positional,required" help:"images or PDFs to read"`
	Annotate string   `arg:"--annotate" help:"write the first image with character boxes drawn to this PNG"`
}

type trainCmd struct {
	Image  string `arg:"positional,required" help:"image with the training characters"`
	Text   string `arg:"--text,required" help:"characters in the image, in reading order"`
	Append bool   `arg:"--append" help:"add to existing training files instead of replacing them"`
}

type args struct {
	Read  *readCmd  `arg:"subcommand:read" help:"recognize text"`
	Train *trainCmd `arg:"subcommand:train" help:"add labeled samples"`

	Config          string `arg:"--config" help:"YAML configuration file"`
	Classifications string `arg:"--classifications" default:"classifications.xml" help:"training labels"`
	Images          string `arg:"--images" default:"images.xml" help:"training images"`
	Debug           bool   `arg:"--debug" help:"verbose logging and intermediate images"`
}

func (args) Description() string {
	return "knnread reads lines of characters from scanned images\n"
}

var log = logrus.New()

func main() {
	var a args
	p := arg.MustParse(&a)

	if a.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := knnreader.DefaultConfig()
	if a.Config != "" {
		var err error
		if cfg, err = knnreader.LoadConfig(a.Config); err != nil {
			log.WithError(err).Fatal("could not load config")
		}
	}

	var err error
	switch {
	case a.Read != nil:
		err = runRead(a, cfg)
	case a.Train != nil:
		err = runTrain(a, cfg)
	default:
		p.Fail("missing subcommand: read or train")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "knnread: %v\n", err)
		os.Exit(1)
	}
}

func runRead(a args, cfg knnreader.Config) error {
	classifier, err := knnreader.NewKNNClassifierFromFiles(a.Classifications, a.Images, cfg)
	if err != nil {
		return fmt.Errorf("failed to load training data: %w", err)
	}
	reader, err := knnreader.NewReader(cfg, classifier, knnreader.WithLogger(log))
	if err != nil {
		return err
	}
	reader.SetDebug(a.Debug)

	for i, path := range a.Read.Inputs {
		results, err := reader.ReadDocument(path)
		for _, res := range results {
			printResult(res)
		}
		if errors.Is(err, knnreader.ErrNoBlobs) {
			log.WithField("file", path).Warn("no characters found")
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if i == 0 && a.Read.Annotate != "" {
			if err := annotate(path, results[0], a.Read.Annotate); err != nil {
				return err
			}
		}
	}
	return nil
}

func printResult(res *knnreader.Result) {
	for _, line := range res.Strings() {
		fmt.Println(line)
	}
}

func annotate(src string, res *knnreader.Result, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	if knnreader.IsPDF(data) {
		return fmt.Errorf("%s: annotation needs an image input", src)
	}
	img, err := knnreader.DecodeImageBytes(data)
	if err != nil {
		return err
	}
	return knnreader.SavePNG(knnreader.Annotate(img, res.Boxes(), knnreader.BoxColor, 2), dst)
}

func runTrain(a args, cfg knnreader.Config) error {
	set := &knnreader.TrainingSet{}
	if a.Train.Append {
		existing, err := knnreader.LoadTrainingSet(a.Classifications, a.Images)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load training data: %w", err)
		}
		if existing != nil {
			set = existing
		}
	}

	data, err := os.ReadFile(a.Train.Image)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	img, err := knnreader.DecodeImageBytes(data)
	if err != nil {
		return err
	}

	added, err := set.AddImage(img, a.Train.Text, cfg)
	if err != nil {
		return err
	}
	if err := set.Save(a.Classifications, a.Images); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"added": added,
		"total": set.Len(),
	}).Info("training data written")
	return nil
}
