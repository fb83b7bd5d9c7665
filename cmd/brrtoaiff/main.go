// This tool decodes a .brr/.brs file and exports the result as an AIFF
// file for auditioning in an ordinary audio player.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/cwbudde/brrsuite"
	"github.com/cwbudde/brrsuite/pcmsource"
)

var errMissingPath = errors.New("missing --path flag")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errMissingPath) {
			fmt.Println("You must set the --path flag")
			os.Exit(1)
		}

		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("brrtoaiff", pflag.ContinueOnError)

	path := fs.String("path", "", "path to the .brr/.brs file to convert")
	pitch := fs.Int("pitch", brr.DefaultVxPitch, "VxPITCH playback value")
	minSeconds := fs.Float64("min-seconds", 1.0, "minimum decoded duration for looping samples")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return errMissingPath
	}

	sample, sampleRate, err := loadSample(*path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", *path, err)
	}

	pcm, err := brr.Decode(sample, *pitch, *minSeconds)
	if err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}

	outPath := strings.TrimSuffix(*path, filepath.Ext(*path)) + ".aif"

	if err := pcmsource.SaveAIFF(outPath, pcm, sampleRate); err != nil {
		return fmt.Errorf("failed to write AIFF: %w", err)
	}

	log.Info("converted BRR sample to AIFF", "in", *path, "out", outPath, "samples", len(pcm))

	return nil
}

func loadSample(path string) (*brr.Sample, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	if strings.ToLower(filepath.Ext(path)) == ".brs" {
		suite, err := brr.UnmarshalSuiteSample(data)
		if err != nil {
			return nil, 0, err
		}

		return suite.Sample, int(suite.EncodingFrequency), nil
	}

	sample, err := brr.NewSampleFromBytes(data)
	if err != nil {
		return nil, 0, err
	}

	return sample, brr.DSPFrequency, nil
}
