// This tool drives a batch of encode jobs from a YAML manifest, one
// Encoder.Encode + SuiteSample.Marshal call per entry, logging failures
// and exiting non-zero if any job failed.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/brrsuite"
	"github.com/cwbudde/brrsuite/pcmsource"
)

var errMissingManifest = errors.New("missing --manifest flag")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errMissingManifest) {
			fmt.Println("You must set the --manifest flag")
			os.Exit(1)
		}

		log.Fatal(err)
	}
}

// manifest is a list of source WAVs, each with its own loop point,
// instrument metadata, and optional per-sample encoder overrides.
type manifest struct {
	Samples []manifestEntry `yaml:"samples"`
}

type manifestEntry struct {
	WAV             string          `yaml:"wav"`
	Out             string          `yaml:"out"`
	InstrumentName  string          `yaml:"instrument_name"`
	LoopSampleIndex int             `yaml:"loop_sample_index"`
	VxPitch         uint16          `yaml:"vx_pitch"`
	Encoder         manifestEncoder `yaml:"encoder"`
}

type manifestEncoder struct {
	Resampler      string  `yaml:"resampler"`
	ResampleFactor float64 `yaml:"resample_factor"`
	Truncate       int     `yaml:"truncate"`
	LeadingZeros   *int    `yaml:"leading_zeros"`
}

func run(args []string) error {
	fs := pflag.NewFlagSet("brrbatch", pflag.ContinueOnError)

	manifestPath := fs.String("manifest", "", "path to the YAML batch manifest")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *manifestPath == "" {
		return errMissingManifest
	}

	raw, err := os.ReadFile(*manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	failures := 0

	for _, entry := range m.Samples {
		if err := processEntry(entry); err != nil {
			log.Error("sample failed", "wav", entry.WAV, "err", err)
			failures++

			continue
		}

		log.Info("sample encoded", "wav", entry.WAV, "out", entry.Out)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d samples failed", failures, len(m.Samples))
	}

	return nil
}

func processEntry(entry manifestEntry) error {
	pcm, _, err := pcmsource.LoadMono16(entry.WAV)
	if err != nil {
		return fmt.Errorf("load %s: %w", entry.WAV, err)
	}

	opts := brr.DefaultEncoderOptions()

	if entry.Encoder.Resampler != "" {
		opts.Resampler = entry.Encoder.Resampler
	}

	if entry.Encoder.ResampleFactor > 0 {
		opts.ResampleFactor = entry.Encoder.ResampleFactor
	}

	if entry.Encoder.Truncate > 0 {
		opts.Truncate = entry.Encoder.Truncate
	}

	if entry.Encoder.LeadingZeros != nil {
		opts.LeadingZeros = *entry.Encoder.LeadingZeros
	}

	sample, err := brr.NewEncoder(opts).Encode(pcm, entry.LoopSampleIndex)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	suite := brr.NewSuiteSample(sample, entry.InstrumentName)
	if entry.VxPitch != 0 {
		suite.VxPitch = entry.VxPitch
	}

	out, err := suite.Marshal()
	if err != nil {
		return fmt.Errorf("marshal suite sample: %w", err)
	}

	if err := os.WriteFile(entry.Out, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", entry.Out, err)
	}

	return nil
}
