// This tool reads a .brr, .brrb (loop-headered), or .brs file and
// reports its header fields, loop behavior, and validation issues.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/cwbudde/brrsuite"
)

var (
	errMissingPath  = errors.New("missing --path flag")
	errUnresolvable = errors.New("sample has unresolvable structural issues")
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errMissingPath) {
			fmt.Println("You must set the --path flag")
			os.Exit(1)
		}

		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("brrinfo", pflag.ContinueOnError)

	path := fs.String("path", "", "path to the .brr/.brrb/.brs file to inspect")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return errMissingPath
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var issues brr.DataIssue

	switch strings.ToLower(filepath.Ext(*path)) {
	case ".brs":
		suite, err := brr.UnmarshalSuiteSample(data)
		if err != nil {
			fmt.Fprintf(out, "Issues: %s\n", brr.ValidateSuiteStream(data))
			return fmt.Errorf("failed to parse suite sample: %w", err)
		}

		issues = suite.Validate() | brr.ValidateSuiteStream(data)

		fmt.Fprintf(out, "Instrument: %q\n", suite.InstrumentName)
		fmt.Fprintf(out, "VxPitch: 0x%04X\n", suite.VxPitch)
		fmt.Fprintf(out, "EncodingFrequency: %d Hz\n", suite.EncodingFrequency)
		fmt.Fprintf(out, "LoopBehavior: %s\n", suite.LoopBehavior)
		fmt.Fprintf(out, "LoopBlock: %d\n", suite.LoopBlock)
		fmt.Fprintf(out, "BlockCount: %d\n", suite.Sample.BlockCount())
	case ".brrb":
		if len(data) < 2 {
			return fmt.Errorf("file too short to hold a loop-headered sample")
		}

		sample, err := brr.NewSampleFromBytes(data[2:])
		if err != nil {
			return fmt.Errorf("failed to parse sample: %w", err)
		}

		issues = sample.Validate()

		loopOffset := int(data[0]) | int(data[1])<<8

		fmt.Fprintf(out, "LoopOffsetBytes: %d\n", loopOffset)
		fmt.Fprintf(out, "LoopBlock: %d\n", sample.LoopBlock())
		fmt.Fprintf(out, "BlockCount: %d\n", sample.BlockCount())
	default:
		sample, err := brr.NewSampleFromBytes(data)
		if err != nil {
			return fmt.Errorf("failed to parse sample: %w", err)
		}

		issues = sample.Validate()

		fmt.Fprintf(out, "BlockCount: %d\n", sample.BlockCount())
	}

	fmt.Fprintf(out, "Issues: %s\n", issues)

	if issues.Unresolvable() {
		log.Warn("sample failed validation", "path", *path, "issues", issues.String())
		return errUnresolvable
	}

	return nil
}
