package pcmsource

import (
	"fmt"
	"os"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

// SaveAIFF writes samples as a mono 16-bit AIFF file at path, the way
// cmd/brrtoaiff exports decoded BRR audio for auditioning. Only the
// go-audio/aiff encode path is exercised — brrsuite has no need to read
// AIFF input.
func SaveAIFF(path string, samples []int16, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pcmsource: create %s: %w", path, err)
	}
	defer f.Close()

	const bitDepth = 16

	enc := aiff.NewEncoder(f, sampleRate, bitDepth, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(samples)),
	}

	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("pcmsource: %s: write AIFF data: %w", path, err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("pcmsource: %s: close AIFF encoder: %w", path, err)
	}

	return nil
}
