// Package pcmsource is the thin PCM ingestion/export adapter that sits
// outside brrsuite's core scope: WAV file I/O and multichannel
// downmixing are explicitly out of scope for the codec itself, but the
// cmd/ tools and tests need some way to get 16-bit PCM on and off disk.
// This package is a consumer of github.com/go-audio/riff and
// github.com/go-audio/audio, not a general-purpose WAV library.
package pcmsource

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

type wavFmt struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// LoadMono16 opens a PCM WAV file at path and returns its audio as
// mono 16-bit samples. Multichannel sources are downmixed by averaging
// channels — a deliberately simple placeholder, since general
// multichannel mix-down is out of this package's scope.
func LoadMono16(path string) ([]int16, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("pcmsource: open %s: %w", path, err)
	}
	defer f.Close()

	parser := riff.New(f)
	if err := parser.ParseHeaders(); err != nil {
		return nil, 0, fmt.Errorf("pcmsource: %s: read RIFF header: %w", path, err)
	}

	var (
		format  wavFmt
		sawFmt  bool
		pcmData []byte
	)

	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			if err == io.EOF {
				break
			}

			return nil, 0, fmt.Errorf("pcmsource: %s: read chunk: %w", path, err)
		}

		switch chunk.ID {
		case riff.FmtID:
			if err := chunk.ReadLE(&format); err != nil {
				return nil, 0, fmt.Errorf("pcmsource: %s: read fmt chunk: %w", path, err)
			}

			sawFmt = true

			chunk.Drain()
		case riff.DataFormatID:
			buf := make([]byte, chunk.Size)
			if _, err := io.ReadFull(chunk.R, buf); err != nil {
				return nil, 0, fmt.Errorf("pcmsource: %s: read data chunk: %w", path, err)
			}

			pcmData = buf
		default:
			chunk.Drain()
		}
	}

	if !sawFmt || pcmData == nil {
		return nil, 0, fmt.Errorf("pcmsource: %s: missing fmt or data chunk", path)
	}

	if format.BitsPerSample != 16 {
		return nil, 0, fmt.Errorf("pcmsource: %s: only 16-bit PCM is supported, got %d-bit",
			path, format.BitsPerSample)
	}

	numChannels := int(format.NumChannels)
	if numChannels < 1 {
		numChannels = 1
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: int(format.SampleRate)},
		SourceBitDepth: 16,
		Data:           make([]int, len(pcmData)/2),
	}

	for i := range buf.Data {
		buf.Data[i] = int(int16(binary.LittleEndian.Uint16(pcmData[i*2:])))
	}

	frameCount := len(buf.Data) / numChannels
	out := make([]int16, frameCount)

	for i := 0; i < frameCount; i++ {
		var sum int32

		for ch := 0; ch < numChannels; ch++ {
			sum += int32(buf.Data[i*numChannels+ch])
		}

		out[i] = int16(sum / int32(numChannels))
	}

	return out, buf.Format.SampleRate, nil
}

// SaveMono16 writes samples as a mono 16-bit PCM WAV file at path,
// using the same riff chunk identifiers the reader above consumes.
func SaveMono16(path string, samples []int16, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pcmsource: create %s: %w", path, err)
	}
	defer f.Close()

	const bitsPerSample = 16

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: bitsPerSample,
		Data:           make([]int, len(samples)),
	}

	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	dataSize := len(buf.Data) * 2
	byteRate := buf.Format.SampleRate * bitsPerSample / 8
	blockAlign := bitsPerSample / 8
	riffSize := 4 + (8 + 16) + (8 + dataSize)

	write := func(v any) error {
		return binary.Write(f, binary.LittleEndian, v)
	}

	if err := write(riff.RiffID); err != nil {
		return err
	}

	if err := write(uint32(riffSize)); err != nil {
		return err
	}

	if err := write(riff.WavFormatID); err != nil {
		return err
	}

	if err := write(riff.FmtID); err != nil {
		return err
	}

	if err := write(uint32(16)); err != nil {
		return err
	}

	format := wavFmt{
		AudioFormat:   1,
		NumChannels:   uint16(buf.Format.NumChannels),
		SampleRate:    uint32(buf.Format.SampleRate),
		ByteRate:      uint32(byteRate),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: bitsPerSample,
	}

	if err := write(format); err != nil {
		return err
	}

	if err := write(riff.DataFormatID); err != nil {
		return err
	}

	if err := write(uint32(dataSize)); err != nil {
		return err
	}

	pcmBytes := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		pcmBytes[i] = int16(v)
	}

	if err := write(pcmBytes); err != nil {
		return fmt.Errorf("pcmsource: %s: write samples: %w", path, err)
	}

	return nil
}
