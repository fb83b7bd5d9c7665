package brr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestChecksumComplementDualityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		blockCount := rapid.IntRange(1, 8).Draw(t, "blockCount")
		data := rapid.SliceOfN(rapid.Byte(), blockCount*BRRBlockSize, blockCount*BRRBlockSize).Draw(t, "data")

		checksum := Checksum(data)
		complement := checksum ^ 0xFFFF

		assert.Equal(t, uint16(0xFFFF), checksum^complement)
	})
}

func TestSanitizeInstrumentNameAlwaysExactLengthProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "raw")

		got := SanitizeInstrumentName(string(raw))

		assert.Len(t, []rune(got), nameLen)
	})
}

func TestMarshalUnmarshalRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		blockCount := rapid.IntRange(1, 20).Draw(t, "blockCount")

		sample, err := NewSample(blockCount)
		assert.NoError(t, err)

		loopChoice := rapid.IntRange(-1, blockCount-1).Draw(t, "loopBlock")
		if loopChoice >= 0 {
			sample.SetLoopBlock(loopChoice)
		}

		sample.CorrectEndFlags()

		rawName := rapid.SliceOfN(rapid.Byte(), 0, 20).Draw(t, "name")
		suite := NewSuiteSample(sample, string(rawName))

		raw, err := suite.Marshal()
		assert.NoError(t, err)

		got, err := UnmarshalSuiteSample(raw)
		assert.NoError(t, err)

		assert.Equal(t, sample.BlockCount(), got.Sample.BlockCount())
		assert.Equal(t, string(sample.Data()), string(got.Sample.Data()))
	})
}
