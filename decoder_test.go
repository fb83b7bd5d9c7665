package brr

import (
	"math"
	"testing"
)

func TestDecodeRejectsNilOrEmptySample(t *testing.T) {
	if _, err := Decode(nil, DefaultVxPitch, 1); err == nil {
		t.Error("Decode(nil) should fail")
	}

	s := &Sample{data: nil, loopBlock: NoLoop}
	if _, err := Decode(s, DefaultVxPitch, 1); err == nil {
		t.Error("Decode of a zero-block sample should fail")
	}
}

func TestDecodeNonLoopingOutputLength(t *testing.T) {
	s, err := NewSample(3)
	if err != nil {
		t.Fatal(err)
	}

	s.CorrectEndFlags()

	out, err := Decode(s, DefaultVxPitch, 1)
	if err != nil {
		t.Fatal(err)
	}

	want := s.BlockCount() * PCMBlockSize
	if len(out) != want {
		t.Errorf("len(out) = %d, want %d", len(out), want)
	}
}

func TestDecodeSilentSampleProducesSilence(t *testing.T) {
	s, err := NewSample(2)
	if err != nil {
		t.Fatal(err)
	}

	s.CorrectEndFlags()

	out, err := Decode(s, DefaultVxPitch, 1)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %d, want 0 for an all-zero sample", i, v)
		}
	}
}

// An encoded non-looping sample with enough forced leading silence
// decodes to zero for its leading samples. ForceFilter0OnLoopBlock is
// set, but without a loop block it has no effect here.
func TestDecodeLeadingZerosSuppressHistoryBleed(t *testing.T) {
	pcm := make([]int16, 64)
	for i := 16; i < 64; i++ {
		pcm[i] = int16((i % 7) * 1000)
	}

	opts := DefaultEncoderOptions()
	opts.LeadingZeros = 32
	opts.ForceFilter0OnLoopBlock = true

	sample, err := NewEncoder(opts).Encode(pcm, -1)
	if err != nil {
		t.Fatal(err)
	}

	out, err := Decode(sample, DefaultVxPitch, 1)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < PCMBlockSize; i++ {
		if out[i] != 0 {
			t.Errorf("out[%d] = %d, want 0 (within the forced leading-zero run)", i, out[i])
		}
	}
}

// A single impulse residual decodes through the Gaussian interpolator
// with the table's actual weights: the impulse lands in the oldest
// history slot for exactly one output sample, weighted by the
// 0xFF-x tap, then falls out of the 4-sample window.
func TestDecodeImpulseUsesGaussianWeights(t *testing.T) {
	s, err := NewSample(1)
	if err != nil {
		t.Fatal(err)
	}

	blk, _ := s.Block(0)
	blk.SetRange(12)

	if err := blk.SetSample(0, 1); err != nil {
		t.Fatal(err)
	}

	s.CorrectEndFlags()

	out, err := Decode(s, DefaultVxPitch, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Priming leaves the decoded impulse (1 << 12 >> 1 = 0x800) in p4,
	// so out[0] = ((GaussAt(0xFF) * 0x800) >> 10) >> 1, which collapses
	// to GaussAt(0xFF) itself: 0x176.
	if out[0] != 0x176 {
		t.Errorf("out[0] = %d, want %d", out[0], 0x176)
	}

	for i := 1; i < len(out); i++ {
		if out[i] != 0 {
			t.Errorf("out[%d] = %d, want 0 once the impulse left the history window", i, out[i])
		}
	}
}

func TestDecodeLoopingOutputLengthMatchesFormula(t *testing.T) {
	s, err := NewSample(4)
	if err != nil {
		t.Fatal(err)
	}

	s.SetLoopBlock(2)
	s.CorrectEndFlags()

	out, err := Decode(s, DefaultVxPitch, 0.01)
	if err != nil {
		t.Fatal(err)
	}

	blockCount := s.BlockCount()
	loopSizeBlocks := blockCount - s.LoopBlock()

	needed := 0.01*DSPFrequency - float64(blockCount*PCMBlockSize)

	iters := 1
	if needed > 0 {
		iters = int(math.Ceil(needed / float64(loopSizeBlocks*PCMBlockSize)))
		if iters < 1 {
			iters = 1
		}
	}

	want := (blockCount + iters*loopSizeBlocks) * PCMBlockSize

	if len(out) != want {
		t.Errorf("len(out) = %d, want %d", len(out), want)
	}
}

func TestDecodePitchFallsBackWhenNonPositive(t *testing.T) {
	s, err := NewSample(1)
	if err != nil {
		t.Fatal(err)
	}

	// An impulse makes the rendered contents depend on the pitch used.
	blk, _ := s.Block(0)
	blk.SetRange(12)

	if err := blk.SetSample(8, 1); err != nil {
		t.Fatal(err)
	}

	s.CorrectEndFlags()

	out1, err := Decode(s, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	out2, err := Decode(s, DefaultVxPitch, 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(out1) != len(out2) {
		t.Errorf("pitch=0 fallback produced a different length than DefaultVxPitch: %d vs %d", len(out1), len(out2))
	}

	for i := 0; i < len(out1) && i < len(out2); i++ {
		if out1[i] != out2[i] {
			t.Errorf("pitch=0 fallback: out[%d] = %d, DefaultVxPitch gives %d", i, out1[i], out2[i])
			break
		}
	}
}

func TestDecodePitchAboveMaxFallsBackToDefault(t *testing.T) {
	s, err := NewSample(1)
	if err != nil {
		t.Fatal(err)
	}

	// An impulse makes the rendered contents depend on the pitch used.
	blk, _ := s.Block(0)
	blk.SetRange(12)

	if err := blk.SetSample(8, 1); err != nil {
		t.Fatal(err)
	}

	s.CorrectEndFlags()

	outOverRange, err := Decode(s, MaxVxPitch+1000, 1)
	if err != nil {
		t.Fatal(err)
	}

	outDefault, err := Decode(s, DefaultVxPitch, 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(outOverRange) != len(outDefault) {
		t.Errorf("pitch above MaxVxPitch should fall back to DefaultVxPitch, not clamp: len %d vs %d",
			len(outOverRange), len(outDefault))
	}

	for i := 0; i < len(outOverRange) && i < len(outDefault); i++ {
		if outOverRange[i] != outDefault[i] {
			t.Errorf("pitch above MaxVxPitch: out[%d] = %d, DefaultVxPitch gives %d", i, outOverRange[i], outDefault[i])
			break
		}
	}
}

func TestConsumeOneFreezesAtEndWhenNonLooping(t *testing.T) {
	s, err := NewSample(1)
	if err != nil {
		t.Fatal(err)
	}

	s.CorrectEndFlags()

	d := &decoderState{sample: s, blockCount: 1, loopBlock: NoLoop, looping: false}

	for i := 0; i < PCMBlockSize+4; i++ {
		if err := d.consumeOne(); err != nil {
			t.Fatalf("consumeOne: %v", err)
		}
	}

	if d.blockIndex < d.blockCount {
		t.Errorf("blockIndex = %d, expected to have reached or passed blockCount = %d", d.blockIndex, d.blockCount)
	}
}

func TestConsumeOneWrapsToLoopBlockWhenLooping(t *testing.T) {
	s, err := NewSample(2)
	if err != nil {
		t.Fatal(err)
	}

	s.SetLoopBlock(1)
	s.CorrectEndFlags()

	d := &decoderState{sample: s, blockCount: 2, loopBlock: 1, looping: true}

	for i := 0; i < PCMBlockSize*2+1; i++ {
		if err := d.consumeOne(); err != nil {
			t.Fatalf("consumeOne: %v", err)
		}
	}

	if d.blockIndex != 1 {
		t.Errorf("blockIndex = %d, want to have wrapped to loopBlock = 1", d.blockIndex)
	}
}
