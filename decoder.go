package brr

import "math"

// Seed history values the real DSP is assumed to hold before the first
// sample is primed, taken from the documented constants; 0xBEBE is
// stored as its signed 16-bit value (-0x4142). They are an emulation hint, not a guarantee: the real power-up state
// is undefined.
const (
	seedP1 = 0xBEBE - 0x10000
	seedP2 = 5656
	seedP3 = 0x4040
	seedP4 = -0x7171
)

// pitchFull is the pitch-accumulator threshold at which one source
// sample is consumed, matching the DSP's fixed-point pitch counter.
const pitchFull = 0x1000

// Decode renders sample through the pitch-accumulator playback path: a
// fixed-point pitch counter steps through decode positions, consuming
// one BRR-decoded sample from the source each time the accumulator
// crosses pitchFull, and a 4-tap Gaussian filter interpolates between
// the four most recently decoded history samples at every output step.
//
// pitch must fall in [1, MaxVxPitch]; any value outside that range falls
// back to DefaultVxPitch rather than being clamped. minSeconds
// lower-bounds the rendered duration for looping samples (it is itself
// capped at maxDecodeSeconds); for a non-looping sample the output is
// always exactly block_count*16 samples and minSeconds is ignored.
func Decode(sample *Sample, pitch int, minSeconds float64) ([]int16, error) {
	if sample == nil || sample.BlockCount() == 0 {
		return nil, newError(InvalidArgument, "Decode", ErrZeroBlocks)
	}

	if pitch <= 0 || pitch > MaxVxPitch {
		pitch = DefaultVxPitch
	}

	blockCount := sample.BlockCount()
	loopBlock := sample.LoopBlock()
	looping := loopBlock != NoLoop

	outputLen := blockCount * PCMBlockSize

	if looping {
		if minSeconds > maxDecodeSeconds {
			minSeconds = maxDecodeSeconds
		}

		loopSizeBlocks := blockCount - loopBlock
		if loopSizeBlocks <= 0 {
			loopSizeBlocks = 1
		}

		needed := minSeconds*DSPFrequency - float64(outputLen)

		iters := 1
		if needed > 0 {
			iters = int(math.Ceil(needed / float64(loopSizeBlocks*PCMBlockSize)))
			if iters < 1 {
				iters = 1
			}
		}

		if iters > maxLoopIterations {
			iters = maxLoopIterations
		}

		outputLen = (blockCount + iters*loopSizeBlocks) * PCMBlockSize
	}

	d := &decoderState{
		sample:     sample,
		loopBlock:  loopBlock,
		looping:    looping,
		blockCount: blockCount,
		p1:         seedP1,
		p2:         seedP2,
		p3:         seedP3,
		p4:         seedP4,
	}

	for i := 0; i < 4; i++ {
		if err := d.consumeOne(); err != nil {
			return nil, err
		}
	}

	out := make([]int16, outputLen)

	accum := 0

	for i := 0; i < outputLen; i++ {
		x := (accum >> 4) & 0xFF

		g := gaussAt(0xFF-x)*d.p4 + gaussAt(0x1FF-x)*d.p3 + gaussAt(0x100+x)*d.p2 + gaussAt(x)*d.p1
		g >>= 10
		g >>= 1

		out[i] = int16(Clip(g))

		accum += pitch
		for accum >= pitchFull {
			if err := d.consumeOne(); err != nil {
				return nil, err
			}

			accum -= pitchFull
		}
	}

	return out, nil
}

func gaussAt(i int) int {
	return int(GaussAt(i))
}

// decoderState tracks BRR decode position and the 4-sample history fed
// to the Gaussian interpolator.
type decoderState struct {
	sample *Sample

	blockCount int
	loopBlock  int
	looping    bool

	blockIndex    int
	sampleInBlock int

	p1, p2, p3, p4 int
}

// consumeOne decodes the next residual at the current position, shifts
// it into the history, and advances the decode position. Once past the
// final block, a looping sample wraps to loopBlock*PCMBlockSize; a
// non-looping sample freezes in place (the DSP has already asserted
// key-off and the voice output is silent/held).
func (d *decoderState) consumeOne() error {
	if d.blockIndex >= d.blockCount {
		if !d.looping {
			return nil
		}

		d.blockIndex = d.loopBlock
		d.sampleInBlock = 0
	}

	blk, err := d.sample.Block(d.blockIndex)
	if err != nil {
		return err
	}

	residual, err := blk.Sample(d.sampleInBlock)
	if err != nil {
		return err
	}

	shifted := ApplyRange(residual, blk.Range())
	linear, _ := predict(blk.Filter(), d.p1, d.p2)

	decoded := Clamp(Clip(shifted + linear))

	d.p4, d.p3, d.p2, d.p1 = d.p3, d.p2, d.p1, decoded

	d.sampleInBlock++
	if d.sampleInBlock == PCMBlockSize {
		d.sampleInBlock = 0
		d.blockIndex++
	}

	return nil
}
