package brr

import "math"

// EncoderOptions configures an Encoder. It is a plain struct of fields,
// passed by value.
type EncoderOptions struct {
	// Registry supplies named resample kernels. A nil Registry falls back
	// to NewResamplerRegistry().
	Registry *ResamplerRegistry
	// Resampler names the kernel (from Registry) used to retarget the
	// input sample count. Defaults to "linear" if empty or unregistered.
	Resampler string
	// Filters are optional external pre-filters applied in place to the
	// resampled PCM before normalization and encoding.
	Filters []func([]float64)
	// ResampleFactor is input_rate/target_rate. Must be > 0; 0 means 1.
	ResampleFactor float64
	// Truncate caps the input sample count used. <= 0 disables.
	Truncate int
	// LeadingZeros forces a minimum leading-zero run at output start,
	// capped at MaxLeadingZeros. < 0 disables (alignment-only padding).
	LeadingZeros int
	// EnableFilterN controls which filters the brute-force search may
	// choose for blocks >= 1 (block 0 always uses filter 0).
	EnableFilter0 bool
	EnableFilter1 bool
	EnableFilter2 bool
	EnableFilter3 bool
	// ForceFilter0OnLoopBlock pins filter 0 at the loop block.
	ForceFilter0OnLoopBlock bool
}

// DefaultEncoderOptions returns the conservative baseline: linear
// resampling, no truncation, alignment-only zero padding, and all four
// filters enabled.
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{
		Resampler:      "linear",
		ResampleFactor: 1,
		Truncate:       0,
		LeadingZeros:   -1,
		EnableFilter0:  true,
		EnableFilter1:  true,
		EnableFilter2:  true,
		EnableFilter3:  true,
	}
}

// Encoder runs the brute-force BRR encoding pipeline: truncate,
// resample, pre-filter, normalize, then a per-block exhaustive
// (range, filter) search.
type Encoder struct {
	Options  EncoderOptions
	registry *ResamplerRegistry
}

// NewEncoder returns an Encoder configured by opts.
func NewEncoder(opts EncoderOptions) *Encoder {
	registry := opts.Registry
	if registry == nil {
		registry = NewResamplerRegistry()
	}

	return &Encoder{Options: opts, registry: registry}
}

// Encode runs the full pipeline over pcm and returns the resulting
// Sample. loopSampleIndex is a PCM sample index in [0, len(pcm)) to loop
// from, or a negative value for a non-looping sample.
func (e *Encoder) Encode(pcm []int16, loopSampleIndex int) (*Sample, error) {
	if len(pcm) == 0 {
		return nil, newError(InvalidArgument, "Encoder.Encode", ErrZeroLength)
	}

	looping := loopSampleIndex >= 0
	if looping && loopSampleIndex >= len(pcm) {
		return nil, newError(InvalidArgument, "Encoder.Encode", ErrSampleIndexOutOfRange)
	}

	inputLen := len(pcm)
	if e.Options.Truncate > 0 && e.Options.Truncate < inputLen {
		inputLen = e.Options.Truncate
	}

	factor := e.Options.ResampleFactor
	if factor <= 0 {
		factor = 1
	}

	var (
		targetLen       int
		loopSizeSamples int
	)

	if !looping {
		targetLen = roundInt(float64(inputLen) / factor)
	} else {
		oldLoopSize := float64(inputLen-loopSampleIndex) / factor
		loopSizeSamples = ceilToMultiple(int(math.Ceil(oldLoopSize)), PCMBlockSize)
		targetLen = roundInt(float64(inputLen) / factor * float64(loopSizeSamples) / oldLoopSize)
	}

	if targetLen <= 0 {
		targetLen = PCMBlockSize
	}

	floatPCM := make([]float64, inputLen)
	for i, s := range pcm[:inputLen] {
		floatPCM[i] = float64(s)
	}

	resampler, ok := e.registry.Lookup(e.Options.Resampler)
	if !ok {
		resampler, ok = e.registry.Lookup("linear")
		if !ok {
			resampler = ResampleLinear
		}
	}

	resampled, err := resampler(floatPCM, inputLen, targetLen)
	if err != nil {
		return nil, err
	}

	for _, f := range e.Options.Filters {
		if f != nil {
			f(resampled)
		}
	}

	normalized := normalizeLeadingZeros(resampled, e.Options.LeadingZeros)

	loopBlock := NoLoop
	if looping {
		loopBlock = (len(normalized) - loopSizeSamples) / PCMBlockSize
	}

	sample, err := NewSample(len(normalized) / PCMBlockSize)
	if err != nil {
		return nil, err
	}

	if looping {
		sample.SetLoopBlock(loopBlock)
	}

	if err := e.bruteForceEncode(sample, normalized, loopBlock); err != nil {
		return nil, err
	}

	sample.CorrectEndFlags()

	return sample, nil
}

// bruteForceEncode runs the per-block exhaustive (range, filter) search.
// State is an explicit (p1, p2) pair threaded through the block loop,
// plus a loop-block snapshot captured once the loop block is written.
func (e *Encoder) bruteForceEncode(sample *Sample, pcm []float64, loopBlock int) error {
	blockCount := len(pcm) / PCMBlockSize
	looping := loopBlock != NoLoop

	p1, p2 := 0, 0

	var p1Loop, p2Loop int

	loopSnapshotTaken := false

	for n := 0; n < blockCount; n++ {
		block, err := sample.Block(n)
		if err != nil {
			return err
		}

		samples := pcm[n*PCMBlockSize : (n+1)*PCMBlockSize]
		isFinal := n == blockCount-1
		isLoopBlock := looping && n == loopBlock

		var bestFilter, bestRange int

		if n == 0 {
			// Block 0 bypasses the search and is written directly with
			// filter 0, range 0. At range 0 each residual decodes to a
			// value in [-4, 3], so block 0 plays back as near-silence.
			bestFilter, bestRange = 0, 0
		} else {
			filters := e.candidateFilters(n, isLoopBlock)

			bestFilter, bestRange = filters[0], 1
			bestErr := math.Inf(1)

			for _, f := range filters {
				for r := 1; r <= MaxRange; r++ {
					sqErr, l1, l2 := encodeBlockTrial(samples, f, r, p1, p2)

					errVal := sqErr / PCMBlockSize
					if isFinal && looping && loopSnapshotTaken {
						errVal = closureAdjustedError(sqErr, f, l1, l2, p1Loop, p2Loop)
					}

					if errVal < bestErr {
						bestErr = errVal
						bestFilter, bestRange = f, r
					}
				}
			}
		}

		newP1, newP2 := writeEncodeBlock(block, samples, bestFilter, bestRange, p1, p2)
		block.SetHeader(byte(bestRange<<4) | byte(bestFilter<<2))

		p1, p2 = newP1, newP2

		if isLoopBlock {
			p1Loop, p2Loop = p1, p2
			loopSnapshotTaken = true
		}
	}

	return nil
}

// candidateFilters returns the filters the search may try for blocks >= 1;
// block 0 never reaches this (see bruteForceEncode).
func (e *Encoder) candidateFilters(blockIndex int, isLoopBlock bool) []int {
	enabled := [4]bool{
		e.Options.EnableFilter0,
		e.Options.EnableFilter1,
		e.Options.EnableFilter2,
		e.Options.EnableFilter3,
	}

	var list []int

	for f := 0; f < 4; f++ {
		if !enabled[f] {
			continue
		}

		if isLoopBlock && e.Options.ForceFilter0OnLoopBlock && f != 0 {
			continue
		}

		list = append(list, f)
	}

	if len(list) == 0 {
		list = []int{0}
	}

	return list
}

// encodeSampleStep computes one ADPCM residual and the decoded estimate
// that results from it, reproducing the BRRtools quantizer exactly
// (including the documented wrap-case normalization and the
// wrap-like 16-bit overflow replacement).
func encodeSampleStep(s, f, r, p1, p2 int) (residual, newL1 int) {
	linearPred, _ := predict(f, p1, p2)
	linear := linearPred >> 1

	e := (s >> 1) - linear

	absE := e
	if absE < 0 {
		absE = -absE
	}

	if absE > 16384 && absE < 32768 {
		e = (e >> 9) & 0x07FF8000
	}

	step := (1 << (r + 2)) + ((1 << r) >> 2)
	dp := e + step

	if dp <= 0 {
		residual = -8
	} else {
		residual = clampInt((dp<<1)>>r, 0, 15) - 8
	}

	dpPrime := (residual << r) >> 1
	raw := linear + dpPrime

	if raw > 0x7FFF || raw < -0x8000 {
		raw = int(int16(0x7FFF - (raw >> 24)))
	}

	newL1 = raw << 1

	return residual, newL1
}

func encodeBlockTrial(samples []float64, f, r, startP1, startP2 int) (sqErr float64, l1, l2 int) {
	p1, p2 := startP1, startP2

	for _, sf := range samples {
		s := int(math.Round(sf))

		_, newL1 := encodeSampleStep(s, f, r, p1, p2)

		diff := float64(s - newL1)
		sqErr += diff * diff

		p2 = p1
		p1 = newL1
	}

	return sqErr, p1, p2
}

func writeEncodeBlock(block Block, samples []float64, f, r, startP1, startP2 int) (l1, l2 int) {
	p1, p2 := startP1, startP2

	for i, sf := range samples {
		s := int(math.Round(sf))

		residual, newL1 := encodeSampleStep(s, f, r, p1, p2)
		block.SetSample(i, residual)

		p2 = p1
		p1 = newL1
	}

	return p1, p2
}

func closureAdjustedError(sqErr float64, f, l1, l2, p1Loop, p2Loop int) float64 {
	switch f {
	case 0:
		return sqErr / PCMBlockSize
	case 1:
		d := float64(l1 - p1Loop)
		return (sqErr + d*d) / 17
	default:
		d1 := float64(l1 - p1Loop)
		d2 := float64(l2 - p2Loop)
		return (sqErr + d1*d1 + d2*d2) / 18
	}
}

func normalizeLeadingZeros(samples []float64, leadingZeros int) []float64 {
	if leadingZeros < 0 {
		pad := (PCMBlockSize - len(samples)%PCMBlockSize) % PCMBlockSize
		return prependZeros(samples, pad)
	}

	minZeros := leadingZeros
	if minZeros > MaxLeadingZeros {
		minZeros = MaxLeadingZeros
	}

	trimmed := trimLeadingZeros(samples)

	alignPad := (PCMBlockSize - len(trimmed)%PCMBlockSize) % PCMBlockSize

	pad := alignPad
	if alignPad < minZeros {
		extra := minZeros - alignPad
		pad = alignPad + ceilToMultiple(extra, PCMBlockSize)
	}

	if len(trimmed)+pad == 0 {
		pad = PCMBlockSize
	}

	return prependZeros(trimmed, pad)
}

func trimLeadingZeros(samples []float64) []float64 {
	i := 0
	for i < len(samples) && samples[i] == 0 {
		i++
	}

	return samples[i:]
}

func prependZeros(samples []float64, count int) []float64 {
	if count == 0 {
		return append([]float64(nil), samples...)
	}

	out := make([]float64, count+len(samples))
	copy(out[count:], samples)

	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func ceilToMultiple(v, m int) int {
	if v <= 0 {
		return 0
	}

	return ((v + m - 1) / m) * m
}
