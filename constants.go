package brr

// Wire format and domain constants shared across the package.
const (
	// BRRBlockSize is the size in bytes of one BRR block (1 header byte
	// plus 8 data bytes carrying 16 signed 4-bit residuals).
	BRRBlockSize = 9
	// PCMBlockSize is the number of PCM samples represented by one block.
	PCMBlockSize = 16
	// DSPFrequency is the SNES DSP's native sample rate in Hz.
	DSPFrequency = 32000
	// DefaultVxPitch is the VxPITCH value for unity playback at DSPFrequency.
	DefaultVxPitch = 0x1000
	// MaxVxPitch is the largest representable VxPITCH value.
	MaxVxPitch = 0x3FFF
	// MaxRange is the largest range the encoder's brute-force search tries.
	MaxRange = 12
	// MaxLeadingZeros caps the forced leading-zero count the encoder will add.
	MaxLeadingZeros = 100
	// NoLoop is the sentinel loop_block value for a non-looping sample.
	NoLoop = -1
	// MaxBlocks is the largest block count a Sample will accept.
	MaxBlocks = 7280
	// DefaultEncodingFrequency is the Suite Sample default encoding frequency.
	DefaultEncodingFrequency = 32000

	// maxLoopIterations caps the decoder's loop unrolling.
	maxLoopIterations = 777
	// maxDecodeSeconds caps the requested minimum decode duration.
	maxDecodeSeconds = 10.0
)
