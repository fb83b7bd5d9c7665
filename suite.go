package brr

import (
	"encoding/binary"
)

// SuiteHeaderSize is the fixed header length preceding raw BRR data in
// a Suite Sample (.brs) file.
const SuiteHeaderSize = 64

const (
	suiteSignature     = "BRRS"
	suiteMetaSignature = "META"
	suiteDataSignature = "DATA"

	offChecksum     = 4
	offComplement   = 6
	offMeta         = 8
	offName         = 12
	nameLen         = 24
	offVxPitch      = 36
	offFrequency    = 40
	offReserved     = 44
	reservedLen     = 7
	offData         = 51
	offLoopBehavior = 55
	offLoopBlock    = 56
	offLoopOffset   = 58
	offBlockCount   = 60
	offSampleLength = 62
)

// LoopBehavior classifies how a Suite Sample's loop point relates to
// its own data.
type LoopBehavior byte

const (
	// NonLooping has no loop point.
	NonLooping LoopBehavior = iota
	// Looping loops to a point inside this sample's own data.
	Looping
	// Extrinsic loops to memory outside this sample. Advisory only —
	// this package cannot validate the target.
	Extrinsic
	// Misaligned records a loop point that is not a multiple of
	// BRRBlockSize. Advisory only.
	Misaligned
)

func (b LoopBehavior) String() string {
	switch b {
	case NonLooping:
		return "NonLooping"
	case Looping:
		return "Looping"
	case Extrinsic:
		return "Extrinsic"
	case Misaligned:
		return "Misaligned"
	default:
		return "Unknown"
	}
}

// SuiteSample is a BRR sample plus the instrument metadata, pitch,
// encoding frequency, and loop-point bookkeeping carried by a .brs file.
type SuiteSample struct {
	Sample           *Sample
	InstrumentName   string
	VxPitch          uint16
	EncodingFrequency int32
	LoopBehavior     LoopBehavior
	LoopBlock        int
}

// NewSuiteSample wraps sample with default metadata: DefaultVxPitch
// (0x1000), 32000 Hz encoding frequency, and loop behavior derived from
// sample's own loop block.
func NewSuiteSample(sample *Sample, instrumentName string) *SuiteSample {
	s := &SuiteSample{
		Sample:            sample,
		InstrumentName:    SanitizeInstrumentName(instrumentName),
		VxPitch:           DefaultVxPitch,
		EncodingFrequency: DefaultEncodingFrequency,
	}

	if sample != nil {
		s.SetAndFlagLoopPoint(sample.LoopOffsetBytes())
	}

	return s
}

// SetAndFlagLoopPoint derives LoopBehavior and LoopBlock from a byte
// offset p relative to the wrapped sample's length and alignment. A
// negative p means non-looping.
func (s *SuiteSample) SetAndFlagLoopPoint(p int) {
	if p < 0 || s.Sample == nil {
		s.LoopBehavior = NonLooping
		s.LoopBlock = NoLoop

		return
	}

	dataLen := len(s.Sample.Data())

	switch {
	case p%BRRBlockSize != 0:
		s.LoopBehavior = Misaligned
		s.LoopBlock = NoLoop
	case p >= dataLen:
		s.LoopBehavior = Extrinsic
		s.LoopBlock = NoLoop
	default:
		s.LoopBehavior = Looping
		s.LoopBlock = p / BRRBlockSize
	}
}

// SanitizeInstrumentName strips control codepoints (U+0000-U+001F,
// U+007F-U+009F, U+00AD), maps U+00A0 (NBSP) to an ordinary space, and
// pads or truncates the result to exactly nameLen runes.
func SanitizeInstrumentName(name string) string {
	runes := make([]rune, 0, len(name))

	for _, r := range name {
		switch {
		case r >= 0x0000 && r <= 0x001F:
			continue
		case r >= 0x007F && r <= 0x009F:
			continue
		case r == 0x00AD:
			continue
		case r == 0x00A0:
			runes = append(runes, ' ')
		default:
			runes = append(runes, r)
		}
	}

	if len(runes) > nameLen {
		runes = runes[:nameLen]
	}

	for len(runes) < nameLen {
		runes = append(runes, ' ')
	}

	return string(runes)
}

// Checksum computes the Suite Sample checksum over the sample's raw BRR
// bytes: each 9-byte block contributes acc = (sum of block[j]<<(j-1)
// for j in 1..8) XOR (block[0]<<4); the checksum is the low 16 bits of
// the sum of every block's acc.
func Checksum(data []byte) uint16 {
	var sum uint32

	blocks := len(data) / BRRBlockSize

	for b := 0; b < blocks; b++ {
		block := data[b*BRRBlockSize : (b+1)*BRRBlockSize]

		var acc uint32

		for j := 1; j <= 8; j++ {
			acc += uint32(block[j]) << uint(j-1)
		}

		acc ^= uint32(block[0]) << 4

		sum += acc
	}

	return uint16(sum & 0xFFFF)
}

// Marshal serializes the Suite Sample into the 64-byte header followed
// by raw BRR data. It fails if the wrapped sample is nil or its
// Validate() result is Unresolvable.
func (s *SuiteSample) Marshal() ([]byte, error) {
	if s.Sample == nil {
		return nil, newError(InvalidArgument, "SuiteSample.Marshal", ErrZeroBlocks)
	}

	if issues := s.Sample.Validate(); issues.Unresolvable() {
		return nil, newError(UnresolvableData, "SuiteSample.Marshal", ErrUnresolvable)
	}

	freq := s.EncodingFrequency
	if freq <= 0 {
		return nil, newError(InvalidArgument, "SuiteSample.Marshal", ErrNonPositiveFrequency)
	}

	vxPitch := s.VxPitch
	if vxPitch > MaxVxPitch {
		vxPitch = 0
	}

	data := s.Sample.ToRaw()
	checksum := Checksum(data)
	complement := checksum ^ 0xFFFF

	blockCount := s.Sample.BlockCount()
	sampleLength := blockCount * BRRBlockSize

	loopBlock := s.LoopBlock
	loopOffset := 0

	if s.LoopBehavior == Looping && loopBlock >= 0 {
		loopOffset = loopBlock * BRRBlockSize
	} else {
		loopBlock = 0
	}

	out := make([]byte, SuiteHeaderSize+len(data))

	copy(out[0:4], suiteSignature)
	binary.LittleEndian.PutUint16(out[offChecksum:], checksum)
	binary.LittleEndian.PutUint16(out[offComplement:], complement)
	copy(out[offMeta:offMeta+4], suiteMetaSignature)
	writeLatin1Fixed(out[offName:offName+nameLen], SanitizeInstrumentName(s.InstrumentName))
	binary.LittleEndian.PutUint16(out[offVxPitch:], vxPitch)
	binary.LittleEndian.PutUint32(out[offFrequency:], uint32(freq))
	// out[offReserved:offReserved+reservedLen] is already zero.
	copy(out[offData:offData+4], suiteDataSignature)
	out[offLoopBehavior] = byte(s.LoopBehavior)
	binary.LittleEndian.PutUint16(out[offLoopBlock:], uint16(loopBlock))
	binary.LittleEndian.PutUint16(out[offLoopOffset:], uint16(loopOffset))
	binary.LittleEndian.PutUint16(out[offBlockCount:], uint16(blockCount))
	binary.LittleEndian.PutUint16(out[offSampleLength:], uint16(sampleLength))
	copy(out[SuiteHeaderSize:], data)

	return out, nil
}

// UnmarshalSuiteSample parses a .brs byte stream, validating signatures,
// checksum/complement duality, and the declared length field against
// the data that actually follows.
func UnmarshalSuiteSample(data []byte) (*SuiteSample, error) {
	if len(data) < SuiteHeaderSize {
		return nil, newError(BadFormat, "UnmarshalSuiteSample", ErrShortFile)
	}

	if string(data[0:4]) != suiteSignature || string(data[offMeta:offMeta+4]) != suiteMetaSignature ||
		string(data[offData:offData+4]) != suiteDataSignature {
		return nil, newError(BadFormat, "UnmarshalSuiteSample", ErrBadSignature)
	}

	checksum := binary.LittleEndian.Uint16(data[offChecksum:])
	complement := binary.LittleEndian.Uint16(data[offComplement:])

	if checksum^complement != 0xFFFF {
		return nil, newError(BadFormat, "UnmarshalSuiteSample", ErrChecksumMismatch)
	}

	blockCount := int(binary.LittleEndian.Uint16(data[offBlockCount:]))
	sampleLength := int(binary.LittleEndian.Uint16(data[offSampleLength:]))

	if sampleLength != blockCount*BRRBlockSize {
		return nil, newError(BadFormat, "UnmarshalSuiteSample", ErrLengthFieldMismatch)
	}

	payload := data[SuiteHeaderSize:]
	if len(payload) != sampleLength {
		return nil, newError(BadFormat, "UnmarshalSuiteSample", ErrLengthFieldMismatch)
	}

	if Checksum(payload) != checksum {
		return nil, newError(BadFormat, "UnmarshalSuiteSample", ErrChecksumMismatch)
	}

	sample, err := NewSampleFromBytes(payload)
	if err != nil {
		return nil, err
	}

	loopBehavior := LoopBehavior(data[offLoopBehavior])
	loopBlock := int(binary.LittleEndian.Uint16(data[offLoopBlock:]))

	if loopBehavior == Looping {
		sample.SetLoopBlock(loopBlock)
	}

	vxPitch := binary.LittleEndian.Uint16(data[offVxPitch:])
	if vxPitch > MaxVxPitch {
		vxPitch = 0
	}

	return &SuiteSample{
		Sample:            sample,
		InstrumentName:    readLatin1Fixed(data[offName : offName+nameLen]),
		VxPitch:           vxPitch,
		EncodingFrequency: int32(binary.LittleEndian.Uint32(data[offFrequency:])),
		LoopBehavior:      loopBehavior,
		LoopBlock:         loopBlock,
	}, nil
}

// Validate inspects header and data consistency (signatures are assumed
// already checked by UnmarshalSuiteSample) and returns the wrapped
// sample's DataIssue set, augmented with loop-behavior/end-flag
// consistency checks specific to the Suite Sample envelope.
func (s *SuiteSample) Validate() DataIssue {
	if s.Sample == nil {
		return IssueDataTooSmall | IssueUnresolvable
	}

	issues := s.Sample.Validate()

	switch s.LoopBehavior {
	case Looping:
		if s.LoopBlock < 0 || s.LoopBlock >= s.Sample.BlockCount() {
			issues |= IssueOutOfRangeLoopPoint | IssueUnresolvable
		}
	case Misaligned:
		issues |= IssueMisalignedLoopPoint
	case NonLooping:
		if s.Sample.LoopBlock() != NoLoop {
			issues |= IssueMissingLoopPoint
		}
	}

	return issues
}

// ValidateSuiteStream inspects a .brs byte stream's structure without
// parsing it into a SuiteSample. Unlike UnmarshalSuiteSample it never
// fails; every problem found is reported as a DataIssue bit, with
// Unresolvable marking streams no parse could make sense of.
func ValidateSuiteStream(data []byte) DataIssue {
	if len(data) < SuiteHeaderSize {
		return IssueDataTooSmall | IssueUnresolvable
	}

	var issues DataIssue

	blockCount := int(binary.LittleEndian.Uint16(data[offBlockCount:]))
	sampleLength := int(binary.LittleEndian.Uint16(data[offSampleLength:]))
	payload := data[SuiteHeaderSize:]

	if sampleLength != blockCount*BRRBlockSize || len(payload) != sampleLength {
		issues |= IssueWrongBlockCount | IssueUnresolvable
	}

	if len(payload)%BRRBlockSize != 0 {
		issues |= IssueBadAlignment | IssueUnresolvable
	}

	if len(payload) == 0 {
		return issues | IssueDataTooSmall | IssueUnresolvable
	}

	if blockCount > MaxBlocks {
		issues |= IssueDataTooLarge | IssueUnresolvable
	}

	behavior := LoopBehavior(data[offLoopBehavior])
	loopBlock := int(binary.LittleEndian.Uint16(data[offLoopBlock:]))
	loopOffset := int(binary.LittleEndian.Uint16(data[offLoopOffset:]))

	if behavior == Looping {
		switch {
		case loopOffset%BRRBlockSize != 0:
			issues |= IssueMisalignedLoopPoint | IssueUnresolvable
		case loopOffset >= len(payload) || loopBlock*BRRBlockSize != loopOffset:
			issues |= IssueOutOfRangeLoopPoint | IssueUnresolvable
		}
	}

	if issues.Unresolvable() {
		return issues
	}

	sample, err := NewSampleFromBytes(payload)
	if err != nil {
		return issues | IssueBadAlignment | IssueUnresolvable
	}

	if behavior == Looping {
		sample.SetLoopBlock(loopBlock)
	}

	return issues | sample.Validate()
}

// writeLatin1Fixed encodes s one byte per rune (Latin-1: codepoint ==
// byte value, runes above 0xFF fall back to '?'), space-padded to
// len(dst), truncating s if it runs long.
func writeLatin1Fixed(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}

	i := 0

	for _, r := range s {
		if i >= len(dst) {
			break
		}

		if r > 0xFF {
			r = '?'
		}

		dst[i] = byte(r)
		i++
	}
}

func readLatin1Fixed(src []byte) string {
	runes := make([]rune, len(src))
	for i, b := range src {
		runes[i] = rune(b)
	}

	return string(runes)
}
