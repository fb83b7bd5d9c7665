package brr

// Sample owns a heap-allocated byte buffer sized in whole BRR blocks. It
// is the sole owner of that memory; Block views returned by Block(i) are
// borrows bounded by the Sample's lifetime, never separately allocated.
type Sample struct {
	data      []byte
	loopBlock int
}

// NewSample allocates a zero-initialized Sample of blockCount blocks.
func NewSample(blockCount int) (*Sample, error) {
	if blockCount <= 0 {
		return nil, newError(InvalidArgument, "NewSample", ErrZeroBlocks)
	}

	if blockCount > MaxBlocks {
		return nil, newError(InvalidArgument, "NewSample", ErrTooManyBlocks)
	}

	return &Sample{
		data:      make([]byte, blockCount*BRRBlockSize),
		loopBlock: NoLoop,
	}, nil
}

// NewSampleFromBytes copies data (which must be a positive multiple of
// BRRBlockSize, within MaxBlocks) into a new Sample.
func NewSampleFromBytes(data []byte) (*Sample, error) {
	if len(data) == 0 || len(data)%BRRBlockSize != 0 {
		return nil, newError(BadFormat, "NewSampleFromBytes", ErrDataNotMultipleOf9)
	}

	blockCount := len(data) / BRRBlockSize
	if blockCount > MaxBlocks {
		return nil, newError(InvalidArgument, "NewSampleFromBytes", ErrTooManyBlocks)
	}

	s := &Sample{
		data:      make([]byte, len(data)),
		loopBlock: NoLoop,
	}
	copy(s.data, data)

	return s, nil
}

// BlockCount returns the number of 9-byte blocks in the sample.
func (s *Sample) BlockCount() int {
	return len(s.data) / BRRBlockSize
}

// Data returns the raw backing bytes. Callers must not retain slices
// derived from it past the Sample's lifetime if the Sample is reused.
func (s *Sample) Data() []byte {
	return s.data
}

// Block returns a borrowed, mutable view of block i.
func (s *Sample) Block(i int) (Block, error) {
	if i < 0 || i >= s.BlockCount() {
		return Block{}, newError(InvalidArgument, "Sample.Block", ErrBlockIndexOutOfRange)
	}

	start := i * BRRBlockSize

	return newBlock(s.data[start : start+BRRBlockSize]), nil
}

// LoopBlock returns the configured loop block index, or NoLoop.
func (s *Sample) LoopBlock() int {
	return s.loopBlock
}

// SetLoopBlock sets the loop block index. An out-of-range value
// normalizes to NoLoop rather than failing.
func (s *Sample) SetLoopBlock(i int) {
	if i < 0 || i >= s.BlockCount() {
		s.loopBlock = NoLoop
		return
	}

	s.loopBlock = i
}

// LoopOffsetBytes returns loopBlock*BRRBlockSize, or -1 if not looping.
func (s *Sample) LoopOffsetBytes() int {
	if s.loopBlock == NoLoop {
		return -1
	}

	return s.loopBlock * BRRBlockSize
}

// CorrectEndFlags clears end/loop flags on every non-final block, then
// sets the end flag on the final block, and the loop flag on the final
// block iff the sample loops. It is idempotent.
func (s *Sample) CorrectEndFlags() {
	count := s.BlockCount()

	for i := 0; i < count; i++ {
		blk, _ := s.Block(i)
		blk.SetEndFlag(false)
		blk.SetLoopFlag(false)
	}

	last, _ := s.Block(count - 1)
	last.SetEndFlag(true)
	last.SetLoopFlag(s.loopBlock != NoLoop)
}

// Validate inspects the sample's structure and returns the set of
// DataIssue bits found. It never fails; see the Unresolvable bit for
// whether callers should treat the sample as unusable.
func (s *Sample) Validate() DataIssue {
	var issues DataIssue

	count := s.BlockCount()
	if count == 0 {
		return IssueDataTooSmall | IssueUnresolvable
	}

	if len(s.data)%BRRBlockSize != 0 {
		issues |= IssueBadAlignment | IssueUnresolvable
	}

	if count > MaxBlocks {
		issues |= IssueDataTooLarge | IssueUnresolvable
	}

	for i := 0; i < count; i++ {
		blk, _ := s.Block(i)

		isLast := i == count-1

		if blk.EndFlag() && !isLast {
			issues |= IssueEarlyEndFlags
		}

		if isLast && !blk.EndFlag() {
			issues |= IssueMissingEndFlag
		}

		if blk.LoopFlag() && !isLast {
			issues |= IssueEarlyEndFlags
		}

		if r := blk.Range(); r >= 13 {
			issues |= IssueLargeRange | IssueUndefinedBehavior
		}

		if i == 0 {
			if blk.Filter() != 0 {
				issues |= IssueBlock0Filter
			}

			for j := 0; j < 3; j++ {
				v, _ := blk.Sample(j)
				if v != 0 {
					issues |= IssueBlock0Samples
					break
				}
			}
		}
	}

	if s.loopBlock != NoLoop {
		last, _ := s.Block(count - 1)
		if !last.LoopFlag() {
			issues |= IssueMissingLoopFlag
		}

		if s.loopBlock < 0 || s.loopBlock >= count {
			issues |= IssueOutOfRangeLoopPoint | IssueUnresolvable
		}
	}

	return issues
}

// ToRaw returns the raw BRR byte stream (a copy, safe to retain).
func (s *Sample) ToRaw() []byte {
	out := make([]byte, len(s.data))
	copy(out, s.data)

	return out
}

// ToLoopHeadered returns a 2-byte little-endian loop byte-offset followed
// by the raw BRR stream. Non-looping samples encode the sentinel
// sample_count (BlockCount*PCMBlockSize) as the loop offset.
func (s *Sample) ToLoopHeadered() []byte {
	out := make([]byte, 2+len(s.data))

	offset := s.LoopOffsetBytes()
	if offset < 0 {
		offset = s.BlockCount() * PCMBlockSize
	}

	out[0] = byte(offset)
	out[1] = byte(offset >> 8)
	copy(out[2:], s.data)

	return out
}
