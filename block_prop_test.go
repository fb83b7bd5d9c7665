package brr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBlockSampleRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.IntRange(-8, 7).Draw(t, "v")
		i := rapid.IntRange(0, 15).Draw(t, "i")

		blk := newBlock(make([]byte, BRRBlockSize))

		assert.NoError(t, blk.SetSample(i, v))

		got, err := blk.Sample(i)
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	})
}

func TestBlockFieldsIndependentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := rapid.IntRange(0, 15).Draw(t, "range")
		f := rapid.IntRange(0, 3).Draw(t, "filter")
		loop := rapid.Bool().Draw(t, "loop")
		end := rapid.Bool().Draw(t, "end")

		blk := newBlock(make([]byte, BRRBlockSize))

		blk.SetRange(r)
		assert.NoError(t, blk.SetFilter(f))
		blk.SetLoopFlag(loop)
		blk.SetEndFlag(end)

		assert.Equal(t, r, blk.Range())
		assert.Equal(t, f, blk.Filter())
		assert.Equal(t, loop, blk.LoopFlag())
		assert.Equal(t, end, blk.EndFlag())
	})
}
