package brr

import "testing"

func newTestBlock() Block {
	return newBlock(make([]byte, BRRBlockSize))
}

func TestBlockSampleRoundTrip(t *testing.T) {
	for v := -8; v <= 7; v++ {
		for i := 0; i < 16; i++ {
			blk := newTestBlock()

			if err := blk.SetSample(i, v); err != nil {
				t.Fatalf("SetSample(%d, %d): %v", i, v, err)
			}

			got, err := blk.Sample(i)
			if err != nil {
				t.Fatalf("Sample(%d): %v", i, err)
			}

			if got != v {
				t.Errorf("i=%d v=%d: got %d", i, v, got)
			}
		}
	}
}

func TestBlockFieldsAreIndependent(t *testing.T) {
	blk := newTestBlock()

	blk.SetRange(7)
	if err := blk.SetFilter(2); err != nil {
		t.Fatal(err)
	}

	blk.SetLoopFlag(true)
	blk.SetEndFlag(true)

	if blk.Range() != 7 {
		t.Errorf("Range() = %d, want 7", blk.Range())
	}

	if blk.Filter() != 2 {
		t.Errorf("Filter() = %d, want 2", blk.Filter())
	}

	if !blk.LoopFlag() {
		t.Error("LoopFlag() = false, want true")
	}

	if !blk.EndFlag() {
		t.Error("EndFlag() = false, want true")
	}

	blk.SetEndFlag(false)

	if blk.Range() != 7 || blk.Filter() != 2 || !blk.LoopFlag() {
		t.Error("clearing EndFlag disturbed another field")
	}
}

func TestBlockSetFilterRejectsOutOfRange(t *testing.T) {
	blk := newTestBlock()

	if err := blk.SetFilter(4); err == nil {
		t.Error("SetFilter(4) should fail")
	}

	if err := blk.SetFilter(-1); err == nil {
		t.Error("SetFilter(-1) should fail")
	}
}

func TestBlockSampleOutOfRange(t *testing.T) {
	blk := newTestBlock()

	if _, err := blk.Sample(16); err == nil {
		t.Error("Sample(16) should fail")
	}

	if _, err := blk.Sample(-1); err == nil {
		t.Error("Sample(-1) should fail")
	}
}

func TestBlockSignExtension(t *testing.T) {
	blk := newTestBlock()

	if err := blk.SetSample(0, -1); err != nil {
		t.Fatal(err)
	}

	if blk.data[1]>>4 != 0x0F {
		t.Fatalf("expected nibble 0xF, got %X", blk.data[1]>>4)
	}

	got, err := blk.Sample(0)
	if err != nil {
		t.Fatal(err)
	}

	if got != -1 {
		t.Errorf("Sample(0) = %d, want -1", got)
	}
}

// A single silent block that is also the final block gets header 0x01
// (range 0, filter 0, no loop, end set) and all-zero data.
func TestSilentEndBlockHeader(t *testing.T) {
	blk := newTestBlock()
	blk.SetEndFlag(true)

	if blk.Header() != 0x01 {
		t.Errorf("Header() = 0x%02X, want 0x01", blk.Header())
	}

	for i := 1; i < BRRBlockSize; i++ {
		if blk.data[i] != 0 {
			t.Errorf("data[%d] = %d, want 0", i, blk.data[i])
		}
	}
}
