package pcmsource

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAIFFProducesNonEmptyFile(t *testing.T) {
	samples := make([]int16, 128)
	for i := range samples {
		samples[i] = int16(i * 10)
	}

	path := filepath.Join(t.TempDir(), "out.aif")

	if err := SaveAIFF(path, samples, 32000); err != nil {
		t.Fatalf("SaveAIFF: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}

	if info.Size() == 0 {
		t.Error("SaveAIFF wrote an empty file")
	}
}

func TestSaveAIFFHasFormChunkSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sig.aif")

	if err := SaveAIFF(path, []int16{1, 2, 3, 4}, 32000); err != nil {
		t.Fatalf("SaveAIFF: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(data) < 12 || string(data[0:4]) != "FORM" || string(data[8:12]) != "AIFF" {
		t.Errorf("missing FORM/AIFF signature: %q", data[:min(12, len(data))])
	}
}
