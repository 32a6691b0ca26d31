package model

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/slotkit/core"
)

func testEncoder() *SentenceEncoder {
	return NewSentenceEncoder(map[string][]float64{
		"cooking": {1, 0, 0},
		"pasta":   {0, 1, 0},
		"recipe":  {0, 0, 1},
	}, 3)
}

func TestSentenceEncoder_EncodeText(t *testing.T) {
	enc := testEncoder()
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want []float64
	}{
		{name: "single known word", text: "cooking", want: []float64{1, 0, 0}},
		{name: "mean of two known words", text: "cooking pasta", want: []float64{0.5, 0.5, 0}},
		{name: "case insensitive", text: "COOKING Pasta", want: []float64{0.5, 0.5, 0}},
		{name: "oov words skipped", text: "amazing cooking pasta tonight", want: []float64{0.5, 0.5, 0}},
		{name: "all oov is zero vector", text: "amazing tonight", want: []float64{0, 0, 0}},
		{name: "empty text is zero vector", text: "", want: []float64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.EncodeText(ctx, tt.text)
			if err != nil {
				t.Fatalf("EncodeText(%q) error = %v", tt.text, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("dim %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSentenceEncoder_EncodeTexts(t *testing.T) {
	enc := testEncoder()
	vecs, err := enc.EncodeTexts(context.Background(), []string{"cooking", "recipe"})
	if err != nil {
		t.Fatalf("EncodeTexts() error = %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("len = %d, want 2", len(vecs))
	}
	if vecs[0][0] != 1 || vecs[1][2] != 1 {
		t.Errorf("unexpected batch vectors: %v", vecs)
	}
}

func TestNewSentenceEncoderFromFile(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, v any) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		return path
	}

	t.Run("valid file", func(t *testing.T) {
		path := write("ok.json", encoderWeights{
			Dimension: 3,
			Vectors:   map[string][]float64{"cooking": {1, 0, 0}},
		})
		enc, err := NewSentenceEncoderFromFile(path)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if enc.Dimension() != 3 {
			t.Errorf("Dimension() = %d, want 3", enc.Dimension())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewSentenceEncoderFromFile(filepath.Join(dir, "absent.json"))
		assertModelLoadError(t, err)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		path := write("bad_dim.json", encoderWeights{
			Dimension: 3,
			Vectors:   map[string][]float64{"cooking": {1, 0}},
		})
		_, err := NewSentenceEncoderFromFile(path)
		assertModelLoadError(t, err)
	})
}

func assertModelLoadError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected MODEL_LOAD error, got nil")
	}
	de := core.GetDomainError(err)
	if de == nil || de.Code != core.ErrorCodeModelLoad {
		t.Fatalf("error = %v, want MODEL_LOAD domain error", err)
	}
}
