package model

import (
	"testing"

	"github.com/rushteam/slotkit/core"
)

func validFusionInput() *core.FusionInput {
	channel := make([]float64, core.ChannelDim)
	content := make([]float64, core.ContentDim)
	for i := range channel {
		channel[i] = float64(i%7) * 0.1
	}
	for i := range content {
		content[i] = float64(i%5) * 0.2
	}
	return &core.FusionInput{ChannelEmbedding: channel, ContentEmbedding: content}
}

func TestBiCrossFusion_PredictSlots(t *testing.T) {
	m := NewBiCrossFusion()
	probs, err := m.PredictSlots(validFusionInput())
	if err != nil {
		t.Fatalf("PredictSlots() error = %v", err)
	}
	if len(probs) != core.NumSlots {
		t.Fatalf("len(probs) = %d, want %d", len(probs), core.NumSlots)
	}
	for i, p := range probs {
		if p < 0 || p > 1 {
			t.Errorf("probs[%d] = %v, outside [0,1]", i, p)
		}
	}
}

func TestBiCrossFusion_Deterministic(t *testing.T) {
	m := NewBiCrossFusion()
	in := validFusionInput()
	first, err := m.PredictSlots(in)
	if err != nil {
		t.Fatalf("first PredictSlots() error = %v", err)
	}
	second, err := m.PredictSlots(in)
	if err != nil {
		t.Fatalf("second PredictSlots() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic output at slot %d: %v != %v", i, first[i], second[i])
		}
	}
}

func TestBiCrossFusion_DimensionValidation(t *testing.T) {
	m := NewBiCrossFusion()
	tests := []struct {
		name       string
		channelDim int
		contentDim int
		wantSubstr string
	}{
		{
			name:       "channel too short",
			channelDim: 100,
			contentDim: core.ContentDim,
			wantSubstr: "expected user_emb dim 768, got 100",
		},
		{
			name:       "content too long",
			channelDim: core.ChannelDim,
			contentDim: 512,
			wantSubstr: "expected video_emb dim 384, got 512",
		},
		{
			name:       "swapped argument order rejected",
			channelDim: core.ContentDim,
			contentDim: core.ChannelDim,
			wantSubstr: "expected user_emb dim 768, got 384",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &core.FusionInput{
				ChannelEmbedding: make([]float64, tt.channelDim),
				ContentEmbedding: make([]float64, tt.contentDim),
			}
			_, err := m.PredictSlots(in)
			if err == nil {
				t.Fatal("expected dimension error, got nil")
			}
			if !core.IsInvalidDimension(err) {
				t.Errorf("error code not INVALID_DIMENSION: %v", err)
			}
			if err.Error() != tt.wantSubstr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantSubstr)
			}
		})
	}
}

// 输入向量不得被推理修改
func TestBiCrossFusion_InputNotMutated(t *testing.T) {
	m := NewBiCrossFusion()
	in := validFusionInput()
	channelCopy := append([]float64(nil), in.ChannelEmbedding...)
	contentCopy := append([]float64(nil), in.ContentEmbedding...)

	if _, err := m.PredictSlots(in); err != nil {
		t.Fatalf("PredictSlots() error = %v", err)
	}
	for i := range channelCopy {
		if in.ChannelEmbedding[i] != channelCopy[i] {
			t.Fatalf("channel embedding mutated at %d", i)
		}
	}
	for i := range contentCopy {
		if in.ContentEmbedding[i] != contentCopy[i] {
			t.Fatalf("content embedding mutated at %d", i)
		}
	}
}
