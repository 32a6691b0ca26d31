package feature

import (
	"math"
	"testing"

	"github.com/rushteam/slotkit/core"
)

func TestComposer_AllComponentsPresent(t *testing.T) {
	c := NewComposer()
	signals := core.VideoSignals{
		Clean: core.CleanVideoRecord{CleanTitle: "go tutorial", CleanDescription: "learn go"},
		LinkedEntities: []core.LinkedEntity{
			{Mention: "go", Entity: "Go (programming language)", Score: 0.9},
		},
		Topics: []core.TopicScore{
			{Topic: "tutorial", Score: 0.8},
			{Topic: "tech", Score: 0.6},
		},
	}

	components := c.Compose(signals)
	if len(components) != 3 {
		t.Fatalf("components = %d, want 3", len(components))
	}
	wantWeights := []float64{0.6, 0.25, 0.15}
	sum := 0.0
	for i, comp := range components {
		if math.Abs(comp.Weight-wantWeights[i]) > 1e-9 {
			t.Errorf("component %d weight = %v, want %v", i, comp.Weight, wantWeights[i])
		}
		sum += comp.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum = %v, want 1.0", sum)
	}
	if components[1].Text != "Go (programming language)" {
		t.Errorf("entity component text = %q", components[1].Text)
	}
	if components[2].Text != "tutorial tech" {
		t.Errorf("topic component text = %q", components[2].Text)
	}
}

func TestComposer_RenormalizesWhenComponentsMissing(t *testing.T) {
	tests := []struct {
		name        string
		signals     core.VideoSignals
		wantCount   int
		wantWeights []float64
	}{
		{
			name: "title only",
			signals: core.VideoSignals{
				Clean: core.CleanVideoRecord{CleanTitle: "solo title"},
			},
			wantCount:   1,
			wantWeights: []float64{1.0},
		},
		{
			name: "title and topics, no entities",
			signals: core.VideoSignals{
				Clean:  core.CleanVideoRecord{CleanTitle: "title"},
				Topics: []core.TopicScore{{Topic: "music", Score: 0.7}},
			},
			wantCount:   2,
			wantWeights: []float64{0.6 / 0.75, 0.15 / 0.75},
		},
		{
			name: "entities only",
			signals: core.VideoSignals{
				LinkedEntities: []core.LinkedEntity{{Mention: "x", Entity: "X", Score: 1}},
			},
			wantCount:   1,
			wantWeights: []float64{1.0},
		},
		{
			name:      "nothing to encode",
			signals:   core.VideoSignals{},
			wantCount: 0,
		},
	}

	c := NewComposer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components := c.Compose(tt.signals)
			if len(components) != tt.wantCount {
				t.Fatalf("components = %d, want %d", len(components), tt.wantCount)
			}
			for i, comp := range components {
				if math.Abs(comp.Weight-tt.wantWeights[i]) > 1e-9 {
					t.Errorf("component %d weight = %v, want %v", i, comp.Weight, tt.wantWeights[i])
				}
			}
		})
	}
}
