package model

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/slotkit/core"
)

func testRecognizer() *LexiconRecognizer {
	return NewLexiconRecognizer(map[string]LexiconEntry{
		"new york":      {Canonical: "New York City", Score: 0.9},
		"new york city": {Canonical: "New York City", Score: 0.95},
		"york":          {Canonical: "York", Score: 0.6},
		"go":            {Canonical: "Go (programming language)", Score: 0.7},
		"x":             {Canonical: "X", Score: 0.5},
	})
}

func TestLexiconRecognizer_Recognize(t *testing.T) {
	rec := testRecognizer()
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want []core.EntityMention
	}{
		{
			name: "longest match wins",
			text: "visiting new york city today",
			want: []core.EntityMention{{Mention: "new york city", Score: 0.95}},
		},
		{
			name: "matched span not rescanned",
			text: "new york skyline",
			want: []core.EntityMention{{Mention: "new york", Score: 0.9}},
		},
		{
			name: "multiple mentions",
			text: "learning go in new york",
			want: []core.EntityMention{
				{Mention: "go", Score: 0.7},
				{Mention: "new york", Score: 0.9},
			},
		},
		{
			name: "single char mention dropped",
			text: "the x factor",
			want: nil,
		},
		{name: "no matches", text: "nothing here", want: nil},
		{name: "empty text", text: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rec.Recognize(ctx, tt.text)
			if err != nil {
				t.Fatalf("Recognize(%q) error = %v", tt.text, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Recognize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLexiconRecognizer_Link(t *testing.T) {
	rec := testRecognizer()
	ctx := context.Background()

	tests := []struct {
		name     string
		mention  string
		want     string
		wantOK   bool
	}{
		{name: "known mention", mention: "new york", want: "New York City", wantOK: true},
		{name: "case and space normalized", mention: "  New York  ", want: "New York City", wantOK: true},
		{name: "unknown mention", mention: "atlantis", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rec.Link(ctx, tt.mention)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Link(%q) = (%q, %v), want (%q, %v)", tt.mention, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
