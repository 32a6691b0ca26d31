package dsl

import (
	"testing"

	"github.com/rushteam/slotkit/core"
)

func TestSlotRule_Allow(t *testing.T) {
	slot := core.TopSlot{Day: 2, Hour: 14, Score: 0.8}

	tests := []struct {
		expr string
		want bool
	}{
		{expr: "", want: true},
		{expr: "hour >= 8 && hour <= 22", want: true},
		{expr: "day >= 5", want: false},
		{expr: "score > 0.75", want: true},
		{expr: "slot.day == 2 && slot.hour == 14", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rule, err := CompileSlotRule(tt.expr)
			if err != nil {
				t.Fatalf("CompileSlotRule(%q) error = %v", tt.expr, err)
			}
			got, err := rule.Allow(slot)
			if err != nil {
				t.Fatalf("Allow() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Allow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileSlotRule_Malformed(t *testing.T) {
	if _, err := CompileSlotRule("hour ==="); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestSlotRule_NonBoolean(t *testing.T) {
	rule, err := CompileSlotRule("hour + 1")
	if err != nil {
		// 编译期拒绝也可接受
		return
	}
	if _, err := rule.Allow(core.TopSlot{Hour: 5}); err == nil {
		t.Fatal("expected error for non-boolean rule")
	}
}
