package rerank

import (
	"testing"

	"github.com/rushteam/slotkit/core"
)

func flatScores(base float64) []float64 {
	flat := make([]float64, core.NumSlots)
	for i := range flat {
		flat[i] = base
	}
	return flat
}

func TestNewHeatmap(t *testing.T) {
	flat := make([]float64, core.NumSlots)
	for i := range flat {
		flat[i] = float64(i) / float64(core.NumSlots)
	}

	m, err := NewHeatmap(flat)
	if err != nil {
		t.Fatalf("NewHeatmap() error = %v", err)
	}
	if len(m) != core.DaysPerWeek || len(m[0]) != core.HoursPerDay {
		t.Fatalf("shape = %dx%d, want 7x24", len(m), len(m[0]))
	}

	// day-major：m[d][h] == flat[d*24+h]
	for d := 0; d < core.DaysPerWeek; d++ {
		for h := 0; h < core.HoursPerDay; h++ {
			if m.At(d, h) != flat[core.SlotIndex(d, h)] {
				t.Fatalf("At(%d,%d) = %v, want %v", d, h, m.At(d, h), flat[core.SlotIndex(d, h)])
			}
		}
	}

	back := m.Flatten()
	for i := range flat {
		if back[i] != flat[i] {
			t.Fatalf("Flatten()[%d] = %v, want %v", i, back[i], flat[i])
		}
	}
}

func TestNewHeatmap_WrongLength(t *testing.T) {
	for _, n := range []int{0, 24, 167, 169} {
		if _, err := NewHeatmap(make([]float64, n)); err == nil {
			t.Errorf("NewHeatmap(len=%d) expected error", n)
		}
	}
}

func TestTopSlots(t *testing.T) {
	flat := flatScores(0.1)
	flat[core.SlotIndex(2, 14)] = 0.97 // 周二 14 点
	flat[core.SlotIndex(5, 9)] = 0.93  // 周五 9 点
	flat[core.SlotIndex(0, 0)] = 0.91

	top, err := TopSlots(flat, 3)
	if err != nil {
		t.Fatalf("TopSlots() error = %v", err)
	}
	want := []core.TopSlot{
		{Day: 2, Hour: 14, Score: 0.97},
		{Day: 5, Hour: 9, Score: 0.93},
		{Day: 0, Hour: 0, Score: 0.91},
	}
	if len(top) != len(want) {
		t.Fatalf("len = %d, want %d", len(top), len(want))
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("top[%d] = %+v, want %+v", i, top[i], want[i])
		}
	}
}

// 唯一最大值必须排第一
func TestTopSlots_UniqueMaxFirst(t *testing.T) {
	flat := flatScores(0.5)
	flat[core.SlotIndex(6, 23)] = 0.5001

	top, err := TopSlots(flat, 1)
	if err != nil {
		t.Fatalf("TopSlots() error = %v", err)
	}
	if top[0].Day != 6 || top[0].Hour != 23 {
		t.Errorf("top slot = (%d,%d), want (6,23)", top[0].Day, top[0].Hour)
	}
}

// 同分时平铺下标小者在前
func TestTopSlots_TiesByFlatIndex(t *testing.T) {
	flat := flatScores(0.2)
	flat[core.SlotIndex(3, 10)] = 0.8
	flat[core.SlotIndex(3, 11)] = 0.8
	flat[core.SlotIndex(1, 5)] = 0.8

	top, err := TopSlots(flat, 3)
	if err != nil {
		t.Fatalf("TopSlots() error = %v", err)
	}
	wantOrder := [][2]int{{1, 5}, {3, 10}, {3, 11}}
	for i, w := range wantOrder {
		if top[i].Day != w[0] || top[i].Hour != w[1] {
			t.Errorf("top[%d] = (%d,%d), want (%d,%d)", i, top[i].Day, top[i].Hour, w[0], w[1])
		}
	}
}

func TestTopSlots_KBounds(t *testing.T) {
	flat := flatScores(0.3)

	if top, _ := TopSlots(flat, 0); top != nil {
		t.Errorf("k=0 returned %v, want nil", top)
	}
	top, err := TopSlots(flat, 500)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(top) != core.NumSlots {
		t.Errorf("k>168 len = %d, want %d", len(top), core.NumSlots)
	}
}
