package rerank

import (
	"fmt"
	"sort"

	"github.com/rushteam/slotkit/core"
)

// Heatmap 是 168 个时段概率的周视图：[day][hour]，day-major。
type Heatmap [][]float64

// NewHeatmap 把平铺的 NumSlots 个概率重塑为 7×24 周视图。
// 长度不符是融合网络与排名层之间的契约破坏，属于不可恢复的内部错误。
func NewHeatmap(flat []float64) (Heatmap, error) {
	if len(flat) != core.NumSlots {
		return nil, core.NewDomainError(core.ModuleRerank, core.ErrorCodeInternalError,
			fmt.Sprintf("heatmap expects %d slot scores, got %d", core.NumSlots, len(flat)))
	}

	m := make(Heatmap, core.DaysPerWeek)
	for d := 0; d < core.DaysPerWeek; d++ {
		row := make([]float64, core.HoursPerDay)
		copy(row, flat[d*core.HoursPerDay:(d+1)*core.HoursPerDay])
		m[d] = row
	}
	return m, nil
}

// At 返回 (day, hour) 的分数。
func (m Heatmap) At(day, hour int) float64 {
	return m[day][hour]
}

// Flatten 返回 day-major 平铺的副本。
func (m Heatmap) Flatten() []float64 {
	flat := make([]float64, 0, core.NumSlots)
	for _, row := range m {
		flat = append(flat, row...)
	}
	return flat
}

// TopSlots 返回分数最高的至多 k 个时段，分数降序。
// 同分时段按平铺下标升序（周日 0 点最先），排序稳定、结果可复现。
func TopSlots(flat []float64, k int) ([]core.TopSlot, error) {
	if len(flat) != core.NumSlots {
		return nil, core.NewDomainError(core.ModuleRerank, core.ErrorCodeInternalError,
			fmt.Sprintf("top slots expects %d slot scores, got %d", core.NumSlots, len(flat)))
	}
	if k <= 0 {
		return nil, nil
	}

	slots := make([]core.TopSlot, core.NumSlots)
	for i, score := range flat {
		day, hour := core.SlotOf(i)
		slots[i] = core.TopSlot{Day: day, Hour: hour, Score: score}
	}

	// 稳定排序保证同分时平铺下标小者在前
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Score > slots[j].Score
	})

	if k > len(slots) {
		k = len(slots)
	}
	return slots[:k], nil
}
