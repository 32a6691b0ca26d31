package rerank

import (
	"github.com/rushteam/slotkit/core"
	"github.com/rushteam/slotkit/pkg/dsl"
)

// RuleFilter 是基于规则表达式的时段过滤器：在 Top-K 截取之前剔除
// 被业务规则排除的时段（如"只在白天发布"、"排除凌晨"）。
//
// 使用场景：
//   - 排名前过滤：先过滤后截取，保证返回满 k 个（若剩余时段足够）
//   - 规则来自配置，启动期编译；求值失败的时段按不放行处理
type RuleFilter struct {
	rule *dsl.SlotRule
}

// NewRuleFilter 编译规则表达式并创建过滤器。expr 为空时放行一切。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	rule, err := dsl.CompileSlotRule(expr)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRerank, core.ErrorCodeConfig, err.Error())
	}
	return &RuleFilter{rule: rule}, nil
}

// Apply 返回通过规则的时段，保持输入顺序。
func (f *RuleFilter) Apply(slots []core.TopSlot) []core.TopSlot {
	if f == nil || f.rule == nil || f.rule.Expr() == "" {
		return slots
	}
	out := make([]core.TopSlot, 0, len(slots))
	for _, slot := range slots {
		ok, err := f.rule.Allow(slot)
		if err != nil || !ok {
			continue
		}
		out = append(out, slot)
	}
	return out
}

// RankSlots 是排名层的完整操作：平铺概率 → （可选规则过滤）→ Top-K 时段。
// filter 为 nil 时不做过滤。
func RankSlots(flat []float64, k int, filter *RuleFilter) ([]core.TopSlot, error) {
	ranked, err := TopSlots(flat, core.NumSlots)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		ranked = filter.Apply(ranked)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k], nil
}
