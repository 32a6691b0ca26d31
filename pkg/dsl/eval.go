package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/slotkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义时段规则可用的变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("slot", cel.DynType),
		cel.Variable("day", cel.IntType),
		cel.Variable("hour", cel.IntType),
		cel.Variable("score", cel.DoubleType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// SlotRule 是编译后的时段过滤规则，使用 CEL (Common Expression Language) 实现。
// 表达式在构造期编译一次，之后可被任意多请求并发求值。
//
// 表达式语法（CEL 标准语法），可用变量：
//   - day ∈ [0,7)、hour ∈ [0,24)、score ∈ [0,1]
//   - slot.day / slot.hour / slot.score（等价的结构化访问）
//
// 示例：
//   - `hour >= 8 && hour <= 22` → 只允许白天时段
//   - `day < 5 || score > 0.9` → 工作日，或周末里分数极高的时段
//   - `slot.hour != 3` → 排除凌晨 3 点
type SlotRule struct {
	expr string
	prg  cel.Program
}

// CompileSlotRule 编译时段规则表达式。空表达式得到放行一切的规则。
// 表达式语法错误是配置错误，启动期即应失败。
func CompileSlotRule(expr string) (*SlotRule, error) {
	if expr == "" {
		return &SlotRule{}, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile slot rule %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program slot rule %q: %w", expr, err)
	}
	return &SlotRule{expr: expr, prg: prg}, nil
}

// Expr 返回规则的原始表达式。
func (r *SlotRule) Expr() string { return r.expr }

// Allow 对单个时段求值。表达式为空时恒为 true。
func (r *SlotRule) Allow(slot core.TopSlot) (bool, error) {
	if r.prg == nil {
		return true, nil
	}

	out, _, err := r.prg.Eval(map[string]any{
		"day":   slot.Day,
		"hour":  slot.Hour,
		"score": slot.Score,
		"slot": map[string]any{
			"day":   slot.Day,
			"hour":  slot.Hour,
			"score": slot.Score,
		},
	})
	if err != nil {
		return false, fmt.Errorf("eval slot rule %q: %w", r.expr, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("slot rule %q must return boolean, got %T", r.expr, out.Value())
	}
	return result, nil
}
