package core

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types/ref"
	"github.com/vuuvv/errors"
)

// CelEvaluator 编译好的表达式, 只能在创建它的 Binding 上执行
type CelEvaluator struct {
	Source string
	prg    cel.Program
}

// 可在 CompileExpression 之前设置, 0 表示不限制
type ProgramLimits struct {
	CostLimit uint64
}

func CompileExpression(env *cel.Env, expr string, limits ...ProgramLimits) (*CelEvaluator, error) {
	if env == nil {
		return nil, errors.New("expression environment not set")
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Errorf("compile '%s': %s", expr, issues.Err())
	}

	opts := []cel.ProgramOption{cel.InterruptCheckFrequency(64)}
	for _, l := range limits {
		if l.CostLimit > 0 {
			opts = append(opts, cel.CostLimit(l.CostLimit))
		}
	}
	prg, err := env.Program(ast, opts...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &CelEvaluator{Source: expr, prg: prg}, nil
}

// Eval 宿主函数里记录的错误(越界等)总是优先, 即使 || 和 && 吞掉了 CEL 层面的错误
func (e *CelEvaluator) Eval(b *Binding) (ref.Val, error) {
	b.fault = nil
	out, _, err := e.prg.ContextEval(b.ctx, map[string]any{
		"vars":   b.Vars,
		"fields": b.Fields,
	})
	if fault := b.takeFault(); fault != nil {
		return nil, fault
	}
	if err != nil {
		return nil, errors.Errorf("evaluate '%s': %s", e.Source, err)
	}
	return out, nil
}

func (e *CelEvaluator) Execute(b *Binding) (any, error) {
	out, err := e.Eval(b)
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
