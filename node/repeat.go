package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/core"
)

// RepeatStep 按 count 表达式循环执行, vars.index 为当前下标
type RepeatStep struct {
	core.BaseStep
	Count *core.CelEvaluator
	Steps []core.Step
}

func (n *RepeatStep) Compile(ys *core.YamlStep, cc *core.CompileContext) (err error) {
	_ = n.BaseStep.Compile(ys, cc)
	n.Count, err = cc.Expression(ys.Repeat)
	if err != nil {
		return errors.Wrapf(err, "compile 'repeat' count")
	}
	n.Steps, err = core.CompileSteps(ys.Steps, cc)
	if err != nil {
		return errors.Wrapf(err, "compile 'steps' failed")
	}
	return nil
}

func (n *RepeatStep) Execute(b *core.Binding) error {
	res, err := n.Count.Execute(b)
	if err != nil {
		return err
	}
	count, ok := core.ToInt(res)
	if !ok {
		return errors.Errorf("repeat count '%s' is not a number: %v", n.Count.Source, res)
	}
	if count < 0 {
		return errors.Errorf("negative repeat count: %d", count)
	}
	if count > b.MaxRepeat {
		return errors.Errorf("repeat count %d exceeds limit %d", count, b.MaxRepeat)
	}

	outer, hasOuter := b.Vars["index"]
	defer func() {
		if hasOuter {
			b.Vars["index"] = outer
		} else {
			delete(b.Vars, "index")
		}
	}()

	for i := 0; i < count; i++ {
		if err = b.Context().Err(); err != nil {
			return errors.WithStack(err)
		}
		b.Vars["index"] = int64(i)
		if err = core.ExecuteSteps(b, n.Steps...); err != nil {
			return err
		}
	}
	return nil
}

func registerRepeat() {
	core.RegisterStepCompilerFactory[RepeatStep](core.StepTypeRepeat, false)
}
