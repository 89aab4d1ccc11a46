package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/core"
)

// SwitchStep 按表达式的值选择分支, 值统一按字符串比较
type SwitchStep struct {
	core.BaseStep
	Value       *core.CelEvaluator
	Cases       map[string][]core.Step
	DefaultCase []core.Step
}

func (n *SwitchStep) Compile(ys *core.YamlStep, cc *core.CompileContext) (err error) {
	_ = n.BaseStep.Compile(ys, cc)
	n.Value, err = cc.Expression(ys.Switch)
	if err != nil {
		return errors.WithStack(err)
	}
	n.Cases = make(map[string][]core.Step)

	for _, c := range ys.Cases {
		if c.Value == nil {
			return errors.Errorf("switch case requires a 'value'")
		}
		key := core.ToString(c.Value)
		if _, ok := n.Cases[key]; ok {
			return errors.Errorf("duplicate switch case %s", key)
		}
		steps, err := core.CompileSteps(c.Steps, cc)
		if err != nil {
			return errors.Wrapf(err, "compile case %s", key)
		}
		n.Cases[key] = steps
	}

	if ys.Default != nil {
		n.DefaultCase, err = core.CompileSteps(ys.Default, cc)
		if err != nil {
			return errors.Wrapf(err, "compile default case")
		}
	}
	return nil
}

func (n *SwitchStep) Execute(b *core.Binding) error {
	res, err := n.Value.Execute(b)
	if err != nil {
		return err
	}
	key := core.ToString(res)
	if steps, ok := n.Cases[key]; ok {
		return core.ExecuteSteps(b, steps...)
	}
	if n.DefaultCase != nil {
		return core.ExecuteSteps(b, n.DefaultCase...)
	}
	return errors.Errorf("value %s not handled by switch '%s', no default case defined", key, n.Value.Source)
}

func registerSwitch() {
	core.RegisterStepCompilerFactory[SwitchStep](core.StepTypeSwitch, false)
}
