package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/core"
)

// LetStep 计算表达式并存入 vars
type LetStep struct {
	core.BaseStep
	Value *core.CelEvaluator
}

func (n *LetStep) Compile(ys *core.YamlStep, cc *core.CompileContext) error {
	_ = n.BaseStep.Compile(ys, cc)
	if ys.Value == "" {
		return errors.Errorf("let '%s' requires a 'value'", ys.Let)
	}
	expr, err := cc.Expression(ys.Value)
	if err != nil {
		return errors.Wrapf(err, "compile 'value' of let %s", ys.Let)
	}
	n.Name = ys.Let
	n.Value = expr
	return nil
}

func (n *LetStep) Execute(b *core.Binding) error {
	res, err := n.Value.Execute(b)
	if err != nil {
		return err
	}
	b.Vars[n.Name] = res
	return nil
}

func registerLet() {
	core.RegisterStepCompilerFactory[LetStep](core.StepTypeLet, false)
}
