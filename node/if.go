package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/core"
)

type IfStep struct {
	core.BaseStep
	Condition *core.CelEvaluator
	Then      []core.Step
	Else      []core.Step
}

func (n *IfStep) Compile(ys *core.YamlStep, cc *core.CompileContext) error {
	_ = n.BaseStep.Compile(ys, cc)
	cond, err := cc.Expression(ys.If)
	if err != nil {
		return errors.WithStack(err)
	}
	thenSteps, err := core.CompileSteps(ys.Then, cc)
	if err != nil {
		return errors.Wrapf(err, "compile 'then' failed")
	}
	elseSteps, err := core.CompileSteps(ys.Else, cc)
	if err != nil {
		return errors.Wrapf(err, "compile 'else' failed")
	}
	n.Condition = cond
	n.Then = thenSteps
	n.Else = elseSteps
	return nil
}

func (n *IfStep) Execute(b *core.Binding) error {
	res, err := n.Condition.Execute(b)
	if err != nil {
		return err
	}
	ok, isBool := res.(bool)
	if !isBool {
		return errors.Errorf("condition '%s' is not a bool: %v", n.Condition.Source, res)
	}
	if ok {
		return core.ExecuteSteps(b, n.Then...)
	}
	return core.ExecuteSteps(b, n.Else...)
}

func registerIf() {
	core.RegisterStepCompilerFactory[IfStep](core.StepTypeIf, false)
}
