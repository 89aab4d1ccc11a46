package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/core"
)

// StructStep 引用脚本 structures 中定义的步骤列表
type StructStep struct {
	core.BaseStep
	Ref   string
	Steps []core.Step
}

func (n *StructStep) Compile(ys *core.YamlStep, cc *core.CompileContext) (err error) {
	_ = n.BaseStep.Compile(ys, cc)
	n.Ref = ys.Struct
	n.Steps, err = cc.Structure(n.Ref)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (n *StructStep) Execute(b *core.Binding) error {
	return core.ExecuteSteps(b, n.Steps...)
}

func registerStruct() {
	core.RegisterStepCompilerFactory[StructStep](core.StepTypeStruct, false)
}
