package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/core"
)

// ExprStep 执行一个 CEL 表达式, 结果丢弃, 通过 read*/comment/log 产生效果
type ExprStep struct {
	core.BaseStep
	Expr *core.CelEvaluator
}

func (this *ExprStep) Compile(ys *core.YamlStep, cc *core.CompileContext) error {
	_ = this.BaseStep.Compile(ys, cc)
	if ys.Expr == "" {
		return errors.New("empty step")
	}
	expr, err := cc.Expression(ys.Expr)
	if err != nil {
		return errors.WithStack(err)
	}
	this.Expr = expr
	return nil
}

func (this *ExprStep) Execute(b *core.Binding) error {
	_, err := this.Expr.Eval(b)
	return err
}

func registerExpr() {
	core.RegisterStepCompilerFactory[ExprStep](core.StepTypeExpr, true)
}
