package core

import (
	"fmt"
	"github.com/google/cel-go/cel"
	"github.com/vuuvv/errors"
	"gopkg.in/yaml.v3"
)

const (
	StepTypeExpr   = "expr" // 默认类型, 一个 CEL 表达式
	StepTypeIf     = "if"
	StepTypeRepeat = "repeat"
	StepTypeLet    = "let"
	StepTypeStruct = "struct"
	StepTypeSwitch = "switch"
)

type YamlCase struct {
	Value any         `yaml:"value"`
	Steps []*YamlStep `yaml:"steps"`
}

// YamlStep 脚本中的一步, 标量直接作为表达式
type YamlStep struct {
	Expr string `yaml:"expr"`

	If   string      `yaml:"if"`
	Then []*YamlStep `yaml:"then"`
	Else []*YamlStep `yaml:"else"`

	Repeat string      `yaml:"repeat"`
	Steps  []*YamlStep `yaml:"steps"`

	Let   string `yaml:"let"`
	Value string `yaml:"value"`

	Struct string `yaml:"struct"`

	Switch  string      `yaml:"switch"`
	Cases   []*YamlCase `yaml:"cases"`
	Default []*YamlStep `yaml:"default"`

	Line int `yaml:"-"`
}

func (ys *YamlStep) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		ys.Expr = node.Value
		ys.Line = node.Line
		return nil
	}
	type plain YamlStep
	if err := node.Decode((*plain)(ys)); err != nil {
		return err
	}
	ys.Line = node.Line
	return nil
}

func (ys *YamlStep) Type() string {
	switch {
	case ys.If != "":
		return StepTypeIf
	case ys.Repeat != "":
		return StepTypeRepeat
	case ys.Let != "":
		return StepTypeLet
	case ys.Struct != "":
		return StepTypeStruct
	case ys.Switch != "":
		return StepTypeSwitch
	}
	return StepTypeExpr
}

type Step interface {
	Execute(b *Binding) error
	GetName() string
	GetLine() int
	Compile(ys *YamlStep, cc *CompileContext) error
}

type BaseStep struct {
	Name string
	Line int
}

func (this *BaseStep) GetName() string {
	return this.Name
}

func (this *BaseStep) GetLine() int {
	return this.Line
}

func (this *BaseStep) Compile(ys *YamlStep, cc *CompileContext) error {
	this.Name = ys.Type()
	this.Line = ys.Line
	return nil
}

// CompileContext 编译一个脚本时共享的状态
type CompileContext struct {
	Env        *cel.Env
	Structures map[string][]*YamlStep
	Limits     ProgramLimits
	compiled   map[string][]Step
	compiling  map[string]bool
}

func NewCompileContext(env *cel.Env, structures map[string][]*YamlStep) *CompileContext {
	return &CompileContext{
		Env:        env,
		Structures: structures,
		compiled:   make(map[string][]Step),
		compiling:  make(map[string]bool),
	}
}

func (cc *CompileContext) Expression(expr string) (*CelEvaluator, error) {
	return CompileExpression(cc.Env, expr, cc.Limits)
}

// Structure 编译脚本内命名的结构, 同一结构只编译一次
func (cc *CompileContext) Structure(name string) ([]Step, error) {
	if steps, ok := cc.compiled[name]; ok {
		return steps, nil
	}
	def, ok := cc.Structures[name]
	if !ok {
		return nil, errors.Errorf("structure '%s' not found", name)
	}
	if cc.compiling[name] {
		return nil, errors.Errorf("structure '%s' references itself", name)
	}
	cc.compiling[name] = true
	defer delete(cc.compiling, name)

	steps, err := CompileSteps(def, cc)
	if err != nil {
		return nil, errors.Wrapf(err, "structure '%s'", name)
	}
	cc.compiled[name] = steps
	return steps, nil
}

var stepCompilers = make(map[string]StepCompileFunc)
var defaultStepCompiler StepCompileFunc = nil

type StepCompileFunc func(ys *YamlStep, cc *CompileContext) (Step, error)

func RegisterStepCompilerFactory[T any](name string, isDefault bool) {
	fn := func(ys *YamlStep, cc *CompileContext) (Step, error) {
		var v T
		step, ok := CastTo[Step](&v)
		if !ok {
			return nil, errors.Errorf("Step type [%s] not match: %T", name, &v)
		}
		err := step.Compile(ys, cc)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return step, nil
	}
	stepCompilers[name] = fn
	if isDefault {
		defaultStepCompiler = fn
	}
}

func CompileSteps(steps []*YamlStep, cc *CompileContext) ([]Step, error) {
	var ret []Step
	for _, ys := range steps {
		if ys == nil {
			continue
		}
		fn, ok := stepCompilers[ys.Type()]
		if !ok {
			fn = defaultStepCompiler
		}
		if fn == nil {
			return nil, errors.Errorf("Step type [%s] not registered, and no default compiler", ys.Type())
		}
		step, err := fn(ys, cc)
		if err != nil {
			if innermostStepError(err) != nil {
				return nil, err
			}
			return nil, &stepError{Line: ys.Line, Err: err}
		}
		ret = append(ret, step)
	}
	return ret, nil
}

// stepError 编译失败的步骤所在行, 嵌套步骤只记录最内层
type stepError struct {
	Line int
	Err  error
}

func (e *stepError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, causeMessage(e.Err))
}

func (e *stepError) Unwrap() error {
	return e.Err
}

func innermostStepError(err error) *stepError {
	var found *stepError
	for ; err != nil; err = unwrapOnce(err) {
		if e, ok := err.(*stepError); ok {
			found = e
		}
	}
	return found
}

// ExecuteSteps 顺序执行, 第一个错误即终止, 错误带上脚本位置
func ExecuteSteps(b *Binding, steps ...Step) error {
	for _, step := range steps {
		if err := step.Execute(b); err != nil {
			return b.locate(step, err)
		}
	}
	return nil
}

func location(script string, line int) string {
	if line <= 0 {
		return script
	}
	return fmt.Sprintf("%s:%d", script, line)
}
