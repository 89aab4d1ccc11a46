package core

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/utils"
	"gopkg.in/yaml.v3"
)

// ScriptDocument 脚本文件的结构, 也可以直接是一个步骤列表
type ScriptDocument struct {
	Structures map[string][]*YamlStep `yaml:"structures"`
	Steps      []*YamlStep            `yaml:"steps"`
}

func ParseScript(body []byte) (*ScriptDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(body, &root); err != nil {
		return nil, errors.WithStack(err)
	}
	doc := &ScriptDocument{}
	if root.Kind == 0 {
		return doc, nil
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&doc.Steps); err != nil {
			return nil, errors.WithStack(err)
		}
	case yaml.MappingNode:
		if err := node.Decode(doc); err != nil {
			return nil, errors.WithStack(err)
		}
	default:
		return nil, errors.Errorf("script should be a list of steps or a mapping with 'steps', line %d", node.Line)
	}
	return doc, nil
}

type Script struct {
	Name  string
	Steps []Step
}

func CompileScript(name string, body []byte, binding *Binding, limits ProgramLimits) (*Script, error) {
	doc, err := ParseScript(body)
	if err != nil {
		return nil, compileError(name, err)
	}
	cc := NewCompileContext(binding.Env(), doc.Structures)
	cc.Limits = limits
	steps, err := CompileSteps(doc.Steps, cc)
	if err != nil {
		return nil, compileError(name, err)
	}
	return &Script{Name: name, Steps: steps}, nil
}

// compileError 位置为 脚本名:行号, 消息保留完整的原因
func compileError(name string, err error) *Error {
	e := newError(KindScriptCompile, err, "%s", causeMessage(err))
	e.Location = name
	if se := innermostStepError(err); se != nil {
		e.Message = causeMessage(se.Err)
		e.Location = location(name, se.Line)
	}
	return e
}

// Run 在已 attach 的 Binding 上执行脚本, 脚本内的 panic 转为执行错误
func (s *Script) Run(b *Binding) (err error) {
	defer utils.Recover(func(msg string, cause error) {
		err = &Error{Kind: KindScriptEvaluation, Message: msg, Location: s.Name, Err: cause}
	})
	return ExecuteSteps(b, s.Steps...)
}
