package core

import (
	"fmt"
	"github.com/spf13/cast"
	"strings"
)

// 字段类型标签, 出现在报告的 "name [Tag] : value" 行中
const (
	TagBool   = "Bool"
	TagByte   = "Byte"
	TagUByte  = "UByte"
	TagShort  = "Short"
	TagUShort = "UShort"
	TagInt    = "Int"
	TagUInt   = "UInt"
	TagLong   = "Long"
	TagULong  = "ULong"
	TagFloat  = "Float"
	TagDouble = "Double"
	TagString = "String"
	TagBytes  = "Bytes"
)

// Sink 只追加的注释日志, 每次解析开始时清空一次
type Sink struct {
	sb strings.Builder
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Reset() {
	s.sb.Reset()
}

func (s *Sink) Len() int {
	return s.sb.Len()
}

// Field 未命名的读取不记录
func (s *Sink) Field(name string, tag string, value any) {
	if name == "" {
		return
	}
	fmt.Fprintf(&s.sb, "%s [%s] : %s\n\n", name, tag, ToString(value))
}

func (s *Sink) Comment(text string) {
	s.sb.WriteString("// ")
	s.sb.WriteString(text)
	s.sb.WriteString("\n")
}

func (s *Sink) Log(value any) {
	s.sb.WriteString("[LOG] ")
	s.sb.WriteString(ToString(value))
	s.sb.WriteString("\n\n")
}

func (s *Sink) Line(format string, args ...any) {
	fmt.Fprintf(&s.sb, format, args...)
	s.sb.WriteString("\n")
}

func (s *Sink) Raw(text string) {
	s.sb.WriteString(text)
}

func (s *Sink) String() string {
	return s.sb.String()
}

func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return FormatHex(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return v.String()
	case error:
		return fmt.Sprintf("%+v", v)
	}
	str, err := cast.ToStringE(val)
	if err != nil {
		return fmt.Sprintf("%v", val)
	}
	return str
}
