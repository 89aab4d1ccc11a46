package core

import (
	"context"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/log"
	"go.uber.org/zap"
)

// MaxBlobSize dumpBlob 单次最多导出的字节数
const MaxBlobSize = 2000

// DefaultMaxRepeat repeat 步骤的默认循环上限
const DefaultMaxRepeat = 1 << 16

type BlobWriter interface {
	WriteBlob(opcode uint16, name string, data []byte) error
}

type RowWriter interface {
	WriteRow(opcode uint16, table string, fields string, values string) error
}

// Artifacts 调试产物的输出, 为 nil 的一项不会暴露给脚本
type Artifacts struct {
	Blobs BlobWriter
	Rows  RowWriter
}

type readKind struct {
	fn   string
	tag  string
	typ  *cel.Type
	read func(buf *Buffer) (any, error)
}

func reader[T any](fn func(*Buffer) (T, error)) func(*Buffer) (any, error) {
	return func(buf *Buffer) (any, error) {
		v, err := fn(buf)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

var readKinds = []*readKind{
	{"readBool", TagBool, cel.BoolType, reader((*Buffer).ReadBool)},
	{"readInt8", TagByte, cel.IntType, reader((*Buffer).ReadInt8)},
	{"readUInt8", TagUByte, cel.UintType, reader((*Buffer).ReadUint8)},
	{"readInt16", TagShort, cel.IntType, reader((*Buffer).ReadInt16)},
	{"readUInt16", TagUShort, cel.UintType, reader((*Buffer).ReadUint16)},
	{"readInt32", TagInt, cel.IntType, reader((*Buffer).ReadInt32)},
	{"readUInt32", TagUInt, cel.UintType, reader((*Buffer).ReadUint32)},
	{"readInt64", TagLong, cel.IntType, reader((*Buffer).ReadInt64)},
	{"readUInt64", TagULong, cel.UintType, reader((*Buffer).ReadUint64)},
	{"readFloat", TagFloat, cel.DoubleType, reader((*Buffer).ReadFloat32)},
	{"readDouble", TagDouble, cel.DoubleType, reader((*Buffer).ReadFloat64)},
	{"readString", TagString, cel.StringType, reader(func(buf *Buffer) (string, error) {
		return buf.ReadPrefixedString(8)
	})},
	{"readBigString", TagString, cel.StringType, reader(func(buf *Buffer) (string, error) {
		return buf.ReadPrefixedString(16)
	})},
	{"readRemaining", TagBytes, cel.BytesType, reader(func(buf *Buffer) ([]byte, error) {
		return buf.RemainingBytes(), nil
	})},
}

func findReadKind(fn string) *readKind {
	for _, k := range readKinds {
		if k.fn == fn {
			return k
		}
	}
	return nil
}

// Binding 脚本能看到的全部宿主能力: 游标读取, 注释/日志, 头部字段.
// 一个 Binding 对应一个 Dissector, 每次解析开始时重新 attach.
type Binding struct {
	Fields map[string]any // 命名读取的值
	Vars   map[string]any // let / repeat 设置的变量

	MaxRepeat int

	ctx       context.Context
	buf       *Buffer
	sink      *Sink
	header    *Header
	script    string
	fault     error
	artifacts *Artifacts
	env       *cel.Env
}

func NewBinding(artifacts *Artifacts) (*Binding, error) {
	b := &Binding{
		Fields:    make(map[string]any),
		Vars:      make(map[string]any),
		MaxRepeat: DefaultMaxRepeat,
		ctx:       context.Background(),
		artifacts: artifacts,
	}
	env, err := b.newEnv()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	b.env = env
	return b, nil
}

func (b *Binding) Env() *cel.Env {
	return b.env
}

func (b *Binding) attach(ctx context.Context, buf *Buffer, sink *Sink, header *Header, script string) {
	if ctx == nil {
		ctx = context.Background()
	}
	b.ctx = ctx
	b.buf = buf
	b.sink = sink
	b.header = header
	b.script = script
	b.fault = nil
	b.Fields = make(map[string]any)
	b.Vars = make(map[string]any)
}

func (b *Binding) Context() context.Context {
	return b.ctx
}

func (b *Binding) Script() string {
	return b.script
}

func (b *Binding) Read(fn string, name string) (any, error) {
	k := findReadKind(fn)
	if k == nil {
		return nil, errors.Errorf("unknown read function '%s'", fn)
	}
	return b.read(k, name)
}

func (b *Binding) read(k *readKind, name string) (any, error) {
	v, err := k.read(b.buf)
	if err != nil {
		return nil, err
	}
	b.record(name, k.tag, v)
	return v, nil
}

func (b *Binding) record(name string, tag string, v any) {
	if name == "" {
		return
	}
	b.sink.Field(name, tag, v)
	b.Fields[name] = normalize(v)
}

func (b *Binding) ReadFixedString(n int, name string) (string, error) {
	s, err := b.buf.ReadFixedString(n)
	if err != nil {
		return "", err
	}
	b.record(name, TagString, s)
	return s, nil
}

func (b *Binding) Skip(n int) error {
	return b.buf.Skip(n)
}

func (b *Binding) Comment(text string) {
	b.sink.Comment(text)
}

func (b *Binding) Log(value any) {
	b.sink.Log(value)
}

func (b *Binding) Opcode() uint16 {
	return b.header.Opcode
}

func (b *Binding) DeclaredSize() uint32 {
	return b.header.DeclaredSize
}

func (b *Binding) Direction() Direction {
	return b.buf.Direction()
}

func (b *Binding) RemainingLength() int {
	return b.buf.Remaining()
}

// DumpBlob 导出接下来的 size 个字节, size 为 -1 表示剩余全部.
// 0 字节或超过 MaxBlobSize 时拒绝, 不读取也不写文件.
func (b *Binding) DumpBlob(name string, size int) (bool, error) {
	if b.artifacts == nil || b.artifacts.Blobs == nil {
		return false, errors.New("blob output not configured")
	}
	if size == -1 {
		size = b.buf.Remaining()
	}
	if size <= 0 || size > MaxBlobSize {
		log.Logger().Warn("dumpBlob refused", zap.String("name", name), zap.Int("size", size), zap.String("script", b.script))
		return false, nil
	}
	data, err := b.buf.ReadBytes(size)
	if err != nil {
		return false, err
	}
	if err = b.artifacts.Blobs.WriteBlob(b.header.Opcode, name, data); err != nil {
		log.Warn(errors.Wrapf(err, "dumpBlob %s", name), zap.String("script", b.script))
		return false, nil
	}
	return true, nil
}

func (b *Binding) WriteSQL(table string, fields string, values string) (bool, error) {
	if b.artifacts == nil || b.artifacts.Rows == nil {
		return false, errors.New("row output not configured")
	}
	if err := b.artifacts.Rows.WriteRow(b.header.Opcode, table, fields, values); err != nil {
		log.Warn(errors.Wrapf(err, "writeSQL %s", table), zap.String("script", b.script))
		return false, nil
	}
	return true, nil
}

func (b *Binding) takeFault() error {
	err := b.fault
	b.fault = nil
	return err
}

// locate 给错误补上脚本位置, 非引擎错误视为脚本执行错误
func (b *Binding) locate(step Step, err error) error {
	if e, ok := err.(*Error); ok {
		if e.Location != "" {
			return e
		}
		located := *e
		located.Location = location(b.script, step.GetLine())
		return &located
	}
	return &Error{
		Kind:     KindScriptEvaluation,
		Message:  causeMessage(err),
		Location: location(b.script, step.GetLine()),
		Err:      err,
	}
}

func (b *Binding) call(fn func() (any, error)) ref.Val {
	v, err := fn()
	if err != nil {
		// 同一个表达式里只保留第一个错误
		if b.fault == nil {
			b.fault = err
		}
		return types.NewErr("%s", err.Error())
	}
	return toVal(v)
}

func (b *Binding) newEnv() (*cel.Env, error) {
	opts := []cel.EnvOption{
		cel.Variable("vars", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("fields", cel.MapType(cel.StringType, cel.DynType)),
	}

	for _, k := range readKinds {
		k := k
		opts = append(opts, cel.Function(k.fn,
			cel.Overload(k.fn+"_void", []*cel.Type{}, k.typ,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return b.call(func() (any, error) { return b.read(k, "") })
				})),
			cel.Overload(k.fn+"_string", []*cel.Type{cel.StringType}, k.typ,
				cel.UnaryBinding(func(name ref.Val) ref.Val {
					return b.call(func() (any, error) { return b.read(k, cast.ToString(name.Value())) })
				})),
		))
	}

	opts = append(opts,
		cel.Function("readFixedString",
			cel.Overload("readFixedString_dyn", []*cel.Type{cel.DynType}, cel.StringType,
				cel.UnaryBinding(func(n ref.Val) ref.Val {
					return b.call(func() (any, error) { return b.readFixedString(n, "") })
				})),
			cel.Overload("readFixedString_dyn_string", []*cel.Type{cel.DynType, cel.StringType}, cel.StringType,
				cel.BinaryBinding(func(n ref.Val, name ref.Val) ref.Val {
					return b.call(func() (any, error) { return b.readFixedString(n, cast.ToString(name.Value())) })
				})),
		),
		cel.Function("skip",
			cel.Overload("skip_dyn", []*cel.Type{cel.DynType}, cel.NullType,
				cel.UnaryBinding(func(n ref.Val) ref.Val {
					return b.call(func() (any, error) {
						size, err := argInt(n)
						if err != nil {
							return nil, err
						}
						return nil, b.Skip(size)
					})
				})),
		),
		cel.Function("comment",
			cel.Overload("comment_string", []*cel.Type{cel.StringType}, cel.NullType,
				cel.UnaryBinding(func(text ref.Val) ref.Val {
					b.Comment(cast.ToString(text.Value()))
					return types.NullValue
				})),
		),
		cel.Function("log",
			cel.Overload("log_dyn", []*cel.Type{cel.DynType}, cel.NullType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					b.Log(v.Value())
					return types.NullValue
				})),
		),
		cel.Function("opcode",
			cel.Overload("opcode_void", []*cel.Type{}, cel.IntType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.Int(b.Opcode())
				})),
		),
		cel.Function("declaredSize",
			cel.Overload("declaredSize_void", []*cel.Type{}, cel.IntType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.Int(b.DeclaredSize())
				})),
		),
		cel.Function("direction",
			cel.Overload("direction_void", []*cel.Type{}, cel.StringType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.String(b.Direction().String())
				})),
		),
		cel.Function("remainingLength",
			cel.Overload("remainingLength_void", []*cel.Type{}, cel.IntType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.Int(b.RemainingLength())
				})),
		),
	)

	if b.artifacts != nil && b.artifacts.Blobs != nil {
		opts = append(opts, cel.Function("dumpBlob",
			cel.Overload("dumpBlob_string_dyn", []*cel.Type{cel.StringType, cel.DynType}, cel.BoolType,
				cel.BinaryBinding(func(name ref.Val, size ref.Val) ref.Val {
					return b.call(func() (any, error) {
						n, err := argInt(size)
						if err != nil {
							return nil, err
						}
						return b.DumpBlob(cast.ToString(name.Value()), n)
					})
				})),
		))
	}
	if b.artifacts != nil && b.artifacts.Rows != nil {
		opts = append(opts, cel.Function("writeSQL",
			cel.Overload("writeSQL_string_string_string", []*cel.Type{cel.StringType, cel.StringType, cel.StringType}, cel.BoolType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return b.call(func() (any, error) {
						return b.WriteSQL(cast.ToString(args[0].Value()), cast.ToString(args[1].Value()), cast.ToString(args[2].Value()))
					})
				})),
		))
	}

	return cel.NewEnv(opts...)
}

func (b *Binding) readFixedString(n ref.Val, name string) (any, error) {
	size, err := argInt(n)
	if err != nil {
		return nil, err
	}
	return b.ReadFixedString(size, name)
}

func argInt(v ref.Val) (int, error) {
	n, ok := ToInt(v.Value())
	if !ok {
		return 0, errors.Errorf("expect a number, got %v (%s)", v.Value(), v.Type())
	}
	return n, nil
}

func toVal(v any) ref.Val {
	switch x := v.(type) {
	case nil:
		return types.NullValue
	case ref.Val:
		return x
	case bool:
		return types.Bool(x)
	case int8:
		return types.Int(x)
	case int16:
		return types.Int(x)
	case int32:
		return types.Int(x)
	case int64:
		return types.Int(x)
	case int:
		return types.Int(x)
	case uint8:
		return types.Uint(x)
	case uint16:
		return types.Uint(x)
	case uint32:
		return types.Uint(x)
	case uint64:
		return types.Uint(x)
	case float32:
		return types.Double(x)
	case float64:
		return types.Double(x)
	case string:
		return types.String(x)
	case []byte:
		return types.Bytes(x)
	}
	return types.DefaultTypeAdapter.NativeToValue(v)
}

// normalize 把读出的值转成 CEL 直接支持的类型
func normalize(v any) any {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case float32:
		return float64(x)
	}
	return v
}
