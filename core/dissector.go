package core

import (
	"bytes"
	"context"
	"github.com/google/uuid"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/log"
	"go.uber.org/zap"
)

type Options struct {
	Source    ScriptSource
	Inflater  Inflater
	Artifacts *Artifacts
	CostLimit uint64 // 单个表达式的 CEL 代价上限, 0 不限制
	MaxRepeat int    // repeat 步骤的循环上限, 0 使用 DefaultMaxRepeat
}

// Dissector 持有一个报文, 可以多次执行解析; 不支持并发调用
type Dissector struct {
	opts         Options
	direction    Direction
	buf          *Buffer
	header       *Header
	decompressed bool
	sink         *Sink
	binding      *Binding
	script       *Script // 第一次成功加载后缓存
	inline       *Script
	inlineBody   []byte
}

func NewDissector(data []byte, direction Direction, opts *Options) (*Dissector, error) {
	d := &Dissector{
		direction: direction,
		buf:       NewBuffer(data, direction),
		sink:      NewSink(),
	}
	if opts != nil {
		d.opts = *opts
	}
	if d.opts.Inflater == nil {
		// 未注册时留空, Decompress 会报错
		d.opts.Inflater, _ = GetInflater(DefaultInflater)
	}
	binding, err := NewBinding(d.opts.Artifacts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if d.opts.MaxRepeat > 0 {
		binding.MaxRepeat = d.opts.MaxRepeat
	}
	d.binding = binding
	return d, nil
}

func (d *Dissector) Direction() Direction {
	return d.direction
}

func (d *Dissector) Decompressed() bool {
	return d.decompressed
}

// Bytes 当前生效的报文字节, 解压后为 头部 + 解压后的负载
func (d *Dissector) Bytes() []byte {
	return d.buf.Bytes()
}

func (d *Dissector) Buffer() *Buffer {
	return d.buf
}

// Header 返回报文头, 不移动当前游标
func (d *Dissector) Header() (*Header, error) {
	if d.header != nil {
		return d.header, nil
	}
	h, err := ReadHeader(&Buffer{data: d.buf.data, direction: d.direction})
	if err != nil {
		return nil, err
	}
	d.header = h
	return h, nil
}

// readHeader 解压后不再重新解析, 直接跳过保存下来的头部字节
func (d *Dissector) readHeader() (*Header, error) {
	if d.decompressed {
		if err := d.buf.Skip(d.header.Len()); err != nil {
			return nil, err
		}
		return d.header, nil
	}
	h, err := ReadHeader(d.buf)
	if err != nil {
		return nil, err
	}
	d.header = h
	return h, nil
}

// Decompress 把头部之后的负载解压并替换当前报文, 只会执行一次.
// 失败时报文, 游标和状态都保持不变.
func (d *Dissector) Decompress() error {
	if d.decompressed {
		return nil
	}
	h, err := d.Header()
	if err != nil {
		return err
	}
	if d.opts.Inflater == nil {
		return newError(KindDecompression, nil, "no inflater configured")
	}
	payload := d.buf.data[h.Len():]
	inflated, err := d.opts.Inflater.Inflate(bytes.Clone(payload))
	if err != nil {
		return newError(KindDecompression, errors.WithStack(err), "inflate %d bytes: %s", len(payload), err)
	}

	data := make([]byte, 0, h.Len()+len(inflated))
	data = append(data, h.Raw...)
	data = append(data, inflated...)
	d.buf = &Buffer{data: data, direction: d.direction}
	d.decompressed = true

	log.Debug("packet decompressed",
		zap.Uint16("opcode", h.Opcode),
		zap.Int("compressed", len(payload)),
		zap.Int("inflated", len(inflated)))
	return nil
}

// Dissect 执行一次完整解析, 脚本由 ScriptSource 提供
func (d *Dissector) Dissect(ctx context.Context) (*Report, error) {
	return d.run(ctx, nil)
}

// DissectWith 使用给定的脚本内容代替文件查找
func (d *Dissector) DissectWith(ctx context.Context, name string, body []byte) (*Report, error) {
	return d.run(ctx, &ScriptFile{Name: name, Body: body})
}

func (d *Dissector) run(ctx context.Context, inline *ScriptFile) (*Report, error) {
	report := &Report{
		PassId:       uuid.NewString(),
		Direction:    d.direction,
		Decompressed: d.decompressed,
	}
	logger := log.Pass(report.PassId, d.direction)

	// 1. 重置
	d.sink.Reset()
	d.buf.Reset()

	// 2. 报文头
	h, err := d.readHeader()
	if err != nil {
		logger.Debug("read header failed", zap.Error(err))
		return d.finish(report, err), err
	}
	report.Opcode = h.Opcode
	report.DeclaredSize = h.DeclaredSize
	logger = logger.With(zap.Uint16("opcode", h.Opcode))

	// 3. 查找脚本
	script, resolveErr := d.resolve(inline, h)

	// 4. 固定的报告头
	writePreamble(d.sink, h, d.direction)

	if resolveErr != nil {
		logger.Debug("script not available", zap.Error(resolveErr))
		if KindOf(resolveErr) == 0 {
			// 读取脚本时的 IO 错误等, 不属于引擎错误
			return d.finish(report, resolveErr), resolveErr
		}
		d.sink.Line("[ERROR] %s", resolveErr.Error())
		writeTrailer(d.sink, d.buf.RemainingBytes())
		return d.finish(report, resolveErr), resolveErr
	}

	// 5. 执行脚本
	d.binding.attach(ctx, d.buf, d.sink, h, script.Name)
	runErr := script.Run(d.binding)
	if runErr != nil {
		logger.Debug("script failed", zap.Error(runErr))
		if KindOf(runErr) == KindOutOfBounds {
			return d.finish(report, runErr), runErr
		}
		d.sink.Line("[ERROR] %s", runErr.Error())
	}

	// 6. 剩余字节
	writeTrailer(d.sink, d.buf.RemainingBytes())

	logger.Debug("pass finished", zap.Int("length", d.sink.Len()))
	return d.finish(report, runErr), runErr
}

func (d *Dissector) finish(report *Report, err error) *Report {
	report.Text = d.sink.String()
	report.Err = err
	return report
}

func (d *Dissector) resolve(inline *ScriptFile, h *Header) (*Script, error) {
	limits := ProgramLimits{CostLimit: d.opts.CostLimit}
	if inline != nil {
		if d.inline != nil && d.inline.Name == inline.Name && bytes.Equal(d.inlineBody, inline.Body) {
			return d.inline, nil
		}
		script, err := CompileScript(inline.Name, inline.Body, d.binding, limits)
		if err != nil {
			return nil, err
		}
		d.inline = script
		d.inlineBody = bytes.Clone(inline.Body)
		return script, nil
	}

	if d.script != nil {
		return d.script, nil
	}
	if d.opts.Source == nil {
		return nil, scriptNotFound(d.direction, h.Opcode)
	}
	file, err := d.opts.Source.Lookup(d.direction, h.Opcode)
	if err != nil {
		return nil, err
	}
	script, err := CompileScript(file.Name, file.Body, d.binding, limits)
	if err != nil {
		return nil, err
	}
	d.script = script
	return script, nil
}
