package vdissect

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/artifact"
	"github.com/vuuvv/vdissect/core"
	"github.com/vuuvv/vdissect/inflate"
	"github.com/vuuvv/vdissect/log"
	"github.com/vuuvv/vdissect/node"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"sync"
)

type Direction = core.Direction

const (
	Inbound  = core.Inbound
	Outbound = core.Outbound
)

type Dissector = core.Dissector
type Report = core.Report
type Options = core.Options
type Config = core.Config
type Header = core.Header
type Buffer = core.Buffer
type ScriptSource = core.ScriptSource
type MemorySource = core.MemorySource

var NewDissector = core.NewDissector
var NewBuffer = core.NewBuffer
var NewConfig = core.NewConfig
var LoadConfig = core.LoadConfig
var NewDirSource = core.NewDirSource
var ParseDirection = core.ParseDirection

var (
	ErrOutOfBounds      = core.ErrOutOfBounds
	ErrDecompression    = core.ErrDecompression
	ErrScriptNotFound   = core.ErrScriptNotFound
	ErrScriptCompile    = core.ErrScriptCompile
	ErrScriptEvaluation = core.ErrScriptEvaluation
)

var setupOnce sync.Once

// Setup 注册步骤类型和解压方式, 没有配置 logger 时使用 development logger
func Setup() {
	setupOnce.Do(func() {
		var logger *zap.Logger
		var err error
		if !zap.L().Core().Enabled(zapcore.PanicLevel) {
			logger, err = zap.NewDevelopment()
			if err != nil {
				panic(err)
			}
		} else {
			logger = zap.L()
		}
		log.SetLogger(logger)

		node.Register()
		inflate.Register()
	})
}

// Engine 由配置构造 Dissector 需要的协作者, 用完需要 Close
type Engine struct {
	config  *Config
	options Options
	closers []io.Closer
}

func NewEngine(config *Config) (*Engine, error) {
	Setup()
	if config == nil {
		config = NewConfig()
	}
	if err := config.Setup(); err != nil {
		return nil, errors.WithStack(err)
	}

	logger, err := log.New(&config.Log)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	log.SetLogger(logger)

	inflater, err := core.GetInflater(config.Inflate)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	source := core.NewDirSource(config.ScriptsDir)
	source.Ext = config.ScriptExt

	e := &Engine{
		config: config,
		options: Options{
			Source:    source,
			Inflater:  inflater,
			CostLimit: config.CostLimit,
			MaxRepeat: config.MaxRepeat,
		},
	}

	artifacts := &core.Artifacts{}
	if config.DumpsDir != "" {
		artifacts.Blobs = artifact.NewBlobDir(config.DumpsDir)
	}
	var rows artifact.Rows
	if config.SQLDir != "" {
		rows = append(rows, artifact.NewSQLFile(config.SQLDir))
	}
	if config.SQLite != "" {
		stager, err := artifact.OpenSQLiteStager(config.SQLite)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		e.closers = append(e.closers, stager)
		rows = append(rows, stager)
	}
	if len(rows) > 0 {
		artifacts.Rows = rows
	}
	if artifacts.Blobs != nil || artifacts.Rows != nil {
		e.options.Artifacts = artifacts
	}

	log.Debug("engine ready",
		zap.String("scripts", config.ScriptsDir),
		zap.String("inflate", config.Inflate),
		zap.Bool("artifacts", e.options.Artifacts != nil))
	return e, nil
}

func (e *Engine) Config() *Config {
	return e.config
}

func (e *Engine) Options() Options {
	return e.options
}

// Open 为一个报文创建 Dissector, 每个报文一个实例
func (e *Engine) Open(data []byte, direction Direction) (*Dissector, error) {
	opts := e.options
	return core.NewDissector(data, direction, &opts)
}

func (e *Engine) Close() error {
	var first error
	for _, c := range e.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}
