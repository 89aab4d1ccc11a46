package core

import (
	"github.com/BurntSushi/toml"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/log"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	ScriptsDir string     `yaml:"scripts_dir" toml:"scripts_dir"`
	ScriptExt  string     `yaml:"script_ext" toml:"script_ext"`
	DumpsDir   string     `yaml:"dumps_dir" toml:"dumps_dir"` // 为空时不向脚本暴露 dumpBlob
	SQLDir     string     `yaml:"sql_dir" toml:"sql_dir"`     // 为空且未配置 sqlite 时不暴露 writeSQL
	SQLite     string     `yaml:"sqlite" toml:"sqlite"`       // 生成的语句同时写入这个 sqlite 数据库
	Inflate    string     `yaml:"inflate" toml:"inflate"`
	CostLimit  uint64     `yaml:"cost_limit" toml:"cost_limit"`
	MaxRepeat  int        `yaml:"max_repeat" toml:"max_repeat"`
	Log        log.Config `yaml:"log" toml:"log"`
}

func NewConfig() *Config {
	return &Config{
		ScriptsDir: "Packets",
		ScriptExt:  DefaultScriptExt,
		Inflate:    DefaultInflater,
		MaxRepeat:  DefaultMaxRepeat,
	}
}

// LoadConfig 按扩展名读取 yaml 或 toml 配置
func LoadConfig(path string) (*Config, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg := NewConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err = toml.Decode(string(body), cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	default:
		if err = yaml.Unmarshal(body, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err = cfg.Setup(); err != nil {
		return nil, errors.WithStack(err)
	}
	return cfg, nil
}

func (this *Config) Setup() error {
	if this.ScriptsDir == "" {
		return errors.New("scripts_dir should not be empty")
	}
	if this.ScriptExt == "" {
		this.ScriptExt = DefaultScriptExt
	}
	if !strings.HasPrefix(this.ScriptExt, ".") {
		this.ScriptExt = "." + this.ScriptExt
	}
	if this.Inflate == "" {
		this.Inflate = DefaultInflater
	}
	if this.MaxRepeat < 0 {
		return errors.Errorf("max_repeat should not be negative: %d", this.MaxRepeat)
	}
	if this.MaxRepeat == 0 {
		this.MaxRepeat = DefaultMaxRepeat
	}
	return nil
}
