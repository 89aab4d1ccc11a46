package core

import (
	"fmt"
	"github.com/vuuvv/errors"
	"os"
	"path/filepath"
)

const DefaultScriptExt = ".yaml"

type ScriptFile struct {
	Name string // 报错时显示的位置
	Body []byte
}

// ScriptSource 按 (方向, 操作码) 查找解析脚本, 找不到时返回 ErrScriptNotFound
type ScriptSource interface {
	Lookup(direction Direction, opcode uint16) (*ScriptFile, error)
}

// ScriptKey 约定的脚本路径, 例如 Server/42
func ScriptKey(direction Direction, opcode uint16) string {
	return fmt.Sprintf("%s/%d", direction.Folder(), opcode)
}

func scriptNotFound(direction Direction, opcode uint16) *Error {
	return newError(KindScriptNotFound, nil, "no dissection script for %s", ScriptKey(direction, opcode))
}

// DirSource 从目录中读取 <Root>/Client/<opcode>.yaml 或 <Root>/Server/<opcode>.yaml
type DirSource struct {
	Root string
	Ext  string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root, Ext: DefaultScriptExt}
}

func (s *DirSource) Path(direction Direction, opcode uint16) string {
	ext := s.Ext
	if ext == "" {
		ext = DefaultScriptExt
	}
	return filepath.Join(s.Root, direction.Folder(), fmt.Sprintf("%d%s", opcode, ext))
}

func (s *DirSource) Lookup(direction Direction, opcode uint16) (*ScriptFile, error) {
	path := s.Path(direction, opcode)
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, scriptNotFound(direction, opcode)
		}
		return nil, errors.WithStack(err)
	}
	return &ScriptFile{Name: path, Body: body}, nil
}

// MemorySource 以 ScriptKey 为键的内存脚本, 测试和内嵌脚本使用
type MemorySource map[string]string

func (s MemorySource) Lookup(direction Direction, opcode uint16) (*ScriptFile, error) {
	key := ScriptKey(direction, opcode)
	body, ok := s[key]
	if !ok {
		return nil, scriptNotFound(direction, opcode)
	}
	return &ScriptFile{Name: key, Body: []byte(body)}, nil
}
