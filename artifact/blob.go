package artifact

import (
	"fmt"
	"github.com/vuuvv/errors"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName 去掉路径分隔符等字符, 脚本给出的名字不能逃出输出目录
func SafeName(name string) string {
	name = unsafeName.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}

// BlobDir 把字节写到 <Dir>/<opcode>_<name>.bin, 已存在时覆盖
type BlobDir struct {
	Dir string
}

func NewBlobDir(dir string) *BlobDir {
	return &BlobDir{Dir: dir}
}

func (this *BlobDir) Path(opcode uint16, name string) string {
	return filepath.Join(this.Dir, fmt.Sprintf("%d_%s.bin", opcode, SafeName(name)))
}

func (this *BlobDir) WriteBlob(opcode uint16, name string, data []byte) error {
	if len(data) == 0 {
		return errors.New("refuse to write an empty blob")
	}
	if err := os.MkdirAll(this.Dir, 0o755); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(this.Path(opcode, name), data, 0o644))
}
