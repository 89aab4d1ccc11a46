package artifact

import (
	"fmt"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdissect/core"
	"github.com/vuuvv/vdissect/log"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"strings"
)

// UpsertStatement 生成一条 REPLACE INTO 语句, fields 和 values 由脚本按 SQL 语法给出
func UpsertStatement(table string, fields string, values string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" || strings.ContainsAny(table, "`;") {
		return "", errors.Errorf("invalid table name '%s'", table)
	}
	if strings.TrimSpace(fields) == "" || strings.TrimSpace(values) == "" {
		return "", errors.New("fields and values should not be empty")
	}
	if err := checkFragment(fields); err != nil {
		return "", errors.Wrapf(err, "fields of %s", table)
	}
	if err := checkFragment(values); err != nil {
		return "", errors.Wrapf(err, "values of %s", table)
	}
	return fmt.Sprintf("REPLACE INTO `%s` (%s) VALUES(%s);", table, fields, values), nil
}

// SQLFile 每次调用追加一行语句到 <Dir>/<opcode>_<table>.sql
type SQLFile struct {
	Dir string
}

func NewSQLFile(dir string) *SQLFile {
	return &SQLFile{Dir: dir}
}

func (this *SQLFile) Path(opcode uint16, table string) string {
	return filepath.Join(this.Dir, fmt.Sprintf("%d_%s.sql", opcode, SafeName(table)))
}

func (this *SQLFile) WriteRow(opcode uint16, table string, fields string, values string) error {
	stmt, err := UpsertStatement(table, fields, values)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(this.Dir, 0o755); err != nil {
		return errors.WithStack(err)
	}
	f, err := os.OpenFile(this.Path(opcode, table), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		_ = f.Close()
	}()
	if _, err = f.WriteString(stmt + "\n"); err != nil {
		return errors.WithStack(err)
	}
	log.Debug("sql row written", zap.Uint16("opcode", opcode), zap.String("statement", stmt))
	return nil
}

// Rows 依次写入多个输出, 第一个错误即返回
type Rows []core.RowWriter

func (rows Rows) WriteRow(opcode uint16, table string, fields string, values string) error {
	for _, w := range rows {
		if err := w.WriteRow(opcode, table, fields, values); err != nil {
			return err
		}
	}
	return nil
}

// checkFragment 脚本给出的列表只能是括号内的一段: 引号外不允许 ; 注释和不配对的括号
func checkFragment(text string) error {
	var quote byte
	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				// 两个连续引号是转义
				if i+1 < len(text) && text[i+1] == quote {
					i++
					continue
				}
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case ';':
			return errors.Errorf("statement separator at offset %d", i)
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return errors.Errorf("unbalanced ')' at offset %d", i)
			}
		case '-', '/':
			if i+1 < len(text) && ((c == '-' && text[i+1] == '-') || (c == '/' && text[i+1] == '*')) {
				return errors.Errorf("comment at offset %d", i)
			}
		}
	}
	if quote != 0 {
		return errors.Errorf("unterminated %c quote", quote)
	}
	if depth != 0 {
		return errors.New("unbalanced '('")
	}
	return nil
}
