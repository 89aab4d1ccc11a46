package artifact

import (
	"database/sql"
	"github.com/vuuvv/errors"
	_ "modernc.org/sqlite"
)

// SQLiteStager 把生成的语句直接在 sqlite 数据库中执行, 表需要事先建好
type SQLiteStager struct {
	db *sql.DB
}

func OpenSQLiteStager(path string) (*SQLiteStager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	return &SQLiteStager{db: db}, nil
}

func (this *SQLiteStager) DB() *sql.DB {
	return this.db
}

func (this *SQLiteStager) WriteRow(opcode uint16, table string, fields string, values string) error {
	stmt, err := UpsertStatement(table, fields, values)
	if err != nil {
		return err
	}
	if _, err = this.db.Exec(stmt); err != nil {
		return errors.Wrapf(err, "opcode %d: %s", opcode, stmt)
	}
	return nil
}

func (this *SQLiteStager) Close() error {
	return errors.WithStack(this.db.Close())
}
