package artifact

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuuvv/errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeName(t *testing.T) {
	assert.Equal(t, "item_list", SafeName("item list"))
	assert.Equal(t, "_etc_passwd", SafeName("../etc/passwd"))
	assert.Equal(t, "a.b-c_d", SafeName("a.b-c_d"))
	assert.Equal(t, "_", SafeName(""))
	assert.Equal(t, "_", SafeName(".."))
}

func TestBlobDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	blobs := NewBlobDir(dir)
	require.NoError(t, blobs.WriteBlob(42, "payload", []byte{1, 2, 3}))

	data, err := os.ReadFile(filepath.Join(dir, "42_payload.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	// 同名覆盖
	require.NoError(t, blobs.WriteBlob(42, "payload", []byte{9}))
	data, err = os.ReadFile(blobs.Path(42, "payload"))
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, data)

	assert.Error(t, blobs.WriteBlob(42, "empty", nil))
}

func TestUpsertStatement(t *testing.T) {
	stmt, err := UpsertStatement("items", "`id`, `name`", "1, 'sword'")
	require.NoError(t, err)
	assert.Equal(t, "REPLACE INTO `items` (`id`, `name`) VALUES(1, 'sword');", stmt)

	_, err = UpsertStatement("items`; DROP TABLE x", "id", "1")
	assert.Error(t, err)
	_, err = UpsertStatement("", "id", "1")
	assert.Error(t, err)
	_, err = UpsertStatement("items", " ", "1")
	assert.Error(t, err)
}

func TestUpsertStatementSingleStatement(t *testing.T) {
	for _, values := range []string{
		"1); DROP TABLE secrets; --",
		"1) -- trailing",
		"1 /* hidden */",
		"(1",
		"'open",
	} {
		_, err := UpsertStatement("items", "id", values)
		assert.Error(t, err, values)
	}
	_, err := UpsertStatement("items", "id); DELETE FROM secrets; --", "1")
	assert.Error(t, err)

	stmt, err := UpsertStatement("items", "id, name", "1, 'a;b -- it''s (fine'")
	require.NoError(t, err)
	assert.Equal(t, "REPLACE INTO `items` (id, name) VALUES(1, 'a;b -- it''s (fine');", stmt)

	_, err = UpsertStatement("items", "id, created", "1, datetime('now')")
	assert.NoError(t, err)
}

func TestSQLFileAppends(t *testing.T) {
	dir := t.TempDir()
	rows := NewSQLFile(dir)
	require.NoError(t, rows.WriteRow(7, "items", "id", "1"))
	require.NoError(t, rows.WriteRow(7, "items", "id", "2"))

	data, err := os.ReadFile(filepath.Join(dir, "7_items.sql"))
	require.NoError(t, err)
	assert.Equal(t, "REPLACE INTO `items` (id) VALUES(1);\nREPLACE INTO `items` (id) VALUES(2);\n", string(data))
}

type failingRows struct{}

func (failingRows) WriteRow(opcode uint16, table string, fields string, values string) error {
	return errors.New("disk full")
}

func TestRowsStopsAtFirstError(t *testing.T) {
	dir := t.TempDir()
	rows := Rows{failingRows{}, NewSQLFile(dir)}
	assert.Error(t, rows.WriteRow(1, "items", "id", "1"))
	_, err := os.Stat(filepath.Join(dir, "1_items.sql"))
	assert.True(t, os.IsNotExist(err))
}

func TestSQLiteStager(t *testing.T) {
	stager, err := OpenSQLiteStager(filepath.Join(t.TempDir(), "stage.db"))
	require.NoError(t, err)
	defer func() {
		_ = stager.Close()
	}()

	_, err = stager.DB().Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	require.NoError(t, stager.WriteRow(9, "items", "id, name", "1, 'sword'"))
	require.NoError(t, stager.WriteRow(9, "items", "id, name", "1, 'shield'"))
	require.NoError(t, stager.WriteRow(9, "items", "id, name", "2, 'bow'"))

	var count int
	require.NoError(t, stager.DB().QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 2, count)

	var name string
	require.NoError(t, stager.DB().QueryRow("SELECT name FROM items WHERE id = 1").Scan(&name))
	assert.Equal(t, "shield", name)

	assert.Error(t, stager.WriteRow(9, "missing", "id", "1"))
}

func TestSQLiteStagerRunsOneStatement(t *testing.T) {
	stager, err := OpenSQLiteStager(filepath.Join(t.TempDir(), "stage.db"))
	require.NoError(t, err)
	defer func() {
		_ = stager.Close()
	}()
	_, err = stager.DB().Exec("CREATE TABLE items (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	_, err = stager.DB().Exec("CREATE TABLE secrets (v TEXT)")
	require.NoError(t, err)

	assert.Error(t, stager.WriteRow(1, "items", "id", "1); DROP TABLE secrets; --"))

	var tables int
	require.NoError(t, stager.DB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'secrets'").Scan(&tables))
	assert.Equal(t, 1, tables)

	var rows int
	require.NoError(t, stager.DB().QueryRow("SELECT COUNT(*) FROM items").Scan(&rows))
	assert.Equal(t, 0, rows)
}
