package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "migrate.db") + "?_pragma=foreign_keys(1)"

	db, err := Connect(dsn)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "migrations can be run again")

	rows := []struct {
		Name string `db:"name"`
	}{}

	err = db.Query(t.Context(), &rows, `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	require.NoError(t, err)

	tables := []string{}
	for _, row := range rows {
		tables = append(tables, row.Name)
	}

	assert.Equal(t, []string{"admin_users", "photos", "projects", "publications"}, tables)
}

func TestConnect_ReadOnlyHandleRejectsWrites(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ro.db")

	rw, err := Connect("file:" + file)
	require.NoError(t, err)
	require.NoError(t, Migrate(rw))

	ro, err := Connect("file:" + file + "?mode=ro")
	require.NoError(t, err)

	_, err = ro.Exec(t.Context(), `DELETE FROM projects`)
	assert.Error(t, err)
}
