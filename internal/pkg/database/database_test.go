package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weibaohui/energyaudit/backend/internal/model"
)

func TestInitDBSqlite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "energyaudit.db")
	db, err := InitDB("sqlite", dsn)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&model.Question{}))
	assert.True(t, db.Migrator().HasTable(&model.TimeEntry{}))
	assert.True(t, db.Migrator().HasIndex(&model.Question{}, "idx_questions_key"))
}

func TestInitDBUnknownType(t *testing.T) {
	_, err := InitDB("postgres", "")
	assert.Error(t, err)
}
