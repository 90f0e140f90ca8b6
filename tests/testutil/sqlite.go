package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/light-bringer/procat-changeset/internal/models/m_catalog"
)

// SetupTestDB opens a migrated sqlite database in a temporary directory and
// returns a cleanup function.
func SetupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "catalog.db") + "?_foreign_keys=ON"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open sqlite database")

	require.NoError(t, db.AutoMigrate(m_catalog.All()...), "failed to migrate catalog")

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return db, cleanup
}

// AssertRowCount asserts the number of rows in a table.
func AssertRowCount(t *testing.T, db *gorm.DB, table string, expectedCount int) {
	t.Helper()

	var count int64
	require.NoError(t, db.Table(table).Count(&count).Error)
	require.Equal(t, int64(expectedCount), count, "unexpected row count in %s", table)
}
