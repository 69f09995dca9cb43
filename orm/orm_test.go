package orm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory sqlite database with the same
// TranslateError behavior the postgres setup uses, so unique-constraint
// violations surface as gorm.ErrDuplicatedKey in both.
func newTestDB(t *testing.T) DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(gormDB))

	t.Cleanup(func() {
		sqlDB, dbErr := gormDB.DB()
		if dbErr == nil {
			_ = sqlDB.Close()
		}
	})

	return NewDB(gormDB)
}

func ptr[T any](v T) *T {
	return &v
}
