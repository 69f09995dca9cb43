package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sf1tzp/symbology-sub000/blobstore/memory"
	"github.com/sf1tzp/symbology-sub000/orm"
)

// newTestService wires the service against a per-test in-memory sqlite
// database and an in-memory blob store.
func newTestService(t *testing.T) (*Service, *memory.MemoryStore) {
	svc, blobs, _ := newTestServiceDB(t)
	return svc, blobs
}

// newTestServiceDB additionally exposes the raw gorm handle for tests that
// need to interfere with the database underneath the service.
func newTestServiceDB(t *testing.T) (*Service, *memory.MemoryStore, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:store_%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, orm.Migrate(gormDB))

	t.Cleanup(func() {
		sqlDB, dbErr := gormDB.DB()
		if dbErr == nil {
			_ = sqlDB.Close()
		}
	})

	blobs := memory.New()

	return NewService(orm.NewDB(gormDB), blobs), blobs, gormDB
}

func ptr[T any](v T) *T {
	return &v
}
