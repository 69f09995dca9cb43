package orm

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sf1tzp/symbology-sub000/config"
)

// DB wraps the gorm handle. Operations take their handle from the receiver,
// so a transaction-scoped DB (see UseTransaction) runs everything inside
// that transaction; there is no package-level session state.
type DB struct {
	dbGorm *gorm.DB
}

// NewDB wraps an already opened gorm handle. Used by tests and by callers
// that manage the connection themselves.
func NewDB(dbGorm *gorm.DB) DB {
	return DB{dbGorm: dbGorm}
}

// UseTransaction returns a DB bound to the given transaction handle.
func (db DB) UseTransaction(tx *gorm.DB) DB {
	return DB{dbGorm: tx}
}

// Gorm exposes the underlying handle for transaction management.
func (db DB) Gorm() *gorm.DB {
	return db.dbGorm
}

// InitDB connects to postgres and runs migrations. Fatal on failure: the
// service cannot run without its backing store.
func InitDB(cfg *config.AppConfig) DB {
	dsn := fmt.Sprintf(
		"host='%s' port='%d' user='%s' password='%s' dbname='%s' sslmode='%s'",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.SSLMode,
	)

	dsnRedacted := strings.ReplaceAll(dsn, cfg.Database.Password, "*****")
	log.Debug().
		Msgf("Connecting to postgres using the following information: %s", dsnRedacted)

	dbGorm, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the database")
	}

	log.Debug().Msg("Successfully connected to the database")

	if err := Migrate(dbGorm); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	return DB{dbGorm: dbGorm}
}

// Migrate runs schema migrations for every table the store owns.
func Migrate(dbGorm *gorm.DB) error {
	err := dbGorm.AutoMigrate(
		&CompanyGroup{},
		&Company{},
		&Filing{},
		&Document{},
		&ModelConfig{},
		&Prompt{},
		&Artifact{},
		&ArtifactSource{},
		&ArtifactDocument{},
	)
	if err != nil {
		return &DatabaseError{Inner: fmt.Errorf("migrate: %w", err)}
	}

	return nil
}
