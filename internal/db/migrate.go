package db

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/kunder-tools/internal/config"
	"github.com/diewo77/kunder-tools/internal/models"
)

const connectAttempts = 5

var passwordRe = regexp.MustCompile(`(password=|://[^:/@]+:)([^\s@]+)`)

// MaskDSN hides the password in a key=value or URL style DSN.
func MaskDSN(dsn string) string {
	return passwordRe.ReplaceAllString(dsn, `${1}***`)
}

func gormConfig(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}

// Connect opens the hosted PostgreSQL store, retrying while it comes up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DSN())
	debug := log.GetLevel() <= zerolog.DebugLevel
	log.Debug().Str("dsn", MaskDSN(dsn)).Msg("connecting to database")

	var conn *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), gormConfig(debug))
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("database connection failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}
	if err := conn.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return conn, nil
}

// OpenLocal opens the file-based sqlite database the application used before the
// hosted store.
func OpenLocal(path string, debug bool) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(path), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("open local database %s: %w", path, err)
	}
	return conn, nil
}

// Migrate runs AutoMigrate for all models.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Customer{},
		&models.UserAccount{},
		&models.ClientAccount{},
	)
}
