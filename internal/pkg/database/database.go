package database

import (
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnectAttempts int
	AutoMigrate     bool
}

// Connect opens the database, retrying with exponential backoff while the
// server is still coming up.
func Connect(dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	attempts := opts.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < attempts; i++ {
		db, err = open(dialector)
		if err == nil || i == attempts-1 {
			break
		}
		d := b.Duration()
		log.Warn().Err(err).Int("attempt", i+1).Dur("retryIn", d).Msg("Database not reachable")
		time.Sleep(d)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDb.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDb.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if opts.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.Tables()...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDb, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDb.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
