package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"snippets/internal/logging"
	"snippets/internal/model"
)

// Store owns the process-wide database pool. It is opened once at startup and
// closed once at shutdown.
type Store struct {
	DB     *gorm.DB
	driver string
	logger logging.Logger
}

// Open connects to the database for the given driver, verifies the connection
// and migrates the users and snippets tables.
func Open(ctx context.Context, driver, dsn string, logger logging.Logger) (*Store, error) {
	logger = logger.With("component", "db", "driver", driver)

	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logger.StdLogger(slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		logger.Error(ctx, "database connection error", "error", err)
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error(ctx, "database connection error", "error", err)
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	logger.Info(ctx, "database connected")

	if err := gormDB.WithContext(ctx).AutoMigrate(&model.User{}, &model.Snippet{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{DB: gormDB, driver: driver, logger: logger}, nil
}

// Close releases the pool.
func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		s.logger.Error(ctx, "database close error", "error", err)
		return fmt.Errorf("close %s: %w", s.driver, err)
	}
	s.logger.Info(ctx, "database disconnected")
	return nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
