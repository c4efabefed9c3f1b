package database

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"usercenter/internal/core/database/migrations"
)

func gooseDialect(driver string) (goose.Dialect, error) {
	switch driver {
	case "postgres":
		return goose.DialectPostgres, nil
	case "mysql":
		return goose.DialectMySQL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
}

func newProvider(db *gorm.DB, driver string) (*goose.Provider, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	ms, err := migrations.All(driver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, sqlDB, nil,
		goose.WithGoMigrations(ms...),
		goose.WithDisableGlobalRegistry(true),
	)
}

// Migrate runs a goose command: "up", "down" or "status".
func Migrate(ctx context.Context, db *gorm.DB, driver, command string, l *zap.Logger) error {
	if l == nil {
		l = zap.NewNop()
	}
	p, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		res, err := p.Up(ctx)
		for _, r := range res {
			l.Info("migration applied", zap.Int64("version", r.Source.Version), zap.Duration("took", r.Duration))
		}
		return err
	case "down":
		r, err := p.Down(ctx)
		if r != nil {
			l.Info("migration rolled back", zap.Int64("version", r.Source.Version))
		}
		return err
	case "status":
		sts, err := p.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range sts {
			l.Info("migration status",
				zap.Int64("version", s.Source.Version),
				zap.String("state", string(s.State)),
				zap.Time("applied_at", s.AppliedAt),
			)
		}
		return nil
	}
	return fmt.Errorf("unknown migrate command %q", command)
}
