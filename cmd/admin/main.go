package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"usercenter/internal/core/config"
	"usercenter/internal/core/database"
	"usercenter/internal/core/logger"
	"usercenter/internal/domain"
	"usercenter/internal/repo"
	"usercenter/internal/service"
	"usercenter/pkg/utils"
)

const usage = `usage: admin [--config path] <command>

commands:
  seed                  create the bootstrap users (existing emails are skipped)
  migrate up|down|status
`

type command struct {
	name string
	sub  string
}

var errUsage = errors.New("invalid arguments")

func parseArgs(args []string, stderr io.Writer) (command, string, error) {
	fs := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	cfgPath := fs.StringP("config", "c", os.Getenv("CONFIG_PATH"), "config file path")
	if err := fs.Parse(args); err != nil {
		return command{}, "", err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return command{}, "", errUsage
	}
	switch rest[0] {
	case "seed":
		if len(rest) != 1 {
			return command{}, "", errUsage
		}
		return command{name: "seed"}, *cfgPath, nil
	case "migrate":
		if len(rest) != 2 {
			return command{}, "", errUsage
		}
		switch rest[1] {
		case "up", "down", "status":
			return command{name: "migrate", sub: rest[1]}, *cfgPath, nil
		}
	}
	return command{}, "", errUsage
}

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run returns the process exit code so deferred cleanup always happens before exit.
func run(args []string, stderr io.Writer) int {
	cmd, cfgPath, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprint(stderr, usage)
		return 2
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 1
	}
	log, cleanup := logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg, log)
	if err != nil {
		log.Error("db open", zap.Error(err))
		return 1
	}
	defer func() { _ = database.Close(db) }()

	switch cmd.name {
	case "migrate":
		err = database.Migrate(ctx, db, cfg.DB.Driver, cmd.sub, log)
	case "seed":
		err = seed(ctx, cfg, db, log)
	}
	if err != nil {
		log.Error(cmd.name+" failed", zap.Error(err))
		return 1
	}
	return 0
}

func seed(ctx context.Context, cfg *config.Config, db *gorm.DB, l *zap.Logger) error {
	users := service.DefaultSeedUsers
	if len(cfg.Seed.Users) > 0 {
		users = make([]service.SeedUser, 0, len(cfg.Seed.Users))
		for _, u := range cfg.Seed.Users {
			role, ok := domain.ParseRole(u.Role)
			if !ok && u.Role != "" {
				return fmt.Errorf("seed user %s: unknown role %q", u.Email, u.Role)
			}
			users = append(users, service.SeedUser{Name: u.Name, Email: u.Email, Password: u.Password, Role: role})
		}
	}

	svc := service.NewUserService(
		repo.NewUserRepo(db),
		utils.NewPasswordHasher(cfg.Auth.BcryptCost),
		service.WithLogger(l),
	)
	n, err := svc.Seed(ctx, users)
	if err != nil {
		return err
	}
	l.Info("seed done", zap.Int("created", n), zap.Int("total", len(users)))
	return nil
}

func openDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	return database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       2,
		MaxIdleConns:       1,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThreshold:      time.Duration(cfg.DB.SlowThresholdMs) * time.Millisecond,
		Logger:             l,
	})
}
