// Package migrations holds the versioned schema of the users table.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// All returns every migration for dialect ("postgres" or "mysql") in version order.
func All(dialect string) ([]*goose.Migration, error) {
	up, ok := createUsers[dialect]
	if !ok {
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	return []*goose.Migration{
		goose.NewGoMigration(1,
			&goose.GoFunc{RunTx: exec(up...)},
			&goose.GoFunc{RunTx: exec(`DROP TABLE IF EXISTS users`)},
		),
	}, nil
}

// 00001: users 表。索引名与 GORM 模型标签生成的一致
var createUsers = map[string][]string{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			name          VARCHAR(64)  NOT NULL,
			email         VARCHAR(191) NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			role          VARCHAR(16)  NOT NULL DEFAULT 'USER',
			status        VARCHAR(16)  NOT NULL DEFAULT 'ACTIVE',
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role)`,
		`CREATE INDEX IF NOT EXISTS idx_users_status ON users (status)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name          VARCHAR(64)  NOT NULL,
			email         VARCHAR(191) NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			role          VARCHAR(16)  NOT NULL DEFAULT 'USER',
			status        VARCHAR(16)  NOT NULL DEFAULT 'ACTIVE',
			created_at    DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
			updated_at    DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
			UNIQUE KEY idx_users_email (email),
			KEY idx_users_role (role),
			KEY idx_users_status (status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
}

// exec runs statements one by one; the mysql driver rejects multi-statement Exec by default.
func exec(stmts ...string) func(ctx context.Context, tx *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s); err != nil {
				return err
			}
		}
		return nil
	}
}
