package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_FileAndDefaults(t *testing.T) {
	p := writeConfig(t, `
app:
  http:
    port: 8081
jwt:
  secret: s3cret
db:
  driver: mysql
  dsn: mysql://root:pw@127.0.0.1:3306/users
seed:
  users:
    - name: Admin
      email: admin@example.com
      password: Admin123!
      role: ADMIN
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 8081, c.App.HTTP.Port)
	assert.Equal(t, "0.0.0.0", c.App.HTTP.Host)
	assert.Equal(t, "mysql", c.DB.Driver)
	assert.Equal(t, 24*time.Hour, c.JWT.TTL())
	assert.Equal(t, "usercenter", c.JWT.Issuer)
	assert.Equal(t, 10, c.Auth.BcryptCost)
	assert.False(t, c.Auth.CheckStatus)
	assert.Equal(t, []string{"*"}, c.CORS.AllowOrigins)
	require.Len(t, c.Seed.Users, 1)
	assert.Equal(t, "ADMIN", c.Seed.Users[0].Role)
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeConfig(t, "jwt:\n  secret: from-file\n")
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_AUTH_CHECKSTATUS", "true")
	t.Setenv("APP_REDIS_ADDR", "redis:6379")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.True(t, c.Auth.CheckStatus)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
}

func TestLoad_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "env-only")
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3000, c.App.HTTP.Port)
}

func TestLoad_Validation(t *testing.T) {
	p := writeConfig(t, "db:\n  driver: sqlite\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret is required")
	assert.Contains(t, err.Error(), `db.driver "sqlite" is not supported`)
}
