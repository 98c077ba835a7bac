package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/cleo/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CLEO_DB_DRIVER", "sqlite3")
	t.Setenv("CLEO_DB_DSN", "file:cleo.db")
	t.Setenv("CLEO_INSTANCE_NAME", "Cleo Test")
	t.Setenv("CLEO_INSTANCE_HOSTNAME", "https://cleo.example.com/")
	t.Setenv("CLEO_SMTP_SERVER", "smtp.example.com")
	t.Setenv("CLEO_ADMIN_USERNAME", "root")
	t.Setenv("CLEO_ADMIN_EMAIL", "root@example.com")
	t.Setenv("CLEO_ADMIN_PASSWORD", "hunter22")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, ".data/files", cfg.Files.Dir)
	assert.Equal(t, int64(50_000_000), cfg.Files.MaxUploadSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://cleo.example.com", cfg.Instance.Hostname, "trailing slash trimmed")
	assert.Equal(t, "root", cfg.Admin.DisplayName, "display name falls back to username")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)
	t.Setenv("CLEO_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("CLEO_HTTP_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CLEO_SMTP_PORT", "587")
	t.Setenv("CLEO_FILES_MAX_UPLOAD_SIZE", "1KB")
	t.Setenv("CLEO_ADMIN_DISPLAY_NAME", "The Admin")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, int64(1000), cfg.Files.MaxUploadSize)
	assert.Equal(t, "The Admin", cfg.Admin.DisplayName)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		unset   string
		wantErr string
	}{
		{"CLEO_DB_DRIVER", "CLEO_DB_DRIVER is required"},
		{"CLEO_DB_DSN", "CLEO_DB_DSN is required"},
		{"CLEO_INSTANCE_NAME", "CLEO_INSTANCE_NAME is required"},
		{"CLEO_INSTANCE_HOSTNAME", "CLEO_INSTANCE_HOSTNAME is required"},
		{"CLEO_SMTP_SERVER", "CLEO_SMTP_SERVER is required"},
		{"CLEO_ADMIN_USERNAME", "CLEO_ADMIN_USERNAME is required"},
		{"CLEO_ADMIN_EMAIL", "CLEO_ADMIN_EMAIL is required"},
		{"CLEO_ADMIN_PASSWORD", "CLEO_ADMIN_PASSWORD is required"},
	}
	for _, tt := range tests {
		t.Run(tt.unset, func(t *testing.T) {
			t.Chdir(t.TempDir())
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		env, value, wantErr string
	}{
		{"CLEO_DB_DRIVER", "oracle", "unsupported CLEO_DB_DRIVER"},
		{"CLEO_HTTP_SHUTDOWN_TIMEOUT", "soon", "CLEO_HTTP_SHUTDOWN_TIMEOUT"},
		{"CLEO_FILES_MAX_UPLOAD_SIZE", "lots", "CLEO_FILES_MAX_UPLOAD_SIZE"},
		{"CLEO_SMTP_PORT", "70000", "CLEO_SMTP_PORT"},
		{"CLEO_SMTP_DRIVER", "carrier-pigeon", "unsupported CLEO_SMTP_DRIVER"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Chdir(t.TempDir())
			setRequiredEnv(t)
			t.Setenv(tt.env, tt.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_LogDriverNeedsNoServer(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)
	t.Setenv("CLEO_SMTP_DRIVER", "log")
	t.Setenv("CLEO_SMTP_SERVER", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "log", cfg.SMTP.Driver)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
db:
  driver: postgres
  dsn: postgres://cleo@localhost/cleo
instance:
  name: From File
  hostname: https://file.example.com
smtp:
  server: mail.example.com
  port: 2525
admin:
  username: fileadmin
  email: fileadmin@example.com
  password: secret
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "From File", cfg.Instance.Name)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "fileadmin", cfg.Admin.Username)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
