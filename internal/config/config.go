package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration
		CORSOrigins     []string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Instance struct {
		Name     string
		Hostname string
	}
	SMTP struct {
		Driver   string // "smtp" or "log"
		Server   string
		Port     int
		Username string
		Pass     string
	}
	Admin struct {
		Username    string
		Email       string
		Password    string
		DisplayName string
	}
	Files struct {
		Dir           string
		MaxUploadSize int64
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads config from environment (CLEO_ prefix) and optional cleo.yaml.
func Load() (*Config, error) {
	return load(viper.New())
}

// LoadFile is Load with an explicit config file path instead of ./cleo.yaml.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("CLEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("cleo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // optional config file
	}

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.cors_origins", "*")
	v.SetDefault("smtp.driver", "smtp")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("files.dir", ".data/files")
	v.SetDefault("files.max_upload_size", "50MB")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.CORSOrigins = splitList(v.GetString("http.cors_origins"))
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Instance.Name = v.GetString("instance.name")
	cfg.Instance.Hostname = strings.TrimRight(v.GetString("instance.hostname"), "/")
	cfg.SMTP.Driver = v.GetString("smtp.driver")
	cfg.SMTP.Server = v.GetString("smtp.server")
	cfg.SMTP.Port = v.GetInt("smtp.port")
	cfg.SMTP.Username = v.GetString("smtp.username")
	cfg.SMTP.Pass = v.GetString("smtp.pass")
	cfg.Admin.Username = v.GetString("admin.username")
	cfg.Admin.Email = v.GetString("admin.email")
	cfg.Admin.Password = v.GetString("admin.password")
	cfg.Admin.DisplayName = v.GetString("admin.display_name")
	cfg.Files.Dir = v.GetString("files.dir")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	timeout, err := time.ParseDuration(v.GetString("http.shutdown_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLEO_HTTP_SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.HTTP.ShutdownTimeout = timeout

	size, err := units.FromHumanSize(v.GetString("files.max_upload_size"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLEO_FILES_MAX_UPLOAD_SIZE: %w", err)
	}
	if size <= 0 {
		return nil, fmt.Errorf("CLEO_FILES_MAX_UPLOAD_SIZE must be positive")
	}
	cfg.Files.MaxUploadSize = size

	if cfg.Admin.DisplayName == "" {
		cfg.Admin.DisplayName = cfg.Admin.Username
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.DB.Driver {
	case "sqlite3", "mysql", "postgres", "pgx":
	case "":
		return fmt.Errorf("CLEO_DB_DRIVER is required (sqlite3, mysql, postgres, pgx)")
	default:
		return fmt.Errorf("unsupported CLEO_DB_DRIVER %q", cfg.DB.Driver)
	}
	switch cfg.SMTP.Driver {
	case "smtp", "log":
	default:
		return fmt.Errorf("unsupported CLEO_SMTP_DRIVER %q: must be smtp or log", cfg.SMTP.Driver)
	}
	required := []struct {
		env, value string
	}{
		{"CLEO_DB_DSN", cfg.DB.DSN},
		{"CLEO_INSTANCE_NAME", cfg.Instance.Name},
		{"CLEO_INSTANCE_HOSTNAME", cfg.Instance.Hostname},
		{"CLEO_ADMIN_USERNAME", cfg.Admin.Username},
		{"CLEO_ADMIN_EMAIL", cfg.Admin.Email},
		{"CLEO_ADMIN_PASSWORD", cfg.Admin.Password},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.env)
		}
	}
	if cfg.SMTP.Driver == "smtp" && cfg.SMTP.Server == "" {
		return fmt.Errorf("CLEO_SMTP_SERVER is required")
	}
	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return fmt.Errorf("invalid CLEO_SMTP_PORT %d", cfg.SMTP.Port)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
