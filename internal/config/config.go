package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`
	StateDir string `mapstructure:"state_dir"`

	Store  StoreConfig  `mapstructure:"store"`
	GitHub GitHubConfig `mapstructure:"github"`
	Admin  AdminConfig  `mapstructure:"admin"`
	Tutor  TutorConfig  `mapstructure:"tutor"`
	SFTP   SFTPConfig   `mapstructure:"sftp"`
	Notify NotifyConfig `mapstructure:"notify"`
}

// StoreConfig selects the Local Durable Store backend: "file", "postgres" or "memory".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// GitHubConfig describes the publish target transport. The token, repo
// and path themselves live in the store, not here.
type GitHubConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	Branch  string        `mapstructure:"branch"`
	Format  string        `mapstructure:"format"`
	Message string        `mapstructure:"message"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AdminConfig is the fixed credential pair of the admin gate.
type AdminConfig struct {
	ID       string `mapstructure:"id"`
	Password string `mapstructure:"password"`
}

type TutorConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Model    string        `mapstructure:"model"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SFTPConfig enables the snapshot mirror when Host is set.
type SFTPConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	User                  string `mapstructure:"user"`
	Pass                  string `mapstructure:"pass"`
	Dir                   string `mapstructure:"dir"`
	KnownHosts            string `mapstructure:"known_hosts"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecure_ignore_host_key"`
	Compress              bool   `mapstructure:"compress"`
}

// NotifyConfig enables publish notifications over AMQP when URL is set.
type NotifyConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
	Queue      string `mapstructure:"queue"`
}

// Load reads academy.yaml (explicit path, or $HOME/.academy and the
// working directory), then applies ACADEMY_* environment overrides.
// A missing config file is fine unless path was given explicitly.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ACADEMY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("academy")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.academy")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	if cfg.Tutor.APIKey == "" {
		cfg.Tutor.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(cfg.StateDir, "state.json")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("state_dir", defaultStateDir())

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "")
	v.SetDefault("store.dsn", "")

	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.branch", "")
	v.SetDefault("github.format", "json")
	v.SetDefault("github.message", "Update data via Academy Admin")
	v.SetDefault("github.timeout", 30*time.Second)

	v.SetDefault("admin.id", "12345")
	v.SetDefault("admin.password", "12345")

	v.SetDefault("tutor.api_key", "")
	v.SetDefault("tutor.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("tutor.model", "gemini-3-flash-preview")
	v.SetDefault("tutor.language", "Korean")
	v.SetDefault("tutor.timeout", 45*time.Second)

	v.SetDefault("sftp.host", "")
	v.SetDefault("sftp.port", 22)
	v.SetDefault("sftp.user", "")
	v.SetDefault("sftp.pass", "")
	v.SetDefault("sftp.dir", "/inbound")
	v.SetDefault("sftp.known_hosts", "")
	v.SetDefault("sftp.insecure_ignore_host_key", true)
	v.SetDefault("sftp.compress", false)

	v.SetDefault("notify.url", "")
	v.SetDefault("notify.exchange", "academy")
	v.SetDefault("notify.routing_key", "catalog.published")
	v.SetDefault("notify.queue", "catalog_events")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".academy"
	}
	return filepath.Join(home, ".academy")
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
