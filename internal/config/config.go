package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	// SourceDir holds the template files (NCP_CONFIG_SOURCE).
	SourceDir string
	// TargetDir receives the rendered output (NCP_CONFIG_TARGET).
	TargetDir string

	ListenAddr   string
	PollInterval time.Duration
	ExitDelay    time.Duration
	NextcloudURL string

	TemplateRepo string
	TemplateRef  string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. An env file named by
// NCP_ENV_FILE (default .env) is loaded first when it exists; variables
// already set in the process environment win over the file.
//
// Missing source and target directories are not an error here. They are
// checked when activation runs.
func Load() (Config, error) {
	envFile := os.Getenv("NCP_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetDefault("listen_addr", "0.0.0.0:8080")
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("exit_delay", time.Second)
	v.SetDefault("nextcloud_url", "http://localhost:1080/login")
	v.SetDefault("log_format", "json")

	v.SetEnvPrefix("NCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	c := Config{
		SourceDir:    v.GetString("config_source"),
		TargetDir:    v.GetString("config_target"),
		ListenAddr:   v.GetString("listen_addr"),
		PollInterval: v.GetDuration("poll_interval"),
		ExitDelay:    v.GetDuration("exit_delay"),
		NextcloudURL: v.GetString("nextcloud_url"),
		TemplateRepo: v.GetString("template_repo"),
		TemplateRef:  v.GetString("template_ref"),
		LogLevel:     v.GetString("log_level"),
		LogFormat:    os.Getenv("LOG_FORMAT"),
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv("LOG_LEVEL")
	}
	if c.LogFormat == "" {
		c.LogFormat = v.GetString("log_format")
	}

	if c.PollInterval <= 0 {
		return Config{}, fmt.Errorf("NCP_POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.ExitDelay < 0 {
		return Config{}, fmt.Errorf("NCP_EXIT_DELAY must not be negative, got %s", c.ExitDelay)
	}
	return c, nil
}
