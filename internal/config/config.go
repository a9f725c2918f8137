// Package config loads GymView client settings from defaults, an optional
// .env file, an optional config file and GYMVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. GYMVIEW_BASE_URL.
const EnvPrefix = "GYMVIEW"

// Config holds the settings the CLI needs to build a GymView client.
type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	RefreshPath string        `mapstructure:"refresh_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retry       struct {
		Max   int           `mapstructure:"max"`
		Delay time.Duration `mapstructure:"delay"`
	} `mapstructure:"retry"`
	Refresh struct {
		Timeout    time.Duration `mapstructure:"timeout"`
		MaxPending int           `mapstructure:"max_pending"`
	} `mapstructure:"refresh"`
	TokenStore struct {
		File   string `mapstructure:"file"`
		Secret string `mapstructure:"secret"`
	} `mapstructure:"token_store"`
	TLS struct {
		CAFile             string `mapstructure:"ca_file"`
		CertFile           string `mapstructure:"cert_file"`
		KeyFile            string `mapstructure:"key_file"`
		InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
	} `mapstructure:"tls"`
	GRPC struct {
		Address  string `mapstructure:"address"`
		Insecure bool   `mapstructure:"insecure"`
	} `mapstructure:"grpc"`
	Logging struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"logging"`
}

type options struct {
	configFile string
	envFile    string
}

// Option customizes Load.
type Option func(*options)

// WithConfigFile reads settings from path instead of searching for
// gymview.yaml. A missing explicit file is an error.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithEnvFile loads path instead of ./.env. A missing file is ignored.
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFile = path
	}
}

// Load resolves the configuration. Precedence, lowest first: defaults,
// config file, environment (including values loaded from the .env file,
// which never override variables already set).
func Load(opts ...Option) (Config, error) {
	o := options{envFile: ".env"}
	for _, opt := range opts {
		opt(&o)
	}

	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load %s: %w", o.envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", o.configFile, err)
		}
	} else {
		v.SetConfigName("gymview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "gymview"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("config: base_url is required")
	case c.Timeout <= 0:
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	case c.Retry.Max < 0:
		return fmt.Errorf("config: retry.max must not be negative, got %d", c.Retry.Max)
	case c.Retry.Max > 0 && c.Retry.Delay <= 0:
		return fmt.Errorf("config: retry.delay must be positive, got %s", c.Retry.Delay)
	case c.Refresh.MaxPending <= 0:
		return fmt.Errorf("config: refresh.max_pending must be positive, got %d", c.Refresh.MaxPending)
	case (c.TLS.CertFile == "") != (c.TLS.KeyFile == ""):
		return errors.New("config: tls.cert_file and tls.key_file must be set together")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:8080/api")
	v.SetDefault("refresh_path", "/auth/refresh")
	v.SetDefault("timeout", "10s")
	v.SetDefault("retry.max", 3)
	v.SetDefault("retry.delay", "1s")
	v.SetDefault("refresh.timeout", "30s")
	v.SetDefault("refresh.max_pending", 256)
	v.SetDefault("token_store.file", defaultTokenFile())
	v.SetDefault("token_store.secret", "")
	v.SetDefault("tls.ca_file", "")
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
	v.SetDefault("tls.insecure_skip_verify", false)
	v.SetDefault("grpc.address", "")
	v.SetDefault("grpc.insecure", false)
	v.SetDefault("logging.enabled", false)
}

func defaultTokenFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gymview", "tokens.json")
	}
	return ".gymview-tokens.json"
}
