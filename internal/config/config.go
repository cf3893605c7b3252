package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	TLS     TLSConfig     `mapstructure:"tls"`
	Storage StorageConfig `mapstructure:"storage"`
	Channel ChannelConfig `mapstructure:"channel"`
	Display DisplayConfig `mapstructure:"display"`
	Timer   TimerConfig   `mapstructure:"timer"`
	Library LibraryConfig `mapstructure:"library"`
}

// ServerConfig is the HTTP listen address
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// TLSConfig enables HTTPS
type TLSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
	MinVersion string `mapstructure:"min_version"`
}

// StorageConfig locates the library file and the setup database
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
	DBPath  string `mapstructure:"db_path"`
}

// ChannelConfig names the sync channel
type ChannelConfig struct {
	Name      string `mapstructure:"name"`
	InboxSize int    `mapstructure:"inbox_size"`
}

// DisplayConfig tunes websocket displays
type DisplayConfig struct {
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	RequestRate  float64       `mapstructure:"request_rate"`
	RequestBurst int           `mapstructure:"request_burst"`
}

// TimerConfig sets the elapsed timer tick
type TimerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LibraryConfig controls reloading of library.json
type LibraryConfig struct {
	Watch bool `mapstructure:"watch"`
}

// LoadConfig reads defaults, then an optional TOML file, then environment
// overrides prefixed with DIVINEDECK_. An explicit configFile must exist;
// otherwise DIVINEDECK_CONFIG or ./config.toml is used when present.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("tls.enabled", false)
	v.SetDefault("tls.cert_file", "./certs/server.crt")
	v.SetDefault("tls.key_file", "./certs/server.key")
	v.SetDefault("tls.min_version", "1.2")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.db_path", filepath.Join(".", "data", "divinedeck.db"))
	v.SetDefault("channel.name", "divine-deck")
	v.SetDefault("channel.inbox_size", 64)
	v.SetDefault("display.ping_period", "54s")
	v.SetDefault("display.pong_wait", "60s")
	v.SetDefault("display.write_wait", "10s")
	v.SetDefault("display.request_rate", 5.0)
	v.SetDefault("display.request_burst", 10)
	v.SetDefault("timer.interval", "1s")
	v.SetDefault("library.watch", true)

	v.SetConfigType("toml")

	explicit := configFile != ""
	if !explicit {
		configFile = os.Getenv("DIVINEDECK_CONFIG")
		explicit = configFile != ""
	}
	if explicit {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DIVINEDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// TLSVersion converts a "1.x" string to a tls version constant, defaulting to 1.2
func TLSVersion(version string) uint16 {
	switch version {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
