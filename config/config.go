// Package config loads the runtime settings of Stores, shared state and the
// case study binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/on-the-ground/composable_go/internal/model"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes environment overrides: config.store.buffer_size is read
// from COMPOSABLE_CONFIG_STORE_BUFFER_SIZE.
const EnvPrefix = "COMPOSABLE"

type Runtime struct {
	Store   StoreConfig
	Sharing SharingConfig
	Log     LogConfig
	Metrics MetricsConfig
	Server  ServerConfig
	Weather WeatherConfig
}

type StoreConfig struct {
	Name       string
	BufferSize int
}

type SharingConfig struct {
	NumShards    int
	FileDebounce time.Duration
	FileRoot     string
	SQLitePath   string
	CacheSize    int64
	S3Bucket     string
	S3Region     string
	// S3Endpoint points the S3 client at a compatible service. Empty uses AWS.
	S3Endpoint string
}

type LogConfig struct {
	Level       string
	Development bool
}

type MetricsConfig struct {
	Namespace string
}

type ServerConfig struct {
	Addr string
}

type WeatherConfig struct {
	BaseURL  string
	Debounce time.Duration
	Timeout  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigStoreName, "store")
	v.SetDefault(ConfigStoreBufferSize, 64)
	v.SetDefault(ConfigSharingNumShards, 16)
	v.SetDefault(ConfigSharingFileDebounce, time.Second)
	v.SetDefault(ConfigSharingFileRoot, filepath.Join(os.TempDir(), "composable"))
	v.SetDefault(ConfigSharingSQLitePath, "")
	v.SetDefault(ConfigSharingCacheSize, 1024)
	v.SetDefault(ConfigSharingS3Bucket, "")
	v.SetDefault(ConfigSharingS3Region, "us-east-1")
	v.SetDefault(ConfigSharingS3Endpoint, "")
	v.SetDefault(ConfigLogLevel, "info")
	v.SetDefault(ConfigLogDevelopment, false)
	v.SetDefault(ConfigMetricsNamespace, "composable")
	v.SetDefault(ConfigServerAddr, ":8080")
	v.SetDefault(ConfigWeatherBaseURL, "https://geocoding-api.open-meteo.com")
	v.SetDefault(ConfigWeatherDebounce, 300*time.Millisecond)
	v.SetDefault(ConfigWeatherTimeout, 5*time.Second)
}

// Default returns the settings used when nothing is configured.
func Default() Runtime {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// Load reads defaults, then the config file, then COMPOSABLE_* environment
// variables. With an empty path the file is looked up as config.yaml under
// $HOME/.config/composable and may be missing.
func Load(path string) (Runtime, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "composable"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Runtime{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) Runtime {
	return Runtime{
		Store: StoreConfig{
			Name:       v.GetString(ConfigStoreName),
			BufferSize: v.GetInt(ConfigStoreBufferSize),
		},
		Sharing: SharingConfig{
			NumShards:    v.GetInt(ConfigSharingNumShards),
			FileDebounce: v.GetDuration(ConfigSharingFileDebounce),
			FileRoot:     v.GetString(ConfigSharingFileRoot),
			SQLitePath:   v.GetString(ConfigSharingSQLitePath),
			CacheSize:    v.GetInt64(ConfigSharingCacheSize),
			S3Bucket:     v.GetString(ConfigSharingS3Bucket),
			S3Region:     v.GetString(ConfigSharingS3Region),
			S3Endpoint:   v.GetString(ConfigSharingS3Endpoint),
		},
		Log: LogConfig{
			Level:       v.GetString(ConfigLogLevel),
			Development: v.GetBool(ConfigLogDevelopment),
		},
		Metrics: MetricsConfig{
			Namespace: v.GetString(ConfigMetricsNamespace),
		},
		Server: ServerConfig{
			Addr: v.GetString(ConfigServerAddr),
		},
		Weather: WeatherConfig{
			BaseURL:  v.GetString(ConfigWeatherBaseURL),
			Debounce: v.GetDuration(ConfigWeatherDebounce),
			Timeout:  v.GetDuration(ConfigWeatherTimeout),
		},
	}
}

// StoreScope sizes a Store's executor queue.
func (r Runtime) StoreScope() model.ScopeConfig {
	return model.NewScopeConfig(r.Store.BufferSize, 1)
}

// SharingScope sizes the shared cell registry.
func (r Runtime) SharingScope() model.ScopeConfig {
	return model.NewScopeConfig(0, r.Sharing.NumShards)
}

// Logger builds the zap logger the settings describe.
func (l LogConfig) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	cfg := zap.NewProductionConfig()
	if l.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	return cfg.Build()
}
