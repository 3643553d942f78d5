package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	"github.com/Roche85/tensorforest/rock-share/base/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// All is the configuration loaded by InitConfig.
var All *AllConfig

var DefaultPath = "./config"
var DebugPath = "./base/config"

var configLock sync.RWMutex

// AllConfig mirrors config.yml.
type AllConfig struct {
	Server ServerConfig       `mapstructure:"server_config"`
	Logger LoggerConfig       `mapstructure:"logger_config"`
	Forest conf_forest.Params `mapstructure:"forest_config"`
}

// ServerConfig settings of the demo service.
type ServerConfig struct {
	HttpPort  string `mapstructure:"http_port"`
	SentryDsn string `mapstructure:"sentry_dsn"`
}

// LoggerConfig log output settings.
type LoggerConfig struct {
	Level        string `mapstructure:"level"`
	Path         string `mapstructure:"path"`
	MaxAge       uint32 `mapstructure:"max_age"`
	RotationTime uint32 `mapstructure:"rotation_time"`
	RotationSize uint32 `mapstructure:"rotation_size"`
}

// InitConfig reads config.yml from dir (DefaultPath when empty). With DEBUG=true
// a debug.yml in DebugPath is merged on top. The file is watched afterwards and
// All is refreshed on every change.
func InitConfig(dir string) (*AllConfig, error) {
	if dir == "" {
		dir = DefaultPath
	}
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config in %s: %w", dir, err)
	}

	if os.Getenv("DEBUG") == "true" {
		debugFile := filepath.Join(DebugPath, "debug.yml")
		if exists, _ := isExists(debugFile); exists {
			v.SetConfigFile(debugFile)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merge %s: %w", debugFile, err)
			}
		}
	}

	all, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		reloaded, err := unmarshal(v)
		if err != nil {
			logger.Warnf("config file %s changed but is invalid: %v", e.Name, err)
			return
		}
		configLock.Lock()
		All = reloaded
		configLock.Unlock()
	})
	v.WatchConfig()

	configLock.Lock()
	All = all
	configLock.Unlock()
	return all, nil
}

// Current returns the last loaded configuration.
func Current() *AllConfig {
	configLock.RLock()
	defer configLock.RUnlock()
	return All
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_config.http_port", "19123")
	v.SetDefault("logger_config.level", "info")
	v.SetDefault("logger_config.path", "./logs")
	v.SetDefault("logger_config.max_age", 7)
	v.SetDefault("logger_config.rotation_time", 24)
	v.SetDefault("forest_config.stats_type", string(conf_forest.StatsDenseGini))
	v.SetDefault("forest_config.finish_type.type", string(conf_forest.SplitFinishBasic))
	v.SetDefault("forest_config.pruning_type.type", string(conf_forest.SplitPruneNone))
}

func unmarshal(v *viper.Viper) (*AllConfig, error) {
	all := &AllConfig{}
	if err := v.Unmarshal(all); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := all.Forest.Validate(); err != nil {
		return nil, fmt.Errorf("forest_config: %w", err)
	}
	return all, nil
}

func isExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
