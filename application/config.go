package application

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/spymsg/spymsg-go/utils"
)

// EnvPrefix prefixes every environment variable that overrides a
// configuration value.
const EnvPrefix = "SPYMSG_"

// AppConfig provides an abstraction of the
// underlying encoding format for the configs.
type AppConfig interface {
	Load(file, encoding string) error
	Save() error
	GetPath() string
}

// CommonConfig is the generic type used to specify the configuration of
// any kind of application-level executable (e.g. registry server,
// client etc.). It contains some common configuration
// values including the file path, logger configuration, and config
// loader.
type CommonConfig struct {
	Path     string        `toml:"-" yaml:"-"`
	Logger   *LoggerConfig `toml:"logger" yaml:"logger" envPrefix:"LOGGER_" validate:"required"`
	Encoding string        `toml:"-" yaml:"-"`
	loader   ConfigLoader
}

// NewCommonConfig initializes an application's config file path,
// its loader for the given encoding, and the logger configuration.
// Note: This constructor must be called in each Load() method
// implementation of an AppConfig.
func NewCommonConfig(file, encoding string, logger *LoggerConfig) *CommonConfig {
	return &CommonConfig{
		Path:     file,
		Logger:   logger,
		Encoding: encoding,
		loader:   newConfigLoader(encoding),
	}
}

// GetLoader returns the config's loader.
func (conf *CommonConfig) GetLoader() ConfigLoader {
	return conf.loader
}

// ResolveLoggerPath makes a relative log file path relative to the
// config file.
func (conf *CommonConfig) ResolveLoggerPath() {
	if conf.Logger != nil {
		conf.Logger.Path = utils.ResolvePath(conf.Logger.Path, conf.Path)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FinishLoad applies the SPYMSG_* environment overrides to a decoded
// configuration and then validates it against its struct tags.
// Each AppConfig's Load() calls it after decoding the file.
func FinishLoad(conf AppConfig) error {
	if err := env.ParseWithOptions(conf, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("Failed to apply environment overrides: %v", err)
	}
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("Invalid config %s: %v", conf.GetPath(), err)
	}
	return nil
}
