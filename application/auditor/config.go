package auditor

import (
	"time"

	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/application/client"
	"github.com/spymsg/spymsg-go/utils"
)

// Config contains the auditor's configuration: the server it tracks
// and how to reach it, the registry's roster, and how often the
// server is polled.
type Config struct {
	*application.CommonConfig `yaml:",inline"`

	Address        string        `toml:"address" yaml:"address" env:"ADDRESS" validate:"required"`
	ServerCertPath string        `toml:"server_cert,omitempty" yaml:"server_cert,omitempty" env:"SERVER_CERT"`
	Hasher         string        `toml:"hasher" yaml:"hasher" env:"HASHER" validate:"required"`
	RosterPath     string        `toml:"roster" yaml:"roster" env:"ROSTER" validate:"required"`
	Interval       time.Duration `toml:"interval" yaml:"interval" env:"INTERVAL" validate:"gt=0"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new auditor configuration.
func NewConfig(file, encoding string, logger *application.LoggerConfig,
	serverAddr, hasherName, roster string, interval time.Duration) *Config {
	var conf = Config{
		CommonConfig: application.NewCommonConfig(file, encoding, logger),
		Address:      serverAddr,
		Hasher:       hasherName,
		RosterPath:   roster,
		Interval:     interval,
	}
	return &conf
}

// Load initializes an auditor's configuration from the given file.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	if err := application.FinishLoad(conf); err != nil {
		return err
	}
	conf.ResolveLoggerPath()
	conf.ServerCertPath = utils.ResolvePath(conf.ServerCertPath, file)
	conf.RosterPath = utils.ResolvePath(conf.RosterPath, file)
	return nil
}

// Save writes an auditor's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the auditor's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}

// clientConfig returns the configuration of the client the auditor
// talks to the server through.
func (conf *Config) clientConfig() *client.Config {
	cc := client.NewConfig("", conf.Encoding, conf.Logger, conf.Address, conf.Hasher)
	cc.ServerCertPath = conf.ServerCertPath
	return cc
}
