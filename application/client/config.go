package client

import (
	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/utils"
)

// Config contains the client's configuration needed to send requests
// to a registry server: the server's address, the certificate the
// server's TLS connection must chain up to, the name of the tree
// hasher the registry uses, and the file the client keeps its latest
// verified commitment in.
//
// If ServerCertPath is empty, TLS connections are verified against the
// system's root certificates.
type Config struct {
	*application.CommonConfig `yaml:",inline"`

	Address        string `toml:"address" yaml:"address" env:"ADDRESS" validate:"required"`
	ServerCertPath string `toml:"server_cert,omitempty" yaml:"server_cert,omitempty" env:"SERVER_CERT"`
	Hasher         string `toml:"hasher" yaml:"hasher" env:"HASHER" validate:"required"`
	StatePath      string `toml:"state,omitempty" yaml:"state,omitempty" env:"STATE"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new client configuration at the
// given file path, with the given config encoding, logger
// configuration, server address and hasher name.
func NewConfig(file, encoding string, logger *application.LoggerConfig,
	serverAddr, hasherName string) *Config {
	var conf = Config{
		CommonConfig: application.NewCommonConfig(file, encoding, logger),
		Address:      serverAddr,
		Hasher:       hasherName,
	}

	return &conf
}

// Load initializes a client's configuration from the given file
// using the given encoding. Relative paths are resolved against the
// directory of the config file.
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
	conf.StatePath = utils.ResolvePath(conf.StatePath, file)
	return nil
}

// Save writes a client's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the client's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}
