package server

import (
	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/utils"
)

// An Address describes a server's connection.
// It makes the server connections configurable
// so that a registry can be served read-only to the public
// while updates are only accepted on a local socket.
//
// Accepting input messages has to be specified explicitly for each
// connection. Other types of requests are allowed by default.
// One can think of an input message as a "write" to the registry,
// while the other request types are "reads".
// So, by default, addresses are "read-only".
type Address struct {
	*application.ServerAddress `yaml:",inline"`
	AllowInput                 bool `toml:"allow_input,omitempty" yaml:"allow_input,omitempty"`
}

// Storage backends.
const (
	StorageLevelDB = "leveldb"
	StorageBadger  = "badger"
	StorageMemory  = "memory"
)

// A StorageConfig selects the key-value store the registry state is
// persisted in. Path is a directory, relative to the config file.
type StorageConfig struct {
	Backend string `toml:"backend" yaml:"backend" env:"BACKEND" validate:"oneof=leveldb badger memory"`
	Path    string `toml:"path,omitempty" yaml:"path,omitempty" env:"PATH" validate:"required_unless=Backend memory"`
}

// A Config contains configuration values
// which are read at initialization time from
// a TOML or YAML format configuration file.
type Config struct {
	*application.ServerBaseConfig `yaml:",inline"`
	// Hasher is the name of the tree hasher, "Poseidon" or "SHAKE128".
	Hasher string `toml:"hasher" yaml:"hasher" env:"HASHER" validate:"oneof=Poseidon SHAKE128"`
	// Prover is the proof backend run on every update: "solve",
	// "groth16", or "none" to skip it.
	Prover string `toml:"prover" yaml:"prover" env:"PROVER" validate:"oneof=solve groth16 none"`
	// RosterPath is the file holding the initial records, in the
	// encoding of the config file. It is only read when the storage
	// holds no registry yet.
	RosterPath string `toml:"roster" yaml:"roster" env:"ROSTER" validate:"required"`
	// Storage contains the server's storage configuration.
	Storage *StorageConfig `toml:"storage" yaml:"storage" envPrefix:"STORAGE_" validate:"required"`
	// Addresses contains the server's connections configuration.
	Addresses []*Address `toml:"addresses" yaml:"addresses" envPrefix:"ADDRESSES_" validate:"required,min=1,dive"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new server configuration at the given file
// path with the given encoding, server addresses, logger
// configuration, hasher, prover, roster path and storage.
func NewConfig(file, encoding string, addrs []*Address,
	logConfig *application.LoggerConfig, hasherName, prover, roster string,
	storage *StorageConfig) *Config {
	var conf = Config{
		ServerBaseConfig: &application.ServerBaseConfig{
			CommonConfig: application.NewCommonConfig(file, encoding, logConfig),
		},
		Hasher:     hasherName,
		Prover:     prover,
		RosterPath: roster,
		Storage:    storage,
		Addresses:  addrs,
	}

	return &conf
}

// Load initializes a server configuration from the
// corresponding config file. It resolves the path of the TLS
// certificate files of each Address, the roster, the storage and the
// log file relative to the config file.
func (conf *Config) Load(file, encoding string) error {
	conf.ServerBaseConfig = &application.ServerBaseConfig{
		CommonConfig: application.NewCommonConfig(file, encoding, nil),
	}
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	if err := application.FinishLoad(conf); err != nil {
		return err
	}

	for _, addr := range conf.Addresses {
		addr.TLSCertPath = utils.ResolvePath(addr.TLSCertPath, file)
		addr.TLSKeyPath = utils.ResolvePath(addr.TLSKeyPath, file)
	}
	conf.RosterPath = utils.ResolvePath(conf.RosterPath, file)
	conf.Storage.Path = utils.ResolvePath(conf.Storage.Path, file)
	conf.ResolveLoggerPath()
	return nil
}

// Save writes a server's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the server's configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}
