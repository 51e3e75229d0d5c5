package application

import (
	"path/filepath"
	"testing"
)

type testConfig struct {
	*CommonConfig `yaml:",inline"`
	Name          string `toml:"name" yaml:"name" env:"NAME" validate:"required"`
	Members       int    `toml:"members" yaml:"members" env:"MEMBERS" validate:"min=1,max=256"`
}

func (conf *testConfig) Load(file, encoding string) error {
	conf.CommonConfig = NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	conf.ResolveLoggerPath()
	return FinishLoad(conf)
}

func (conf *testConfig) Save() error {
	return conf.GetLoader().Encode(conf)
}

func (conf *testConfig) GetPath() string {
	return conf.Path
}

func newTestConfig(dir, encoding string) *testConfig {
	file := filepath.Join(dir, "config."+encoding)
	return &testConfig{
		CommonConfig: NewCommonConfig(file, encoding, &LoggerConfig{
			Environment: "development",
			Path:        "spymsg.log",
		}),
		Name:    "registry",
		Members: 4,
	}
}

func TestConfigRoundTrip(t *testing.T) {
	for _, encoding := range Encodings() {
		t.Run(encoding, func(t *testing.T) {
			dir := t.TempDir()
			conf := newTestConfig(dir, encoding)
			if err := conf.Save(); err != nil {
				t.Fatal(err)
			}
			if err := conf.Save(); err == nil {
				t.Fatal("Expect Save to refuse overwriting the config")
			}

			var loaded testConfig
			if err := loaded.Load(conf.Path, encoding); err != nil {
				t.Fatal(err)
			}
			if loaded.Name != conf.Name || loaded.Members != conf.Members {
				t.Error("Unexpected config", "got", loaded)
			}
			if want := filepath.Join(dir, "spymsg.log"); loaded.Logger.Path != want {
				t.Error("Expect the log path to be resolved", "want", want,
					"got", loaded.Logger.Path)
			}
		})
	}
}

func TestConfigEnvOverride(t *testing.T) {
	conf := newTestConfig(t.TempDir(), "toml")
	if err := conf.Save(); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrefix+"NAME", "override")
	t.Setenv(EnvPrefix+"LOGGER_ENV", "production")

	var loaded testConfig
	if err := loaded.Load(conf.Path, "toml"); err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "override" {
		t.Error("Expect the environment to override the name", "got", loaded.Name)
	}
	if loaded.Logger.Environment != "production" {
		t.Error("Expect the environment to override the logger",
			"got", loaded.Logger.Environment)
	}
}

func TestConfigValidation(t *testing.T) {
	conf := newTestConfig(t.TempDir(), "yaml")
	conf.Members = 257
	if err := conf.Save(); err != nil {
		t.Fatal(err)
	}
	var loaded testConfig
	if err := loaded.Load(conf.Path, "yaml"); err == nil {
		t.Fatal("Expect an out of range member count to be rejected")
	}

	conf = newTestConfig(t.TempDir(), "toml")
	conf.Logger.Environment = "staging"
	if err := conf.Save(); err != nil {
		t.Fatal(err)
	}
	if err := loaded.Load(conf.Path, "toml"); err == nil {
		t.Fatal("Expect an unknown logger environment to be rejected")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(&LoggerConfig{Environment: "staging"}); err == nil {
		t.Error("Expect an unknown environment to be rejected")
	}
	l, err := NewLogger(&LoggerConfig{Environment: "production",
		Path: filepath.Join(t.TempDir(), "out.log")})
	if err != nil {
		t.Fatal(err)
	}
	l.With("component", "test").Info("hello", "n", 1)
}
