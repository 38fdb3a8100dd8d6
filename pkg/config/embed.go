package config

import (
	_ "embed"

	"github.com/arthur-debert/jibs-autolinker/pkg/logging"
	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/defaults.toml
var defaultsData []byte

//go:embed embedded/config.schema.json
var schemaData []byte

// Dirs holds the default directory names
type Dirs struct {
	Public      string `toml:"public"`
	Modules     string `toml:"modules"`
	NodeModules string `toml:"node_modules"`
}

// Defaults are the built-in settings shipped with the binary
type Defaults struct {
	ConfigFile string `toml:"config_file"`
	EnvPrefix  string `toml:"env_prefix"`
	Dirs       Dirs   `toml:"dirs"`
}

var defaults = loadDefaults(defaultsData)

// GetDefaults returns the built-in settings
func GetDefaults() Defaults {
	return defaults
}

// loadDefaults decodes the embedded TOML, keeping hard-coded values for
// anything it fails to provide.
func loadDefaults(data []byte) Defaults {
	d := Defaults{
		ConfigFile: ".jibs-autolinker.json",
		EnvPrefix:  "JIBS_AUTOLINKER_",
		Dirs: Dirs{
			Public:      "public",
			Modules:     "modules",
			NodeModules: "node_modules",
		},
	}
	if err := toml.Unmarshal(data, &d); err != nil {
		logger := logging.GetLogger("config")
		logger.Debug().Err(err).Msg("Using built-in defaults")
	}
	return d
}
