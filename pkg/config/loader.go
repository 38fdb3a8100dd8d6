package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/jibs-autolinker/pkg/errors"
	"github.com/arthur-debert/jibs-autolinker/pkg/logging"
	"github.com/arthur-debert/jibs-autolinker/pkg/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// Load reads the configuration file from workDir and applies
// environment overrides.
func Load(workDir string) (*types.Config, error) {
	return LoadFile(filepath.Join(workDir, GetDefaults().ConfigFile))
}

// LoadFile is Load with an explicit configuration file path. Only
// internal failures are returned as errors; problems with the file
// itself are logged and the file is ignored.
func LoadFile(path string) (*types.Config, error) {
	logger := logging.GetLogger("config")
	d := GetDefaults()
	k := koanf.New(".")

	// 1. Configuration file
	if err := loadFileLayer(k, path, logger); err != nil {
		return nil, err
	}

	// 2. Environment overrides
	envK := koanf.New(".")
	err := envK.Load(env.Provider(d.EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, d.EnvPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}
	if err := k.Merge(envK); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to merge environment overrides")
	}

	// 3. Unmarshal
	cfg := decode(k, logger)

	logger.Debug().
		Str("modules", cfg.Modules).
		Str("node_modules", cfg.NodeModules).
		Strs("include", cfg.Include).
		Strs("exclude", cfg.Exclude).
		Msg("Configuration loaded")

	return cfg, nil
}

// decode unmarshals k into a Config. A value the decoder rejects leaves
// the whole configuration empty.
func decode(k *koanf.Koanf, logger zerolog.Logger) *types.Config {
	var cfg types.Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		logger.Warn().Err(err).Msg("Ignoring undecodable configuration")
		return &types.Config{}
	}
	return &cfg
}

// loadFileLayer merges the configuration file into k. Keys failing
// schema validation are dropped so the rest of the file still applies.
func loadFileLayer(k *koanf.Koanf, path string, logger zerolog.Logger) error {
	if _, err := os.Stat(path); err != nil {
		logger.Debug().Str("path", path).Msg("No configuration file")
		return nil
	}

	fileK := koanf.New(".")
	if err := fileK.Load(file.Provider(path), json.Parser()); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Ignoring unreadable configuration file")
		return nil
	}

	issues, err := Validate(fileK.Raw())
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to validate configuration")
	}
	for _, issue := range issues {
		logger.Warn().
			Str("path", path).
			Str("issue", issue.String()).
			Msg("Ignoring invalid configuration value")
		if issue.Key == "" {
			return nil
		}
		fileK.Delete(issue.Key)
	}

	if err := k.Merge(fileK); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to merge %s", path)
	}
	return nil
}
