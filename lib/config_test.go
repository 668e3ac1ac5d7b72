package lib

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

type config struct {
	BaseConfig `mapstructure:",squash"`
	Lexicon    struct {
		Path      string `mapstructure:"path"`
		Selection string `mapstructure:"selection"`
	}
	OutputPath string `mapstructure:"output_path"`
}

func createConfigFile(t *testing.T, configMap map[string]interface{}) string {
	data, err := yaml.Marshal(&configMap)
	require.NoError(t, err)

	fileName := filepath.Join(t.TempDir(), "description-audit.yml")
	require.NoError(t, ioutil.WriteFile(fileName, data, 0600))
	return fileName
}

func flagsWithConfig(path string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(ConfigFlag, path, "The config file path.")
	return flags
}

func TestInitializeConfigFlagsFromPath(t *testing.T) {
	viper.Reset()
	path := createConfigFile(t, map[string]interface{}{
		"log_level": "debug",
		"lexicon": map[string]interface{}{
			"path":      "lexicons.csv",
			"selection": "Slurs",
		},
	})

	var parsedConfig config
	err := InitializeConfigFlags(flagsWithConfig(path), map[string]interface{}{
		"output_path": "./reports",
	}, &parsedConfig)

	assert.NoError(t, err)
	assert.Equal(t, "debug", parsedConfig.LogLevel)
	assert.Equal(t, "lexicons.csv", parsedConfig.Lexicon.Path)
	assert.Equal(t, "Slurs", parsedConfig.Lexicon.Selection)
	// keys only present in the defaults are still used
	assert.Equal(t, "./reports", parsedConfig.OutputPath)
}

func TestInitializeConfigFlagsEnvOverride(t *testing.T) {
	viper.Reset()
	path := createConfigFile(t, map[string]interface{}{
		"log_level": "info",
		"lexicon": map[string]interface{}{
			"path": "lexicons.csv",
		},
	})

	overrideValue := "other.csv"
	require.NoError(t, os.Setenv("LEXICON_PATH", overrideValue))
	defer os.Unsetenv("LEXICON_PATH")

	var parsedConfig config
	err := InitializeConfigFlags(flagsWithConfig(path), map[string]interface{}{}, &parsedConfig)

	assert.NoError(t, err)
	assert.Equal(t, overrideValue, parsedConfig.Lexicon.Path)
}

func TestInitializeConfigFlagsMissingFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "absent.yml")

	var parsedConfig config
	err := InitializeConfigFlags(flagsWithConfig(path), map[string]interface{}{
		"log_level":   "warn",
		"output_path": "/tmp",
	}, &parsedConfig)

	// a missing config file is not an error, the defaults are applied
	assert.NoError(t, err)
	assert.Equal(t, "/tmp", parsedConfig.OutputPath)
}

func TestInitializeConfigFlagsInvalidLogLevel(t *testing.T) {
	viper.Reset()
	path := createConfigFile(t, map[string]interface{}{
		"log_level": "shouting",
	})

	var parsedConfig config
	err := InitializeConfigFlags(flagsWithConfig(path), map[string]interface{}{}, &parsedConfig)
	assert.Error(t, err)
}
