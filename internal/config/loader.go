package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. REPOCHECK_OUTPUT_PRETTY=true.
	EnvPrefix = "REPOCHECK"

	configFileName = ".repocheck"
	configFileType = "yaml"
)

// Loader wraps Viper to read an optional YAML config file and REPOCHECK_* environment overrides
// on top of the defaults from New().
type Loader struct {
	searchPaths []string
}

// LoadResult reports where configuration came from.
type LoadResult struct {
	ConfigFileUsed string
}

// NewLoader returns a loader that looks for .repocheck.yaml in the given directories.
// With no directories it searches the working directory and the user's home directory.
func NewLoader(searchPaths ...string) *Loader {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			searchPaths = append(searchPaths, home)
		}
	}
	return &Loader{searchPaths: append([]string(nil), searchPaths...)}
}

// Defaults flattens New() into viper keys. Every key must be known to viper so
// AutomaticEnv can resolve it during Unmarshal.
func Defaults() map[string]any {
	d := New()
	return map[string]any{
		"target.org":           d.Target.Org,
		"target.api_url":       d.Target.APIURL,
		"rules.required_files": d.Rules.RequiredFiles,
		"rules.check_forks":    d.Rules.CheckForks,
		"output.pretty":        d.Output.Pretty,
		"output.file":          d.Output.File,
		"runtime.timeout":      d.Runtime.Timeout,
		"runtime.strict":       d.Runtime.Strict,
		"runtime.verbose":      d.Runtime.Verbose,
		"runtime.log_level":    d.Runtime.LogLevel,
		"runtime.log_format":   d.Runtime.LogFormat,
	}
}

// Load builds a Config from defaults, the config file (explicit path or search), and the environment.
// An explicit path that cannot be read is an error; a missing searched file is not.
func (l *Loader) Load(configFile string) (*Config, LoadResult, error) {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	for _, p := range l.searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if configFile = strings.TrimSpace(configFile); configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, LoadResult{}, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, LoadResult{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return cfg, LoadResult{ConfigFileUsed: v.ConfigFileUsed()}, nil
}
