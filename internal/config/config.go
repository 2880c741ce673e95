package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultRequiredFiles are the root-level files every repository is expected to carry.
var DefaultRequiredFiles = []string{"README.md", "LICENSE", "Contributing.md"}

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep these in sync:
	// - CLI flags in internal/cli/scan.go
	// - loader defaults in internal/config/loader.go:Defaults
	Target  Target  `mapstructure:"target" yaml:"target"`
	Rules   Rules   `mapstructure:"rules" yaml:"rules"`
	Output  Output  `mapstructure:"output" yaml:"output"`
	Runtime Runtime `mapstructure:"runtime" yaml:"runtime"`
}

type Target struct {
	// Org is the GitHub organization to scan (name or URL; positional argument of scan).
	Org string `mapstructure:"org" yaml:"org"`

	// APIURL overrides the GitHub REST API base URL (see --api-url).
	// Empty means https://api.github.com/.
	APIURL string `mapstructure:"api_url" yaml:"api_url"`
}

type Rules struct {
	// RequiredFiles lists the root-level file names every repository must contain (see --require).
	// Names are matched exactly and case-sensitively. Order is preserved in reports.
	RequiredFiles []string `mapstructure:"required_files" yaml:"required_files"`

	// CheckForks adds the "not a fork" rule after the required-file rules (see --no-fork-check).
	CheckForks bool `mapstructure:"check_forks" yaml:"check_forks"`
}

type Output struct {
	// Pretty indents the JSON report (see --pretty).
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`

	// File writes the report to this path instead of stdout (see --file).
	File string `mapstructure:"file" yaml:"file"`
}

type Runtime struct {
	// Timeout bounds the whole scan (see --timeout). Must be > 0.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// Strict maps report outcomes to non-zero exit codes (see --strict).
	Strict bool `mapstructure:"strict" yaml:"strict"`

	// Verbose logs every GitHub API call and forces the debug log level.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFormat is one of console, structured.
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

func New() *Config {
	return &Config{
		Rules: Rules{
			RequiredFiles: append([]string(nil), DefaultRequiredFiles...),
			CheckForks:    true,
		},
		Runtime: Runtime{
			Timeout:   30 * time.Minute,
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Normalize cleans up values that do not depend on the target: comma lists are
// split and trimmed, enums lowercased and defaulted. It is idempotent, so
// commands that never scan can show the same rule set and settings a scan uses.
func (c *Config) Normalize() {
	c.Rules.RequiredFiles = splitCommaList(c.Rules.RequiredFiles)
	c.Target.APIURL = strings.TrimSpace(c.Target.APIURL)
	c.Output.File = strings.TrimSpace(c.Output.File)

	c.Runtime.LogLevel = normalizeEnumValue(c.Runtime.LogLevel)
	if c.Runtime.LogLevel == "" {
		c.Runtime.LogLevel = "info"
	}
	c.Runtime.LogFormat = normalizeEnumValue(c.Runtime.LogFormat)
	if c.Runtime.LogFormat == "" {
		c.Runtime.LogFormat = "console"
	}
}

func (c *Config) Validate() error {
	c.Normalize()

	org, err := normalizeAccountSelector(c.Target.Org)
	if err != nil {
		return fmt.Errorf("invalid organization value: %w", err)
	}
	if org == "" {
		return errors.New("an organization must be provided")
	}
	c.Target.Org = org

	if c.Target.APIURL != "" {
		u, err := url.Parse(c.Target.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid --api-url value: %q", c.Target.APIURL)
		}
	}

	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	switch c.Runtime.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported --log-level: %s (must be one of: debug, info, warn, error)", c.Runtime.LogLevel)
	}

	if c.Runtime.LogFormat != "console" && c.Runtime.LogFormat != "structured" {
		return fmt.Errorf("unsupported --log-format: %s (must be one of: console, structured)", c.Runtime.LogFormat)
	}

	return nil
}

// EffectiveLogLevel returns the log level after applying Verbose.
func (c *Config) EffectiveLogLevel() string {
	if c.Runtime.Verbose {
		return "debug"
	}
	return c.Runtime.LogLevel
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeAccountSelector(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	// Accept a raw account name, or a GitHub URL like:
	//   https://github.com/<name>
	//   https://github.com/orgs/<name>
	//   github.com/<name>
	if strings.HasPrefix(raw, "github.com/") || strings.HasPrefix(raw, "www.github.com/") {
		raw = "https://" + raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%q", raw)
		}
		host := strings.ToLower(u.Hostname())
		if host == "www.github.com" {
			host = "github.com"
		}
		if host != "github.com" {
			return "", fmt.Errorf("%q", raw)
		}
		parts := strings.FieldsFunc(strings.Trim(u.Path, "/"), func(r rune) bool { return r == '/' })
		if len(parts) == 0 {
			return "", fmt.Errorf("%q", raw)
		}
		if parts[0] == "orgs" {
			if len(parts) < 2 {
				return "", fmt.Errorf("%q", raw)
			}
			return parts[1], nil
		}
		return parts[0], nil
	}

	// Basic sanity: reject obvious repo-like inputs.
	if strings.Contains(raw, "/") {
		return "", fmt.Errorf("%q", raw)
	}
	return raw, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
