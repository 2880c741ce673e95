package cli

import (
	"fmt"
	"os"

	"repocheck/internal/config"
	"repocheck/internal/flags"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	verbose    bool
	logLevel   string
	logFormat  string
}

var globalOpts globalOptions

var rootCmd = &cobra.Command{
	Use:   "repocheck",
	Short: "Check every repository of a GitHub organization for required files",
	Long: `repocheck lists the repositories of a GitHub organization and reports the ones
that miss a required root file (README.md, LICENSE, Contributing.md by default)
or are forks.

repocheck is read-only: it never mutates repositories.

Examples:
	# Show available commands and global flags
	repocheck --help

	# Check an organization and print an indented report
	repocheck scan my-org --pretty

	# Show the rules a scan would apply
	repocheck rules list

	# Print build info
	repocheck version

Configuration:
	Settings are read from .repocheck.yaml (working directory, then home directory,
	or --config), then REPOCHECK_* environment variables (e.g. REPOCHECK_OUTPUT_PRETTY=true),
	then explicit flags.

Output:
	The report is JSON on stdout (or --file). Diagnostics go to stderr.`,
}

func init() {
	bindGlobalFlags(rootCmd.PersistentFlags(), &globalOpts)
}

func bindGlobalFlags(fs *pflag.FlagSet, o *globalOptions) {
	d := config.New()
	fs.StringVar(&o.configFile, flags.FlagConfig, "", "Path to a YAML config file (default: .repocheck.yaml in the working or home directory)")
	fs.BoolVar(&o.verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every GitHub API call and full error details)")
	fs.StringVar(&o.logLevel, flags.FlagLogLevel, d.Runtime.LogLevel, "Log level: debug|info|warn|error")
	fs.StringVar(&o.logFormat, flags.FlagLogFormat, d.Runtime.LogFormat, "Log format: console|structured")
}

// applyGlobalOverrides copies explicitly set global flags onto cfg.
func applyGlobalOverrides(fs *pflag.FlagSet, cfg *config.Config, o globalOptions) {
	if fs.Changed(flags.FlagVerbose) {
		cfg.Runtime.Verbose = o.verbose
	}
	if fs.Changed(flags.FlagLogLevel) {
		cfg.Runtime.LogLevel = o.logLevel
	}
	if fs.Changed(flags.FlagLogFormat) {
		cfg.Runtime.LogFormat = o.logFormat
	}
}

// loadConfig reads defaults, the config file and the environment, applies the
// global flags the user set, and normalizes the result the way a scan does.
func loadConfig(cmd *cobra.Command) (*config.Config, config.LoadResult, error) {
	cfg, res, err := config.NewLoader().Load(globalOpts.configFile)
	if err != nil {
		return nil, config.LoadResult{}, err
	}
	applyGlobalOverrides(cmd.Flags(), cfg, globalOpts)
	cfg.Normalize()
	return cfg, res, nil
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}
