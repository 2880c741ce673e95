package flags

// Package flags defines canonical CLI flag names shared across the CLI commands
// and the code that decides whether a flag overrides file/env configuration.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().BoolVar(&opts.pretty, flags.FlagPretty, false, "...")
//	if cmd.Flags().Changed(flags.FlagPretty) { ... }
const (
	// Global
	FlagConfig    = "config"
	FlagVerbose   = "verbose"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"

	// Target
	FlagAPIURL = "api-url"

	// Rules
	FlagRequire     = "require"
	FlagNoForkCheck = "no-fork-check"

	// Output
	FlagPretty = "pretty"
	FlagFile   = "file"
	FlagQuiet  = "quiet"

	// Runtime
	FlagStrict  = "strict"
	FlagTimeout = "timeout"
)
