package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"repocheck/internal/config"
	"repocheck/internal/engine"
	"repocheck/internal/flags"
	gh "repocheck/internal/github"
	"repocheck/internal/logging"
	"repocheck/internal/output"
	"repocheck/internal/report"
	"repocheck/internal/rules"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	exitOK         = 0
	exitViolations = 1
	exitIncomplete = 2
	exitFatal      = 3
)

// scanOptions holds the scan flags. They only take effect when set explicitly,
// so config file and environment values survive otherwise.
type scanOptions struct {
	pretty      bool
	file        string
	require     []string
	noForkCheck bool
	apiURL      string
	strict      bool
	timeout     time.Duration
}

var scanOpts scanOptions

const scanHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
  repocheck authenticates to GitHub with an access token when one is available.

  Sources (in order):
  1) GITHUB_TOKEN environment variable
  2) GH_TOKEN environment variable
  3) GitHub CLI (gh) authentication via gh auth token (if gh is installed and logged in)

  Without a token the scan runs unauthenticated: only public repositories are
  visible and GitHub allows 60 requests per hour.

  Examples:
    # macOS/Linux
    export GITHUB_TOKEN="<your_token>"
    repocheck scan my-org

    # GitHub CLI auth
    gh auth login
    repocheck scan my-org

    # Windows PowerShell
    $env:GITHUB_TOKEN = "<your_token>"
    repocheck scan my-org

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasHelpSubCommands}}Additional help topics:
{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

var scanCmd = &cobra.Command{
	Use:   "scan <org>",
	Short: "Check the repositories of a GitHub organization",
	Long: `Check every repository of a GitHub organization for the required root files
and report the ones that are not compliant.

<org> is an organization name or URL (https://github.com/my-org).

Output:
	A JSON array of non-compliant repositories, each with the reasons it failed:
	  [{"name": "my-org/repo", "url": "...", "reasons": ["No file named LICENSE found"]}]
	An empty array means every repository is compliant.

	When GitHub refuses the organization listing (403, e.g. rate limit), its error
	body is printed as-is. Any other failure prints a single {"message": "..."} object;
	the cause is logged to stderr.

Exit codes:
	0 = report written
	    with --strict: 1 = non-compliant repositories found,
	                   2 = scan refused or failed
	3 = fatal error (bad configuration, report could not be written)

Examples:
  # Compact report on stdout
  repocheck scan my-org

  # Indented report to a file
  repocheck scan https://github.com/my-org --pretty --file out/report.json

  # Custom required files, forks allowed
  repocheck scan my-org --require README.md,SECURITY.md --no-fork-check

  # GitHub Enterprise Server
  repocheck scan my-org --api-url https://ghe.example.com/api/v3/
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, res, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitFatal)
		}

		if len(args) == 0 && cmd.Flags().NFlag() == 0 && strings.TrimSpace(cfg.Target.Org) == "" {
			_ = cmd.Help()
			return
		}
		if len(args) == 1 {
			cfg.Target.Org = args[0]
		}
		applyScanOverrides(cmd.Flags(), cfg, scanOpts)

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitFatal)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		code := runScan(ctx, cfg, res, os.Stdout, os.Stderr)
		stop()
		os.Exit(code)
	},
}

func bindScanFlags(fs *pflag.FlagSet, o *scanOptions) {
	d := config.New()

	// Target
	fs.StringVar(&o.apiURL, flags.FlagAPIURL, "", "GitHub REST API base URL (default: https://api.github.com/)")

	// Rules
	fs.StringSliceVar(&o.require, flags.FlagRequire, nil, "Required root file name (repeatable; comma-separated accepted; default: "+strings.Join(config.DefaultRequiredFiles, ",")+")")
	fs.BoolVar(&o.noForkCheck, flags.FlagNoForkCheck, false, "Do not report forks")

	// Output
	fs.BoolVar(&o.pretty, flags.FlagPretty, false, "Indent the JSON report")
	fs.StringVar(&o.file, flags.FlagFile, "", "Write the report to this path instead of stdout")

	// Runtime
	fs.BoolVar(&o.strict, flags.FlagStrict, false, "Exit non-zero when the report is not clean (1 = violations, 2 = refused or failed)")
	fs.DurationVar(&o.timeout, flags.FlagTimeout, d.Runtime.Timeout, "Global timeout")
}

// applyScanOverrides copies explicitly set scan flags onto cfg.
func applyScanOverrides(fs *pflag.FlagSet, cfg *config.Config, o scanOptions) {
	if fs.Changed(flags.FlagAPIURL) {
		cfg.Target.APIURL = o.apiURL
	}
	if fs.Changed(flags.FlagRequire) {
		cfg.Rules.RequiredFiles = append([]string(nil), o.require...)
	}
	if fs.Changed(flags.FlagNoForkCheck) {
		cfg.Rules.CheckForks = !o.noForkCheck
	}
	if fs.Changed(flags.FlagPretty) {
		cfg.Output.Pretty = o.pretty
	}
	if fs.Changed(flags.FlagFile) {
		cfg.Output.File = o.file
	}
	if fs.Changed(flags.FlagStrict) {
		cfg.Runtime.Strict = o.strict
	}
	if fs.Changed(flags.FlagTimeout) {
		cfg.Runtime.Timeout = o.timeout
	}
}

// runScan performs one scan with a validated config and returns the process
// exit code. Diagnostics go to stderr; the report goes to stdout or the
// configured file.
func runScan(ctx context.Context, cfg *config.Config, res config.LoadResult, stdout, stderr io.Writer) int {
	logger, err := logging.NewLogger(cfg.EffectiveLogLevel(), cfg.Runtime.LogFormat, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create logger: %v\n", err)
		return exitFatal
	}
	defer func() { _ = logger.Sync() }()

	if res.ConfigFileUsed != "" {
		logger.Debug("loaded configuration file", zap.String("path", res.ConfigFileUsed))
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	host := gh.HostForAPIURL(cfg.Target.APIURL)
	token, source, err := gh.ResolveAuthTokenForHost(ctx, "", host)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to resolve GitHub auth token: %v\n", err)
		return exitFatal
	}
	if strings.TrimSpace(token) == "" {
		logger.Warn("no GitHub auth token found, scanning unauthenticated (set GITHUB_TOKEN or run 'gh auth login')",
			zap.String("host", host))
	} else {
		logger.Debug("resolved GitHub auth token", zap.String("source", string(source)))
	}

	client, err := gh.NewClient(ctx, token,
		gh.WithVerbose(cfg.Runtime.Verbose, logger),
		gh.WithBaseURL(cfg.Target.APIURL),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create GitHub client: %v\n", err)
		return exitFatal
	}

	sink, err := output.NewSink(cfg.Output, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	eng := engine.NewEngine(client, logger)
	eng.Verbose = cfg.Runtime.Verbose
	rep := eng.VerifyOrganization(ctx, cfg.Target.Org, rules.Build(cfg.Rules))

	payload, err := output.Encode(rep, cfg.Output.Pretty)
	if err != nil {
		_ = sink.Close()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	if err := output.Emit(sink, payload); err != nil {
		fmt.Fprintf(stderr, "Error: failed to write report: %v\n", err)
		return exitFatal
	}
	if cfg.Output.File != "" {
		logger.Info("report written", zap.String("kind", rep.Kind.String()), zap.String("file", cfg.Output.File))
	}

	return exitCodeForReport(rep, cfg.Runtime.Strict)
}

// exitCodeForReport maps a report to the process exit code. Without strict
// every report is a successful run.
func exitCodeForReport(r report.Report, strict bool) int {
	if !strict {
		return exitOK
	}
	switch r.Kind {
	case report.KindViolations:
		if r.Compliant() {
			return exitOK
		}
		return exitViolations
	default:
		return exitIncomplete
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.SetHelpTemplate(scanHelpTemplate)

	// MAINTAINER NOTE: If you add/change/remove any scan flags here, keep
	// applyScanOverrides and internal/config/loader.go:Defaults in sync.
	bindScanFlags(scanCmd.Flags(), &scanOpts)
}
