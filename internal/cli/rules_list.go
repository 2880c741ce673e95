package cli

import (
	"fmt"
	"io"

	"repocheck/internal/flags"
	"repocheck/internal/rules"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rulesListQuiet bool
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the rules a scan applies",
	Long: `Show the rules a scan applies.

The rule set comes from configuration: one required-file rule per entry of
rules.required_files, then the fork rule unless rules.check_forks is false.

Examples:
  # List the effective rules
  repocheck rules list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the effective rules",
	Long: `List the rules a scan would apply with the current configuration,
in the order their reasons appear in the report.

Examples:
  repocheck rules list
  REPOCHECK_RULES_REQUIRED_FILES=README.md,SECURITY.md repocheck rules list

Output:
  A vertical list of rules:
    ----------------------------------------
    RULE: {ID}
    ----------------------------------------
    {TITLE}
    {DESCRIPTION}
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		for _, r := range rules.Build(cfg.Rules) {
			if rulesListQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), r.ID())
			} else {
				printRule(cmd.OutOrStdout(), r)
			}
		}
		return nil
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show [rule-id]",
	Short: "Show details of a specific rule",
	Long: `Show details of one rule of the effective rule set by its ID.

Examples:
  repocheck rules show required-file:LICENSE
  repocheck rules show not-a-fork
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		r, ok := findRule(rules.Build(cfg.Rules), args[0])
		if !ok {
			return fmt.Errorf("rule not found: %s", args[0])
		}
		printRule(cmd.OutOrStdout(), r)
		return nil
	},
}

func findRule(set []rules.Rule, id string) (rules.Rule, bool) {
	for _, r := range set {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

func printRule(w io.Writer, r rules.Rule) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "RULE: %s\n", r.ID())
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, r.Title())
	fmt.Fprintln(w, r.Description())
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesListCmd.Flags().BoolVarP(&rulesListQuiet, flags.FlagQuiet, "q", false, "Only print rule IDs")
	rulesCmd.AddCommand(rulesShowCmd)
}
