package cli

import (
	"fmt"
	"io"

	"repocheck/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration a scan would start from, after merging defaults,
the config file and REPOCHECK_* environment variables. Scan flags are not applied.

The output is a valid .repocheck.yaml.

Examples:
  repocheck config show
  repocheck config show --config ./ci/repocheck.yaml > .repocheck.yaml
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, res, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return writeConfigYAML(cmd.OutOrStdout(), cfg, res)
	},
}

func writeConfigYAML(w io.Writer, cfg *config.Config, res config.LoadResult) error {
	if res.ConfigFileUsed != "" {
		if _, err := fmt.Fprintf(w, "# loaded from %s\n", res.ConfigFileUsed); err != nil {
			return err
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
