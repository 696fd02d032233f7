package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/qrbridge/internal/config"
)

func newConfigCommand(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and generate configuration files",
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write the default configuration to a file",
		Long: `Write the default configuration as YAML.

The file defaults to qrbridge.yaml in the current directory. Existing files
are only overwritten with --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(filename); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", filename)
			}
			if err := config.GenerateDefaultConfigFile(filename); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", filename)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Long: `Print the configuration after merging defaults, the config file,
QRBRIDGE_* environment variables and global flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(a.config())
			if err != nil {
				return fmt.Errorf("failed to marshal configuration: %w", err)
			}
			if used := a.loader.GetConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", used)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	pathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "List the directories searched for qrbridge.yaml",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, p := range config.GetConfigSearchPaths() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			}
		},
	}

	configCmd.AddCommand(initCmd, showCmd, pathsCmd)
	return configCmd
}
