package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// The helpers below return the flag value when it was set on the command
// line and the configured value otherwise.

func stringFlag(cmd *cobra.Command, name, configured string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return configured
}

func intFlag(cmd *cobra.Command, name string, configured int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return configured
}

func boolFlag(cmd *cobra.Command, name string, configured bool) bool {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return configured
}

func stringSliceFlag(cmd *cobra.Command, name string, configured []string) []string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetStringSlice(name)
		return v
	}
	return configured
}

func validateFormat(format string) error {
	switch format {
	case "", "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (must be one of: text, json, yaml)", format)
	}
}
