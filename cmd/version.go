/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/longkey1/clippyai/internal/version"
	"github.com/spf13/cobra"
)

var (
	versionShort bool
	versionJSON  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show the clippy version, the commit and time it was built from, and the
Go toolchain and platform.

Use --short for the version number alone, or --json for scripts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd.OutOrStdout(), versionShort, versionJSON)
	},
}

func printVersion(w io.Writer, short, asJSON bool) error {
	switch {
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(version.Current())
	case short:
		_, err := fmt.Fprintln(w, version.Short())
		return err
	default:
		_, err := fmt.Fprintln(w, version.Info())
		return err
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "Show only version number")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build information as JSON")
}
