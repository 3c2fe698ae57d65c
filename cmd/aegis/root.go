package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:               "aegis",
	Short:             "Aegis is a security posture dashboard for CI/CD scan results.",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: prepareCommand,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, reposCmd, exportCmd, versionCmd)
}
