package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wander",
		Short:         "Travel destination recommendations for Northern Pakistan",
		Long:          `Rank destinations by how closely they match your travel preferences.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				a.logLevel = level
			}
		}
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("scope", "", "Target scope (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("log-level", "", "Log level (trace|debug|info|warn|error|disabled)")
}

func addSubcommands(root *cobra.Command, a *app) {
	root.AddCommand(
		NewInitCmd(a.resolver),
		NewRecommendCmd(a.recommender),
		NewCatalogCmd(a.catalogs),
		NewProfileCmd(a.profiles, a.history),
		NewLogCmd(a.history),
		NewDiffCmd(a.history),
		NewWatchCmd(a.catalogs, a.recommender),
		NewServeCmd(a.serverDeps, a.catalogs),
		NewExplainCmd(a.explainer),
		NewProviderCmd(a.providers),
	)
}
