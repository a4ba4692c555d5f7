package main

import (
	"fmt"
	"os"

	"github.com/4thel00z/wander/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd(resolver *internal.ScopeResolver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a wander scope",
		Long:  `Create a .wander directory holding config, an optional catalog and versioned profiles.`,
		RunE:  makeInitRunner(resolver),
	}

	cmd.Flags().Bool("global", false, "Initialize global scope (~/.wander)")
	cmd.Flags().Bool("with-catalog", false, "Write the built-in catalog to .wander/catalog.yaml for editing")
	return cmd
}

func makeInitRunner(resolver *internal.ScopeResolver) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		isGlobal, _ := cmd.Flags().GetBool("global")
		withCatalog, _ := cmd.Flags().GetBool("with-catalog")

		var scope internal.Scope
		if isGlobal {
			scope = resolver.Global()
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			scope = internal.NewProjectScope(cwd)
		}

		if scope.Initialized() {
			return fmt.Errorf("already initialized at %s", scope.StatePath)
		}

		if err := internal.InitRepository(scope); err != nil {
			return fmt.Errorf("init repository: %w", err)
		}

		if err := internal.SaveConfig(scope, internal.DefaultConfig()); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		if withCatalog {
			if err := internal.SaveCatalog(scope.CatalogPath(), internal.DefaultCatalog()); err != nil {
				return fmt.Errorf("write catalog: %w", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized wander at %s\n", scope.StatePath)
		return nil
	}
}
