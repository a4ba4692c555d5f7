package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/4thel00z/wander/internal"
	"github.com/spf13/cobra"
)

func NewCatalogCmd(svc func() *internal.CatalogService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the destination catalog",
		Long:  `List the destinations recommendations are drawn from.`,
		Args:  cobra.NoArgs,
		RunE:  makeCatalogRunner(svc),
	}

	cmd.AddCommand(
		newCatalogFeaturesCmd(svc),
		newCatalogOptionsCmd(svc),
	)
	return cmd
}

func makeCatalogRunner(svc func() *internal.CatalogService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")

		rec, err := svc().Recommender(scopeHint)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		items := rec.Destinations()
		if asJSON {
			return encodeJSON(cmd, items)
		}

		for _, d := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-12s %-8s %-8s family=%t girls=%t\n",
				d.Name, d.Type, d.Season, d.Budget, d.FamilyFriendly, d.GirlsFriendly)
		}
		return nil
	}
}

func newCatalogFeaturesCmd(svc func() *internal.CatalogService) *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Print the feature space dimensions in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			asJSON, _ := cmd.Flags().GetBool("json")

			rec, err := svc().Recommender(scopeHint)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			dims := rec.Space().Dimensions()
			if asJSON {
				names := make([]string, len(dims))
				for i, d := range dims {
					names[i] = d.String()
				}
				return encodeJSON(cmd, names)
			}

			for i, d := range dims {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i, d)
			}
			return nil
		},
	}
}

func newCatalogOptionsCmd(svc func() *internal.CatalogService) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the accepted values for each preference field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			asJSON, _ := cmd.Flags().GetBool("json")

			rec, err := svc().Recommender(scopeHint)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			opts := rec.Options()
			if asJSON {
				return encodeJSON(cmd, opts)
			}

			for _, f := range internal.CategoricalFields {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f, strings.Join(opts[f], ", "))
			}
			return nil
		},
	}
}

func encodeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
