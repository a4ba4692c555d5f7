package main

import (
	"fmt"

	"github.com/4thel00z/wander/internal"
	"github.com/spf13/cobra"
)

func NewExplainCmd(svc func() *internal.ExplainService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Rank destinations and ask an LLM for a trip plan",
		Long: `Rank destinations like recommend, then have the configured LLM provider
explain the top matches and suggest a plan.`,
		Args: cobra.NoArgs,
		RunE: makeExplainRunner(svc),
	}

	addPreferenceFlags(cmd)
	cmd.Flags().IntP("number", "n", 3, "Number of destinations to explain")
	cmd.Flags().String("profile", "", "Use a saved preference profile")
	cmd.Flags().String("provider", "", "LLM provider (default from config)")
	cmd.Flags().Bool("stream", false, "Stream the explanation as plain text")
	return cmd
}

func makeExplainRunner(svc func() *internal.ExplainService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		rec, err := recommendInput(cmd)
		if err != nil {
			return err
		}
		provider, _ := cmd.Flags().GetString("provider")
		stream, _ := cmd.Flags().GetBool("stream")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := internal.ContextWithRequestID(cmd.Context(), internal.NewRequestID())
		input := internal.ExplainInput{RecommendInput: rec, Provider: provider}

		if stream {
			ch, results, err := svc().Stream(ctx, input)
			if err != nil {
				return fmt.Errorf("explain: %w", err)
			}
			printRecommendations(cmd.OutOrStdout(), results)
			fmt.Fprintln(cmd.OutOrStdout())
			for chunk := range ch {
				fmt.Fprint(cmd.OutOrStdout(), chunk)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		}

		plan, results, err := svc().Explain(ctx, input)
		if err != nil {
			return fmt.Errorf("explain: %w", err)
		}

		if asJSON {
			return encodeJSON(cmd, map[string]any{
				"plan":            plan,
				"recommendations": recommendationsJSON(results),
			})
		}

		out := cmd.OutOrStdout()
		printRecommendations(out, results)
		fmt.Fprintf(out, "\n%s\n\n%s\n", plan.Headline, plan.Overview)
		if len(plan.Highlights) > 0 {
			fmt.Fprintln(out, "\nHighlights:")
			for _, h := range plan.Highlights {
				fmt.Fprintf(out, "  - %s\n", h)
			}
		}
		if len(plan.Tips) > 0 {
			fmt.Fprintln(out, "\nTips:")
			for _, tip := range plan.Tips {
				fmt.Fprintf(out, "  - %s\n", tip)
			}
		}
		return nil
	}
}
