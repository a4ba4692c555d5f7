package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/4thel00z/wander/internal"
	"github.com/spf13/cobra"
)

var errMissingPreference = errors.New("--type, --season and --budget are required unless --profile is given")

func NewRecommendCmd(svc func() *internal.RecommendService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank destinations for a preference",
		Long: `Rank every catalog destination by cosine similarity to the given preference
and print the best matches first.`,
		Example: `  wander recommend --type Nature --season Summer --budget Medium --family --girls
  wander recommend --profile summer-trip -n 3`,
		Args: cobra.NoArgs,
		RunE: makeRecommendRunner(svc),
	}

	addPreferenceFlags(cmd)
	cmd.Flags().IntP("number", "n", 0, "Number of results (0 uses recommend.top_k from config)")
	cmd.Flags().String("profile", "", "Use a saved preference profile")
	return cmd
}

func makeRecommendRunner(svc func() *internal.RecommendService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		input, err := recommendInput(cmd)
		if err != nil {
			return err
		}

		ctx := internal.ContextWithRequestID(cmd.Context(), internal.NewRequestID())
		results, err := svc().Recommend(ctx, input)
		if err != nil {
			return fmt.Errorf("recommend: %w", err)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return outputRecommendationsJSON(cmd.OutOrStdout(), results)
		}
		printRecommendations(cmd.OutOrStdout(), results)
		return nil
	}
}

func addPreferenceFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "Destination type (e.g. Nature, Adventure, Cultural)")
	cmd.Flags().String("season", "", "Travel season (e.g. Summer, Spring)")
	cmd.Flags().String("budget", "", "Budget level (e.g. Low, Medium, High)")
	cmd.Flags().Bool("family", false, "Travelling with family")
	cmd.Flags().Bool("girls", false, "Prefer girls-travel-friendly destinations")
}

func preferenceFromFlags(cmd *cobra.Command) internal.Preference {
	typ, _ := cmd.Flags().GetString("type")
	season, _ := cmd.Flags().GetString("season")
	budget, _ := cmd.Flags().GetString("budget")
	family, _ := cmd.Flags().GetBool("family")
	girls, _ := cmd.Flags().GetBool("girls")

	return internal.Preference{
		Type:           typ,
		Season:         season,
		Budget:         budget,
		FamilyFriendly: family,
		GirlsFriendly:  girls,
	}
}

// recommendInput reads preference, profile, limit and scope flags. A profile
// makes the categorical flags optional.
func recommendInput(cmd *cobra.Command) (internal.RecommendInput, error) {
	pref := preferenceFromFlags(cmd)
	profile, _ := cmd.Flags().GetString("profile")
	limit, _ := cmd.Flags().GetInt("number")
	scopeHint, _ := cmd.Flags().GetString("scope")

	if profile == "" && (pref.Type == "" || pref.Season == "" || pref.Budget == "") {
		return internal.RecommendInput{}, errMissingPreference
	}

	return internal.RecommendInput{
		Preference: pref,
		Profile:    profile,
		Limit:      limit,
		Scope:      scopeHint,
	}, nil
}

func printRecommendations(w io.Writer, results []internal.Recommendation) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No destinations.")
		return
	}

	for i, r := range results {
		fmt.Fprintf(w, "%d. %-18s %.4f\n", i+1, r.Destination.Name, r.Score)
	}
}

func outputRecommendationsJSON(w io.Writer, results []internal.Recommendation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recommendationsJSON(results))
}

func recommendationsJSON(results []internal.Recommendation) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for _, r := range results {
		out = append(out, map[string]any{
			"name":            r.Destination.Name,
			"score":           r.Score,
			"type":            r.Destination.Type,
			"season":          r.Destination.Season,
			"budget":          r.Destination.Budget,
			"family_friendly": r.Destination.FamilyFriendly,
			"girls_friendly":  r.Destination.GirlsFriendly,
		})
	}
	return out
}
