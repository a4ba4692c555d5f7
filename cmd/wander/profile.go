package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/4thel00z/wander/internal"
	"github.com/spf13/cobra"
)

func NewProfileCmd(svc func() *internal.ProfileService, hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved preference profiles",
		Long:  `Save, show, delete and list named preference profiles. Every change is committed to the profile history.`,
	}

	cmd.AddCommand(
		newProfileSetCmd(svc, hist),
		newProfileGetCmd(svc),
		newProfileDelCmd(svc, hist),
		newProfileListCmd(svc),
	)
	return cmd
}

func newProfileSetCmd(svc func() *internal.ProfileService, hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			pref := preferenceFromFlags(cmd)
			if pref.Type == "" || pref.Season == "" || pref.Budget == "" {
				return errors.New("--type, --season and --budget are required")
			}

			scopeHint, _ := cmd.Flags().GetString("scope")
			message, _ := cmd.Flags().GetString("message")

			if err := svc().Set(cmd.Context(), name, pref, scopeHint); err != nil {
				return fmt.Errorf("set profile: %w", err)
			}

			if err := autoCommit(cmd.Context(), hist(), message, "set", name, scopeHint); err != nil {
				return fmt.Errorf("commit: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", name)
			return nil
		},
	}

	addPreferenceFlags(cmd)
	cmd.Flags().StringP("message", "m", "", "Commit message")
	return cmd
}

func newProfileGetCmd(svc func() *internal.ProfileService) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			asJSON, _ := cmd.Flags().GetBool("json")

			p, err := svc().Get(cmd.Context(), args[0], scopeHint)
			if err != nil {
				return fmt.Errorf("get profile: %w", err)
			}

			if asJSON {
				return encodeJSON(cmd, profileJSON(p))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "type:            %s\n", p.Preference.Type)
			fmt.Fprintf(out, "season:          %s\n", p.Preference.Season)
			fmt.Fprintf(out, "budget:          %s\n", p.Preference.Budget)
			fmt.Fprintf(out, "family_friendly: %t\n", p.Preference.FamilyFriendly)
			fmt.Fprintf(out, "girls_friendly:  %t\n", p.Preference.GirlsFriendly)
			return nil
		},
	}
}

func newProfileDelCmd(svc func() *internal.ProfileService, hist func() *internal.HistoryService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "del <name>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			scopeHint, _ := cmd.Flags().GetString("scope")
			message, _ := cmd.Flags().GetString("message")

			if err := svc().Delete(cmd.Context(), name, scopeHint); err != nil {
				return fmt.Errorf("delete profile: %w", err)
			}

			if err := autoCommit(cmd.Context(), hist(), message, "del", name, scopeHint); err != nil {
				return fmt.Errorf("commit: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringP("message", "m", "", "Commit message")
	return cmd
}

func newProfileListCmd(svc func() *internal.ProfileService) *cobra.Command {
	return &cobra.Command{
		Use:   "list [prefix]",
		Short: "List profiles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			scopeHint, _ := cmd.Flags().GetString("scope")
			asJSON, _ := cmd.Flags().GetBool("json")

			profiles, err := svc().List(cmd.Context(), prefix, scopeHint)
			if err != nil {
				return fmt.Errorf("list profiles: %w", err)
			}

			if asJSON {
				out := make([]map[string]any, 0, len(profiles))
				for _, p := range profiles {
					out = append(out, profileJSON(p))
				}
				return encodeJSON(cmd, out)
			}

			for _, p := range profiles {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s/%s/%s\n",
					p.Name, p.Preference.Type, p.Preference.Season, p.Preference.Budget)
			}
			return nil
		},
	}
}

func profileJSON(p *internal.Profile) map[string]any {
	return map[string]any{
		"name":       p.Name.String(),
		"preference": p.Preference,
		"updated_at": p.UpdatedAt,
	}
}

// autoCommit records a profile change. A change that leaves the tree as it was
// is not an error.
func autoCommit(ctx context.Context, hist *internal.HistoryService, message, action, name, scopeHint string) error {
	if hist == nil {
		return nil
	}

	if message == "" {
		message = fmt.Sprintf("%s: %s", action, name)
	}

	_, err := hist.Commit(ctx, message, scopeHint)
	if errors.Is(err, internal.ErrNothingToCommit) {
		return nil
	}
	return err
}
