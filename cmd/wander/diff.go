package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/4thel00z/wander/internal"
	"github.com/spf13/cobra"
)

func NewDiffCmd(svc func() *internal.HistoryService) *cobra.Command {
	var namesOnly bool

	cmd := &cobra.Command{
		Use:   "diff [ref]",
		Short: "Show how saved profiles changed",
		Long: `Without a ref, show profile edits not yet committed to history.
With a ref (a hash, HEAD~2, ...), show what changed between it and HEAD.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			scopeHint, _ := cmd.Flags().GetString("scope")

			patch, err := svc().Diff(cmd.Context(), ref, scopeHint)
			if err != nil {
				return fmt.Errorf("diff profiles: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case patch == "" && ref == "":
				fmt.Fprintln(out, "No profile changes.")
			case patch == "":
				fmt.Fprintf(out, "No profile changes since %s.\n", ref)
			case namesOnly:
				for _, name := range changedProfiles(patch) {
					fmt.Fprintln(out, name)
				}
			default:
				fmt.Fprint(out, patch)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&namesOnly, "name-only", false, "list the changed profile names instead of the patch")
	return cmd
}

// changedProfiles extracts profile names from the file headers of a patch.
func changedProfiles(patch string) []string {
	var names []string
	for _, line := range strings.Split(patch, "\n") {
		var file string
		switch {
		case strings.HasPrefix(line, "--- a/"):
			file = strings.TrimPrefix(line, "--- a/")
		case strings.HasPrefix(line, "+++ b/"):
			file = strings.TrimPrefix(line, "+++ b/")
		default:
			continue
		}
		name, ok := strings.CutSuffix(file, ".yaml")
		if ok && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
