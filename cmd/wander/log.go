package main

import (
	"fmt"
	"io"
	"time"

	"github.com/4thel00z/wander/internal"
	"github.com/spf13/cobra"
)

type commitJSON struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLogCmd(svc func() *internal.HistoryService) *cobra.Command {
	var (
		limit   int
		oneline bool
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show how saved profiles changed over time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			asJSON, _ := cmd.Flags().GetBool("json")

			commits, err := svc().Log(cmd.Context(), limit, scopeHint)
			if err != nil {
				return fmt.Errorf("read profile history: %w", err)
			}

			switch {
			case asJSON:
				entries := make([]commitJSON, len(commits))
				for i, c := range commits {
					entries[i] = commitJSON{Hash: c.Hash, Message: c.Message, Author: c.Author, Timestamp: c.Timestamp}
				}
				return encodeJSON(cmd, entries)
			case oneline:
				for _, c := range commits {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", c.ShortHash(), c.Message)
				}
			default:
				for _, c := range commits {
					writeCommit(cmd.OutOrStdout(), c)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "number", "n", 10, "show at most this many commits (0 for all)")
	cmd.Flags().BoolVar(&oneline, "oneline", false, "short hash and message only")
	return cmd
}

func writeCommit(w io.Writer, c *internal.Commit) {
	fmt.Fprintf(w, "commit %s\nAuthor: %s\nDate:   %s\n\n    %s\n\n",
		c.Hash, c.Author, c.Timestamp.Format(time.RFC1123Z), c.Message)
}
