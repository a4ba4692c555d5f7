package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/4thel00z/wander/internal"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var errNoCatalogFile = errors.New("scope uses the built-in catalog; run `wander init --with-catalog` to get a file to watch")

func NewWatchCmd(catalogs func() *internal.CatalogService, svc func() *internal.RecommendService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-rank whenever the catalog file changes",
		Long: `Watch the scope's catalog file and print a fresh ranking after every change.
An invalid edit is reported and the previous catalog stays in use.`,
		Args: cobra.NoArgs,
		RunE: makeWatchRunner(catalogs, svc),
	}

	addPreferenceFlags(cmd)
	cmd.Flags().IntP("number", "n", 0, "Number of results (0 uses recommend.top_k from config)")
	cmd.Flags().String("profile", "", "Use a saved preference profile")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Quiet period after the last catalog change before reloading")
	return cmd
}

func makeWatchRunner(catalogs func() *internal.CatalogService, svc func() *internal.RecommendService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		input, err := recommendInput(cmd)
		if err != nil {
			return err
		}
		debounce, _ := cmd.Flags().GetDuration("debounce")

		path, err := catalogs().Path(input.Scope)
		if err != nil {
			return err
		}
		if path == "" {
			return errNoCatalogFile
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		// editors often replace the file, so watch its directory
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
		}

		rank := func() {
			ctx := internal.ContextWithRequestID(cmd.Context(), internal.NewRequestID())
			results, err := svc().Recommend(ctx, input)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "recommend: %v\n", err)
				return
			}
			printRecommendations(cmd.OutOrStdout(), results)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", path)
		rank()

		// each catalog event pushes the reload back by a full debounce window
		timer := time.NewTimer(debounce)
		timer.Stop()

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if isCatalogEvent(event, path) {
					timer.Reset(debounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				if _, err := catalogs().Reload(input.Scope); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "catalog rejected, keeping previous: %v\n", err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n[%s] catalog reloaded\n", time.Now().Format("15:04:05"))
				rank()
			}
		}
	}
}

func isCatalogEvent(event fsnotify.Event, catalogPath string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(catalogPath) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
