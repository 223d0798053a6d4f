package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JCorners68/unot/pkg/generator"
	"github.com/JCorners68/unot/pkg/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Normalize class attributes whenever a source file is saved",
		Long: `Watch directories and rewrite the class attributes of every saved source
file. Editing a uno config reloads its shortcuts and clears the caches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var sheet *generator.Stylesheet
			if len(a.cfg.Stylesheets) > 0 {
				var err error
				if sheet, err = a.stylesheet(ctx); err != nil {
					return err
				}
			}

			w, err := watcher.New(watcher.Config{
				Roots:       args,
				DebounceDur: debounce,
				Extensions:  a.cfg.Extensions,
				Excludes:    a.cfg.Excludes,
				Logger:      a.log,
			})
			if err != nil {
				return err
			}

			reload := func(ctx context.Context, path string) error {
				a.cache.Clear()
				if sheet == nil {
					return nil
				}
				return a.applyShortcuts(ctx, sheet, path)
			}
			fixer := watcher.NewFixer(a.engine, reload, a.log)

			a.log.Info().Strs("roots", args).Msg("watching")
			return watcher.Run(ctx, w, fixer)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before a saved file is processed")
	return cmd
}
