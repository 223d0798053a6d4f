package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JCorners68/unot/pkg/extractor"
	"github.com/JCorners68/unot/pkg/generator"
	"github.com/JCorners68/unot/pkg/shortcuts"
)

// stylesheet loads the configured stylesheets and shortcuts.
func (a *app) stylesheet(ctx context.Context) (*generator.Stylesheet, error) {
	sheet, err := generator.LoadStylesheets(a.cfg.Stylesheets...)
	if errors.Is(err, generator.ErrNoStylesheet) {
		return nil, fmt.Errorf("%w: set stylesheets in the config or pass --stylesheet", err)
	}
	if err != nil {
		// Partial loads are still useful
		a.log.Warn().Err(err).Msg("stylesheets")
	}
	if err := a.loadShortcuts(ctx, sheet); err != nil {
		a.log.Warn().Err(err).Msg("shortcuts")
	}
	return sheet, nil
}

// loadShortcuts applies the configured or nearest uno config to sheet.
// Having no config at all is fine.
func (a *app) loadShortcuts(ctx context.Context, sheet *generator.Stylesheet) error {
	path := a.cfg.UnoConfig
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		path, err = shortcuts.Find(wd)
		if errors.Is(err, shortcuts.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return a.applyShortcuts(ctx, sheet, path)
}

func (a *app) applyShortcuts(ctx context.Context, sheet *generator.Stylesheet, path string) error {
	sc, err := shortcuts.Load(ctx, path)
	if err != nil {
		return err
	}
	sheet.SetShortcuts(sc)
	a.log.Debug().Str("path", path).Int("shortcuts", len(sc)).Msg("shortcuts loaded")
	return nil
}

func newCSSCmd(a *app) *cobra.Command {
	var warmDir string
	cmd := &cobra.Command{
		Use:   "css <class...>",
		Short: "Print the CSS a class produces",
		Long: `Print the CSS behind each class. Shorthand input is rewritten to canonical
form first, so "w10" looks up "w-10".`,
		Example: `  unot css --stylesheet dist/app.css w10 hover:bg-red
  unot css --warm src btn`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sheet, err := a.stylesheet(ctx)
			if err != nil {
				return err
			}
			gen := generator.NewCached(sheet, a.cfg.CacheSize, a.log)

			if warmDir != "" {
				tokens, err := extractor.FromDir(warmDir)
				if err != nil {
					return fmt.Errorf("warm: %w", err)
				}
				if err := gen.Warm(ctx, tokens); err != nil {
					return fmt.Errorf("warm: %w", err)
				}
				size, _, _ := gen.Stats()
				a.log.Info().Int("tokens", len(tokens)).Int("cached", size).Msg("cache warmed")
			}

			var blocks, unknown []string
			for _, token := range strings.Fields(a.engine.Rewrite(strings.Join(args, " "))) {
				css, err := gen.Generate(ctx, token)
				if err != nil {
					return err
				}
				if css == "" {
					unknown = append(unknown, token)
					continue
				}
				blocks = append(blocks, css)
			}

			if len(blocks) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(blocks, "\n\n"))
			}
			_, hits, misses := gen.Stats()
			a.log.Debug().Int64("hits", hits).Int64("misses", misses).Msg("lookups")
			if len(unknown) > 0 {
				return fmt.Errorf("no CSS for %s", strings.Join(unknown, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&warmDir, "warm", "", "pre-generate the classes used by markup files under this directory")
	return cmd
}
