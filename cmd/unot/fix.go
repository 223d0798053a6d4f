package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/JCorners68/unot/pkg/changes"
	"github.com/JCorners68/unot/pkg/locator"
)

// fileChanges is the dry-run report of one file.
type fileChanges struct {
	Path    string           `json:"path"`
	Changes []changes.Change `json:"changes"`
}

func newFixCmd(a *app) *cobra.Command {
	var (
		dryRun     bool
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "fix [path...]",
		Short: "Rewrite class attributes of source files in place",
		Example: `  unot fix src
  unot fix --dry-run --json index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			files, errs := a.scanner().ScanPaths(args)

			var report []fileChanges
			fixed := 0
			for _, path := range files {
				list, err := a.fixFile(cmd, path, dryRun)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				if len(list) == 0 {
					continue
				}
				fixed++
				report = append(report, fileChanges{Path: path, Changes: list})
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput:
				if report == nil {
					report = []fileChanges{}
				}
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case dryRun:
				for _, fc := range report {
					for _, c := range fc.Changes {
						fmt.Fprintf(out, "%s:%s: %q -> %q\n", fc.Path, c.Start, c.Original, c.Content)
					}
				}
			default:
				fmt.Fprintf(out, "Fixed %d of %d files\n", fixed, len(files))
			}
			return errs
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print changes without writing files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print changes as JSON")
	return cmd
}

func (a *app) fixFile(cmd *cobra.Command, path string, dryRun bool) ([]changes.Change, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src := string(data)
	list, err := changes.Collect(cmd.Context(), a.engine, locator.KindFromPath(path), src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(list) == 0 || dryRun {
		return list, nil
	}
	out, err := changes.Apply(src, list)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return nil, err
	}
	a.log.Info().Str("path", path).Int("changes", len(list)).Msg("fixed")
	return list, nil
}
