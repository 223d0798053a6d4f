package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/maruel/natural"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/JCorners68/unot/pkg/extractor"
	"github.com/JCorners68/unot/pkg/generator"
	"github.com/JCorners68/unot/pkg/srcscan"
	"github.com/JCorners68/unot/pkg/validator"
)

// tokenSource reads markup through the DOM extractor, which also sees
// attributify utilities, and everything else through the line scanner.
type tokenSource struct {
	scan *srcscan.Scanner
}

func (s tokenSource) Tokens(path string) ([]string, error) {
	for _, ext := range extractor.Extensions {
		if strings.EqualFold(ext, filepath.Ext(path)) {
			return extractor.FromFile(path)
		}
	}
	return s.scan.Tokens(path)
}

// Redundancy reports a stylesheet whose classes are mostly defined by another.
type Redundancy struct {
	File      string  `json:"file"`
	CoveredBy string  `json:"covered_by"`
	Percent   float64 `json:"percent"`
}

// detectRedundancy lists every ordered pair of files where at least
// threshold percent of the first file's classes also appear in the second.
func detectRedundancy(files map[string]map[string]struct{}, threshold float64) []Redundancy {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	var out []Redundancy
	for _, a := range names {
		if len(files[a]) == 0 {
			continue
		}
		for _, b := range names {
			if a == b {
				continue
			}
			shared := 0
			for class := range files[a] {
				if _, ok := files[b][class]; ok {
					shared++
				}
			}
			pct := float64(shared) / float64(len(files[a])) * 100
			if pct >= threshold {
				out = append(out, Redundancy{File: a, CoveredBy: b, Percent: pct})
			}
		}
	}
	return out
}

// stylesheetClasses loads each configured stylesheet path on its own.
func (a *app) stylesheetClasses() (map[string]map[string]struct{}, error) {
	out := make(map[string]map[string]struct{})
	var errs error
	for _, path := range a.cfg.Stylesheets {
		sheet, err := generator.LoadStylesheets(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			if sheet == nil {
				continue
			}
		}
		set := make(map[string]struct{})
		for _, c := range sheet.Classes() {
			set[c] = struct{}{}
		}
		out[path] = set
	}
	return out, errs
}

// checkReport is the JSON shape of check.
type checkReport struct {
	*validator.Result
	Redundant []Redundancy `json:"redundant,omitempty"`
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		verbose    bool
		showUnused bool
		fail       bool
		redundancy float64
	)
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report classes that are not canonical or have no CSS",
		Long: `Scan source files and report every class token the rewrite engine would
change. With stylesheets configured, also report tokens no rule serves
(orphans) and, with --unused, rules no token uses.`,
		Example: `  unot check src
  unot check --stylesheet dist --unused --json src`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				args = []string{"."}
			}
			scan := a.scanner()
			files, errs := scan.ScanPaths(args)

			var (
				gen   generator.Generator
				sheet *generator.Stylesheet
			)
			if len(a.cfg.Stylesheets) > 0 {
				var err error
				sheet, err = a.stylesheet(ctx)
				if err != nil {
					return err
				}
				gen = generator.NewCached(sheet, a.cfg.CacheSize, a.log)
			}

			result, err := validator.New(a.engine, gen, tokenSource{scan: scan}).Check(ctx, files)
			errs = multierr.Append(errs, err)
			if result == nil {
				return errs
			}
			if showUnused && sheet != nil {
				result.MarkUnused(sheet.Classes())
			}

			report := checkReport{Result: result}
			if redundancy > 0 {
				classes, err := a.stylesheetClasses()
				errs = multierr.Append(errs, err)
				report.Redundant = detectRedundancy(classes, redundancy)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				printReport(out, report, verbose, showUnused)
			}

			for _, e := range multierr.Errors(errs) {
				a.log.Warn().Err(e).Msg("check")
			}
			if fail && (result.HasOrphans() || result.HasUnnormalized()) {
				return errFindings
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&jsonOutput, "json", false, "output JSON")
	f.BoolVarP(&verbose, "verbose", "v", false, "list every reported token")
	f.BoolVar(&showUnused, "unused", false, "also report unused CSS classes")
	f.BoolVar(&fail, "fail", true, "exit with code 1 if anything is reported")
	f.Float64Var(&redundancy, "redundancy", 0, "report stylesheets covered by another at this percentage")
	return cmd
}

func printReport(w io.Writer, r checkReport, verbose, showUnused bool) {
	fmt.Fprint(w, r.Summary())
	if !verbose {
		return
	}
	if r.HasUnnormalized() {
		fmt.Fprintln(w, "\nNot canonical:")
		for _, f := range r.Unnormalized {
			fmt.Fprintf(w, "  - %s -> %s (%s)\n", f.Token, f.Suggestion, strings.Join(f.Files, ", "))
		}
	}
	if r.HasOrphans() {
		fmt.Fprintln(w, "\nOrphan classes (no CSS):")
		for _, f := range r.Orphans {
			fmt.Fprintf(w, "  - %s (%s)\n", f.Token, strings.Join(f.Files, ", "))
		}
	}
	if showUnused && r.HasUnused() {
		fmt.Fprintln(w, "\nUnused classes (in CSS, not in source):")
		max := 20
		for i, class := range r.Unused {
			if i >= max {
				fmt.Fprintf(w, "  ... and %d more\n", len(r.Unused)-max)
				break
			}
			fmt.Fprintf(w, "  - %s\n", class)
		}
	}
	for _, red := range r.Redundant {
		fmt.Fprintf(w, "\n%s is %.0f%% covered by %s", red.File, red.Percent, red.CoveredBy)
	}
	if len(r.Redundant) > 0 {
		fmt.Fprintln(w)
	}
}
