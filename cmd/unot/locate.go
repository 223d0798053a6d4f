package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/JCorners68/unot/pkg/locator"
)

// located is a match plus the text under its value span.
type located struct {
	locator.Match
	Value string `json:"value,omitempty"`
}

var kindNames = map[string]locator.Kind{
	"markup":   locator.Markup,
	"template": locator.Template,
	"jsx":      locator.JSX,
	"script":   locator.Script,
}

func newLocateCmd(a *app) *cobra.Command {
	var (
		line, column int
		kindName     string
	)
	cmd := &cobra.Command{
		Use:   "locate <file>",
		Short: "Print the attribute, text or script block under a cursor as JSON",
		Long: `Print what lies under a cursor. Line and column are 0-based, as editors
report them; spans in the output carry 1-based lines.`,
		Example: `  unot locate --line 3 --column 14 src/App.vue`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			kind := locator.KindFromPath(args[0])
			if kindName != "" {
				k, ok := kindNames[kindName]
				if !ok {
					return fmt.Errorf("unknown kind %q (markup, template, jsx, script)", kindName)
				}
				kind = k
			}

			src := string(data)
			m := locator.New(a.log).Locate(cmd.Context(), kind, src, locator.Cursor{Line: line, Column: column})
			out := located{Match: m}
			if m.Kind == locator.MatchProps && m.PropName != "" {
				out.Value = m.Value(src)
			}

			enc, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(enc))
			return nil
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 0, "cursor line (0-based)")
	cmd.Flags().IntVar(&column, "column", 0, "cursor column (0-based)")
	cmd.Flags().StringVar(&kindName, "kind", "", "source kind override (markup, template, jsx, script)")
	return cmd
}
