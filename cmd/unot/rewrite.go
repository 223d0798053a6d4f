package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JCorners68/unot/pkg/style"
)

// input joins args, or reads stdin when there are none.
func input(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func newRewriteCmd(a *app) *cobra.Command {
	var attributes bool
	cmd := &cobra.Command{
		Use:   "rewrite [value...]",
		Short: "Print the canonical form of a class value",
		Example: `  unot rewrite "w10 bg#fff hover:(p2 m2)"
  echo '<div class="flex1">' | unot rewrite --attributes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(cmd, args)
			if err != nil {
				return err
			}
			if attributes {
				text = a.engine.RewriteAttributes(text)
			} else {
				text = a.engine.Rewrite(text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&attributes, "attributes", false, "rewrite class attributes inside markup text")
	return cmd
}

func newStyleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "style [declarations...]",
		Short: "Convert inline CSS declarations into utilities",
		Example: `  unot style "width: 10px; display: flex"
  unot style '<div style="color: red">'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(cmd, args)
			if err != nil {
				return err
			}
			res, ok := style.Convert(a.engine, text)
			for _, decl := range res.Unconverted {
				a.log.Warn().Str("declaration", decl).Msg("not converted")
			}
			if !ok {
				return fmt.Errorf("no convertible declarations in %q", text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Classes)
			return nil
		},
	}
}
