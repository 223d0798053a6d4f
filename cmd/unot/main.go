// unot - utility class normalizer for markup, Vue and JSX sources
//
// Rewrites shorthand utility classes ("w10", "bg#fff", "hover:(a b)") into
// their canonical form, locates attributes under a cursor and looks up the
// CSS behind a class.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JCorners68/unot/pkg/config"
	"github.com/JCorners68/unot/pkg/lru"
	"github.com/JCorners68/unot/pkg/rewrite"
	"github.com/JCorners68/unot/pkg/srcscan"
)

var version = "dev"

// errFindings makes a command exit non-zero after it has already printed
// its report.
var errFindings = errors.New("findings reported")

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	log     zerolog.Logger
	cache   *lru.Cache[string, string]
	engine  *rewrite.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "unot",
		Short: "Normalize utility classes in markup, Vue and JSX sources",
		Long: `unot rewrites shorthand utility classes into canonical form, finds the
attribute under a cursor and looks up the CSS a class produces.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./.unot.yaml, then ~/.config/unot/config.yaml)")
	pf.Bool("strict-hyphen", false, "only rewrite hyphenated numeric forms")
	pf.Bool("strict-variable", false, "bracket every numeric value")
	pf.Bool("variant-group", true, "expand variant groups like hover:(a b)")
	pf.Int("cache-size", lru.DefaultCapacity, "rewrite cache capacity")
	pf.StringSlice("stylesheet", nil, "CSS files or directories used for lookups")
	pf.String("uno-config", "", "shortcut config file (default: found by walking up)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console or json)")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"strict_hyphen":   "strict-hyphen",
		"strict_variable": "strict-variable",
		"variant_group":   "variant-group",
		"cache_size":      "cache-size",
		"stylesheets":     "stylesheet",
		"uno_config":      "uno-config",
		"log.level":       "log-level",
		"log.format":      "log-format",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newRewriteCmd(a),
		newFixCmd(a),
		newLocateCmd(a),
		newCSSCmd(a),
		newStyleCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.log = newLogger(cmd.ErrOrStderr(), cfg.Log)

	opts := cfg.RewriteOptions(a.log)
	a.cache = opts.Cache
	a.engine, err = rewrite.New(opts)
	if err != nil {
		return err
	}
	a.log.Debug().Str("config", a.v.ConfigFileUsed()).Int("rules", len(a.engine.Rules())).Msg("engine ready")
	return nil
}

// newLogger builds a console logger on w, or JSON lines when configured.
func newLogger(w io.Writer, cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.WarnLevel
	}
	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func (a *app) scanner() *srcscan.Scanner {
	return srcscan.New(srcscan.Options{
		Extensions: a.cfg.Extensions,
		Excludes:   a.cfg.Excludes,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		// Skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "unot v%s\n", version)
			return nil
		},
	}
}
