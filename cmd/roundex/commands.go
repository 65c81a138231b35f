package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/roundex/pkg/config"
	"github.com/chazu/roundex/pkg/plane"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session carries what PersistentPreRunE loads for the subcommands.
type session struct {
	cfgPath  string
	logLevel string
	cfg      *config.Config
	log      *zap.Logger
}

func newRootCmd() *cobra.Command {
	s := &session{}

	root := &cobra.Command{
		Use:           "roundex",
		Short:         "Build filleted extrusions from Lisp designs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().WithConfigPath(s.cfgPath).Load()
			if err != nil {
				return err
			}
			if s.logLevel != "" {
				cfg.Log.Level = s.logLevel
			}
			log, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			s.cfg, s.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s.log != nil {
				_ = s.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&s.cfgPath, "config", "roundex.yaml", "config file")
	root.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "override log.level")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newRenderCmd(s), newCheckCmd(s), newPlaneCmd())
	return root
}

// --- render ---

func newRenderCmd(s *session) *cobra.Command {
	var out, format string

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Evaluate a design and build its meshes",
		Long: `Evaluate a design and build its meshes.

Examples:
  roundex render examples/bracket.lisp
  roundex render examples/bracket.lisp --out bracket.json
  roundex render examples/bracket.lisp --out bracket.stl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}
			app := NewApp(s.cfg, s.log)

			if format == "" {
				format = formatFor(out)
			}

			switch format {
			case "stl":
				if out == "" {
					return fmt.Errorf("--out is required for stl output")
				}
				if err := app.ExportSTL(string(source), out); err != nil {
					return err
				}
				printSuccess(cmd.ErrOrStderr(), "Wrote %s", out)
				return nil

			case "json", "summary":
				result := app.Evaluate(string(source))
				printFindings(cmd.ErrOrStderr(), result)
				if len(result.Errors) > 0 {
					return fmt.Errorf("%d error(s) in %s", len(result.Errors), args[0])
				}
				if format == "summary" {
					printSummary(cmd, result)
					return nil
				}
				return writeJSON(cmd, out, result)

			default:
				return fmt.Errorf("unknown format %q, expected summary, json or stl", format)
			}
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.json or .stl)")
	cmd.Flags().StringVar(&format, "format", "", "summary, json or stl (default from --out)")
	return cmd
}

// formatFor picks the output format from the file extension.
func formatFor(out string) string {
	switch strings.ToLower(filepath.Ext(out)) {
	case ".stl":
		return "stl"
	case ".json":
		return "json"
	}
	if out != "" {
		return "json"
	}
	return "summary"
}

func printSummary(cmd *cobra.Command, r EvalResult) {
	w := cmd.OutOrStdout()
	for _, m := range r.Meshes {
		printStatus(w, m.BodyName, "%d triangles, %s", len(m.Indices)/3, m.Color)
	}
	printSuccess(cmd.ErrOrStderr(), "%d bodies", len(r.Meshes))
}

func writeJSON(cmd *cobra.Command, out string, v any) error {
	w := cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	if out == "" {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// --- check ---

func newCheckCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Evaluate and validate a design without building geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}

			result := NewApp(s.cfg, s.log).Check(string(source))
			printFindings(cmd.ErrOrStderr(), result)
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d error(s) in %s", len(result.Errors), args[0])
			}
			printSuccess(cmd.OutOrStdout(), "%s ok (%d warnings)", args[0], len(result.Warnings))
			return nil
		},
	}
}

// --- plane ---

func newPlaneCmd() *cobra.Command {
	var (
		length float64
		center bool
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "plane <+X|-X|+Y|-Y|+Z|-Z>",
		Short: "Print the transform that places a sweep on a plane",
		Long: `Print the transform that places a sweep on a plane.

Negative planes look like flags, so put them after "--":
  roundex plane +X --length 20
  roundex plane --length 10 --center --mode offset -- -Z`,
		Args: cobra.ExactArgs(1),
		// Needs no config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plane.Parse(args[0])
			if err != nil {
				return err
			}

			var m plane.Mode
			switch mode {
			case "solid":
				m = plane.ModeSolid
			case "offset":
				m = plane.ModeOffset
			default:
				return fmt.Errorf("unknown mode %q, expected solid or offset", mode)
			}

			t, err := plane.Resolve(p, length, center, m)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printStatus(w, "plane", "%s (%s, center=%v, length=%g)", p, m, center, length)
			printStatus(w, "rotation", "%g %g %g", t.Rotation.X, t.Rotation.Y, t.Rotation.Z)
			printStatus(w, "translation", "%g %g %g", t.Translation.X, t.Translation.Y, t.Translation.Z)
			return nil
		},
	}

	cmd.Flags().Float64Var(&length, "length", 1, "sweep length")
	cmd.Flags().BoolVar(&center, "center", false, "center the sweep")
	cmd.Flags().StringVar(&mode, "mode", "solid", "solid or offset")
	return cmd
}
