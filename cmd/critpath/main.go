package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/config"
	"github.com/joshharrison/critpath/internal/ctxlog"
	"github.com/joshharrison/critpath/internal/narrate"
	"github.com/joshharrison/critpath/internal/pipeline"
	"github.com/joshharrison/critpath/internal/render"
	"github.com/joshharrison/critpath/internal/report"
	"github.com/joshharrison/critpath/internal/ui"
)

var (
	flagConfig   string
	flagVerbose  bool
	flagJSON     bool
	flagNoColor  bool
	flagLenient  bool
	flagUnit     string
	flagMaxNodes int
	flagMaxEdges int
	flagNarrate  bool

	cfg config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "critpath",
		Short: "Find the critical path through a project task network",
		Long: `Critpath reads a task table (CSV, JSON, YAML or a beads database), builds the
precedence graph between a virtual entry and exit node, finds the longest
path by task duration and renders the network with that path highlighted.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", config.DefaultFile, "Config file (TOML); missing file means defaults")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
	pf.BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&flagLenient, "lenient", false, "Treat undefined predecessors as zero-duration tasks")
	pf.StringVar(&flagUnit, "unit", "", "Duration unit used in reports (default from config)")
	pf.IntVar(&flagMaxNodes, "max-nodes", 0, "Reject graphs with more tasks (0 keeps the config value)")
	pf.IntVar(&flagMaxEdges, "max-edges", 0, "Reject graphs with more edges (0 keeps the config value)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(narrateCmd())
	rootCmd.AddCommand(initCmd())

	return rootCmd
}

// setup loads the config, applies flag overrides and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		ui.DisableColor()
	}

	logger := ctxlog.New(cmd.ErrOrStderr(), flagVerbose)
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

	path := flagConfig
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded

	if flagLenient {
		cfg.Lenient = true
	}
	if flagUnit != "" {
		cfg.Output.Unit = flagUnit
	}
	if flagMaxNodes > 0 {
		cfg.Limits.MaxNodes = flagMaxNodes
	}
	if flagMaxEdges > 0 {
		cfg.Limits.MaxEdges = flagMaxEdges
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Debug("config loaded", "path", path, "format", cfg.Output.Format, "lenient", cfg.Lenient)
	return nil
}

// outputFormat applies per-command output flags and returns the format to render.
func outputFormat(format, outDir string) (render.Format, error) {
	if format != "" {
		cfg.Output.Format = format
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	return render.ParseFormat(cfg.Output.Format)
}

func runCmd() *cobra.Command {
	var (
		noRender bool
		format   string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "run <tasks-file>",
		Short: "Print the critical path summary and save a rendering next to the input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := outputFormat(format, outDir)
			if err != nil {
				return err
			}
			res, err := pipeline.New(cfg, nil).Run(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if flagJSON {
				data, err := report.JSON(res, cfg.Output.Unit)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				report.Header(out, res, cfg.Output.Unit)
				if err := report.Summary(out, res.Projection, res.Graph, cfg.Output.Unit); err != nil {
					return err
				}
			}

			if !noRender {
				if err := saveRendering(cmd, res, f); err != nil {
					return err
				}
			}

			if flagNarrate {
				return printNarrative(ctx, out, res)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRender, "no-render", false, "Do not write a rendering file")
	cmd.Flags().StringVar(&format, "format", "", "Rendering format: svg, dot, ascii (default from config)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the rendering (default: next to the input)")
	cmd.Flags().BoolVar(&flagNarrate, "narrate", false, "Ask Claude for a plain-language explanation")

	return cmd
}

func saveRendering(cmd *cobra.Command, res *pipeline.Result, f render.Format) error {
	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return err
		}
	}
	path := pipeline.OutputPath(cfg, res.Source, f)
	if err := render.SaveFile(path, f, res.Input()); err != nil {
		return fmt.Errorf("save rendering: %w", err)
	}
	if !flagJSON {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s\n", ui.Dim("Rendering stored as"), path)
	}
	return nil
}

func vizCmd() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "viz <tasks-file>",
		Short: "Render the task network with the critical path highlighted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat(format, "")
			if err != nil {
				return err
			}
			res, err := pipeline.New(cfg, nil).Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output != "" {
				return render.SaveFile(output, f, res.Input())
			}
			return render.Write(cmd.OutOrStdout(), f, res.Input())
		},
	}

	cmd.Flags().StringVar(&format, "format", "ascii", "Output format (ascii, dot, svg)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <tasks-file>",
		Short: "Show earliest/latest start and finish, slack and parallel waves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := pipeline.New(cfg, nil).Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				data, err := report.JSON(res, cfg.Output.Unit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			report.Header(cmd.OutOrStdout(), res, cfg.Output.Unit)
			report.Schedule(cmd.OutOrStdout(), res.Schedule, res.Graph)
			return nil
		},
	}
}

func batchCmd() *cobra.Command {
	var (
		parallel    int
		metricsFile string
		doRender    bool
		format      string
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "batch <tasks-file>...",
		Short: "Analyse many task files concurrently; failures do not stop the batch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallel > 0 {
				cfg.Batch.Parallel = parallel
			}
			f, err := outputFormat(format, outDir)
			if err != nil {
				return err
			}

			metrics := pipeline.NewMetrics()
			br := pipeline.New(cfg, metrics).RunBatch(cmd.Context(), args,
				pipeline.BatchOptions{Render: doRender, Format: f})

			if flagJSON {
				data, err := report.BatchJSON(br, cfg.Output.Unit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				report.Batch(cmd.OutOrStdout(), br, cfg.Output.Unit)
			}

			if metricsFile != "" {
				if err := metrics.WriteFile(metricsFile); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}

			if br.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", br.Failed, len(br.Files))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 0, "Max files analysed at once (default from config)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&doRender, "render", false, "Save a rendering for every successful file")
	cmd.Flags().StringVar(&format, "format", "", "Rendering format: svg, dot, ascii (default from config)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for renderings (default: next to each input)")

	return cmd
}

func narrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "narrate <tasks-file>",
		Short: "Explain the critical path in plain language using Claude",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := pipeline.New(cfg, nil).Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printNarrative(cmd.Context(), cmd.OutOrStdout(), res)
		},
	}
}

func printNarrative(ctx context.Context, w io.Writer, res *pipeline.Result) error {
	client, err := narrate.NewClient("", cfg.Narrate.Model, cfg.Narrate.MaxTokens)
	if err != nil {
		return err
	}

	in := narrate.Input{
		Source:  res.Source,
		Summary: report.SummaryString(res.Projection, res.Graph, cfg.Output.Unit),
		Unit:    cfg.Output.Unit,
	}
	for _, id := range res.Schedule.TopoOrder {
		ts := res.Schedule.Tasks[id]
		brief := narrate.TaskBrief{ID: id, Duration: ts.Duration, Slack: ts.Slack, Critical: ts.IsCritical}
		if t, ok := res.Graph.Task(id); ok {
			brief.Description = t.Description
		}
		in.Tasks = append(in.Tasks, brief)
	}

	text, err := client.Narrate(ctx, in)
	if err != nil {
		return fmt.Errorf("narrate: %w", err)
	}

	if flagJSON {
		return outputJSON(w, map[string]string{"source": res.Source, "narrative": text})
	}
	fmt.Fprintf(w, "\n%s\n%s\n", ui.BoldCyan("📝 Narrative"), text)
	return nil
}

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a critpath.toml with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagConfig
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Green("✓"), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func outputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
