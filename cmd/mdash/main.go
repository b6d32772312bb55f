package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mdash/internal/bootstrap"
	metricsdto "mdash/internal/modules/metrics/dto"
	plugindto "mdash/internal/modules/plugin/dto"
	"mdash/internal/platform/config"
	apperrors "mdash/internal/platform/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var workspacePath string

	root := &cobra.Command{
		Use:           "mdash",
		Short:         "Terminal metrics dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&workspacePath, "workspace", ".", "workspace path")

	root.AddCommand(newTUICmd(&workspacePath))
	root.AddCommand(newEntryCmd(&workspacePath))
	root.AddCommand(newSampleCmd(&workspacePath))
	root.AddCommand(newClearCmd(&workspacePath))
	root.AddCommand(newImportCmd(&workspacePath))
	root.AddCommand(newExportCmd(&workspacePath))
	root.AddCommand(newReindexCmd(&workspacePath))
	root.AddCommand(newStatsCmd(&workspacePath))
	root.AddCommand(newReportCmd(&workspacePath))
	root.AddCommand(newPluginCmd(&workspacePath))
	return root
}

func loadApp(workspacePath string) (*bootstrap.App, error) {
	cfg, err := config.New(workspacePath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(workspacePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run mdash terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(*workspacePath, app)
		},
	}
}

func newEntryCmd(workspacePath *string) *cobra.Command {
	entry := &cobra.Command{Use: "entry", Short: "Metric entry commands"}

	var input metricsdto.AddEntryInput
	add := &cobra.Command{
		Use:   "add --date <iso-date>",
		Short: "Record a before/after metric entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(input.Date) == "" {
				return fmt.Errorf("--date is required")
			}
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			out, err := app.MetricsCLI.Add(context.Background(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) %q\n", out.Date, out.ID, out.TaskDescription)
			return nil
		},
	}
	add.Flags().StringVar(&input.Date, "date", "", "entry date (2006-01-02)")
	add.Flags().IntVar(&input.ToolCallsBefore, "tool-calls-before", 0, "tool calls before")
	add.Flags().IntVar(&input.ToolCallsAfter, "tool-calls-after", 0, "tool calls after")
	add.Flags().IntVar(&input.TerminalBefore, "terminal-before", 0, "terminal commands before")
	add.Flags().IntVar(&input.TerminalAfter, "terminal-after", 0, "terminal commands after")
	add.Flags().IntVar(&input.DebugTimeBefore, "debug-before", 0, "debug minutes before")
	add.Flags().IntVar(&input.DebugTimeAfter, "debug-after", 0, "debug minutes after")
	add.Flags().StringVar(&input.TaskDescription, "task", "", "task description (optional)")

	entry.AddCommand(add)

	entry.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			entries, err := app.MetricsCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no entries")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\ttc %d→%d\tterm %d→%d\tdbg %dm→%dm\t%s\n",
					e.ID, e.Date, e.ToolCallsBefore, e.ToolCallsAfter,
					e.TerminalBefore, e.TerminalAfter,
					e.DebugTimeBefore, e.DebugTimeAfter, e.TaskDescription)
			}
			return nil
		},
	})

	var entryID string
	show := &cobra.Command{
		Use:   "show --id <id>",
		Short: "Show a single entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(entryID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			e, err := app.MetricsCLI.Get(context.Background(), entryID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\ndate: %s\ntask: %s\ntool calls: %d → %d\nterminal: %d → %d\ndebug time: %dm → %dm\nrecorded: %s\n",
				e.ID, e.Date, e.TaskDescription,
				e.ToolCallsBefore, e.ToolCallsAfter,
				e.TerminalBefore, e.TerminalAfter,
				e.DebugTimeBefore, e.DebugTimeAfter,
				e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}
	show.Flags().StringVar(&entryID, "id", "", "entry id")
	entry.AddCommand(show)

	return entry
}

func newSampleCmd(workspacePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Replace the collection with the built-in sample entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			out, err := app.MetricsCLI.LoadSample(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d sample entries\n", out.Count)
			return nil
		},
	}
}

func newClearCmd(workspacePath *string) *cobra.Command {
	var yes bool
	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("%w: pass --yes to delete all entries", apperrors.ErrConfirmationRequired)
			}
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			if err := app.MetricsCLI.ClearAll(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "all entries cleared")
			return nil
		},
	}
	clear.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return clear
}

func newImportCmd(workspacePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the collection from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			out, err := app.MetricsCLI.Import(context.Background(), raw)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", out.Count)
			return nil
		},
	}
}

func newExportCmd(workspacePath *string) *cobra.Command {
	var outPath string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the collection as dated JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			out, err := app.MetricsCLI.Export(context.Background())
			if err != nil {
				return err
			}
			path := outPath
			if path == "" {
				path = filepath.Join(*workspacePath, out.Filename)
			}
			if err := os.WriteFile(path, out.Payload, 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
			return nil
		},
	}
	export.Flags().StringVar(&outPath, "out", "", "output file (defaults to <workspace>/"+config.ExportPrefix+"-<date>.json)")
	return export
}

func newReindexCmd(workspacePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild SQLite projection from the JSON ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			if err := app.MetricsCLI.Reindex(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex completed")
			return nil
		},
	}
}

func newStatsCmd(workspacePath *string) *cobra.Command {
	stats := &cobra.Command{Use: "stats", Short: "Aggregated metric statistics"}

	stats.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Show averages and overall improvement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			s, err := app.StatsCLI.Summary(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "entries: %d\n", s.EntryCount)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tool calls: %.1f → %.1f\n", s.ToolCalls.Before, s.ToolCalls.After)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "terminal: %.1f → %.1f\n", s.Terminal.Before, s.Terminal.After)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "debug time: %.1fm → %.1fm\n", s.DebugTime.Before, s.DebugTime.After)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "avg tool call reduction: %d%%\n", s.AvgToolCallReduction)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "avg debug time reduction: %d%%\n", s.AvgDebugTimeReduction)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "debug time saved: %dm (%.1fh)\n", s.TotalMinutesSaved, s.TotalHoursSaved)
			return nil
		},
	})

	stats.AddCommand(&cobra.Command{
		Use:   "trend",
		Short: "Show per-entry trend ordered by date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			points, err := app.StatsCLI.Trend(context.Background())
			if err != nil {
				return err
			}
			if len(points) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no entries")
				return nil
			}
			for _, p := range points {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\ttc %d→%d\tdbg %dm→%dm\n",
					p.Date, p.Label, p.ToolCallsBefore, p.ToolCallsAfter, p.DebugTimeBefore, p.DebugTimeAfter)
			}
			return nil
		},
	})

	stats.AddCommand(&cobra.Command{
		Use:   "bars",
		Short: "Show aggregate improvement percentage per category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			bars, err := app.StatsCLI.ImprovementBars(context.Background())
			if err != nil {
				return err
			}
			for _, b := range bars {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d%%\n", b.Category, b.Percent)
			}
			return nil
		},
	})

	return stats
}

func newReportCmd(workspacePath *string) *cobra.Command {
	var title string
	report := &cobra.Command{
		Use:   "report",
		Short: "Write a markdown stats report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			out, err := app.ReportCLI.Write(context.Background(), title)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "report written: %s (%d entries)\n", out.Path, out.EntryCount)
			return nil
		},
	}
	report.Flags().StringVar(&title, "title", "", "report title (optional)")
	return report
}

func newPluginCmd(workspacePath *string) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Plugin operations"}

	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List plugin manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			plugins, err := app.PluginCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(plugins) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, p := range plugins {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s\n", p.Name, p.Version, p.Enabled, p.Binary)
			}
			return nil
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			results, err := app.PluginCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	var commandPluginName string
	commandsCmd := &cobra.Command{
		Use:   "commands --plugin <name>",
		Short: "List commands exposed by a plugin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(commandPluginName) == "" {
				return fmt.Errorf("--plugin is required")
			}
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			commands, err := app.PluginCLI.ListCommands(context.Background(), commandPluginName)
			if err != nil {
				return err
			}
			if len(commands) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no commands")
				return nil
			}
			for _, item := range commands {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s kind=%s ext=%s timeout_ms=%d title=%q\n", item.ID, item.Kind, item.FileExt, item.TimeoutMS, item.Title)
			}
			return nil
		},
	}
	commandsCmd.Flags().StringVar(&commandPluginName, "plugin", "", "plugin name")
	plugin.AddCommand(commandsCmd)

	var exportPluginName, exportCommandID, exportOut string
	exportCmd := &cobra.Command{
		Use:   "export --plugin <name> --command <id>",
		Short: "Render the collection through an export-capability plugin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(exportPluginName) == "" || strings.TrimSpace(exportCommandID) == "" {
				return fmt.Errorf("--plugin and --command are required")
			}
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			collection, err := app.MetricsCLI.Export(context.Background())
			if err != nil {
				return err
			}
			out, err := app.PluginCLI.Export(context.Background(), plugindto.ExecuteInput{
				PluginName:     exportPluginName,
				CommandID:      exportCommandID,
				CollectionJSON: string(collection.Payload),
				WorkspacePath:  *workspacePath,
				Cwd:            *workspacePath,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "plugin=%s command=%s exit=%d\n", out.PluginName, out.CommandID, out.ExitCode)
			if strings.TrimSpace(out.Stderr) != "" {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), out.Stderr)
			}
			if out.Rendered == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "plugin produced no rendered output")
				return nil
			}
			path := exportOut
			if path == "" {
				ext := "txt"
				if commands, cmdErr := app.PluginCLI.ListCommands(context.Background(), exportPluginName); cmdErr == nil {
					for _, c := range commands {
						if c.ID == exportCommandID && c.FileExt != "" {
							ext = c.FileExt
						}
					}
				}
				path = filepath.Join(*workspacePath, fmt.Sprintf("mdash-export-%s.%s", exportCommandID, ext))
			}
			if err := os.WriteFile(path, []byte(out.Rendered), 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&exportPluginName, "plugin", "", "plugin name")
	exportCmd.Flags().StringVar(&exportCommandID, "command", "", "command id")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file")
	plugin.AddCommand(exportCmd)

	var analyzePluginName, analyzeCommandID, analyzeInputJSON string
	analyzeCmd := &cobra.Command{
		Use:   "analyze --plugin <name> --command <id>",
		Short: "Execute an analyze-capability plugin command",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(analyzePluginName) == "" || strings.TrimSpace(analyzeCommandID) == "" {
				return fmt.Errorf("--plugin and --command are required")
			}
			if err := validateJSONInput(analyzeInputJSON); err != nil {
				return err
			}
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			collection, err := app.MetricsCLI.Export(context.Background())
			if err != nil {
				return err
			}
			out, err := app.PluginCLI.Analyze(context.Background(), plugindto.ExecuteInput{
				PluginName:     analyzePluginName,
				CommandID:      analyzeCommandID,
				InputJSON:      analyzeInputJSON,
				CollectionJSON: string(collection.Payload),
				WorkspacePath:  *workspacePath,
				Cwd:            *workspacePath,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "plugin=%s command=%s exit=%d\n", out.PluginName, out.CommandID, out.ExitCode)
			if strings.TrimSpace(out.Stdout) != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Stdout)
			}
			if strings.TrimSpace(out.Stderr) != "" {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), out.Stderr)
			}
			if strings.TrimSpace(out.OutputJSON) != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.OutputJSON)
			}
			return nil
		},
	}
	analyzeCmd.Flags().StringVar(&analyzePluginName, "plugin", "", "plugin name")
	analyzeCmd.Flags().StringVar(&analyzeCommandID, "command", "", "command id")
	analyzeCmd.Flags().StringVar(&analyzeInputJSON, "input-json", "", "JSON input payload")
	plugin.AddCommand(analyzeCmd)

	var ttyPluginName, ttyCommandID, ttyInputJSON string
	ttyCmd := &cobra.Command{
		Use:   "tty --plugin <name> --command <id>",
		Short: "Prepare and run fullscreen tty plugin command",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(ttyPluginName) == "" || strings.TrimSpace(ttyCommandID) == "" {
				return fmt.Errorf("--plugin and --command are required")
			}
			if err := validateJSONInput(ttyInputJSON); err != nil {
				return err
			}
			app, err := loadApp(*workspacePath)
			if err != nil {
				return err
			}
			plan, err := app.PluginCLI.PrepareTTY(context.Background(), plugindto.TTYPrepareInput{
				PluginName:    ttyPluginName,
				CommandID:     ttyCommandID,
				InputJSON:     ttyInputJSON,
				WorkspacePath: *workspacePath,
				Cwd:           *workspacePath,
			})
			if err != nil {
				return err
			}
			return runTTYPlan(plan)
		},
	}
	ttyCmd.Flags().StringVar(&ttyPluginName, "plugin", "", "plugin name")
	ttyCmd.Flags().StringVar(&ttyCommandID, "command", "", "command id")
	ttyCmd.Flags().StringVar(&ttyInputJSON, "input-json", "", "JSON input payload")
	plugin.AddCommand(ttyCmd)

	return plugin
}

func validateJSONInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	if !json.Valid([]byte(input)) {
		return fmt.Errorf("--input-json must be valid JSON")
	}
	return nil
}

func runTTYPlan(plan plugindto.TTYPrepareOutput) error {
	if len(plan.Argv) == 0 {
		return fmt.Errorf("plugin tty plan has empty argv")
	}
	cmd := exec.Command(plan.Argv[0], plan.Argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if plan.Cwd != "" {
		cmd.Dir = plan.Cwd
	}
	env := os.Environ()
	for key, value := range plan.Env {
		env = append(env, key+"="+value)
	}
	cmd.Env = env
	return cmd.Run()
}
