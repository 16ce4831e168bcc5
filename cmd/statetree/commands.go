package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comalice/statetree"
	"github.com/comalice/statetree/chartfile"
	"github.com/comalice/statetree/production"
)

type rootFlags struct {
	logLevel string
	trace    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "statetree",
		Short: "Run, render and check statechart documents",
		Long: `statetree works with YAML chart documents.

Callback names in a document have no Go code behind them here: enter and
exit actions are logged, handlers leave events unhandled, conditions defer
to history and canExit guards allow every exit. Events declared with goto
targets behave exactly as they would in a program.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flags.trace, "trace", false, "print every enter, exit, event and goto to stderr")

	rootCmd.AddCommand(newRunCmd(flags), newDotCmd(), newCheckCmd())
	return rootCmd
}

func newRunCmd(root *rootFlags) *cobra.Command {
	var (
		stdin       bool
		snapshotDir string
		format      string
	)
	cmd := &cobra.Command{
		Use:   "run <chart.yaml> [event...]",
		Short: "Enter a chart, send events and print the final configuration",
		Long: `Enter the chart's default configuration, send each event in order and
print the current leaf states. With --stdin, events are read one per line;
words after the event name are passed to handlers as string arguments.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), root.logLevel)
			if err != nil {
				return err
			}
			chart, err := loadChart(args[0], logger)
			if err != nil {
				return err
			}
			var trace statetree.Observer
			if root.trace {
				trace = traceTo(cmd.ErrOrStderr())
			}
			chart.SetObserver(statetree.NewCompositeObserver(trace, statetree.NewLoggingObserver(logger)))

			var in io.Reader
			if stdin {
				in = cmd.InOrStdin()
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			src := eventsFrom(ctx, args[1:], in)
			onError := func(ev production.Event, err error) {
				logger.Error("send_failed", slog.String("event", ev.Name), slog.Any("error", err))
			}
			if err := production.Drain(ctx, chart, src,
				production.WithLogger(logger),
				production.WithErrorHandler(onError),
			); err != nil {
				return err
			}

			for _, p := range chart.Current() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			if snapshotDir != "" {
				return writeSnapshot(cmd.Context(), chart, snapshotDir, format, cmd.ErrOrStderr())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read further events from stdin, one per line")
	cmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "write a snapshot of the final configuration to this directory")
	cmd.Flags().StringVar(&format, "format", "json", "snapshot format (json, yaml)")
	return cmd
}

func newDotCmd() *cobra.Command {
	var (
		events bool
		enter  bool
	)
	cmd := &cobra.Command{
		Use:   "dot <chart.yaml>",
		Short: "Render a chart as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := loadChart(args[0], nil)
			if err != nil {
				return err
			}
			if enter {
				if _, err := chart.Goto(); err != nil {
					return err
				}
			}
			v := &production.Visualizer{ShowEvents: events}
			fmt.Fprint(cmd.OutOrStdout(), v.DOT(chart))
			return nil
		},
	}
	cmd.Flags().BoolVar(&events, "events", false, "list event names in state labels")
	cmd.Flags().BoolVar(&enter, "enter", false, "highlight the default configuration")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <chart.yaml>",
		Short: "Validate a chart document and its goto targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := loadChart(args[0], nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d states)\n", chart.Name(), countStates(chart))
			return nil
		},
	}
}

// loadChart builds the document at path with lenient bindings. Actions are
// logged at debug level when logger is set.
func loadChart(path string, logger *slog.Logger) (*statetree.State, error) {
	spec, err := chartfile.Load(path)
	if err != nil {
		return nil, err
	}
	funcs := chartfile.NewFuncs().Lenient()
	if logger != nil {
		funcs.FallbackAction(func(name string) statetree.ActionFunc {
			return func(s *statetree.State, _ any) {
				logger.Debug("action", slog.String("name", name), slog.String("state", s.Path()))
			}
		})
	}
	return spec.Build(funcs)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func traceTo(w io.Writer) statetree.Observer {
	return statetree.NewTraceObserver(func(line string) {
		fmt.Fprintln(w, "trace:", line)
	})
}

// eventsFrom yields the named events, then one event per line of in when
// in is non-nil. Blank lines and lines starting with # are skipped. The
// source closes after the last event or once ctx is done.
func eventsFrom(ctx context.Context, names []string, in io.Reader) production.EventSource {
	ch := make(chan production.Event)
	send := func(ev production.Event) bool {
		select {
		case ch <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		defer close(ch)
		for _, name := range names {
			if !send(production.NewEvent(name)) {
				return
			}
		}
		if in == nil {
			return
		}
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			args := make([]any, len(fields)-1)
			for i, f := range fields[1:] {
				args[i] = f
			}
			if !send(production.NewEvent(fields[0], args...)) {
				return
			}
		}
	}()
	return production.NewChannelEventSource(ch)
}

func writeSnapshot(ctx context.Context, chart *statetree.State, dir, format string, w io.Writer) error {
	var (
		writer production.SnapshotWriter
		err    error
	)
	switch format {
	case "json":
		writer, err = production.NewJSONSnapshotWriter(dir)
	case "yaml":
		writer, err = production.NewYAMLSnapshotWriter(dir)
	default:
		return fmt.Errorf("unknown snapshot format %q", format)
	}
	if err != nil {
		return err
	}
	path, err := writer.Write(ctx, chart.Snapshot())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "snapshot:", path)
	return nil
}

func countStates(s *statetree.State) int {
	n := 1
	for _, c := range s.Children() {
		n += countStates(c)
	}
	return n
}
