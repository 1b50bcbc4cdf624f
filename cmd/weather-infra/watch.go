package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mertsatargan/react-weather-cdk/internal/config"
	"github.com/mertsatargan/react-weather-cdk/internal/lint"
	"github.com/mertsatargan/react-weather-cdk/internal/stack"
)

type watchOptions struct {
	lintOnly     bool
	debounce     time.Duration
	outputFormat string
	outputFile   string
}

// newWatchCmd creates the "watch" subcommand for re-synthesizing on config changes.
func newWatchCmd(a *app) *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-synthesize when the config file changes",
		Long: `Watch monitors the config file and re-synthesizes the template on every change.

The watch command:
- Reloads and validates the configuration
- Runs the audit rules on the new template
- Writes the template (unless --lint-only)
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    weather-infra watch --config weather-infra.yaml -o template.json
    weather-infra watch --lint-only
    weather-infra watch --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), a, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.lintOnly, "lint-only", false, "Only run the audit rules, do not write the template")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runWatch(ctx context.Context, a *app, opts watchOptions, out io.Writer) error {
	path := a.configFile
	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return errors.New("no config file found to watch (pass --config)")
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Editors often replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	fmt.Fprintf(out, "Watching: %s\n", path)

	rebuild(a, opts, out)
	fmt.Fprintln(out, "\nWatching for changes... (Ctrl+C to stop)")

	err = debounceEvents(ctx, watcher.Events, watcher.Errors, opts.debounce,
		func(name string) bool { return filepath.Clean(name) == path },
		func() {
			fmt.Fprintf(out, "\n[%s] Change detected, rebuilding...\n", time.Now().Format("15:04:05"))
			rebuild(a, opts, out)
		},
		func(err error) { a.log().Warn("watch error", zap.Error(err)) })
	fmt.Fprintln(out, "\nStopping watch...")
	return err
}

// findConfigFile returns the config file a search would use, or "" when
// there is none. Its contents are checked by rebuild.
func findConfigFile() string {
	v := config.New("")
	_ = v.ReadInConfig()
	return v.ConfigFileUsed()
}

// debounceEvents calls fn once events for matching files have been quiet for
// delay. It returns when ctx is done or the event channel closes.
func debounceEvents(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, delay time.Duration, match func(string) bool, fn func(), onErr func(error)) error {
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !match(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(delay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			fn()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			onErr(err)

		case <-ctx.Done():
			return nil
		}
	}
}

// rebuild reloads the configuration, synthesizes and audits the template.
// Failures are reported and the watch continues.
func rebuild(a *app, opts watchOptions, out io.Writer) bool {
	cfg, used, err := a.loadConfig()
	if err != nil {
		fmt.Fprintf(out, "Config error: %v\n", err)
		return false
	}
	tmpl, err := stack.Template(cfg, a.log())
	if err != nil {
		fmt.Fprintf(out, "Synth error: %v\n", err)
		return false
	}

	result := lint.Lint(tmpl, lint.Options{})
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "%s: %s: %s [%s]\n", issue.Resource, issue.Severity, issue.Message, issue.Rule)
	}
	if !result.Success {
		fmt.Fprintln(out, "Audit failed, skipping output")
		return false
	}
	fmt.Fprintf(out, "Synthesized %d resources from %s (%s variant)\n", len(tmpl.Resources), used, cfg.Variant)

	if opts.lintOnly {
		return true
	}
	if err := writeTemplate(out, tmpl, opts.outputFormat, opts.outputFile); err != nil {
		fmt.Fprintf(out, "Write error: %v\n", err)
		return false
	}
	if opts.outputFile != "" {
		fmt.Fprintf(out, "Wrote %s\n", opts.outputFile)
	}
	return true
}
