package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/hanpama/gqlmodel/internal/config"
	"github.com/hanpama/gqlmodel/internal/eventbus"
	"github.com/hanpama/gqlmodel/internal/otel"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runMain(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// app holds the flags and per-invocation state shared by all commands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	mu     sync.Mutex // guards writes to stderr outside the logger

	configPath    string
	schemaPaths   []string
	documentPaths []string
	verbose       bool
	otelEndpoint  string
	otelService   string

	log     *slog.Logger
	cleanup []func()
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		a.printError(err)
	}
	return err
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gqlmodel",
		Short: "Generate typed Python data models from GraphQL operations",
		Long: `gqlmodel reads a GraphQL schema and a set of operation documents and
generates one typed data-model class per selection, ready to parse the
responses of those operations.

Configuration is read from gqlmodel.yaml, gqlmodel.yml or gqlmodel.toml in
the working directory unless --config is given.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to the configuration file")
	flags.StringSliceVar(&a.schemaPaths, "schema", nil, "Schema files (overrides the configuration)")
	flags.StringSliceVar(&a.documentPaths, "documents", nil, "Document files, directories or globs (overrides the configuration)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output")
	flags.StringVar(&a.otelEndpoint, "otel.endpoint", "", "OTLP collector endpoint")
	flags.StringVar(&a.otelService, "otel.service", "gqlmodel", "OpenTelemetry service name")

	root.AddCommand(
		a.generateCommand(),
		a.protoCommand(),
		a.inspectCommand(),
		a.watchCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	eventbus.Use(eventbus.New())
	a.onClose(func() { eventbus.Use(nil) })
	for _, unsubscribe := range a.subscribe() {
		a.onClose(unsubscribe)
	}

	shutdown, err := otel.Setup(a.otelEndpoint, a.otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	a.onClose(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			a.log.Warn("otel shutdown failed", "error", err)
		}
	})
	return nil
}

func (a *app) onClose(fn func()) { a.cleanup = append(a.cleanup, fn) }

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

// loadConfig reads the configuration and applies command-line overrides.
// The returned path is empty when no configuration file was found.
func (a *app) loadConfig() (*config.Config, string, error) {
	path := a.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		path = config.Locate(wd)
	}

	var conf *config.Config
	if path != "" {
		c, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		conf = c
	} else {
		conf = config.Default()
		conf.Dir = "."
	}

	if len(a.schemaPaths) > 0 {
		paths, err := absPaths(a.schemaPaths)
		if err != nil {
			return nil, "", err
		}
		conf.Schema = paths
	}
	if len(a.documentPaths) > 0 {
		paths, err := absPaths(a.documentPaths)
		if err != nil {
			return nil, "", err
		}
		conf.Documents = paths
	}
	return conf, path, nil
}

func absPaths(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		out[i] = abs
	}
	return out, nil
}
