package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hanpama/gqlmodel/internal/document"
	"github.com/hanpama/gqlmodel/internal/watch"
	"github.com/spf13/cobra"
)

func (a *app) watchCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the Python models whenever inputs change",
		Long: `Generate once, then watch the schema, the documents and the configuration
file and regenerate after every change. Failures are reported and watching
continues. The set of watched paths is fixed at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, path, err := a.loadConfig()
			if err != nil {
				return err
			}
			if out != "" {
				if out, err = filepath.Abs(out); err != nil {
					return err
				}
			}
			regenerate := func(ctx context.Context) {
				conf, _, err := a.loadConfig()
				if err != nil {
					a.printError(err)
					return
				}
				if out != "" {
					conf.Generator.Out = out
				}
				if err := a.generate(ctx, conf); err != nil && ctx.Err() == nil {
					a.printError(err)
				}
			}
			regenerate(cmd.Context())

			var paths []string
			if path != "" {
				paths = append(paths, path)
			}
			paths = append(paths, watchRoots(conf.SchemaPaths())...)
			paths = append(paths, watchRoots(conf.DocumentPaths())...)
			a.log.Info("watching", "paths", strings.Join(paths, ","))

			return watch.Run(cmd.Context(), watch.Options{
				Paths:      paths,
				Extensions: document.Extensions,
				OnChange: func(ctx context.Context, _ []string) {
					regenerate(ctx)
				},
				OnError: func(err error) {
					a.log.Warn("watch error", "error", err)
				},
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, or directory when documents are split")
	return cmd
}

// watchRoots replaces glob patterns by the directory holding them and drops
// locations that do not exist yet.
func watchRoots(locations []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, loc := range locations {
		if strings.ContainsAny(loc, "*?[") {
			loc = filepath.Dir(loc)
			for strings.ContainsAny(loc, "*?[") {
				loc = filepath.Dir(loc)
			}
		}
		if _, err := os.Stat(loc); err != nil || seen[loc] {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
	}
	return out
}
