package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hanpama/gqlmodel/internal/config"
	"github.com/hanpama/gqlmodel/internal/document"
	"github.com/hanpama/gqlmodel/internal/eventbus"
	"github.com/hanpama/gqlmodel/internal/events"
	"github.com/hanpama/gqlmodel/internal/pyrender"
	"github.com/hanpama/gqlmodel/internal/registry"
	"github.com/hanpama/gqlmodel/internal/run"
	"github.com/hanpama/gqlmodel/internal/schema"
	"github.com/spf13/cobra"
)

func (a *app) generateCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the Python models",
		Long: `Generate one Python module from all documents, or one module per document
when split_documents is set. In split mode the output path is a directory.

Documents that fail to generate are reported; the others are still written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			if out != "" {
				conf.Generator.Out, err = filepath.Abs(out)
				if err != nil {
					return err
				}
			}
			return a.generate(cmd.Context(), conf)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, or directory when documents are split")
	return cmd
}

// build loads the schema and documents of conf and runs every unit.
func (a *app) build(ctx context.Context, conf *config.Config) ([]*run.Outcome, error) {
	src, s, err := schema.Load(conf.SchemaPaths()...)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	set, err := document.LoadFiles(ctx, src, conf.Generator.SplitDocuments, conf.DocumentPaths()...)
	if err != nil {
		return nil, err
	}
	a.log.Debug("documents loaded", "documents", len(set.Documents), "units", len(set.Units))
	return run.Units(ctx, s, conf.Generator, set.Units)
}

func (a *app) generate(ctx context.Context, conf *config.Config) error {
	outcomes, err := a.build(ctx, conf)
	if err != nil {
		return err
	}
	out := conf.Resolve(conf.Generator.Out)
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		path := out
		if conf.Generator.SplitDocuments {
			path = filepath.Join(out, moduleName(o.Unit)+".py")
		}
		if err := writeOutput(ctx, path, []byte(pyrender.Render(o.Result))); err != nil {
			return err
		}
	}
	return run.Err(outcomes)
}

// moduleName turns a document path into a Python module name.
func moduleName(unit string) string {
	base := filepath.Base(unit)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(base)
	return registry.SnakeCase(base)
}

func writeOutput(ctx context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	eventbus.Publish(ctx, events.OutputWritten{Path: path, Bytes: len(data)})
	return nil
}
