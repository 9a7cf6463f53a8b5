package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hanpama/gqlmodel/internal/config"
	"github.com/hanpama/gqlmodel/internal/eventbus"
	"github.com/hanpama/gqlmodel/internal/events"
	"github.com/hanpama/gqlmodel/internal/protoemit"
	"github.com/hanpama/gqlmodel/internal/run"
	"github.com/spf13/cobra"
)

func (a *app) protoCommand() *cobra.Command {
	var (
		outDir string
		pkg    string
	)
	cmd := &cobra.Command{
		Use:   "proto",
		Short: "Emit the generated classes as proto3 messages",
		Long: `Emit one .proto file per generation unit. Each class becomes a message with
its inherited fields flattened in; unions become wrapper messages with a oneof.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			if pkg == "" {
				pkg = conf.Generator.ProtoPackage
			}
			dir := conf.Resolve("proto")
			if outDir != "" {
				if dir, err = filepath.Abs(outDir); err != nil {
					return err
				}
			}
			return a.emitProto(cmd.Context(), conf, dir, pkg)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: proto/ next to the configuration)")
	cmd.Flags().StringVar(&pkg, "package", "", "Proto package name (default: proto_package from the configuration)")
	return cmd
}

func (a *app) emitProto(ctx context.Context, conf *config.Config, dir, pkg string) error {
	outcomes, err := a.build(ctx, conf)
	if err != nil {
		return err
	}
	for _, res := range run.Results(outcomes) {
		fd, err := protoemit.Build(res, pkg)
		if err != nil {
			return fmt.Errorf("%s: %w", res.Unit, err)
		}
		path, err := protoemit.WriteFile(fd, dir)
		if err != nil {
			return err
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		eventbus.Publish(ctx, events.OutputWritten{Path: path, Bytes: int(info.Size())})
	}
	return run.Err(outcomes)
}
