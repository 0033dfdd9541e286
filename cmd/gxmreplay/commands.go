package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/gogpu/gxm"
	"github.com/gogpu/gxm/config"
	"github.com/gogpu/gxm/internal/replay"
	"github.com/gogpu/gxm/renderer"
)

var (
	replayCommand = &cli.Command{
		Name:      "replay",
		Usage:     "replay one or more JSON traces",
		ArgsUsage: "<trace.json>...",
		Flags:     rendererFlags,
		Action:    replayAction,
	}
	backendsCommand = &cli.Command{
		Name:   "backends",
		Usage:  "list registered backends",
		Action: backendsAction,
	}
	dumpConfigCommand = &cli.Command{
		Name:   "dumpconfig",
		Usage:  "print the effective configuration as TOML",
		Flags:  rendererFlags,
		Action: dumpConfigAction,
	}
)

// setupLogging installs a text slog handler at the configured level.
func setupLogging(ctx *cli.Context) error {
	level := config.Default().Log.Level
	if path := ctx.Path(configFlag.Name); path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		level = cfg.Log.Level
	}
	if ctx.IsSet(logLevelFlag.Name) {
		level = ctx.String(logLevelFlag.Name)
	}
	l, err := config.ParseLevel(level)
	if err != nil {
		return err
	}
	gxm.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

func replayAction(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("replay: no trace given")
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	for _, path := range ctx.Args().Slice() {
		if err := replayFile(ctx, cfg, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func replayFile(ctx *cli.Context, cfg config.Config, path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	trace, err := replay.Decode(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	mem, err := replay.NewMemory(ctx.Context, cfg.Memory)
	if err != nil {
		return err
	}
	defer func() { _ = mem.Close() }()

	res, err := replay.Run(ctx.Context, mem, trace, cfg.Renderer)
	if err != nil {
		return err
	}

	out := ctx.App.Writer
	fmt.Fprintf(out, "%s: backend=%s commands=%d failed=%d skipped-syncs=%d missing=%d\n",
		path, res.Backend, len(trace.Commands), res.Failures, res.Stats.SkippedSyncs, res.Stats.MissingFeatures)
	for _, s := range res.Syncs {
		fmt.Fprintf(out, "  step %d %s: %s\n", s.Step, s.Op, s.Status)
	}
	for _, m := range res.Missing {
		fmt.Fprintf(out, "  missing feature %s\n", m)
	}
	return nil
}

func backendsAction(ctx *cli.Context) error {
	for _, k := range renderer.Backends() {
		fmt.Fprintln(ctx.App.Writer, k)
	}
	return nil
}

func dumpConfigAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	return config.Write(ctx.App.Writer, cfg)
}
