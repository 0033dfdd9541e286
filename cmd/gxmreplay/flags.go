package main

import (
	"github.com/urfave/cli/v2"

	"github.com/gogpu/gxm/config"
)

const (
	rendererCategory = "RENDERER"
	memoryCategory   = "GUEST MEMORY"
)

var (
	configFlag = &cli.PathFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "TOML configuration file",
		EnvVars: []string{"GXM_CONFIG"},
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "log level (debug, info, warn, error); overrides the config file",
	}

	backendFlag = &cli.StringFlag{
		Name:     "backend",
		Usage:    "render backend (see the backends command, or none)",
		Category: rendererCategory,
	}
	disableSyncFlag = &cli.BoolFlag{
		Name:     "disable-surface-sync",
		Usage:    "skip all surface synchronization",
		Category: rendererCategory,
	}
	dumpFlag = &cli.BoolFlag{
		Name:     "dump-surfaces",
		Usage:    "write every synced color surface to an image file",
		Category: rendererCategory,
	}
	dumpDirFlag = &cli.PathFlag{
		Name:     "dump-dir",
		Usage:    "directory for surface images",
		Category: rendererCategory,
	}
	dumpFormatFlag = &cli.StringFlag{
		Name:     "dump-format",
		Usage:    "surface image format (png, bmp, tiff)",
		Category: rendererCategory,
	}
	memoryKindFlag = &cli.StringFlag{
		Name:     "memory",
		Usage:    "guest memory kind (" + config.MemoryHeap + ", " + config.MemoryMapped + ", " + config.MemoryWasm + ")",
		Category: memoryCategory,
	}
	memorySizeFlag = &cli.Uint64Flag{
		Name:     "memory-size",
		Usage:    "guest memory size in bytes",
		Category: memoryCategory,
	}
)

var rendererFlags = []cli.Flag{
	backendFlag,
	disableSyncFlag,
	dumpFlag,
	dumpDirFlag,
	dumpFormatFlag,
	memoryKindFlag,
	memorySizeFlag,
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.Path(configFlag.Name); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet(logLevelFlag.Name) {
		cfg.Log.Level = ctx.String(logLevelFlag.Name)
	}
	if ctx.IsSet(backendFlag.Name) {
		cfg.Renderer.Backend = ctx.String(backendFlag.Name)
	}
	if ctx.IsSet(disableSyncFlag.Name) {
		cfg.Renderer.DisableSurfaceSync = ctx.Bool(disableSyncFlag.Name)
	}
	if ctx.IsSet(dumpFlag.Name) {
		cfg.Renderer.ColorSurfaceDebug = ctx.Bool(dumpFlag.Name)
	}
	if ctx.IsSet(dumpDirFlag.Name) {
		cfg.Renderer.DumpDir = ctx.Path(dumpDirFlag.Name)
	}
	if ctx.IsSet(dumpFormatFlag.Name) {
		cfg.Renderer.DumpFormat = ctx.String(dumpFormatFlag.Name)
	}
	if ctx.IsSet(memoryKindFlag.Name) {
		cfg.Memory.Kind = ctx.String(memoryKindFlag.Name)
	}
	if ctx.IsSet(memorySizeFlag.Name) {
		cfg.Memory.Size = uint32(ctx.Uint64(memorySizeFlag.Name))
	}
	return cfg, cfg.Validate()
}
