// Command oxyprecache compiles every pass of a directory of techniques and records the resulting
// shader combinations to a precache file that the engine replays at startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/config"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	compiler := shader.NewWGSLCompiler(os.DirFS(cfg.ShaderDir))
	if err := run(ctx, cfg, compiler); err != nil {
		common.Logger().Error("precache failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags loads the optional configuration file and applies flag overrides on top of it.
func parseFlags(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("oxyprecache", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML configuration file")
	shaderDir := fs.String("shaders", "", "directory holding WGSL shader sources")
	techniqueDir := fs.String("techniques", "", "directory holding technique descriptions")
	output := fs.String("out", "", "precache file to write")
	replay := fs.String("replay", "", "precache file to compile before the techniques")
	backend := fs.String("backend", "", "graphics backend: wgpu or headless")
	watch := fs.Bool("watch", false, "keep running and recompile techniques when their descriptions change")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "shaders":
			cfg.ShaderDir = *shaderDir
		case "techniques":
			cfg.TechniqueDir = *techniqueDir
		case "out":
			cfg.PrecacheFile = *output
		case "replay":
			cfg.ReplayFile = *replay
		case "backend":
			cfg.Backend = *backend
		case "watch":
			cfg.Watch = *watch
		}
	})
	return cfg, cfg.Validate()
}
