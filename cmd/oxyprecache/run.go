package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/config"
	"github.com/Carmen-Shannon/oxy-technique/engine/profiler"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/technique"
)

// run loads the technique library, compiles every supported pass while dumping to the precache
// file, and optionally keeps recompiling reloaded techniques until ctx is done.
func run(ctx context.Context, cfg config.Config, compiler shader.Compiler) (err error) {
	g, err := renderer.NewGraphics(compiler,
		renderer.WithBackendType(renderer.ParseBackendType(cfg.Backend)),
		renderer.WithDesktopStages(cfg.Desktop),
		renderer.WithProgramCacheSize(cfg.ProgramCacheSize),
		renderer.WithForceFallbackAdapter(cfg.ForceFallbackAdapter),
	)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, g.Release())
	}()

	if cfg.ReplayFile != "" {
		if err := replay(g, cfg.ReplayFile); err != nil {
			return err
		}
	}

	lib := technique.NewLibrary(cfg.TechniqueDir,
		technique.WithWorkers(cfg.Workers),
		technique.WithTechniqueOptions(technique.WithDesktopSupport(cfg.Desktop)),
	)
	defer lib.Close()

	// Descriptions that fail to parse are reported but do not stop the others from compiling.
	if err := lib.LoadAll(); err != nil {
		common.Logger().Warn("some techniques failed to load", "error", err)
	}

	if err := g.BeginDumpShaders(cfg.PrecacheFile); err != nil {
		return err
	}

	var extra [shader.StageCount]string
	extra[shader.StageVertex] = cfg.VSDefines
	extra[shader.StagePixel] = cfg.PSDefines

	for _, name := range lib.Names() {
		t, _ := lib.Get(name)
		compileTechnique(g, t, extra)
	}
	g.AdvanceFrame()

	if cfg.Watch {
		if err := watch(ctx, g, lib, extra, time.Duration(cfg.ReloadIntervalMS)*time.Millisecond); err != nil {
			return err
		}
	}
	return g.EndDumpShaders()
}

func replay(g renderer.Graphics, fileName string) error {
	f, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()
	return g.PrecacheShaders(f)
}

// compileTechnique activates every supported pass of a technique once and returns the number of
// passes whose shaders linked.
func compileTechnique(g renderer.Graphics, t *technique.Technique, extra [shader.StageCount]string) int {
	if t == nil || !t.IsSupported() {
		return 0
	}
	linked := 0
	for _, pass := range t.Passes() {
		if t.SupportedPass(pass.Name()) == nil {
			continue
		}
		set := pass.ResolveAll(g, extra, g.SupportsDesktopStages())
		sp := g.SetShaders(set)
		pass.MarkShadersLoaded(g.FrameNumber())
		if sp == nil {
			common.Logger().Warn("pass has no usable shaders", "technique", t.Name(), "pass", pass.Name())
			continue
		}
		p := pipeline.FromPass(pass, sp, technique.CullCCW)
		common.Logger().Debug("pass compiled",
			"technique", t.Name(),
			"pass", p.PipelineKey(),
			"blend", p.BlendEnabled(),
			"depth", pass.DepthTestMode().String(),
			"parameters", len(sp.Parameters()),
		)
		linked++
	}
	return linked
}

// watch polls the library for reloaded descriptions and recompiles them until ctx is done.
func watch(ctx context.Context, g renderer.Graphics, lib *technique.Library, extra [shader.StageCount]string, interval time.Duration) error {
	if err := lib.Watch(); err != nil {
		return err
	}
	common.Logger().Info("watching techniques", "interval", interval)

	prof := profiler.NewProfiler(10 * time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			compiled := 0
			for _, name := range lib.ApplyReloads() {
				t, _ := lib.Get(name)
				compiled += compileTechnique(g, t, extra)
				common.Logger().Info("technique recompiled", "technique", name)
			}
			g.AdvanceFrame()
			prof.Tick(compiled)
		}
	}
}
