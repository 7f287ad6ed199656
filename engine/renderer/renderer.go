package renderer

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/constant_buffer"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/precache"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/technique"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrCompilerRequired is returned by NewGraphics when no compiler is given.
	ErrCompilerRequired = errors.New("renderer: a shader compiler is required")

	// ErrPrecacheNotActive is returned by EndDumpShaders when no dump is in progress.
	ErrPrecacheNotActive = errors.New("renderer: no shader precache is active")
)

const defaultProgramCacheSize = 256

// variationKey identifies a compiled variation. Defines are stored normalized.
type variationKey struct {
	stage   shader.Stage
	name    string
	defines string
}

// graphics is the implementation of the Graphics interface.
type graphics struct {
	mu *sync.Mutex

	compiler   shader.Compiler
	variations map[variationKey]shader.Variation
	programs   *lru.Cache[shader.StageSet, *program.ShaderProgram]
	pool       *constant_buffer.Pool

	current    *program.ShaderProgram
	currentSet shader.StageSet
	dump       *precache.ShaderPrecache
	frame      uint

	backendType GraphicsBackendType
	backend     GraphicsBackend

	// Pre-creation config collected from builder options
	desktop              bool
	programCacheSize     int
	forceFallbackAdapter bool
}

// Graphics is the shader-facing part of the graphics subsystem.
//
// It resolves (stage, name, defines) combinations to compiled variations, caching every result so
// no combination is compiled twice. Activating a stage set links it into a ShaderProgram that is
// kept in a bounded cache, and, while a dump is active, records the combination to a precache file.
type Graphics interface {
	technique.VariationSource

	// SetShaders activates a stage combination. Desktop-only stages are dropped when they are not
	// supported. Each variation gets a backend shader module on first activation, and the linked
	// program is looked up or built.
	//
	// Parameters:
	//   - set: the variation of each stage, nil for unused stages
	//
	// Returns:
	//   - *program.ShaderProgram: the linked program, or nil if the set is empty or could not be linked
	SetShaders(set shader.StageSet) *program.ShaderProgram

	// ShaderProgram returns the program activated by the last SetShaders call.
	//
	// Returns:
	//   - *program.ShaderProgram: the current program, or nil if none is active
	ShaderProgram() *program.ShaderProgram

	// BeginDumpShaders starts recording every activated combination to the given precache file.
	// If a dump is already active it keeps going and the call is a no-op.
	//
	// Parameters:
	//   - fileName: the precache file to record to
	//
	// Returns:
	//   - error: an error if the existing precache file cannot be read
	BeginDumpShaders(fileName string) error

	// EndDumpShaders stops recording and writes the precache file if anything new was recorded.
	//
	// Returns:
	//   - error: ErrPrecacheNotActive if no dump is active, or an error if the file cannot be written
	EndDumpShaders() error

	// PrecacheShaders compiles and links every combination of a precache document up front.
	//
	// Parameters:
	//   - r: the precache document
	//
	// Returns:
	//   - error: an error if the document cannot be parsed
	PrecacheShaders(r io.Reader) error

	// CleanupShaderPrograms drops every cached program that links the given variation.
	//
	// Parameters:
	//   - v: the variation being discarded
	CleanupShaderPrograms(v shader.Variation)

	// ConstantBufferPool returns the pool programs acquire their constant buffers from.
	ConstantBufferPool() *constant_buffer.Pool

	// FrameNumber returns the number of completed frames.
	FrameNumber() uint

	// AdvanceFrame uploads every modified constant buffer and advances the frame counter.
	AdvanceFrame()

	// SupportsDesktopStages reports whether geometry, hull, domain and compute stages are available.
	SupportsDesktopStages() bool

	// Release frees every program, constant buffer and shader module, then the backend.
	// An active dump is ended first.
	//
	// Returns:
	//   - error: an error if the active precache could not be written
	Release() error
}

var _ Graphics = &graphics{}

// NewGraphics creates a Graphics instance that compiles with the given compiler.
//
// Parameters:
//   - compiler: the compiler resolving (stage, name, defines) to variations
//   - options: variadic list of GraphicsBuilderOption functions to configure the instance
//
// Returns:
//   - Graphics: the new instance
//   - error: an error if the compiler is missing, the cache size is invalid or the backend cannot be created
func NewGraphics(compiler shader.Compiler, options ...GraphicsBuilderOption) (Graphics, error) {
	if compiler == nil {
		return nil, ErrCompilerRequired
	}
	g := &graphics{
		mu:               &sync.Mutex{},
		compiler:         compiler,
		variations:       make(map[variationKey]shader.Variation),
		backendType:      BackendTypeWGPU,
		desktop:          true,
		programCacheSize: defaultProgramCacheSize,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(g)
	}

	programs, err := lru.NewWithEvict(g.programCacheSize, func(_ shader.StageSet, p *program.ShaderProgram) {
		p.Release()
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: invalid program cache size %d: %w", g.programCacheSize, err)
	}
	g.programs = programs

	if g.backend == nil {
		switch g.backendType {
		case BackendTypeHeadless:
			g.backend = newHeadlessGraphicsBackend()
		case BackendTypeWGPU:
			fallthrough
		default:
			backend, err := newWGPUGraphicsBackend(g.forceFallbackAdapter)
			if err != nil {
				return nil, err
			}
			g.backend = backend
		}
	}
	g.pool = constant_buffer.NewPool(g.backend)

	common.Logger().Debug("graphics created", "backend", g.backendType.String(), "desktop", g.desktop)
	return g, nil
}

func (g *graphics) GetShader(stage shader.Stage, name, defines string) shader.Variation {
	if name == "" || !stage.Valid() {
		return nil
	}
	key := variationKey{stage: stage, name: name, defines: shader.NormalizeDefines(defines)}

	g.mu.Lock()
	defer g.mu.Unlock()

	if v, ok := g.variations[key]; ok {
		return v
	}

	v, err := g.compiler.Compile(stage, name, key.defines)
	if err != nil {
		common.Logger().Error("failed to compile shader", "stage", stage.String(), "name", name, "defines", key.defines, "error", err)
		v = nil
	} else {
		common.Logger().Debug("compiled shader", "stage", stage.String(), "name", name, "defines", key.defines)
	}
	g.variations[key] = v
	return v
}

func (g *graphics) SetShaders(set shader.StageSet) *program.ShaderProgram {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.desktop {
		set = set.WithoutDesktopStages()
	}
	if set.Empty() {
		g.current = nil
		g.currentSet = shader.StageSet{}
		return nil
	}
	if g.current != nil && set == g.currentSet {
		return g.current
	}

	for _, v := range set {
		if v == nil || g.backend.HasShaderModule(v) {
			continue
		}
		if err := g.backend.CreateShaderModule(v); err != nil {
			common.Logger().Error("failed to create shader module", "stage", v.Stage().String(), "name", v.Name(), "defines", v.Defines(), "error", err)
			g.current = nil
			g.currentSet = shader.StageSet{}
			return nil
		}
	}

	if g.dump != nil {
		g.dump.StoreShaders(set)
	}

	p, ok := g.programs.Get(set)
	if !ok {
		var err error
		p, err = program.NewShaderProgram(g.pool, set, g.desktop)
		if err != nil {
			common.Logger().Error("failed to link shader program", "error", err)
			g.current = nil
			g.currentSet = shader.StageSet{}
			return nil
		}
		g.programs.Add(set, p)
	}

	g.current = p
	g.currentSet = set
	return p
}

func (g *graphics) ShaderProgram() *program.ShaderProgram {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *graphics) BeginDumpShaders(fileName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dump != nil {
		return nil
	}
	p, err := precache.NewShaderPrecache(fileName)
	if err != nil {
		return err
	}
	g.dump = p
	common.Logger().Info("shader dump started", "file", fileName)
	return nil
}

func (g *graphics) EndDumpShaders() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endDump()
}

func (g *graphics) endDump() error {
	if g.dump == nil {
		return ErrPrecacheNotActive
	}
	p := g.dump
	g.dump = nil
	common.Logger().Info("shader dump ended", "file", p.FileName(), "records", p.Len())
	return p.Close()
}

func (g *graphics) PrecacheShaders(r io.Reader) error {
	return precache.Replay(replayTarget{g: g}, r)
}

func (g *graphics) CleanupShaderPrograms(v shader.Variation) {
	if v == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, set := range g.programs.Keys() {
		p, ok := g.programs.Peek(set)
		if !ok || !p.Uses(v) {
			continue
		}
		if p == g.current {
			g.current = nil
			g.currentSet = shader.StageSet{}
		}
		g.programs.Remove(set)
	}
}

func (g *graphics) ConstantBufferPool() *constant_buffer.Pool {
	return g.pool
}

func (g *graphics) FrameNumber() uint {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame
}

func (g *graphics) AdvanceFrame() {
	g.pool.ApplyAll()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.frame++
}

func (g *graphics) SupportsDesktopStages() bool {
	return g.desktop
}

func (g *graphics) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var err error
	if g.dump != nil {
		err = g.endDump()
	}

	g.current = nil
	g.currentSet = shader.StageSet{}
	g.programs.Purge()
	g.pool.ReleaseAll()
	for key, v := range g.variations {
		if v != nil {
			g.backend.ReleaseShaderModule(v)
		}
		delete(g.variations, key)
	}
	g.backend.Release()
	return err
}

// replayTarget adapts graphics to precache.ReplayTarget.
type replayTarget struct {
	g *graphics
}

func (t replayTarget) GetShader(stage shader.Stage, name, defines string) shader.Variation {
	return t.g.GetShader(stage, name, defines)
}

func (t replayTarget) SetShaders(set shader.StageSet) {
	t.g.SetShaders(set)
}

func (t replayTarget) SupportsDesktopStages() bool {
	return t.g.SupportsDesktopStages()
}
