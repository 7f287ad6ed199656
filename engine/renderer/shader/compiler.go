package shader

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gogpu/naga"
)

var (
	// ErrStageUnsupported is returned when compiling for a stage WGSL cannot express.
	ErrStageUnsupported = errors.New("shader: stage not supported by the WGSL compiler")

	// ErrEntryPointMissing is returned when the processed source has no entry point for the stage.
	ErrEntryPointMissing = errors.New("shader: entry point missing")

	// ErrShaderNotFound is returned when the named shader source does not exist.
	ErrShaderNotFound = errors.New("shader: source not found")
)

// BytecodeCompiler turns processed WGSL source into a binary module.
type BytecodeCompiler func(source string, opts naga.CompileOptions) ([]byte, error)

// Compiler compiles a (stage, shader name, defines) combination into a Variation.
type Compiler interface {
	// Compile loads the named shader source, resolves its directives against defines and compiles
	// it for the given stage.
	//
	// Parameters:
	//   - stage: the stage to compile for
	//   - name: the shader source name without extension
	//   - defines: the space-separated define list
	//
	// Returns:
	//   - Variation: the compiled variation
	//   - error: an error if the source is missing, fails to pre-process or fails to compile
	Compile(stage Stage, name, defines string) (Variation, error)
}

// wgslCompiler is the implementation of the Compiler interface for WGSL sources.
type wgslCompiler struct {
	fsys      fs.FS
	extension string
	pp        PreProcessor
	options   naga.CompileOptions
	bytecode  BytecodeCompiler
}

var _ Compiler = &wgslCompiler{}

// NewWGSLCompiler creates a Compiler that reads `<name>.wgsl` sources from fsys and compiles them
// to SPIR-V with naga. Vertex, pixel and compute stages are supported.
//
// Parameters:
//   - fsys: the file system holding the shader sources
//   - options: optional configuration
//
// Returns:
//   - Compiler: the WGSL compiler
func NewWGSLCompiler(fsys fs.FS, options ...WGSLCompilerOption) Compiler {
	c := &wgslCompiler{
		fsys:      fsys,
		extension: ".wgsl",
		pp:        NewPreProcessor(),
		options:   naga.DefaultOptions(),
		bytecode:  naga.CompileWithOptions,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *wgslCompiler) Compile(stage Stage, name, defines string) (Variation, error) {
	switch stage {
	case StageVertex, StagePixel, StageCompute:
	default:
		return nil, fmt.Errorf("%w: %s", ErrStageUnsupported, stage)
	}

	path := name + c.extension
	raw, err := fs.ReadFile(c.fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrShaderNotFound, path)
		}
		return nil, fmt.Errorf("shader: failed to read %q: %w", path, err)
	}

	normalized := NormalizeDefines(defines)
	source, err := c.pp.Process(string(raw), stage, normalized)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to pre-process %q: %w", path, err)
	}

	entryPoint := parseEntryPoint(source, stage)
	if entryPoint == "" {
		return nil, fmt.Errorf("%w: %s has no %s entry point", ErrEntryPointMissing, path, stage)
	}

	layout, err := parseUniformLayout(source)
	if err != nil {
		return nil, fmt.Errorf("shader: %q: %w", path, err)
	}

	bytecode, err := c.bytecode(source, c.options)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to compile %q (%s, %q): %w", path, stage, normalized, err)
	}

	opts := []VariationOption{
		WithEntryPoint(entryPoint),
		WithSource(source),
		WithBytecode(bytecode),
		WithParameters(layout.parameters...),
	}
	for g, size := range layout.sizes {
		if size > 0 {
			opts = append(opts, WithConstantBufferSize(ParameterGroup(g), size))
		}
	}
	return NewVariation(stage, name, normalized, opts...), nil
}
