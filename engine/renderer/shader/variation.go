package shader

// Parameter describes one uniform value inside a stage's constant buffer.
type Parameter struct {
	// Name is the uniform field name as declared in the shader source.
	Name string

	// Stage is the stage the parameter was reflected from.
	Stage Stage

	// Group is the constant buffer slot that holds the parameter.
	Group ParameterGroup

	// Offset is the byte offset of the parameter inside its constant buffer.
	Offset uint32

	// Size is the byte size of the parameter.
	Size uint32
}

// variation is the implementation of the Variation interface.
type variation struct {
	name        string
	stage       Stage
	defines     string
	entryPoint  string
	source      string
	bytecode    []byte
	bufferSizes [MaxParameterGroups]uint32
	parameters  map[string]Parameter
}

// Variation is one compiled (stage, shader name, defines) combination.
// A nil Variation is a legitimate value and means the stage is unused.
//
// Variations are compared by identity: a StageSet holding them is used as a map and cache key.
// Implementations must therefore be comparable, normally pointer types. A non-comparable
// implementation such as a struct holding a slice panics when its set is hashed.
type Variation interface {
	// Name returns the name of the shader source the variation was compiled from.
	Name() string

	// Stage returns the pipeline stage the variation targets.
	Stage() Stage

	// Defines returns the normalized space-separated defines the variation was compiled with.
	Defines() string

	// EntryPoint returns the entry point function name for the variation's stage.
	EntryPoint() string

	// Source returns the pre-processed WGSL source.
	Source() string

	// Bytecode returns the compiled SPIR-V binary, or nil if the variation was not compiled to bytecode.
	Bytecode() []byte

	// ConstantBufferSizes returns the byte size of each parameter group's constant buffer.
	// A zero size means the group is unused by this variation.
	//
	// Returns:
	//   - [MaxParameterGroups]uint32: buffer sizes indexed by ParameterGroup
	ConstantBufferSizes() [MaxParameterGroups]uint32

	// Parameters returns the uniform parameters reflected from the variation, keyed by name.
	Parameters() map[string]Parameter
}

var _ Variation = &variation{}

// NewVariation creates a Variation from already reflected data. Compilers use it to publish their
// results, and tests use it to build variations without a shader source on disk.
//
// Parameters:
//   - stage: the targeted pipeline stage
//   - name: the shader source name
//   - defines: the defines the variation was compiled with, normalized by this function
//   - opts: optional data (source, bytecode, reflected parameters)
//
// Returns:
//   - Variation: the new variation
func NewVariation(stage Stage, name, defines string, opts ...VariationOption) Variation {
	v := &variation{
		name:       name,
		stage:      stage,
		defines:    NormalizeDefines(defines),
		parameters: make(map[string]Parameter),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *variation) Name() string {
	return v.name
}

func (v *variation) Stage() Stage {
	return v.stage
}

func (v *variation) Defines() string {
	return v.defines
}

func (v *variation) EntryPoint() string {
	return v.entryPoint
}

func (v *variation) Source() string {
	return v.source
}

func (v *variation) Bytecode() []byte {
	return v.bytecode
}

func (v *variation) ConstantBufferSizes() [MaxParameterGroups]uint32 {
	return v.bufferSizes
}

func (v *variation) Parameters() map[string]Parameter {
	return v.parameters
}

// StageSet holds one variation slot per stage. It is comparable, so the raw identity of a set of
// variations can be used directly as a map or cache key.
type StageSet [StageCount]Variation

// Get returns the variation for the given stage, or nil.
func (s StageSet) Get(stage Stage) Variation {
	if !stage.Valid() {
		return nil
	}
	return s[stage]
}

// Empty reports whether every slot is nil.
func (s StageSet) Empty() bool {
	for _, v := range s {
		if v != nil {
			return false
		}
	}
	return true
}

// WithoutDesktopStages returns a copy of the set with every desktop-only slot cleared.
func (s StageSet) WithoutDesktopStages() StageSet {
	for _, stage := range Stages {
		if stage.IsDesktopOnly() {
			s[stage] = nil
		}
	}
	return s
}
