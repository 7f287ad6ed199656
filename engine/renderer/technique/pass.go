package technique

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

// StageDefinition is the per-stage shader description of a pass.
type StageDefinition struct {
	// Shader is the shader source name, empty when the stage is unused.
	Shader string

	// Defines is the space-separated define list.
	Defines string

	// Excludes is the space-separated list of define tokens removed before compiling.
	Excludes string
}

// stageVariations stores the resolved variations of one stage: the base list and one list per
// extra-defines hash supplied by the caller.
type stageVariations struct {
	base  []shader.Variation
	extra map[uint32]*[]shader.Variation
}

// VariationSource resolves a (stage, name, defines) combination to a variation. A nil result
// means the stage is unused, e.g. because compilation failed.
type VariationSource interface {
	GetShader(stage shader.Stage, name, defines string) shader.Variation
}

// Pass is one render sub-step of a technique: per-stage shader names and defines, render state,
// and the variations resolved from them.
type Pass struct {
	name  string
	index int

	stages     [shader.StageCount]StageDefinition
	variations [shader.StageCount]stageVariations

	blendMode       BlendMode
	cullMode        CullMode
	depthTestMode   CompareMode
	lightingMode    LightingMode
	depthWrite      bool
	alphaToCoverage bool
	desktop         bool

	shadersLoadedFrame uint
}

// newPass creates a pass with default render state. The lighting mode is guessed from the
// built-in pass the index belongs to.
func newPass(name string, index int) *Pass {
	p := &Pass{
		name:          name,
		index:         index,
		blendMode:     BlendReplace,
		cullMode:      CullNoOverride,
		depthTestMode: CompareLessEqual,
		lightingMode:  LightingUnlit,
		depthWrite:    true,
	}
	switch index {
	case BasePassIndex, AlphaPassIndex, MaterialPassIndex, DeferredPassIndex:
		p.lightingMode = LightingPerVertex
	case LightPassIndex, LitBasePassIndex, LitAlphaPassIndex:
		p.lightingMode = LightingPerPixel
	}
	return p
}

// Name returns the pass name as it was declared.
func (p *Pass) Name() string {
	return p.name
}

// Index returns the interned pass index.
func (p *Pass) Index() int {
	return p.index
}

// Stage returns the full shader description of a stage.
func (p *Pass) Stage(stage shader.Stage) StageDefinition {
	if !stage.Valid() {
		return StageDefinition{}
	}
	return p.stages[stage]
}

// SetShader sets the shader name of a stage and releases every resolved variation.
func (p *Pass) SetShader(stage shader.Stage, name string) {
	if !stage.Valid() {
		return
	}
	p.stages[stage].Shader = name
	p.ReleaseShaders()
}

// SetDefines sets the define list of a stage and releases every resolved variation.
func (p *Pass) SetDefines(stage shader.Stage, defines string) {
	if !stage.Valid() {
		return
	}
	p.stages[stage].Defines = defines
	p.ReleaseShaders()
}

// SetDefineExcludes sets the define exclude list of a stage and releases every resolved variation.
func (p *Pass) SetDefineExcludes(stage shader.Stage, excludes string) {
	if !stage.Valid() {
		return
	}
	p.stages[stage].Excludes = excludes
	p.ReleaseShaders()
}

// Shader returns the shader name of a stage.
func (p *Pass) Shader(stage shader.Stage) string {
	return p.Stage(stage).Shader
}

// Defines returns the raw define list of a stage.
func (p *Pass) Defines(stage shader.Stage) string {
	return p.Stage(stage).Defines
}

// DefineExcludes returns the define exclude list of a stage.
func (p *Pass) DefineExcludes(stage shader.Stage) string {
	return p.Stage(stage).Excludes
}

// EffectiveDefines returns the defines of a stage with every excluded token removed. Without
// excludes the raw define string is returned unchanged.
//
// Parameters:
//   - stage: the stage to query
//
// Returns:
//   - string: the defines that are passed to the compiler
func (p *Pass) EffectiveDefines(stage shader.Stage) string {
	def := p.Stage(stage)
	if def.Excludes == "" {
		return def.Defines
	}

	excluded := make(map[string]struct{})
	for _, token := range strings.Fields(def.Excludes) {
		excluded[token] = struct{}{}
	}
	tokens := strings.Fields(def.Defines)
	kept := tokens[:0]
	for _, token := range tokens {
		if _, ok := excluded[token]; !ok {
			kept = append(kept, token)
		}
	}
	return strings.Join(kept, " ")
}

// SetBlendMode sets the blend mode.
func (p *Pass) SetBlendMode(mode BlendMode) {
	p.blendMode = mode
}

// BlendMode returns the blend mode.
func (p *Pass) BlendMode() BlendMode {
	return p.blendMode
}

// SetCullMode sets the cull mode override. CullNoOverride defers to the material.
func (p *Pass) SetCullMode(mode CullMode) {
	p.cullMode = mode
}

// CullMode returns the cull mode override.
func (p *Pass) CullMode() CullMode {
	return p.cullMode
}

// SetDepthTestMode sets the depth compare function.
func (p *Pass) SetDepthTestMode(mode CompareMode) {
	p.depthTestMode = mode
}

// DepthTestMode returns the depth compare function.
func (p *Pass) DepthTestMode() CompareMode {
	return p.depthTestMode
}

// SetLightingMode sets the lighting mode.
func (p *Pass) SetLightingMode(mode LightingMode) {
	p.lightingMode = mode
}

// LightingMode returns the lighting mode.
func (p *Pass) LightingMode() LightingMode {
	return p.lightingMode
}

// SetDepthWrite enables or disables depth writes.
func (p *Pass) SetDepthWrite(enable bool) {
	p.depthWrite = enable
}

// DepthWrite reports whether depth writes are enabled.
func (p *Pass) DepthWrite() bool {
	return p.depthWrite
}

// SetAlphaToCoverage enables or disables alpha-to-coverage.
func (p *Pass) SetAlphaToCoverage(enable bool) {
	p.alphaToCoverage = enable
}

// AlphaToCoverage reports whether alpha-to-coverage is enabled.
func (p *Pass) AlphaToCoverage() bool {
	return p.alphaToCoverage
}

// SetDesktop marks the pass as requiring desktop-class stages.
func (p *Pass) SetDesktop(enable bool) {
	p.desktop = enable
}

// IsDesktop reports whether the pass requires desktop-class stages.
func (p *Pass) IsDesktop() bool {
	return p.desktop
}

// Variations returns the storage for the resolved variations of a stage. A zero hash selects
// the base list, any other hash selects (and creates on demand) the list for that extra-defines
// hash. The caller populates the returned list.
//
// Parameters:
//   - stage: the stage to query
//   - extraDefinesHash: the hash of caller supplied extra defines, 0 for none
//
// Returns:
//   - *[]shader.Variation: the mutable variation list, or nil for an invalid stage
func (p *Pass) Variations(stage shader.Stage, extraDefinesHash uint32) *[]shader.Variation {
	if !stage.Valid() {
		return nil
	}
	sv := &p.variations[stage]
	if extraDefinesHash == 0 {
		return &sv.base
	}
	if sv.extra == nil {
		sv.extra = make(map[uint32]*[]shader.Variation)
	}
	list, ok := sv.extra[extraDefinesHash]
	if !ok {
		list = &[]shader.Variation{}
		sv.extra[extraDefinesHash] = list
	}
	return list
}

// HasResolvedShaders reports whether any stage holds a resolved variation list.
func (p *Pass) HasResolvedShaders() bool {
	for i := range p.variations {
		if len(p.variations[i].base) > 0 || len(p.variations[i].extra) > 0 {
			return true
		}
	}
	return false
}

// ReleaseShaders clears the base and extra-defines variation lists of every stage. The shader
// names and defines are kept, so the next resolve compiles from the same description.
func (p *Pass) ReleaseShaders() {
	for i := range p.variations {
		p.variations[i] = stageVariations{}
	}
}

// MarkShadersLoaded stamps the frame the pass's shaders were last validated in.
func (p *Pass) MarkShadersLoaded(frameNumber uint) {
	p.shadersLoadedFrame = frameNumber
}

// ShadersLoadedFrame returns the frame stamp set by MarkShadersLoaded.
func (p *Pass) ShadersLoadedFrame() uint {
	return p.shadersLoadedFrame
}

// Resolve returns the variation of a stage for the given extra defines, asking source for it
// when the matching list is still empty. The result is cached in the pass until the pass
// definition changes or ReleaseShaders is called.
//
// Parameters:
//   - stage: the stage to resolve
//   - extraDefines: caller supplied defines appended to the effective defines, may be empty
//   - source: the variation source used on a cache miss
//
// Returns:
//   - shader.Variation: the resolved variation, or nil if the stage is unused
func (p *Pass) Resolve(stage shader.Stage, extraDefines string, source VariationSource) shader.Variation {
	name := p.Shader(stage)
	if name == "" {
		return nil
	}
	list := p.Variations(stage, common.StringHash(extraDefines))
	if len(*list) == 0 {
		*list = append(*list, source.GetShader(stage, name, appendDefines(p.EffectiveDefines(stage), extraDefines)))
	}
	return (*list)[0]
}

// ResolveAll resolves every stage of the pass. Desktop-only stages are left empty unless desktop
// is true.
//
// Parameters:
//   - source: the variation source used on cache misses
//   - extraDefines: per-stage extra defines, indexed by shader.Stage
//   - desktop: whether desktop-only stages may be resolved
//
// Returns:
//   - shader.StageSet: the resolved variation of each stage
func (p *Pass) ResolveAll(source VariationSource, extraDefines [shader.StageCount]string, desktop bool) shader.StageSet {
	var set shader.StageSet
	for _, stage := range shader.Stages {
		if stage.IsDesktopOnly() && !desktop {
			continue
		}
		set[stage] = p.Resolve(stage, extraDefines[stage], source)
	}
	return set
}

// copyDefinitionTo copies every stage description and render state flag into dst. Resolved
// variations are not copied.
func (p *Pass) copyDefinitionTo(dst *Pass) {
	dst.stages = p.stages
	dst.blendMode = p.blendMode
	dst.cullMode = p.cullMode
	dst.depthTestMode = p.depthTestMode
	dst.lightingMode = p.lightingMode
	dst.depthWrite = p.depthWrite
	dst.alphaToCoverage = p.alphaToCoverage
	dst.desktop = p.desktop
	dst.ReleaseShaders()
}

// appendDefines joins two define lists with a single space, skipping empty sides.
func appendDefines(defines, extra string) string {
	switch {
	case extra == "":
		return defines
	case defines == "":
		return extra
	}
	return defines + " " + extra
}
