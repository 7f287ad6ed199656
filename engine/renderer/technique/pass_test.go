package technique

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource records every compile request it receives.
type countingSource struct {
	calls    int
	requests []string
}

func (s *countingSource) GetShader(stage shader.Stage, name, defines string) shader.Variation {
	s.calls++
	s.requests = append(s.requests, stage.String()+":"+name+":"+defines)
	return shader.NewVariation(stage, name, defines)
}

func newTestTechnique(name string, options ...TechniqueBuilderOption) *Technique {
	return NewTechnique(name, append([]TechniqueBuilderOption{WithPassIndexRegistry(NewPassIndexRegistry())}, options...)...)
}

func TestPassDefaults(t *testing.T) {
	tech := newTestTechnique("Diff")
	base := tech.CreatePass("base")
	light := tech.CreatePass("light")
	custom := tech.CreatePass("refract")

	assert.Equal(t, BlendReplace, base.BlendMode())
	assert.Equal(t, CullNoOverride, base.CullMode())
	assert.Equal(t, CompareLessEqual, base.DepthTestMode())
	assert.True(t, base.DepthWrite())
	assert.False(t, base.AlphaToCoverage())
	assert.False(t, base.IsDesktop())

	assert.Equal(t, LightingPerVertex, base.LightingMode())
	assert.Equal(t, LightingPerPixel, light.LightingMode())
	assert.Equal(t, LightingUnlit, custom.LightingMode())
}

func TestPassEffectiveDefines(t *testing.T) {
	p := newPass("base", BasePassIndex)

	p.SetDefines(shader.StagePixel, "A  B C")
	assert.Equal(t, "A  B C", p.EffectiveDefines(shader.StagePixel), "no excludes returns defines verbatim")

	p.SetDefineExcludes(shader.StagePixel, "B")
	assert.Equal(t, "A C", p.EffectiveDefines(shader.StagePixel))

	p.SetDefines(shader.StagePixel, "DIFFMAP SHADOWMAP SHADOW")
	p.SetDefineExcludes(shader.StagePixel, "SHADOW NOTPRESENT")
	assert.Equal(t, "DIFFMAP SHADOWMAP", p.EffectiveDefines(shader.StagePixel), "exclusion matches whole tokens")

	assert.Equal(t, "", p.EffectiveDefines(shader.StageVertex))
	assert.Equal(t, "", p.EffectiveDefines(shader.Stage(9)))
}

func TestPassVariationsRouting(t *testing.T) {
	p := newPass("base", BasePassIndex)

	base := p.Variations(shader.StageVertex, 0)
	require.NotNil(t, base)
	assert.Same(t, base, p.Variations(shader.StageVertex, 0))

	hash := common.StringHash("INSTANCED")
	extra := p.Variations(shader.StageVertex, hash)
	assert.NotSame(t, base, extra)
	assert.Same(t, extra, p.Variations(shader.StageVertex, hash))

	*base = append(*base, shader.NewVariation(shader.StageVertex, "Basic", ""))
	assert.Len(t, *p.Variations(shader.StageVertex, 0), 1)
	assert.Empty(t, *extra)
	assert.Nil(t, p.Variations(shader.Stage(-1), 0))
}

func TestPassResolveCaches(t *testing.T) {
	p := newPass("base", BasePassIndex)
	p.SetShader(shader.StageVertex, "LitSolid")
	p.SetDefines(shader.StageVertex, "NORMALMAP")
	p.SetShader(shader.StagePixel, "LitSolid")

	src := &countingSource{}
	vs := p.Resolve(shader.StageVertex, "", src)
	require.NotNil(t, vs)
	assert.Same(t, vs, p.Resolve(shader.StageVertex, "", src))
	assert.Equal(t, 1, src.calls)

	instanced := p.Resolve(shader.StageVertex, "INSTANCED", src)
	assert.NotSame(t, vs, instanced)
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, "vs:LitSolid:NORMALMAP INSTANCED", src.requests[1])

	assert.Nil(t, p.Resolve(shader.StageGeometry, "", src), "stages without a shader are unused")
	assert.Equal(t, 2, src.calls)
	assert.True(t, p.HasResolvedShaders())
}

func TestPassSettersInvalidate(t *testing.T) {
	setters := map[string]func(p *Pass){
		"SetShader":         func(p *Pass) { p.SetShader(shader.StagePixel, "Unlit") },
		"SetDefines":        func(p *Pass) { p.SetDefines(shader.StagePixel, "VERTEXCOLOR") },
		"SetDefineExcludes": func(p *Pass) { p.SetDefineExcludes(shader.StagePixel, "DIFFMAP") },
	}
	for name, mutate := range setters {
		t.Run(name, func(t *testing.T) {
			p := newPass("base", BasePassIndex)
			p.SetShader(shader.StageVertex, "LitSolid")
			p.SetShader(shader.StagePixel, "LitSolid")
			src := &countingSource{}

			p.ResolveAll(src, StageDefines{}, true)
			p.Resolve(shader.StageVertex, "SKINNED", src)
			assert.Equal(t, 3, src.calls)

			mutate(p)
			assert.False(t, p.HasResolvedShaders())
			assert.Empty(t, *p.Variations(shader.StageVertex, 0), "every stage is cleared, not just the mutated one")
			assert.Empty(t, *p.Variations(shader.StageVertex, common.StringHash("SKINNED")))

			p.ResolveAll(src, StageDefines{}, true)
			assert.Equal(t, 5, src.calls)
		})
	}
}

func TestPassReleaseShadersKeepsDescription(t *testing.T) {
	p := newPass("base", BasePassIndex)
	p.SetShader(shader.StageVertex, "LitSolid")
	p.SetDefines(shader.StageVertex, "SKINNED")
	src := &countingSource{}
	p.Resolve(shader.StageVertex, "", src)

	p.ReleaseShaders()
	assert.Equal(t, "LitSolid", p.Shader(shader.StageVertex))
	assert.Equal(t, "SKINNED", p.Defines(shader.StageVertex))

	p.Resolve(shader.StageVertex, "", src)
	assert.Equal(t, []string{"vs:LitSolid:SKINNED", "vs:LitSolid:SKINNED"}, src.requests)
}

func TestPassResolveAllDesktop(t *testing.T) {
	p := newPass("base", BasePassIndex)
	p.SetShader(shader.StageVertex, "Tess")
	p.SetShader(shader.StagePixel, "Tess")
	p.SetShader(shader.StageHull, "Tess")
	p.SetShader(shader.StageDomain, "Tess")

	src := &countingSource{}
	set := p.ResolveAll(src, StageDefines{}, false)
	assert.NotNil(t, set[shader.StageVertex])
	assert.Nil(t, set[shader.StageHull])
	assert.Equal(t, 2, src.calls)

	set = p.ResolveAll(src, StageDefines{shader.StagePixel: "SHADOW"}, true)
	assert.NotNil(t, set[shader.StageHull])
	assert.NotNil(t, set[shader.StageDomain])
	assert.Equal(t, "SHADOW", set[shader.StagePixel].Defines())
	assert.Equal(t, 5, src.calls)
}

func TestPassMarkShadersLoaded(t *testing.T) {
	p := newPass("base", BasePassIndex)
	assert.Equal(t, uint(0), p.ShadersLoadedFrame())
	p.MarkShadersLoaded(42)
	assert.Equal(t, uint(42), p.ShadersLoadedFrame())
}

func TestModesParse(t *testing.T) {
	assert.Equal(t, BlendPremulAlpha, ParseBlendMode("PremulAlpha"))
	assert.Equal(t, BlendReplace, ParseBlendMode("bogus"))
	assert.Equal(t, LightingPerPixel, ParseLightingMode("perpixel"))
	assert.Equal(t, LightingUnlit, ParseLightingMode(""))
	assert.Equal(t, CompareGreaterEqual, ParseCompareMode("greaterequal", CompareLess))
	assert.Equal(t, CompareLess, ParseCompareMode("nope", CompareLess))
	assert.Equal(t, CullNone, ParseCullMode("none"))
	assert.Equal(t, CullCCW, ParseCullMode("ccw"))
	assert.Equal(t, CullCW, ParseCullMode("CW"))
	assert.Equal(t, CullNoOverride, ParseCullMode("sideways"))
	assert.Equal(t, CullNoOverride, ParseCullMode("back"), "only none, ccw and cw are cull tokens")
	assert.Equal(t, CullNoOverride, ParseCullMode("front"))
	assert.Equal(t, "invdestalpha", BlendInvDestAlpha.String())
	assert.Equal(t, "nooverride", CullNoOverride.String())
	assert.Equal(t, "unknown", CompareMode(99).String())
}
