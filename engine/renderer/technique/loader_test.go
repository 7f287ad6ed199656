package technique

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litSolidTechnique = `<technique vs="LitSolid" ps="LitSolid" psdefines="DIFFMAP">
    <pass name="base" />
    <pass name="litbase" psdefines="AMBIENT" psexcludes="DIFFMAP" />
    <pass name="light" depthtest="equal" depthwrite="false" blend="add" />
    <pass name="prepass" vs="Prepass" vsdefines="DEPTHONLY" ps="Prepass" lighting="perpixel" cull="none" />
    <pass psdefines="ORPHAN" />
    <pass name="shadow" vs="Shadow" ps="Shadow" depthtest="bogus" alphatocoverage="true" desktop="true" />
    <pass name="refract" depthtest="false" />
</technique>`

func loadTest(t *testing.T, src string, options ...TechniqueBuilderOption) *Technique {
	t.Helper()
	tech := newTestTechnique("Techniques/LitSolid.xml", options...)
	require.NoError(t, tech.BeginLoad(strings.NewReader(src)))
	return tech
}

func TestBeginLoadGlobals(t *testing.T) {
	tech := loadTest(t, litSolidTechnique)
	assert.False(t, tech.IsDesktop())
	assert.Equal(t, 6, tech.NumPasses(), "the nameless pass is skipped")

	base := tech.Pass("base")
	require.NotNil(t, base)
	assert.Equal(t, "LitSolid", base.Shader(shader.StageVertex))
	assert.Equal(t, "", base.Defines(shader.StageVertex))
	assert.Equal(t, "LitSolid", base.Shader(shader.StagePixel))
	assert.Equal(t, "DIFFMAP ", base.Defines(shader.StagePixel), "global defines keep a trailing separator")
	assert.Equal(t, "", base.Shader(shader.StageGeometry))
	assert.Equal(t, LightingPerVertex, base.LightingMode())
	assert.Equal(t, CompareLessEqual, base.DepthTestMode())
	assert.Equal(t, CullNoOverride, base.CullMode())

	litbase := tech.Pass("litbase")
	assert.Equal(t, "DIFFMAP AMBIENT", litbase.Defines(shader.StagePixel))
	assert.Equal(t, "AMBIENT", litbase.EffectiveDefines(shader.StagePixel))
	assert.Equal(t, "", litbase.DefineExcludes(shader.StageVertex))
	assert.Equal(t, LightingPerPixel, litbase.LightingMode())
}

func TestBeginLoadPassLocalOverride(t *testing.T) {
	tech := loadTest(t, litSolidTechnique)

	prepass := tech.Pass("prepass")
	require.NotNil(t, prepass)
	assert.Equal(t, "Prepass", prepass.Shader(shader.StageVertex))
	assert.Equal(t, "DEPTHONLY", prepass.Defines(shader.StageVertex))
	assert.Equal(t, "", prepass.Defines(shader.StagePixel), "a local shader name ignores the global defines")
	assert.Equal(t, LightingPerPixel, prepass.LightingMode())
	assert.Equal(t, CullNone, prepass.CullMode())
}

func TestBeginLoadState(t *testing.T) {
	tech := loadTest(t, litSolidTechnique, WithDesktopSupport(false))

	light := tech.Pass("light")
	assert.Equal(t, CompareEqual, light.DepthTestMode())
	assert.False(t, light.DepthWrite())
	assert.Equal(t, BlendAdd, light.BlendMode())

	shadow := tech.Pass("shadow")
	assert.Equal(t, CompareLess, shadow.DepthTestMode(), "unknown depth test tokens fall back to less")
	assert.True(t, shadow.AlphaToCoverage())
	assert.True(t, shadow.IsDesktop())
	assert.Nil(t, tech.SupportedPass("shadow"))

	assert.Equal(t, CompareAlways, tech.Pass("refract").DepthTestMode())
}

func TestBeginLoadReplacesPasses(t *testing.T) {
	tech := loadTest(t, litSolidTechnique)
	clone := tech.CloneWithDefines(StageDefines{shader.StagePixel: "SHADOW"})

	require.NoError(t, tech.BeginLoad(strings.NewReader(`<technique desktop="true"><pass name="alpha" vs="Unlit" /></technique>`)))
	assert.True(t, tech.IsDesktop())
	assert.Equal(t, []string{"alpha"}, tech.PassNames())
	assert.NotSame(t, clone, tech.CloneWithDefines(StageDefines{shader.StagePixel: "SHADOW"}), "reload drops memoized clones")
}

func TestBeginLoadMalformed(t *testing.T) {
	tech := newTestTechnique("Broken")
	for _, src := range []string{"", "<technique", "<technique><pass name=\"base\"></technique>"} {
		assert.ErrorIs(t, tech.BeginLoad(strings.NewReader(src)), ErrMalformedDescription, src)
	}
}

func TestLoadTechniqueMissingFile(t *testing.T) {
	_, err := LoadTechnique("Missing", t.TempDir()+"/missing.xml")
	assert.Error(t, err)
}
