package precache

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	desktop   bool
	requested []string
	activated []shader.StageSet
}

func (f *fakeTarget) GetShader(stage shader.Stage, name, defines string) shader.Variation {
	f.requested = append(f.requested, stage.String()+":"+name+":"+defines)
	return shader.NewVariation(stage, name, defines)
}

func (f *fakeTarget) SetShaders(set shader.StageSet) {
	f.activated = append(f.activated, set)
}

func (f *fakeTarget) SupportsDesktopStages() bool {
	return f.desktop
}

const replaySource = `<shaders>
	<shader vs="LitSolid" vsdefines="" ps="LitSolid" psdefines="DIFFMAP" />
	<shader vs="LitSolid" vsdefines="INSTANCED" ps="LitSolid" psdefines="" />
	<shader vs="LitSolid" vsdefines="" ps="LitSolid" psdefines="POINTLIGHT SHADOW" />
	<shader vs="LitSolid" vsdefines="" ps="LitSolid" psdefines="POINTLIGHT" />
	<shader vs="Tess" vsdefines="" ps="Tess" psdefines="" hs="Tess" hsdefines="" ds="Tess" dsdefines="" />
	<shader cs="Cull" csdefines="" />
</shaders>`

func TestReplayDesktop(t *testing.T) {
	target := &fakeTarget{desktop: true}
	require.NoError(t, Replay(target, strings.NewReader(replaySource)))

	require.Len(t, target.activated, 6)
	assert.Equal(t, "vs:LitSolid:", target.requested[0])
	assert.Equal(t, "ps:LitSolid:DIFFMAP", target.requested[1])
	assert.NotNil(t, target.activated[4][shader.StageHull])
	assert.NotNil(t, target.activated[5][shader.StageCompute])
	assert.Nil(t, target.activated[5][shader.StageVertex])
}

func TestReplayRestricted(t *testing.T) {
	target := &fakeTarget{}
	require.NoError(t, Replay(target, strings.NewReader(replaySource)))

	require.Len(t, target.activated, 2)
	assert.Equal(t, "DIFFMAP", target.activated[0][shader.StagePixel].Defines())
	assert.Equal(t, "POINTLIGHT", target.activated[1][shader.StagePixel].Defines())
}

func TestReplayMalformed(t *testing.T) {
	assert.ErrorIs(t, Replay(&fakeTarget{}, strings.NewReader("<shaders>")), ErrMalformedPrecache)
}
