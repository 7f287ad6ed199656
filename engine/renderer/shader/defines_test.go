package shader

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefines(t *testing.T) {
	assert.Equal(t, "", NormalizeDefines(""))
	assert.Equal(t, "", NormalizeDefines("   "))
	assert.Equal(t, "DIFFMAP NORMALMAP SHADOW", NormalizeDefines("  shadow DIFFMAP   normalmap "))
	assert.Equal(t, "A B", NormalizeDefines("B A B"))
	assert.Equal(t, NormalizeDefines("SKINNED INSTANCED"), NormalizeDefines("INSTANCED  SKINNED"))
}

func TestHasDefine(t *testing.T) {
	assert.True(t, HasDefine("DIFFMAP SHADOW", "SHADOW"))
	assert.True(t, HasDefine("MAXBONES=64", "MAXBONES"))
	assert.False(t, HasDefine("SHADOWMAP", "SHADOW"))
	assert.False(t, HasDefine("", "SHADOW"))
}

func TestStage(t *testing.T) {
	assert.Equal(t, "vs", StageVertex.String())
	assert.Equal(t, "psdefines", StagePixel.DefinesAttribute())
	assert.Equal(t, "csexcludes", StageCompute.ExcludesAttribute())
	assert.Equal(t, "COMPILEPS", StagePixel.CompileDefine())
	assert.False(t, StageVertex.IsDesktopOnly())
	assert.False(t, StagePixel.IsDesktopOnly())
	for _, s := range []Stage{StageGeometry, StageHull, StageDomain, StageCompute} {
		assert.True(t, s.IsDesktopOnly(), s.String())
	}
	assert.False(t, Stage(StageCount).Valid())
	assert.Equal(t, "unknown", Stage(-1).String())
}

func TestStageSet(t *testing.T) {
	var set StageSet
	assert.True(t, set.Empty())

	vs := NewVariation(StageVertex, "Basic", "")
	cs := NewVariation(StageCompute, "Basic", "")
	set[StageVertex] = vs
	set[StageCompute] = cs

	assert.False(t, set.Empty())
	assert.Same(t, vs, set.Get(StageVertex))
	assert.Nil(t, set.Get(Stage(42)))

	restricted := set.WithoutDesktopStages()
	assert.Nil(t, restricted[StageCompute])
	assert.Same(t, vs, restricted[StageVertex])
	assert.Same(t, cs, set[StageCompute], "original set must be unchanged")

	other := set
	assert.True(t, other == set)
}

func TestStageSetAsMapKey(t *testing.T) {
	vs := NewVariation(StageVertex, "Basic", "")
	ps := NewVariation(StagePixel, "Basic", "")
	assert.Equal(t, reflect.Pointer, reflect.TypeOf(vs).Kind(), "variations must be pointer types")

	seen := map[StageSet]int{}
	assert.NotPanics(t, func() {
		seen[StageSet{StageVertex: vs, StagePixel: ps}]++
		seen[StageSet{StageVertex: vs, StagePixel: ps}]++
		seen[StageSet{StageVertex: vs}]++
	})
	assert.Len(t, seen, 2)
	assert.Equal(t, 2, seen[StageSet{StageVertex: vs, StagePixel: ps}])

	same := NewVariation(StageVertex, "Basic", "")
	_, ok := seen[StageSet{StageVertex: same}]
	assert.False(t, ok, "equal content is a different identity")
}

func TestNewVariation(t *testing.T) {
	v := NewVariation(StagePixel, "LitSolid", "shadow diffmap",
		WithEntryPoint("fs_main"),
		WithConstantBufferSize(GroupMaterial, 64),
		WithConstantBufferSize(ParameterGroup(99), 16),
		WithParameters(Parameter{Name: "MatDiffColor", Group: GroupMaterial, Offset: 0, Size: 16}),
	)

	assert.Equal(t, "LitSolid", v.Name())
	assert.Equal(t, StagePixel, v.Stage())
	assert.Equal(t, "DIFFMAP SHADOW", v.Defines())
	assert.Equal(t, "fs_main", v.EntryPoint())
	assert.Equal(t, uint32(64), v.ConstantBufferSizes()[GroupMaterial])
	assert.Equal(t, StagePixel, v.Parameters()["MatDiffColor"].Stage)
}
