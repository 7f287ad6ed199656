package shader

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeBytecode(calls *int) BytecodeCompiler {
	return func(source string, _ naga.CompileOptions) ([]byte, error) {
		*calls++
		return []byte{0x03, 0x02, 0x23, 0x07}, nil
	}
}

func TestWGSLCompilerCompile(t *testing.T) {
	calls := 0
	fsys := fstest.MapFS{"LitSolid.wgsl": {Data: []byte(litSource)}}
	c := NewWGSLCompiler(fsys, WithBytecodeCompiler(fakeBytecode(&calls)))

	vs, err := c.Compile(StageVertex, "LitSolid", "shadow  diffmap")
	require.NoError(t, err)
	assert.Equal(t, "LitSolid", vs.Name())
	assert.Equal(t, "DIFFMAP SHADOW", vs.Defines())
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, uint32(0), vs.ConstantBufferSizes()[GroupMaterial])
	assert.NotContains(t, vs.Parameters(), "diffColor")

	ps, err := c.Compile(StagePixel, "LitSolid", "")
	require.NoError(t, err)
	assert.Equal(t, "fs_main", ps.EntryPoint())
	assert.Equal(t, uint32(32), ps.ConstantBufferSizes()[GroupMaterial])
	assert.Equal(t, StagePixel, ps.Parameters()["diffColor"].Stage)
	assert.NotEmpty(t, ps.Bytecode())
	assert.Equal(t, 2, calls)
}

func TestWGSLCompilerErrors(t *testing.T) {
	calls := 0
	fsys := fstest.MapFS{"LitSolid.wgsl": {Data: []byte(litSource)}}
	c := NewWGSLCompiler(fsys, WithBytecodeCompiler(fakeBytecode(&calls)))

	_, err := c.Compile(StageGeometry, "LitSolid", "")
	assert.ErrorIs(t, err, ErrStageUnsupported)

	_, err = c.Compile(StageVertex, "Missing", "")
	assert.ErrorIs(t, err, ErrShaderNotFound)

	_, err = c.Compile(StageCompute, "LitSolid", "")
	assert.ErrorIs(t, err, ErrEntryPointMissing)
	assert.Equal(t, 0, calls)

	failing := NewWGSLCompiler(fsys, WithBytecodeCompiler(func(string, naga.CompileOptions) ([]byte, error) {
		return nil, errors.New("boom")
	}))
	_, err = failing.Compile(StageVertex, "LitSolid", "")
	assert.Error(t, err)
}

func TestWGSLCompilerNaga(t *testing.T) {
	fsys := fstest.MapFS{"Fullscreen.wgsl": {Data: []byte(`@vertex
fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`)}}
	v, err := NewWGSLCompiler(fsys).Compile(StageVertex, "Fullscreen", "")
	require.NoError(t, err)
	assert.NotEmpty(t, v.Bytecode())
}
