package program

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/constant_buffer"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopHandle struct{ released *int }

func (h nopHandle) Write([]byte) {}
func (h nopHandle) Release()     { *h.released++ }

type testAllocator struct {
	created  int
	released int
	failAt   int
}

func (a *testAllocator) CreateUniformBuffer(string, uint64) (constant_buffer.Handle, error) {
	a.created++
	if a.failAt > 0 && a.created >= a.failAt {
		return nil, errors.New("device lost")
	}
	return nopHandle{released: &a.released}, nil
}

func vertexVariation() shader.Variation {
	return shader.NewVariation(shader.StageVertex, "LitSolid", "",
		shader.WithConstantBufferSize(shader.GroupCamera, 80),
		shader.WithConstantBufferSize(shader.GroupObject, 64),
		shader.WithParameters(
			shader.Parameter{Name: "viewProj", Group: shader.GroupCamera, Offset: 0, Size: 64},
			shader.Parameter{Name: "model", Group: shader.GroupObject, Offset: 0, Size: 64},
			shader.Parameter{Name: "elapsedTime", Group: shader.GroupCamera, Offset: 76, Size: 4},
		))
}

func pixelVariation() shader.Variation {
	return shader.NewVariation(shader.StagePixel, "LitSolid", "DIFFMAP",
		shader.WithConstantBufferSize(shader.GroupFrame, 16),
		shader.WithConstantBufferSize(shader.GroupMaterial, 32),
		shader.WithParameters(
			shader.Parameter{Name: "elapsedTime", Group: shader.GroupFrame, Offset: 0, Size: 4},
			shader.Parameter{Name: "diffColor", Group: shader.GroupMaterial, Offset: 0, Size: 16},
		))
}

func TestShaderProgramLastStageWins(t *testing.T) {
	pool := constant_buffer.NewPool(&testAllocator{})
	prog, err := NewShaderProgram(pool, shader.StageSet{vertexVariation(), pixelVariation()}, true)
	require.NoError(t, err)

	assert.Len(t, prog.Parameters(), 4)
	elapsed, ok := prog.Parameter("elapsedTime")
	require.True(t, ok)
	assert.Equal(t, shader.StagePixel, elapsed.Stage)
	assert.Equal(t, shader.GroupFrame, elapsed.Group)
	assert.Same(t, prog.ConstantBuffer(shader.StagePixel, shader.GroupFrame), elapsed.Buffer)

	viewProj, _ := prog.Parameter("viewProj")
	assert.Same(t, prog.ConstantBuffer(shader.StageVertex, shader.GroupCamera), viewProj.Buffer)
	assert.True(t, prog.HasParameter("model"))
	assert.False(t, prog.HasParameter("missing"))
}

func TestShaderProgramSharesBuffers(t *testing.T) {
	alloc := &testAllocator{}
	pool := constant_buffer.NewPool(alloc)
	vs := vertexVariation()

	a, err := NewShaderProgram(pool, shader.StageSet{vs, pixelVariation()}, true)
	require.NoError(t, err)
	b, err := NewShaderProgram(pool, shader.StageSet{vs, nil}, true)
	require.NoError(t, err)

	assert.Same(t, a.ConstantBuffer(shader.StageVertex, shader.GroupCamera), b.ConstantBuffer(shader.StageVertex, shader.GroupCamera))
	assert.Equal(t, 4, alloc.created)
	assert.Equal(t, 4, pool.Len())

	a.Release()
	a.Release()
	assert.Equal(t, 2, pool.Len(), "buffers still referenced by b survive")
	assert.Equal(t, 2, alloc.released)

	b.Release()
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, 4, alloc.released)
}

func TestShaderProgramDesktopStages(t *testing.T) {
	pool := constant_buffer.NewPool(&testAllocator{})
	cs := shader.NewVariation(shader.StageCompute, "Cull", "",
		shader.WithConstantBufferSize(shader.GroupCustom, 16),
		shader.WithParameters(shader.Parameter{Name: "count", Group: shader.GroupCustom, Size: 4}))

	var set shader.StageSet
	set[shader.StageCompute] = cs

	restricted, err := NewShaderProgram(pool, set, false)
	require.NoError(t, err)
	assert.Nil(t, restricted.Variation(shader.StageCompute))
	assert.False(t, restricted.HasParameter("count"))
	assert.Equal(t, 0, pool.Len())

	desktop, err := NewShaderProgram(pool, set, true)
	require.NoError(t, err)
	assert.True(t, desktop.Uses(cs))
	assert.True(t, desktop.HasParameter("count"))
	assert.Equal(t, 1, pool.Len())
}

func TestShaderProgramAllocationFailure(t *testing.T) {
	alloc := &testAllocator{failAt: 3}
	pool := constant_buffer.NewPool(alloc)

	_, err := NewShaderProgram(pool, shader.StageSet{vertexVariation(), pixelVariation()}, true)
	assert.Error(t, err)
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, 2, alloc.released)
}

func TestShaderProgramSetParameter(t *testing.T) {
	pool := constant_buffer.NewPool(&testAllocator{})
	prog, err := NewShaderProgram(pool, shader.StageSet{nil, pixelVariation()}, true)
	require.NoError(t, err)

	require.NoError(t, prog.SetParameter("diffColor", make([]byte, 16)))
	assert.True(t, prog.ConstantBuffer(shader.StagePixel, shader.GroupMaterial).Dirty())
	assert.Error(t, prog.SetParameter("diffColor", make([]byte, 20)))
	assert.Error(t, prog.SetParameter("missing", nil))
	assert.Nil(t, prog.ConstantBuffer(shader.Stage(7), shader.GroupFrame))
}
