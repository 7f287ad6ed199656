package constant_buffer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	released int
	writes   [][]byte
}

func (h *fakeHandle) Write(data []byte) {
	h.writes = append(h.writes, append([]byte(nil), data...))
}

func (h *fakeHandle) Release() {
	h.released++
}

type fakeAllocator struct {
	created []*fakeHandle
	fail    bool
}

func (a *fakeAllocator) CreateUniformBuffer(label string, size uint64) (Handle, error) {
	if a.fail {
		return nil, errors.New("out of memory")
	}
	h := &fakeHandle{}
	a.created = append(a.created, h)
	return h, nil
}

func TestPoolSharesIdenticalKeys(t *testing.T) {
	alloc := &fakeAllocator{}
	pool := NewPool(alloc)

	a, err := pool.Acquire(shader.StageVertex, shader.GroupCamera, 80)
	require.NoError(t, err)
	b, err := pool.Acquire(shader.StageVertex, shader.GroupCamera, 80)
	require.NoError(t, err)
	c, err := pool.Acquire(shader.StagePixel, shader.GroupCamera, 80)
	require.NoError(t, err)
	d, err := pool.Acquire(shader.StageVertex, shader.GroupCamera, 96)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.NotSame(t, a, d)
	assert.Equal(t, 2, a.RefCount())
	assert.Equal(t, 3, pool.Len())
	assert.Len(t, alloc.created, 3)
}

func TestPoolReleaseAtZero(t *testing.T) {
	alloc := &fakeAllocator{}
	pool := NewPool(alloc)

	a, _ := pool.Acquire(shader.StageVertex, shader.GroupObject, 64)
	b, _ := pool.Acquire(shader.StageVertex, shader.GroupObject, 64)

	pool.Release(a)
	assert.Equal(t, 1, pool.Len())
	assert.Equal(t, 0, alloc.created[0].released)

	pool.Release(b)
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, 1, alloc.created[0].released)

	pool.Release(b)
	assert.Equal(t, 1, alloc.created[0].released, "double release must not free twice")

	c, _ := pool.Acquire(shader.StageVertex, shader.GroupObject, 64)
	assert.NotSame(t, a, c)
}

func TestPoolAllocationFailure(t *testing.T) {
	pool := NewPool(&fakeAllocator{fail: true})
	_, err := pool.Acquire(shader.StageVertex, shader.GroupFrame, 16)
	assert.Error(t, err)
	assert.Equal(t, 0, pool.Len())
}

func TestConstantBufferShadow(t *testing.T) {
	alloc := &fakeAllocator{}
	pool := NewPool(alloc)
	cb, _ := pool.Acquire(shader.StagePixel, shader.GroupMaterial, 32)

	assert.False(t, cb.Dirty())
	require.NoError(t, cb.SetParameter(16, []byte{1, 2, 3, 4}))
	assert.True(t, cb.Dirty())
	assert.Error(t, cb.SetParameter(30, []byte{1, 2, 3, 4}))

	pool.ApplyAll()
	assert.False(t, cb.Dirty())
	require.Len(t, alloc.created[0].writes, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, alloc.created[0].writes[0][16:20])

	cb.Apply()
	assert.Len(t, alloc.created[0].writes, 1, "clean buffers are not re-uploaded")

	pool.ReleaseAll()
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, 1, alloc.created[0].released)
}
