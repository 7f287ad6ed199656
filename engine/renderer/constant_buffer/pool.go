package constant_buffer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

// Pool hands out shared constant buffers keyed by (stage, group, size). A buffer is created on
// first acquisition and released back to the allocator when its last user releases it.
type Pool struct {
	mu        *sync.Mutex
	allocator Allocator
	buffers   map[Key]*ConstantBuffer
}

// NewPool creates an empty Pool that allocates through the given allocator.
//
// Parameters:
//   - allocator: the allocator creating GPU buffers
//
// Returns:
//   - *Pool: the new pool
func NewPool(allocator Allocator) *Pool {
	if allocator == nil {
		panic("constant_buffer: pool requires an allocator")
	}
	return &Pool{
		mu:        &sync.Mutex{},
		allocator: allocator,
		buffers:   make(map[Key]*ConstantBuffer),
	}
}

// Acquire returns the shared buffer for the key, creating it if needed, and takes a reference.
//
// Parameters:
//   - stage: the stage the buffer is bound to
//   - group: the parameter group slot
//   - size: the buffer size in bytes
//
// Returns:
//   - *ConstantBuffer: the shared buffer
//   - error: an error if a new buffer could not be allocated
func (p *Pool) Acquire(stage shader.Stage, group shader.ParameterGroup, size uint32) (*ConstantBuffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := Key{Stage: stage, Group: group, Size: size}
	if cb, ok := p.buffers[key]; ok {
		cb.refs++
		return cb, nil
	}

	handle, err := p.allocator.CreateUniformBuffer("constant buffer "+key.String(), uint64(size))
	if err != nil {
		return nil, fmt.Errorf("constant_buffer: failed to allocate %s: %w", key, err)
	}
	cb := &ConstantBuffer{
		key:    key,
		handle: handle,
		shadow: make([]byte, size),
		refs:   1,
	}
	p.buffers[key] = cb
	common.Logger().Debug("constant buffer created", "key", key.String())
	return cb, nil
}

// Release drops one reference to the buffer. The GPU buffer is freed once no references remain.
// Releasing a buffer that is not owned by the pool is a no-op.
func (p *Pool) Release(cb *ConstantBuffer) {
	if cb == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buffers[cb.key] != cb {
		return
	}
	cb.refs--
	if cb.refs > 0 {
		return
	}
	delete(p.buffers, cb.key)
	if cb.handle != nil {
		cb.handle.Release()
	}
	common.Logger().Debug("constant buffer released", "key", cb.key.String())
}

// Get returns the live buffer for a key without taking a reference.
func (p *Pool) Get(key Key) (*ConstantBuffer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cb, ok := p.buffers[key]
	return cb, ok
}

// Len returns the number of live buffers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buffers)
}

// ApplyAll uploads every dirty buffer.
func (p *Pool) ApplyAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cb := range p.buffers {
		cb.Apply()
	}
}

// ReleaseAll frees every buffer regardless of outstanding references.
func (p *Pool) ReleaseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, cb := range p.buffers {
		if cb.handle != nil {
			cb.handle.Release()
		}
		cb.refs = 0
		delete(p.buffers, key)
	}
}
