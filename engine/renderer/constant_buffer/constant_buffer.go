package constant_buffer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

// Key identifies a shareable constant buffer. Programs that need a buffer for the same stage,
// parameter group and size share one instance.
type Key struct {
	Stage shader.Stage
	Group shader.ParameterGroup
	Size  uint32
}

// String returns a debug label for the key, e.g. "vs/4/64".
func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%d", k.Stage, k.Group, k.Size)
}

// Handle is the GPU side of a constant buffer.
type Handle interface {
	// Write uploads data to the start of the buffer.
	Write(data []byte)

	// Release frees the GPU buffer.
	Release()
}

// Allocator creates the GPU side of constant buffers.
type Allocator interface {
	// CreateUniformBuffer allocates a uniform buffer of the given size.
	//
	// Parameters:
	//   - label: a debug label for the buffer
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - Handle: the allocated buffer
	//   - error: an error if the allocation failed
	CreateUniformBuffer(label string, size uint64) (Handle, error)
}

// ConstantBuffer is a reference counted uniform buffer with a CPU shadow copy.
// Parameter writes land in the shadow copy and are uploaded by Apply.
type ConstantBuffer struct {
	key    Key
	handle Handle
	shadow []byte
	dirty  bool
	refs   int
}

// Key returns the identity the buffer is shared under.
func (cb *ConstantBuffer) Key() Key {
	return cb.key
}

// Size returns the buffer size in bytes.
func (cb *ConstantBuffer) Size() uint32 {
	return cb.key.Size
}

// Handle returns the GPU buffer.
func (cb *ConstantBuffer) Handle() Handle {
	return cb.handle
}

// RefCount returns the number of outstanding acquisitions.
func (cb *ConstantBuffer) RefCount() int {
	return cb.refs
}

// SetParameter copies data into the shadow copy at the given byte offset and marks the buffer dirty.
//
// Parameters:
//   - offset: the byte offset of the parameter
//   - data: the raw parameter value
//
// Returns:
//   - error: an error if the write would overrun the buffer
func (cb *ConstantBuffer) SetParameter(offset uint32, data []byte) error {
	end := uint64(offset) + uint64(len(data))
	if end > uint64(len(cb.shadow)) {
		return fmt.Errorf("constant buffer %s: write of %d bytes at offset %d overruns buffer", cb.key, len(data), offset)
	}
	copy(cb.shadow[offset:], data)
	cb.dirty = true
	return nil
}

// Data returns the CPU shadow copy.
func (cb *ConstantBuffer) Data() []byte {
	return cb.shadow
}

// Dirty reports whether the shadow copy has changes that were not uploaded yet.
func (cb *ConstantBuffer) Dirty() bool {
	return cb.dirty
}

// Apply uploads the shadow copy if it is dirty.
func (cb *ConstantBuffer) Apply() {
	if !cb.dirty || cb.handle == nil {
		return
	}
	cb.handle.Write(cb.shadow)
	cb.dirty = false
}
