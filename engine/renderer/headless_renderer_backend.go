package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/constant_buffer"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

type headlessGraphicsBackend struct {
	mu      *sync.Mutex
	buffers map[*headlessBuffer]struct{}
	modules map[shader.Variation]struct{}
}

var _ GraphicsBackend = &headlessGraphicsBackend{}

// headlessBuffer mirrors uploads into memory.
type headlessBuffer struct {
	owner *headlessGraphicsBackend
	label string
	data  []byte
}

var _ constant_buffer.Handle = &headlessBuffer{}

func (h *headlessBuffer) Write(data []byte) {
	copy(h.data, data)
}

func (h *headlessBuffer) Release() {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	delete(h.owner.buffers, h)
}

func newHeadlessGraphicsBackend() *headlessGraphicsBackend {
	return &headlessGraphicsBackend{
		mu:      &sync.Mutex{},
		buffers: make(map[*headlessBuffer]struct{}),
		modules: make(map[shader.Variation]struct{}),
	}
}

func (b *headlessGraphicsBackend) CreateUniformBuffer(label string, size uint64) (constant_buffer.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf := &headlessBuffer{owner: b, label: label, data: make([]byte, size)}
	b.buffers[buf] = struct{}{}
	return buf, nil
}

func (b *headlessGraphicsBackend) CreateShaderModule(v shader.Variation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modules[v] = struct{}{}
	return nil
}

func (b *headlessGraphicsBackend) HasShaderModule(v shader.Variation) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.modules[v]
	return ok
}

func (b *headlessGraphicsBackend) ReleaseShaderModule(v shader.Variation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.modules, v)
}

func (b *headlessGraphicsBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.modules)
}

// liveBuffers returns the number of unreleased uniform buffers.
func (b *headlessGraphicsBackend) liveBuffers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffers)
}

// liveModules returns the number of unreleased shader modules.
func (b *headlessGraphicsBackend) liveModules() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.modules)
}
