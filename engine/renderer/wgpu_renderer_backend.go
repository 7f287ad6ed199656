package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/constant_buffer"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuGraphicsBackend struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter

	modules map[shader.Variation]*wgpu.ShaderModule
}

var _ GraphicsBackend = &wgpuGraphicsBackend{}

// wgpuUniformBuffer is the GPU side of a constant buffer on the WebGPU backend.
type wgpuUniformBuffer struct {
	queue  *wgpu.Queue
	buffer *wgpu.Buffer
}

var _ constant_buffer.Handle = &wgpuUniformBuffer{}

func (u *wgpuUniformBuffer) Write(data []byte) {
	u.queue.WriteBuffer(u.buffer, 0, data)
}

func (u *wgpuUniformBuffer) Release() {
	if u.buffer != nil {
		u.buffer.Release()
		u.buffer = nil
	}
}

// newWGPUGraphicsBackend requests an adapter and device without a surface.
func newWGPUGraphicsBackend(forceFallbackAdapter bool) (GraphicsBackend, error) {
	runtime.LockOSThread()
	w := &wgpuGraphicsBackend{
		mu:       &sync.Mutex{},
		instance: wgpu.CreateInstance(nil),
		modules:  make(map[shader.Variation]*wgpu.ShaderModule),
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		w.instance.Release()
		return nil, fmt.Errorf("renderer: failed to request adapter: %w", err)
	}
	w.adapter = a

	// One bind group per parameter group.
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = shader.MaxParameterGroups + 1

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Shader Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		w.adapter.Release()
		w.instance.Release()
		return nil, fmt.Errorf("renderer: failed to request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuGraphicsBackend) CreateUniformBuffer(label string, size uint64) (constant_buffer.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuUniformBuffer{queue: b.queue, buffer: buf}, nil
}

func (b *wgpuGraphicsBackend) CreateShaderModule(v shader.Variation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.modules[v]; ok {
		return nil
	}
	if v.Source() == "" {
		return errors.New("renderer: variation has no source to create a shader module from")
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: v.Stage().String() + " " + v.Name() + "(" + v.Defines() + ")",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: v.Source(),
		},
	})
	if err != nil {
		return err
	}
	b.modules[v] = module
	return nil
}

func (b *wgpuGraphicsBackend) HasShaderModule(v shader.Variation) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.modules[v]
	return ok
}

func (b *wgpuGraphicsBackend) ReleaseShaderModule(v shader.Variation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if module, ok := b.modules[v]; ok {
		module.Release()
		delete(b.modules, v)
	}
}

func (b *wgpuGraphicsBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for v, module := range b.modules {
		module.Release()
		delete(b.modules, v)
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
