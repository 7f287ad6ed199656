package renderer

import (
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/constant_buffer"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

// GraphicsBackendType identifies the GPU backend implementation used by Graphics.
type GraphicsBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based backend.
	BackendTypeWGPU GraphicsBackendType = iota

	// BackendTypeHeadless selects a CPU-only backend that keeps constant buffers in memory and
	// creates no shader modules. Used by tooling and tests.
	BackendTypeHeadless
)

// String returns the backend name used in logs and configuration.
func (t GraphicsBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeHeadless:
		return "headless"
	default:
		return "unknown"
	}
}

// ParseBackendType maps a configuration value to a backend type. Unknown values select WGPU.
func ParseBackendType(s string) GraphicsBackendType {
	if s == "headless" {
		return BackendTypeHeadless
	}
	return BackendTypeWGPU
}

// GraphicsBackend is the GPU API a Graphics instance drives. It allocates the GPU side of
// constant buffers and holds one shader module per activated variation.
type GraphicsBackend interface {
	constant_buffer.Allocator

	// CreateShaderModule creates the GPU module of a variation. Calling it again for a variation
	// that already has a module is a no-op.
	//
	// Parameters:
	//   - v: the compiled variation
	//
	// Returns:
	//   - error: an error if the module could not be created
	CreateShaderModule(v shader.Variation) error

	// HasShaderModule reports whether a module exists for the variation.
	HasShaderModule(v shader.Variation) bool

	// ReleaseShaderModule frees the module of a variation, if any.
	ReleaseShaderModule(v shader.Variation)

	// Release frees every module and the device.
	Release()
}
