package renderer

// GraphicsBuilderOption is a functional option applied to a graphics instance during construction via NewGraphics.
type GraphicsBuilderOption func(*graphics)

// WithBackendType selects the backend created by NewGraphics. Ignored when WithBackend is given.
//
// Parameters:
//   - backendType: the backend to create (BackendTypeWGPU or BackendTypeHeadless)
//
// Returns:
//   - GraphicsBuilderOption: a function that applies the backend type option to a graphics instance
func WithBackendType(backendType GraphicsBackendType) GraphicsBuilderOption {
	return func(g *graphics) {
		g.backendType = backendType
	}
}

// WithBackend uses an already constructed backend instead of creating one.
//
// Parameters:
//   - backend: the backend to drive
//
// Returns:
//   - GraphicsBuilderOption: a function that applies the backend option to a graphics instance
func WithBackend(backend GraphicsBackend) GraphicsBuilderOption {
	return func(g *graphics) {
		g.backend = backend
	}
}

// WithDesktopStages sets whether geometry, hull, domain and compute stages are available.
// When disabled, those stages are dropped from every activated stage set. Defaults to true.
//
// Parameters:
//   - enable: true if desktop-class stages are supported
//
// Returns:
//   - GraphicsBuilderOption: a function that applies the desktop stage option to a graphics instance
func WithDesktopStages(enable bool) GraphicsBuilderOption {
	return func(g *graphics) {
		g.desktop = enable
	}
}

// WithProgramCacheSize bounds the number of linked shader programs kept alive. The least recently
// activated program is released when the bound is exceeded. Defaults to 256.
//
// Parameters:
//   - size: the maximum number of cached programs, must be positive
//
// Returns:
//   - GraphicsBuilderOption: a function that applies the cache size option to a graphics instance
func WithProgramCacheSize(size int) GraphicsBuilderOption {
	return func(g *graphics) {
		g.programCacheSize = size
	}
}

// WithForceFallbackAdapter forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - GraphicsBuilderOption: a function that applies the fallback adapter option to a graphics instance
func WithForceFallbackAdapter(force bool) GraphicsBuilderOption {
	return func(g *graphics) {
		g.forceFallbackAdapter = force
	}
}
