package shader

import "github.com/gogpu/naga"

// WGSLCompilerOption configures a Compiler created with NewWGSLCompiler.
type WGSLCompilerOption func(*wgslCompiler)

// WithExtension sets the file extension appended to shader names. Defaults to ".wgsl".
func WithExtension(ext string) WGSLCompilerOption {
	return func(c *wgslCompiler) {
		c.extension = ext
	}
}

// WithCompileOptions sets the naga compile options. Defaults to naga.DefaultOptions().
func WithCompileOptions(opts naga.CompileOptions) WGSLCompilerOption {
	return func(c *wgslCompiler) {
		c.options = opts
	}
}

// WithBytecodeCompiler replaces the naga back end, e.g. to skip code generation in tooling that
// only needs reflection data.
func WithBytecodeCompiler(fn BytecodeCompiler) WGSLCompilerOption {
	return func(c *wgslCompiler) {
		if fn != nil {
			c.bytecode = fn
		}
	}
}

// WithPreProcessor replaces the directive pre-processor.
func WithPreProcessor(pp PreProcessor) WGSLCompilerOption {
	return func(c *wgslCompiler) {
		if pp != nil {
			c.pp = pp
		}
	}
}
