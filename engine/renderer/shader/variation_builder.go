package shader

// VariationOption configures a Variation created with NewVariation.
type VariationOption func(*variation)

// WithEntryPoint sets the entry point function name.
func WithEntryPoint(entryPoint string) VariationOption {
	return func(v *variation) {
		v.entryPoint = entryPoint
	}
}

// WithSource sets the pre-processed shader source.
func WithSource(source string) VariationOption {
	return func(v *variation) {
		v.source = source
	}
}

// WithBytecode sets the compiled binary.
func WithBytecode(bytecode []byte) VariationOption {
	return func(v *variation) {
		v.bytecode = bytecode
	}
}

// WithConstantBufferSize sets the size of a single parameter group's constant buffer.
// Out of range groups are ignored.
//
// Parameters:
//   - group: the parameter group
//   - size: the buffer size in bytes
func WithConstantBufferSize(group ParameterGroup, size uint32) VariationOption {
	return func(v *variation) {
		if group < 0 || group >= MaxParameterGroups {
			return
		}
		v.bufferSizes[group] = size
	}
}

// WithParameters adds reflected parameters. Each parameter's Stage is overwritten with the
// variation's stage.
func WithParameters(params ...Parameter) VariationOption {
	return func(v *variation) {
		for _, p := range params {
			p.Stage = v.stage
			v.parameters[p.Name] = p
		}
	}
}
