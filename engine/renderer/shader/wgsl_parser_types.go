package shader

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// uniformDecl is a single `@group(G) @binding(B) var<uniform> name: Type;` declaration.
type uniformDecl struct {
	group    int
	binding  int
	name     string
	typeName string
}

// uniformLayout is the reflected constant buffer layout of one shader source: the buffer size
// of each parameter group and every parameter found in those buffers.
type uniformLayout struct {
	sizes      [MaxParameterGroups]uint32
	parameters []Parameter
}
