package technique

// TechniqueBuilderOption is a functional option applied to a Technique during construction.
type TechniqueBuilderOption func(*Technique)

// WithPassIndexRegistry sets the registry pass names are interned in. Defaults to the shared registry.
//
// Parameters:
//   - registry: the registry to use, nil keeps the default
//
// Returns:
//   - TechniqueBuilderOption: a function that applies the registry option
func WithPassIndexRegistry(registry *PassIndexRegistry) TechniqueBuilderOption {
	return func(t *Technique) {
		if registry != nil {
			t.registry = registry
		}
	}
}

// WithDesktopSupport sets whether the platform supports desktop-class stages. Defaults to true.
// Techniques and passes flagged desktop are unsupported when this is false.
func WithDesktopSupport(supported bool) TechniqueBuilderOption {
	return func(t *Technique) {
		t.desktopSupport = supported
	}
}
