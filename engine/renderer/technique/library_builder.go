package technique

import "github.com/Carmen-Shannon/oxy-technique/common"

// LibraryBuilderOption is a functional option applied to a Library during construction.
type LibraryBuilderOption func(*Library)

// WithWorkers sets the number of parallel parse workers. Defaults to 4.
func WithWorkers(n int) LibraryBuilderOption {
	return func(l *Library) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithTechniqueOptions sets the options every loaded technique is created with.
func WithTechniqueOptions(options ...TechniqueBuilderOption) LibraryBuilderOption {
	return func(l *Library) {
		l.options = append(l.options, options...)
	}
}

// WithDescriptionExtension sets the description file extension. Defaults to ".xml"; an empty
// extension keeps the default.
func WithDescriptionExtension(ext string) LibraryBuilderOption {
	return func(l *Library) {
		l.extension = common.Coalesce(ext, l.extension)
	}
}
