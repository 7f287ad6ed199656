package technique

import (
	"strings"
	"sync"
)

// Built-in pass indices. They are reserved in every registry before any other name is interned.
const (
	BasePassIndex = iota
	AlphaPassIndex
	MaterialPassIndex
	DeferredPassIndex
	LightPassIndex
	LitBasePassIndex
	LitAlphaPassIndex
	ShadowPassIndex
)

// builtinPassNames lists the reserved names in index order.
var builtinPassNames = [...]string{"base", "alpha", "material", "deferred", "light", "litbase", "litalpha", "shadow"}

// PassIndexRegistry interns pass names to small stable integers. Lookups are case-insensitive and
// entries are never removed, so an index stays valid for the registry's lifetime.
type PassIndexRegistry struct {
	once    sync.Once
	mu      *sync.RWMutex
	indices map[string]int
	names   []string
}

var (
	sharedRegistry     *PassIndexRegistry
	sharedRegistryOnce sync.Once
)

// NewPassIndexRegistry creates an empty registry. The built-in names are seeded on first use.
func NewPassIndexRegistry() *PassIndexRegistry {
	return &PassIndexRegistry{
		mu: &sync.RWMutex{},
	}
}

// SharedPassIndexRegistry returns the process-scoped registry that techniques use unless another
// one is supplied with WithPassIndexRegistry.
func SharedPassIndexRegistry() *PassIndexRegistry {
	sharedRegistryOnce.Do(func() {
		sharedRegistry = NewPassIndexRegistry()
	})
	return sharedRegistry
}

func (r *PassIndexRegistry) seed() {
	r.once.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.indices = make(map[string]int, len(builtinPassNames))
		r.names = make([]string, 0, len(builtinPassNames))
		for _, name := range builtinPassNames {
			r.indices[name] = len(r.names)
			r.names = append(r.names, name)
		}
	})
}

// GetOrCreateIndex returns the index of the named pass, interning the name if it is new.
// New names get the next unused index in first-seen order.
//
// Parameters:
//   - name: the pass name, matched case-insensitively
//
// Returns:
//   - int: the pass index
func (r *PassIndexRegistry) GetOrCreateIndex(name string) int {
	r.seed()
	key := strings.ToLower(name)

	r.mu.RLock()
	index, ok := r.indices[key]
	r.mu.RUnlock()
	if ok {
		return index
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if index, ok := r.indices[key]; ok {
		return index
	}
	index = len(r.names)
	r.indices[key] = index
	r.names = append(r.names, key)
	return index
}

// Index returns the index of an already interned name without creating one.
func (r *PassIndexRegistry) Index(name string) (int, bool) {
	r.seed()
	r.mu.RLock()
	defer r.mu.RUnlock()
	index, ok := r.indices[strings.ToLower(name)]
	return index, ok
}

// Name returns the lower-cased name interned at index, or an empty string.
func (r *PassIndexRegistry) Name(index int) string {
	r.seed()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.names) {
		return ""
	}
	return r.names[index]
}

// Len returns the number of interned names including the built-ins.
func (r *PassIndexRegistry) Len() int {
	r.seed()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
