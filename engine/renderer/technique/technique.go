package technique

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

// StageDefines holds one define list per stage, indexed by shader.Stage.
type StageDefines [shader.StageCount]string

// Empty reports whether every define list is empty.
func (d StageDefines) Empty() bool {
	for _, s := range d {
		if s != "" {
			return false
		}
	}
	return true
}

// hash returns the per-stage string hashes used as the clone memo key.
func (d StageDefines) hash() [shader.StageCount]uint32 {
	var key [shader.StageCount]uint32
	for i, s := range d {
		key[i] = common.StringHash(s)
	}
	return key
}

// Technique is a named collection of passes plus technique-wide state. Passes are stored in a
// sparse slice indexed by their interned pass index; a nil slot means the pass is absent.
type Technique struct {
	name           string
	registry       *PassIndexRegistry
	desktopSupport bool
	desktop        bool
	passes         []*Pass
	clones         map[[shader.StageCount]uint32]*Technique
	memoryUse      uint64
}

// NewTechnique creates an empty technique.
//
// Parameters:
//   - name: the resource name of the technique
//   - options: optional configuration
//
// Returns:
//   - *Technique: the new technique
func NewTechnique(name string, options ...TechniqueBuilderOption) *Technique {
	t := &Technique{
		name:           name,
		registry:       SharedPassIndexRegistry(),
		desktopSupport: true,
		clones:         make(map[[shader.StageCount]uint32]*Technique),
	}
	for _, opt := range options {
		opt(t)
	}
	t.updateMemoryUse()
	return t
}

// Name returns the resource name.
func (t *Technique) Name() string {
	return t.name
}

// SetName renames the technique.
func (t *Technique) SetName(name string) {
	t.name = name
}

// PassIndexRegistry returns the registry the technique interns pass names in.
func (t *Technique) PassIndexRegistry() *PassIndexRegistry {
	return t.registry
}

// SetDesktop marks the technique as requiring desktop-class stages.
func (t *Technique) SetDesktop(enable bool) {
	t.desktop = enable
}

// IsDesktop reports whether the technique requires desktop-class stages.
func (t *Technique) IsDesktop() bool {
	return t.desktop
}

// IsSupported reports whether the technique can be used on the current platform.
func (t *Technique) IsSupported() bool {
	return !t.desktop || t.desktopSupport
}

// CreatePass returns the pass with the given name, creating it if it does not exist yet.
//
// Parameters:
//   - name: the pass name, matched case-insensitively
//
// Returns:
//   - *Pass: the existing or new pass
func (t *Technique) CreatePass(name string) *Pass {
	if p := t.Pass(name); p != nil {
		return p
	}

	index := t.registry.GetOrCreateIndex(name)
	if index >= len(t.passes) {
		grown := make([]*Pass, index+1)
		copy(grown, t.passes)
		t.passes = grown
	}
	p := newPass(name, index)
	t.passes[index] = p
	t.updateMemoryUse()
	return p
}

// RemovePass removes the named pass from this technique. The name stays interned in the registry.
func (t *Technique) RemovePass(name string) {
	index, ok := t.registry.Index(name)
	if !ok || index >= len(t.passes) || t.passes[index] == nil {
		return
	}
	t.passes[index] = nil
	t.updateMemoryUse()
}

// HasPass reports whether the technique has a pass with the given name.
func (t *Technique) HasPass(name string) bool {
	return t.Pass(name) != nil
}

// HasPassIndex reports whether the technique has a pass at the given index.
func (t *Technique) HasPassIndex(index int) bool {
	return t.PassByIndex(index) != nil
}

// Pass returns the named pass, or nil.
func (t *Technique) Pass(name string) *Pass {
	index, ok := t.registry.Index(name)
	if !ok {
		return nil
	}
	return t.PassByIndex(index)
}

// PassByIndex returns the pass at the given index, or nil.
func (t *Technique) PassByIndex(index int) *Pass {
	if index < 0 || index >= len(t.passes) {
		return nil
	}
	return t.passes[index]
}

// SupportedPass returns the named pass if it exists and can be used on the current platform.
func (t *Technique) SupportedPass(name string) *Pass {
	return t.supported(t.Pass(name))
}

// SupportedPassByIndex returns the pass at the index if it exists and can be used on the current platform.
func (t *Technique) SupportedPassByIndex(index int) *Pass {
	return t.supported(t.PassByIndex(index))
}

func (t *Technique) supported(p *Pass) *Pass {
	if p == nil || (p.IsDesktop() && !t.desktopSupport) {
		return nil
	}
	return p
}

// NumPasses returns the number of passes present.
func (t *Technique) NumPasses() int {
	n := 0
	for _, p := range t.passes {
		if p != nil {
			n++
		}
	}
	return n
}

// Passes returns the present passes in index order.
func (t *Technique) Passes() []*Pass {
	passes := make([]*Pass, 0, len(t.passes))
	for _, p := range t.passes {
		if p != nil {
			passes = append(passes, p)
		}
	}
	return passes
}

// PassNames returns the names of the present passes in index order.
func (t *Technique) PassNames() []string {
	names := make([]string, 0, len(t.passes))
	for _, p := range t.passes {
		if p != nil {
			names = append(names, p.Name())
		}
	}
	return names
}

// ReleaseShaders releases the resolved variations of every pass.
func (t *Technique) ReleaseShaders() {
	for _, p := range t.passes {
		if p != nil {
			p.ReleaseShaders()
		}
	}
}

// Clone returns a deep copy of the technique under a new name. Every pass description and
// render state flag is copied; resolved variations are not, so the clone starts unresolved.
//
// Parameters:
//   - name: the name of the clone
//
// Returns:
//   - *Technique: the clone
func (t *Technique) Clone(name string) *Technique {
	c := NewTechnique(name, WithPassIndexRegistry(t.registry), WithDesktopSupport(t.desktopSupport))
	c.desktop = t.desktop
	for _, p := range t.passes {
		if p == nil {
			continue
		}
		p.copyDefinitionTo(c.CreatePass(p.Name()))
	}
	return c
}

// CloneWithDefines returns a clone with extra defines appended to every pass's per-stage defines.
// When all define lists are empty the technique itself is returned. Clones are memoized, so
// identical requests return the same instance. Clones keep the technique's name.
//
// Parameters:
//   - defines: the extra defines per stage
//
// Returns:
//   - *Technique: the receiver, or the memoized clone
func (t *Technique) CloneWithDefines(defines StageDefines) *Technique {
	if defines.Empty() {
		return t
	}

	key := defines.hash()
	if c, ok := t.clones[key]; ok {
		return c
	}

	c := t.Clone(t.name)
	for _, p := range c.passes {
		if p == nil {
			continue
		}
		for _, stage := range shader.Stages {
			if defines[stage] != "" {
				p.SetDefines(stage, appendDefines(p.Defines(stage), defines[stage]))
			}
		}
	}
	t.clones[key] = c
	return c
}

// MemoryUse returns a coarse estimate of the memory held by the technique and its passes.
func (t *Technique) MemoryUse() uint64 {
	return t.memoryUse
}

func (t *Technique) updateMemoryUse() {
	t.memoryUse = uint64(unsafe.Sizeof(Technique{})) + uint64(t.NumPasses())*uint64(unsafe.Sizeof(Pass{}))
}

// reset drops every pass and memoized clone before a reload.
func (t *Technique) reset() {
	t.passes = nil
	t.clones = make(map[[shader.StageCount]uint32]*Technique)
	t.desktop = false
	t.updateMemoryUse()
}
