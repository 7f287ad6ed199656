package program

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/constant_buffer"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

// Parameter is a merged shader parameter together with the constant buffer that holds it.
type Parameter struct {
	shader.Parameter

	// Buffer is the shared constant buffer of the parameter's stage and group.
	Buffer *constant_buffer.ConstantBuffer
}

// ShaderProgram links one variation per stage into a bindable unit. It holds a reference on every
// constant buffer its stages need and a merged name to parameter table across all stages.
type ShaderProgram struct {
	pool       *constant_buffer.Pool
	set        shader.StageSet
	buffers    [shader.StageCount][shader.MaxParameterGroups]*constant_buffer.ConstantBuffer
	parameters map[string]Parameter
	released   bool
}

// NewShaderProgram builds a program from a stage set. Desktop-only stages are ignored unless
// desktop is true. For every group a stage declares with a nonzero size, a shared buffer is
// acquired from the pool; every parameter of that stage is then merged into the program's table,
// bound to the buffer of its group. A parameter declared by several stages resolves to the last
// stage in VS, PS, GS, HS, DS, CS order.
//
// Parameters:
//   - pool: the pool constant buffers are acquired from
//   - set: the variation of each stage, nil for unused stages
//   - desktop: whether desktop-only stages participate
//
// Returns:
//   - *ShaderProgram: the linked program
//   - error: an error if a constant buffer could not be allocated; no buffers are held in that case
func NewShaderProgram(pool *constant_buffer.Pool, set shader.StageSet, desktop bool) (*ShaderProgram, error) {
	if !desktop {
		set = set.WithoutDesktopStages()
	}
	p := &ShaderProgram{
		pool: pool,
		set:  set,
	}

	merged := make(map[string]Parameter)
	for _, stage := range shader.Stages {
		v := set[stage]
		if v == nil {
			continue
		}

		for group, size := range v.ConstantBufferSizes() {
			if size == 0 {
				continue
			}
			cb, err := pool.Acquire(stage, shader.ParameterGroup(group), size)
			if err != nil {
				p.Release()
				return nil, fmt.Errorf("program: %s %q: %w", stage, v.Name(), err)
			}
			p.buffers[stage][group] = cb
		}

		for name, param := range v.Parameters() {
			var cb *constant_buffer.ConstantBuffer
			if param.Group >= 0 && param.Group < shader.MaxParameterGroups {
				cb = p.buffers[stage][param.Group]
			}
			merged[name] = Parameter{Parameter: param, Buffer: cb}
		}
	}

	// Rebuild with power of two headroom for the per-draw lookups.
	p.parameters = make(map[string]Parameter, common.NextPowerOfTwo(uint(len(merged))))
	for name, param := range merged {
		p.parameters[name] = param
	}
	return p, nil
}

// Parameter returns a merged parameter by name.
func (p *ShaderProgram) Parameter(name string) (Parameter, bool) {
	param, ok := p.parameters[name]
	return param, ok
}

// HasParameter reports whether any stage declares the named parameter.
func (p *ShaderProgram) HasParameter(name string) bool {
	_, ok := p.parameters[name]
	return ok
}

// Parameters returns the merged parameter table. It must not be modified.
func (p *ShaderProgram) Parameters() map[string]Parameter {
	return p.parameters
}

// SetParameter writes raw data into the constant buffer holding the named parameter.
//
// Parameters:
//   - name: the parameter name
//   - data: the raw value, at most the parameter's size
//
// Returns:
//   - error: an error if the parameter does not exist, has no buffer or data is too large
func (p *ShaderProgram) SetParameter(name string, data []byte) error {
	param, ok := p.parameters[name]
	if !ok || param.Buffer == nil {
		return fmt.Errorf("program: no buffered parameter %q", name)
	}
	if uint32(len(data)) > param.Size {
		return fmt.Errorf("program: %d bytes exceed parameter %q of %d bytes", len(data), name, param.Size)
	}
	return param.Buffer.SetParameter(param.Offset, data)
}

// ConstantBuffer returns the buffer held for a stage and group, or nil.
func (p *ShaderProgram) ConstantBuffer(stage shader.Stage, group shader.ParameterGroup) *constant_buffer.ConstantBuffer {
	if !stage.Valid() || group < 0 || group >= shader.MaxParameterGroups {
		return nil
	}
	return p.buffers[stage][group]
}

// Variation returns the variation linked for a stage, or nil.
func (p *ShaderProgram) Variation(stage shader.Stage) shader.Variation {
	return p.set.Get(stage)
}

// StageSet returns the linked variations.
func (p *ShaderProgram) StageSet() shader.StageSet {
	return p.set
}

// Uses reports whether the variation is linked into any stage of the program.
func (p *ShaderProgram) Uses(v shader.Variation) bool {
	if v == nil {
		return false
	}
	for _, linked := range p.set {
		if linked == v {
			return true
		}
	}
	return false
}

// Release returns every held constant buffer to the pool. Calling it more than once is a no-op.
func (p *ShaderProgram) Release() {
	if p.released {
		return
	}
	p.released = true
	for s := range p.buffers {
		for g, cb := range p.buffers[s] {
			if cb != nil {
				p.pool.Release(cb)
				p.buffers[s][g] = nil
			}
		}
	}
}
