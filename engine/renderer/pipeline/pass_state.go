package pipeline

import (
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/technique"
	"github.com/cogentcore/webgpu/wgpu"
)

var blendComponents = map[technique.BlendMode]wgpu.BlendComponent{
	technique.BlendAdd:           {SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	technique.BlendMultiply:      {SrcFactor: wgpu.BlendFactorDst, DstFactor: wgpu.BlendFactorZero, Operation: wgpu.BlendOperationAdd},
	technique.BlendAlpha:         {SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
	technique.BlendAddAlpha:      {SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	technique.BlendPremulAlpha:   {SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
	technique.BlendInvDestAlpha:  {SrcFactor: wgpu.BlendFactorOneMinusDstAlpha, DstFactor: wgpu.BlendFactorDstAlpha, Operation: wgpu.BlendOperationAdd},
	technique.BlendSubtract:      {SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationReverseSubtract},
	technique.BlendSubtractAlpha: {SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationReverseSubtract},
}

var compareFunctions = map[technique.CompareMode]wgpu.CompareFunction{
	technique.CompareAlways:       wgpu.CompareFunctionAlways,
	technique.CompareEqual:        wgpu.CompareFunctionEqual,
	technique.CompareNotEqual:     wgpu.CompareFunctionNotEqual,
	technique.CompareLess:         wgpu.CompareFunctionLess,
	technique.CompareLessEqual:    wgpu.CompareFunctionLessEqual,
	technique.CompareGreater:      wgpu.CompareFunctionGreater,
	technique.CompareGreaterEqual: wgpu.CompareFunctionGreaterEqual,
}

// BlendStateFor maps a pass blend mode to a WebGPU blend state. The same equation is used for the
// color and alpha channels. BlendReplace and unknown modes return nil, which disables blending.
//
// Parameters:
//   - mode: the pass blend mode
//
// Returns:
//   - *wgpu.BlendState: the blend state, or nil
func BlendStateFor(mode technique.BlendMode) *wgpu.BlendState {
	component, ok := blendComponents[mode]
	if !ok {
		return nil
	}
	return &wgpu.BlendState{Color: component, Alpha: component}
}

// CompareFunctionFor maps a pass depth compare mode to a WebGPU compare function. Unknown modes
// map to wgpu.CompareFunctionLessEqual.
func CompareFunctionFor(mode technique.CompareMode) wgpu.CompareFunction {
	if fn, ok := compareFunctions[mode]; ok {
		return fn
	}
	return wgpu.CompareFunctionLessEqual
}

// CullModeFor maps a pass cull mode to a WebGPU cull mode for clockwise front faces, so CullCCW
// culls back faces. CullNoOverride yields defaultCull.
//
// Parameters:
//   - mode: the pass cull mode
//   - defaultCull: the material cull mode used when the pass does not override it
//
// Returns:
//   - wgpu.CullMode: the cull mode to draw with
func CullModeFor(mode, defaultCull technique.CullMode) wgpu.CullMode {
	if mode == technique.CullNoOverride {
		mode = defaultCull
	}
	switch mode {
	case technique.CullCCW:
		return wgpu.CullModeBack
	case technique.CullCW:
		return wgpu.CullModeFront
	default:
		return wgpu.CullModeNone
	}
}

// FromPass describes the render state of a pass drawing with the given program. The pipeline key
// is the pass name, and the pipeline is a compute pipeline when the program only links a compute
// stage.
//
// Parameters:
//   - pass: the technique pass
//   - sp: the program activated for the pass, may be nil
//   - defaultCull: the material cull mode used when the pass does not override it
//   - opts: additional options applied after the pass state
//
// Returns:
//   - Pipeline: the pipeline description
func FromPass(pass *technique.Pass, sp *program.ShaderProgram, defaultCull technique.CullMode, opts ...PipelineBuilderOption) Pipeline {
	pipelineType := PipelineTypeRender
	if sp != nil && sp.Variation(shader.StageCompute) != nil && sp.Variation(shader.StageVertex) == nil {
		pipelineType = PipelineTypeCompute
	}

	state := []PipelineBuilderOption{
		WithProgram(sp),
		WithDepthCompare(CompareFunctionFor(pass.DepthTestMode())),
		WithDepthWriteEnabled(pass.DepthWrite()),
		WithAlphaToCoverage(pass.AlphaToCoverage()),
		WithBlendState(BlendStateFor(pass.BlendMode())),
		WithFrontFace(wgpu.FrontFaceCW),
		WithCullMode(CullModeFor(pass.CullMode(), defaultCull)),
	}
	return NewPipeline(pass.Name(), pipelineType, append(state, opts...)...)
}
