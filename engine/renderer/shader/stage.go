package shader

// Stage identifies one of the six programmable pipeline stages a shader variation can target.
// The declaration order is the fixed processing order used everywhere stages are iterated.
type Stage int

const (
	// StageVertex is the vertex processing stage.
	StageVertex Stage = iota

	// StagePixel is the pixel (fragment) processing stage.
	StagePixel

	// StageGeometry is the geometry stage, only available on desktop-class platforms.
	StageGeometry

	// StageHull is the tessellation control stage, only available on desktop-class platforms.
	StageHull

	// StageDomain is the tessellation evaluation stage, only available on desktop-class platforms.
	StageDomain

	// StageCompute is the compute stage, only available on desktop-class platforms.
	StageCompute
)

// StageCount is the number of pipeline stages.
const StageCount = 6

var stageNames = [StageCount]string{"vs", "ps", "gs", "hs", "ds", "cs"}

var stageDefines = [StageCount]string{"COMPILEVS", "COMPILEPS", "COMPILEGS", "COMPILEHS", "COMPILEDS", "COMPILECS"}

// Stages lists every stage in processing order.
var Stages = [StageCount]Stage{StageVertex, StagePixel, StageGeometry, StageHull, StageDomain, StageCompute}

// String returns the short attribute name of the stage ("vs", "ps", ...).
func (s Stage) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stageNames[s]
}

// Valid reports whether s is one of the six defined stages.
func (s Stage) Valid() bool {
	return s >= StageVertex && s < StageCount
}

// DefinesAttribute returns the description attribute holding this stage's compile defines, e.g. "vsdefines".
func (s Stage) DefinesAttribute() string {
	return s.String() + "defines"
}

// ExcludesAttribute returns the description attribute holding this stage's excluded defines, e.g. "psexcludes".
func (s Stage) ExcludesAttribute() string {
	return s.String() + "excludes"
}

// CompileDefine returns the define that is always injected while compiling for this stage.
func (s Stage) CompileDefine() string {
	if !s.Valid() {
		return ""
	}
	return stageDefines[s]
}

// IsDesktopOnly reports whether the stage only exists on desktop-class platforms.
func (s Stage) IsDesktopOnly() bool {
	return s >= StageGeometry && s < StageCount
}

// ParameterGroup is the index of a constant buffer slot. Each group maps to one WGSL bind group.
type ParameterGroup int

const (
	GroupFrame ParameterGroup = iota
	GroupCamera
	GroupZone
	GroupLight
	GroupMaterial
	GroupObject
	GroupCustom
)

// MaxParameterGroups is the number of constant buffer slots available to a single stage.
const MaxParameterGroups = 7
