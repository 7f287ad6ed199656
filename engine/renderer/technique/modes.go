package technique

import "strings"

// LightingMode describes how a pass is lit.
type LightingMode int

const (
	LightingUnlit LightingMode = iota
	LightingPerVertex
	LightingPerPixel
)

var lightingModeNames = []string{"unlit", "pervertex", "perpixel"}

func (m LightingMode) String() string {
	return enumName(lightingModeNames, int(m))
}

// BlendMode selects the color blending equation of a pass.
type BlendMode int

const (
	BlendReplace BlendMode = iota
	BlendAdd
	BlendMultiply
	BlendAlpha
	BlendAddAlpha
	BlendPremulAlpha
	BlendInvDestAlpha
	BlendSubtract
	BlendSubtractAlpha
)

var blendModeNames = []string{
	"replace", "add", "multiply", "alpha", "addalpha", "premulalpha", "invdestalpha", "subtract", "subtractalpha",
}

func (m BlendMode) String() string {
	return enumName(blendModeNames, int(m))
}

// CompareMode is the depth comparison function of a pass.
type CompareMode int

const (
	CompareAlways CompareMode = iota
	CompareEqual
	CompareNotEqual
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
)

var compareModeNames = []string{"always", "equal", "notequal", "less", "lessequal", "greater", "greaterequal"}

func (m CompareMode) String() string {
	return enumName(compareModeNames, int(m))
}

// CullMode is the face culling mode of a pass. CullNoOverride leaves the choice to the material.
type CullMode int

const (
	CullNone CullMode = iota
	CullCCW
	CullCW

	// CullNoOverride is the sentinel for "use the material's cull mode".
	CullNoOverride
)

var cullModeNames = []string{"none", "ccw", "cw"}

func (m CullMode) String() string {
	if m == CullNoOverride {
		return "nooverride"
	}
	return enumName(cullModeNames, int(m))
}

// ParseLightingMode parses a lighting token, falling back to LightingUnlit.
func ParseLightingMode(s string) LightingMode {
	return LightingMode(parseEnum(lightingModeNames, s, int(LightingUnlit)))
}

// ParseBlendMode parses a blend token, falling back to BlendReplace.
func ParseBlendMode(s string) BlendMode {
	return BlendMode(parseEnum(blendModeNames, s, int(BlendReplace)))
}

// ParseCompareMode parses a compare token, falling back to the given default.
//
// Parameters:
//   - s: the token to parse
//   - fallback: the mode returned for empty or unknown tokens
//
// Returns:
//   - CompareMode: the parsed mode
func ParseCompareMode(s string, fallback CompareMode) CompareMode {
	return CompareMode(parseEnum(compareModeNames, s, int(fallback)))
}

// ParseCullMode parses a cull token, falling back to CullNoOverride.
func ParseCullMode(s string) CullMode {
	return CullMode(parseEnum(cullModeNames, s, int(CullNoOverride)))
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "unknown"
	}
	return names[i]
}

func parseEnum(names []string, s string, fallback int) int {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == s {
			return i
		}
	}
	return fallback
}
