package technique

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

// ErrMalformedDescription is returned when a technique description cannot be parsed.
var ErrMalformedDescription = errors.New("technique: malformed description")

// techniqueElement is the root element of a technique description.
type techniqueElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr    `xml:",any,attr"`
	Passes  []passElement `xml:"pass"`
}

// passElement is a single <pass> child of a technique description.
type passElement struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

// BeginLoad replaces the technique's passes with the ones described by the XML document read
// from r. Passes without a name are logged and skipped. BeginLoad only builds description data
// and may run off the graphics owner thread.
//
// Parameters:
//   - r: the description source
//
// Returns:
//   - error: an ErrMalformedDescription wrapped error if the document cannot be parsed
func (t *Technique) BeginLoad(r io.Reader) error {
	var doc techniqueElement
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDescription, t.name, err)
	}

	t.reset()
	root := common.Attributes(doc.Attrs)
	if root.Has("desktop") {
		t.desktop = root.Bool("desktop")
	}

	var globalNames, globalDefines StageDefines
	for _, stage := range shader.Stages {
		globalNames[stage] = root.String(stage.String())
		globalDefines[stage] = root.String(stage.DefinesAttribute())
		if globalDefines[stage] != "" {
			globalDefines[stage] += " "
		}
	}

	for i, el := range doc.Passes {
		attrs := common.Attributes(el.Attrs)
		if !attrs.Has("name") {
			common.Logger().Error("technique pass is missing a name", "technique", t.name, "element", i)
			continue
		}
		t.loadPass(attrs, globalNames, globalDefines)
	}

	t.updateMemoryUse()
	return nil
}

func (t *Technique) loadPass(attrs common.Attributes, globalNames, globalDefines StageDefines) {
	p := t.CreatePass(attrs.String("name"))

	if attrs.Has("desktop") {
		p.SetDesktop(attrs.Bool("desktop"))
	}

	for _, stage := range shader.Stages {
		if attrs.Has(stage.String()) {
			p.SetShader(stage, attrs.String(stage.String()))
			p.SetDefines(stage, attrs.String(stage.DefinesAttribute()))
		} else {
			p.SetShader(stage, globalNames[stage])
			p.SetDefines(stage, globalDefines[stage]+attrs.String(stage.DefinesAttribute()))
		}
		if attrs.Has(stage.ExcludesAttribute()) {
			p.SetDefineExcludes(stage, attrs.String(stage.ExcludesAttribute()))
		}
	}

	if attrs.Has("lighting") {
		p.SetLightingMode(ParseLightingMode(attrs.String("lighting")))
	}
	if attrs.Has("blend") {
		p.SetBlendMode(ParseBlendMode(attrs.String("blend")))
	}
	if attrs.Has("cull") {
		p.SetCullMode(ParseCullMode(attrs.String("cull")))
	}
	if attrs.Has("depthtest") {
		if value := attrs.Lower("depthtest"); value == "false" {
			p.SetDepthTestMode(CompareAlways)
		} else {
			p.SetDepthTestMode(ParseCompareMode(value, CompareLess))
		}
	}
	if attrs.Has("depthwrite") {
		p.SetDepthWrite(attrs.Bool("depthwrite"))
	}
	if attrs.Has("alphatocoverage") {
		p.SetAlphaToCoverage(attrs.Bool("alphatocoverage"))
	}
}

// LoadTechnique reads and parses the technique description file at path. The technique is named
// after the given name.
//
// Parameters:
//   - name: the technique resource name
//   - path: the description file path
//   - options: optional technique configuration
//
// Returns:
//   - *Technique: the loaded technique
//   - error: an error if the file cannot be read or parsed
func LoadTechnique(name, path string, options ...TechniqueBuilderOption) (*Technique, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("technique: failed to open %q: %w", path, err)
	}
	defer f.Close()

	t := NewTechnique(name, options...)
	if err := t.BeginLoad(f); err != nil {
		return nil, err
	}
	return t, nil
}
