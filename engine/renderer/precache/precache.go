package precache

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

// ErrMalformedPrecache is returned when a precache document cannot be parsed.
var ErrMalformedPrecache = errors.New("precache: malformed document")

// document is the persisted precache file: a root element holding one <shader> record per
// distinct stage combination.
type document struct {
	XMLName xml.Name
	Records []record `xml:"shader"`
}

// record is a single stage combination. Each participating stage contributes a name attribute
// ("vs") and a defines attribute ("vsdefines").
type record struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

// stage shape masks accepted by StoreShaders.
const (
	maskVS = 1 << shader.StageVertex
	maskPS = 1 << shader.StagePixel
	maskGS = 1 << shader.StageGeometry
	maskHS = 1 << shader.StageHull
	maskDS = 1 << shader.StageDomain
	maskCS = 1 << shader.StageCompute
)

var validShapes = map[int]struct{}{
	maskVS | maskPS | maskGS | maskHS | maskDS: {},
	maskVS | maskPS | maskGS:                   {},
	maskVS | maskPS | maskHS | maskDS:          {},
	maskVS | maskPS:                            {},
	maskCS:                                     {},
}

// ShaderPrecache records the distinct stage combinations used during a session and persists
// them so a later run can compile them up front.
type ShaderPrecache struct {
	fileName string
	doc      document

	usedPtrCombinations map[shader.StageSet]struct{}
	usedCombinations    map[string]struct{}
	stored              int
}

// NewShaderPrecache opens the precache file. A missing file starts an empty document.
//
// Parameters:
//   - fileName: the file combinations are read from and persisted to
//
// Returns:
//   - *ShaderPrecache: the precache
//   - error: an error if the file exists but cannot be read or parsed
func NewShaderPrecache(fileName string) (*ShaderPrecache, error) {
	p := &ShaderPrecache{
		fileName:            fileName,
		doc:                 document{XMLName: xml.Name{Local: "shaders"}},
		usedPtrCombinations: make(map[shader.StageSet]struct{}),
		usedCombinations:    make(map[string]struct{}),
	}

	data, err := os.ReadFile(fileName)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return p, nil
	case err != nil:
		return nil, fmt.Errorf("precache: failed to read %q: %w", fileName, err)
	}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", fileName, err)
	}
	p.doc = doc
	for _, r := range doc.Records {
		p.usedCombinations[recordCombination(common.Attributes(r.Attrs))] = struct{}{}
	}
	common.Logger().Debug("precache opened", "file", fileName, "records", len(doc.Records))
	return p, nil
}

func parseDocument(data []byte) (document, error) {
	var doc document
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return document{}, fmt.Errorf("%w: %v", ErrMalformedPrecache, err)
	}
	return doc, nil
}

// StoreShaders records a stage combination. Combinations that do not match a supported shape
// are ignored, as are combinations already recorded, either as the exact same variations or as
// the same names and defines.
//
// Parameters:
//   - set: the variation of each stage
func (p *ShaderPrecache) StoreShaders(set shader.StageSet) {
	mask := 0
	for _, stage := range shader.Stages {
		if set[stage] != nil {
			mask |= 1 << stage
		}
	}
	if _, ok := validShapes[mask]; !ok {
		return
	}

	if _, ok := p.usedPtrCombinations[set]; ok {
		return
	}
	p.usedPtrCombinations[set] = struct{}{}

	combination := setCombination(set)
	if _, ok := p.usedCombinations[combination]; ok {
		return
	}
	p.usedCombinations[combination] = struct{}{}

	var attrs common.Attributes
	for _, stage := range shader.Stages {
		if v := set[stage]; v != nil {
			attrs.Set(stage.String(), v.Name())
			attrs.Set(stage.DefinesAttribute(), v.Defines())
		}
	}
	p.doc.Records = append(p.doc.Records, record{Attrs: attrs})
	p.stored++
}

// Len returns the number of recorded combinations, including those loaded from the file.
func (p *ShaderPrecache) Len() int {
	return len(p.doc.Records)
}

// Stored returns the number of combinations added this session.
func (p *ShaderPrecache) Stored() int {
	return p.stored
}

// FileName returns the file the precache persists to.
func (p *ShaderPrecache) FileName() string {
	return p.fileName
}

// Close persists the precache if at least one combination was added this session.
//
// Returns:
//   - error: an error if the file could not be written
func (p *ShaderPrecache) Close() error {
	if p.stored == 0 {
		return nil
	}
	data, err := xml.MarshalIndent(p.doc, "", "\t")
	if err != nil {
		return fmt.Errorf("precache: failed to encode %q: %w", p.fileName, err)
	}
	data = append([]byte(xml.Header), append(data, '\n')...)
	if err := os.WriteFile(p.fileName, data, 0o644); err != nil {
		return fmt.Errorf("precache: failed to write %q: %w", p.fileName, err)
	}
	common.Logger().Info("precache written", "file", p.fileName, "records", len(p.doc.Records), "new", p.stored)
	p.stored = 0
	return nil
}

// setCombination builds the de-duplication key of a live stage set.
func setCombination(set shader.StageSet) string {
	parts := make([]string, 0, 2*shader.StageCount)
	for _, stage := range shader.Stages {
		if v := set[stage]; v != nil {
			parts = append(parts, v.Name(), v.Defines())
		}
	}
	return strings.Join(parts, " ")
}

// recordCombination builds the de-duplication key of a persisted record. A stage participates
// only when both its name and defines attributes are present.
func recordCombination(attrs common.Attributes) string {
	parts := make([]string, 0, 2*shader.StageCount)
	for _, stage := range shader.Stages {
		if attrs.Has(stage.String()) && attrs.Has(stage.DefinesAttribute()) {
			parts = append(parts, attrs.String(stage.String()), attrs.String(stage.DefinesAttribute()))
		}
	}
	return strings.Join(parts, " ")
}
