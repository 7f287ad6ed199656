package shader

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-technique/common"
)

var (
	// ErrTooManyUniformBindings is returned when a parameter group declares more than one uniform buffer.
	ErrTooManyUniformBindings = errors.New("shader: parameter group declares more than one uniform binding")

	// ErrGroupOutOfRange is returned when a uniform buffer is bound to a group beyond MaxParameterGroups.
	ErrGroupOutOfRange = errors.New("shader: uniform binding group out of range")

	// ErrUnresolvedUniformType is returned when the size of a uniform buffer's type cannot be computed.
	ErrUnresolvedUniformType = errors.New("shader: unresolved uniform type")
)

var (
	// structBlockRegex matches `struct Name { ... }` blocks.
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// builtinRegex matches @builtin(...) attributes on struct fields.
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex extracts the name and type of a struct field, skipping any leading attributes.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
	computeEntryRegex  = regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex matches `@group(G) @binding(B) var<space> name: Type;` declarations.
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoint extracts the entry point function name for the given stage from WGSL source.
// Stages that WGSL cannot express always return an empty string.
//
// Parameters:
//   - source: the WGSL source code
//   - stage: the stage to search for
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, stage Stage) string {
	var re *regexp.Regexp
	switch stage {
	case StageVertex:
		re = vertexEntryRegex
	case StagePixel:
		re = fragmentEntryRegex
	case StageCompute:
		re = computeEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(stripComments(source)); match != nil {
		return match[1]
	}
	return ""
}

// parseUniformDecls returns every var<uniform> declaration in the source ordered by group and binding.
func parseUniformDecls(cleaned string) []uniformDecl {
	var decls []uniformDecl
	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		if strings.TrimSpace(match[3]) != "uniform" {
			continue
		}
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		decls = append(decls, uniformDecl{
			group:    group,
			binding:  binding,
			name:     strings.TrimSpace(match[4]),
			typeName: strings.TrimSpace(match[5]),
		})
	}
	sort.Slice(decls, func(i, j int) bool {
		if decls[i].group != decls[j].group {
			return decls[i].group < decls[j].group
		}
		return decls[i].binding < decls[j].binding
	})
	return decls
}

// parseUniformLayout reflects the constant buffers of a WGSL source. Each parameter group may
// hold a single uniform buffer; its size is the bound type's size rounded up to 16 bytes. Struct
// typed buffers contribute one parameter per field, any other type contributes a single
// parameter named after the variable.
//
// Parameters:
//   - source: the pre-processed WGSL source
//
// Returns:
//   - uniformLayout: buffer sizes per group and the reflected parameters
//   - error: an error if a group is out of range, declared twice or its type cannot be sized
func parseUniformLayout(source string) (uniformLayout, error) {
	var layout uniformLayout
	cleaned := stripComments(source)
	structSizes, structFields := computeStructSizes(parseStructBlocks(cleaned))

	for _, decl := range parseUniformDecls(cleaned) {
		if decl.group < 0 || decl.group >= MaxParameterGroups {
			return uniformLayout{}, fmt.Errorf("%w: %s in group %d", ErrGroupOutOfRange, decl.name, decl.group)
		}
		if layout.sizes[decl.group] != 0 {
			return uniformLayout{}, fmt.Errorf("%w: %s in group %d", ErrTooManyUniformBindings, decl.name, decl.group)
		}

		typeLayout, ok := resolveTypeLayout(decl.typeName, structSizes)
		if !ok || typeLayout.size == 0 {
			return uniformLayout{}, fmt.Errorf("%w: %s: %s", ErrUnresolvedUniformType, decl.name, decl.typeName)
		}
		layout.sizes[decl.group] = uint32(common.RoundUp(uniformBufferAlignment, typeLayout.size))

		group := ParameterGroup(decl.group)
		if fields, isStruct := structFields[decl.typeName]; isStruct {
			for _, f := range fields {
				f.Group = group
				layout.parameters = append(layout.parameters, f)
			}
			continue
		}
		layout.parameters = append(layout.parameters, Parameter{
			Name:  decl.name,
			Group: group,
			Size:  uint32(typeLayout.size),
		})
	}

	return layout, nil
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting the field name and type and flagging @builtin fields
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		fields = append(fields, parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			isBuiltin: builtinRegex.MatchString(line),
		})
	}

	return fields
}
