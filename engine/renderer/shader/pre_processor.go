// pre_processor.go implements the define-driven WGSL pre-processor. WGSL has no conditional
// compilation of its own, so shader sources use a small set of line directives that are resolved
// against a variation's defines before the source reaches the compiler:
//
//	#ifdef NAME / #ifndef NAME / #if defined(NAME)
//	#else
//	#endif
//	#define NAME / #undef NAME
//
// Directive lines and lines in inactive branches are replaced with empty lines so compiler
// diagnostics keep the line numbers of the original source.
package shader

import (
	"fmt"
	"strings"
)

// conditional tracks one open #if block while processing.
type conditional struct {
	// parentActive is whether the enclosing block was emitting lines when this block opened.
	parentActive bool

	// taken is whether the first branch condition held.
	taken bool

	// sawElse is whether the #else branch has already been entered.
	sawElse bool

	// line is the 1-based line number of the opening directive, used for error messages.
	line int
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct{}

// PreProcessor resolves conditional compilation directives in WGSL source for a given stage and
// define list.
type PreProcessor interface {
	// Process resolves every directive in source. The stage's compile define (COMPILEVS,
	// COMPILEPS, ...) is always treated as defined in addition to the given defines.
	//
	// Parameters:
	//   - source: the raw WGSL source containing directives
	//   - stage: the stage being compiled
	//   - defines: the space-separated define list of the variation
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if a directive is unknown, malformed or unbalanced
	Process(source string, stage Stage, defines string) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor.
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(source string, stage Stage, defines string) (string, error) {
	defined := defineSet(defines)
	if d := stage.CompileDefine(); d != "" {
		defined[d] = struct{}{}
	}

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	var stack []conditional
	active := true

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if active {
				out = append(out, line)
			} else {
				out = append(out, "")
			}
			continue
		}

		directive, arg := splitDirective(trimmed[1:])
		switch directive {
		case "ifdef", "ifndef", "if":
			name, err := conditionName(directive, arg)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", lineNo, err)
			}
			_, ok := defined[name]
			if directive == "ifndef" {
				ok = !ok
			}
			stack = append(stack, conditional{parentActive: active, taken: ok, line: lineNo})
			active = active && ok
		case "else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #else without matching #if", lineNo)
			}
			top := &stack[len(stack)-1]
			if top.sawElse {
				return "", fmt.Errorf("line %d: duplicate #else for #if on line %d", lineNo, top.line)
			}
			top.sawElse = true
			active = top.parentActive && !top.taken
		case "endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #endif without matching #if", lineNo)
			}
			active = stack[len(stack)-1].parentActive
			stack = stack[:len(stack)-1]
		case "define", "undef":
			if arg == "" {
				return "", fmt.Errorf("line %d: #%s requires a name", lineNo, directive)
			}
			if active {
				if directive == "define" {
					defined[defineName(arg)] = struct{}{}
				} else {
					delete(defined, defineName(arg))
				}
			}
		default:
			return "", fmt.Errorf("line %d: unknown directive #%s", lineNo, directive)
		}
		out = append(out, "")
	}

	if len(stack) > 0 {
		return "", fmt.Errorf("line %d: unterminated conditional block", stack[len(stack)-1].line)
	}
	return strings.Join(out, "\n"), nil
}

// splitDirective splits "ifdef NAME" into its directive keyword and trimmed argument.
func splitDirective(s string) (string, string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// conditionName extracts the tested define from the argument of an #if style directive.
// #if only supports the defined(NAME) form.
func conditionName(directive, arg string) (string, error) {
	if directive != "if" {
		if arg == "" || strings.ContainsAny(arg, " \t") {
			return "", fmt.Errorf("#%s requires a single name", directive)
		}
		return arg, nil
	}
	inner, ok := strings.CutPrefix(strings.ReplaceAll(arg, " ", ""), "defined(")
	if !ok || !strings.HasSuffix(inner, ")") || len(inner) < 2 {
		return "", fmt.Errorf("#if only supports defined(NAME), got %q", arg)
	}
	return strings.TrimSuffix(inner, ")"), nil
}
