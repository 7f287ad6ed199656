package precache

import (
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-technique/common"
	"github.com/Carmen-Shannon/oxy-technique/engine/renderer/shader"
)

// ReplayTarget is the graphics subsystem a precache is replayed into.
type ReplayTarget interface {
	// GetShader resolves a stage, name and defines to a variation, nil if unavailable.
	GetShader(stage shader.Stage, name, defines string) shader.Variation

	// SetShaders activates a stage combination, compiling it as a side effect.
	SetShaders(set shader.StageSet)

	// SupportsDesktopStages reports whether desktop-class stages are available.
	SupportsDesktopStages() bool
}

// Replay reads a precache document and activates every recorded combination on the target.
// On platforms without desktop-class stages, records that use them, instancing, or point light
// shadows are skipped.
//
// Parameters:
//   - target: the graphics subsystem
//   - r: the precache document
//
// Returns:
//   - error: an error if the document cannot be read or parsed
func Replay(target ReplayTarget, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("precache: failed to read replay source: %w", err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return err
	}

	desktop := target.SupportsDesktopStages()
	replayed, skipped := 0, 0
	for _, rec := range doc.Records {
		attrs := common.Attributes(rec.Attrs)
		if !desktop && restricted(attrs) {
			skipped++
			continue
		}

		var set shader.StageSet
		for _, stage := range shader.Stages {
			if name := attrs.String(stage.String()); name != "" {
				set[stage] = target.GetShader(stage, name, attrs.String(stage.DefinesAttribute()))
			}
		}
		target.SetShaders(set)
		replayed++
	}

	common.Logger().Info("precache replayed", "records", replayed, "skipped", skipped)
	return nil
}

// restricted reports whether a record cannot be used without desktop-class stages.
func restricted(attrs common.Attributes) bool {
	for _, stage := range shader.Stages {
		if stage.IsDesktopOnly() && attrs.String(stage.String()) != "" {
			return true
		}
	}
	vsDefines := attrs.String(shader.StageVertex.DefinesAttribute())
	psDefines := attrs.String(shader.StagePixel.DefinesAttribute())
	if shader.HasDefine(vsDefines, "INSTANCED") {
		return true
	}
	return shader.HasDefine(psDefines, "POINTLIGHT") && shader.HasDefine(psDefines, "SHADOW")
}
