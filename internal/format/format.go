// Package format translates the site aggregate to and from external
// representations. The persisted site document is the canonical, lossless
// serialization; the robot-description and simulation-description targets
// are one-directional projections of it.
package format

import (
	"fmt"
	"strings"

	"siteforge/pkg/domain"
)

// Target identifies an export representation.
type Target string

// Export targets.
const (
	// TargetSite is the canonical persisted document. Round-trips exactly.
	TargetSite Target = "site"
	// TargetRobot is the hierarchical frame/link description (URDF). Lossy.
	TargetRobot Target = "urdf"
	// TargetSimulation is the world description with collision and visual
	// shapes per level (SDF). Lossy.
	TargetSimulation Target = "sdf"
)

// ParseTarget maps a user-supplied name to a Target.
func ParseTarget(name string) (Target, error) {
	switch Target(name) {
	case TargetSite, TargetRobot, TargetSimulation:
		return Target(name), nil
	}
	return "", fmt.Errorf("unknown export target %q", name)
}

// TargetForPath infers the target from a file name's extension.
func TargetForPath(path string) (Target, error) {
	switch {
	case strings.HasSuffix(path, ".site.json"):
		return TargetSite, nil
	case strings.HasSuffix(path, ".urdf"):
		return TargetRobot, nil
	case strings.HasSuffix(path, ".sdf"):
		return TargetSimulation, nil
	}
	return "", fmt.Errorf("cannot infer export target from %q", path)
}

// Extension returns the conventional file extension for the target.
func (t Target) Extension() string {
	switch t {
	case TargetRobot:
		return ".urdf"
	case TargetSimulation:
		return ".sdf"
	default:
		return ".site.json"
	}
}

// Source identifies an import representation.
type Source string

// Import sources. Lossy export targets are one-directional and cannot be
// imported.
const (
	// SourceSite is the canonical persisted document.
	SourceSite Source = "site"
	// SourceLegacyBuilding is the predecessor tool's YAML building map.
	SourceLegacyBuilding Source = "building"
)

// Export serializes a site to the requested target representation.
func Export(site domain.Site, target Target) ([]byte, error) {
	switch target {
	case TargetSite:
		return ExportSite(site)
	case TargetRobot:
		return ExportRobot(site)
	case TargetSimulation:
		return ExportSimulation(site)
	default:
		return nil, domain.ExportError{Format: string(target), Err: fmt.Errorf("unsupported target")}
	}
}

// Import parses a document in the named source representation. A failed
// import never yields a partially populated site.
func Import(data []byte, source Source) (domain.Site, error) {
	switch source {
	case SourceSite:
		return ImportSite(data)
	case SourceLegacyBuilding:
		return ImportLegacyBuilding(data)
	default:
		return domain.Site{}, domain.ImportError{Format: string(source), Err: fmt.Errorf("unsupported source")}
	}
}
