package format

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"siteforge/pkg/domain"
)

// Legacy building-map import. The predecessor tool stored each level's
// vertices as positional tuples and each element as a
// [start_index, end_index, properties] tuple, with properties encoded as
// (value, edit_flag) pairs. Lift definitions in that format carry door
// mechanics the site model does not represent, so they are dropped; this
// source is import-only and lossy by nature.

type legacyBuilding struct {
	Name   string                 `yaml:"name"`
	Levels map[string]legacyLevel `yaml:"levels"`
}

type legacyLevel struct {
	Elevation    float32         `yaml:"elevation"`
	Vertices     []legacyVertex  `yaml:"vertices"`
	Lanes        []legacyElement `yaml:"lanes"`
	Walls        []legacyElement `yaml:"walls"`
	Measurements []legacyElement `yaml:"measurements"`
}

// legacyVertex decodes the positional [x, y, z, name?] form.
type legacyVertex struct {
	X    float32
	Y    float32
	Name string
}

func (v *legacyVertex) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) < 2 {
		return fmt.Errorf("vertex must be a [x, y, ...] sequence")
	}
	if err := node.Content[0].Decode(&v.X); err != nil {
		return fmt.Errorf("vertex x: %w", err)
	}
	if err := node.Content[1].Decode(&v.Y); err != nil {
		return fmt.Errorf("vertex y: %w", err)
	}
	if len(node.Content) >= 4 {
		if err := node.Content[3].Decode(&v.Name); err != nil {
			return fmt.Errorf("vertex name: %w", err)
		}
	}
	return nil
}

// legacyElement decodes the positional [start, end, props] form.
type legacyElement struct {
	Start int
	End   int
	Props map[string]legacyProp
}

func (e *legacyElement) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) < 2 {
		return fmt.Errorf("element must be a [start, end, props] sequence")
	}
	if err := node.Content[0].Decode(&e.Start); err != nil {
		return fmt.Errorf("element start: %w", err)
	}
	if err := node.Content[1].Decode(&e.End); err != nil {
		return fmt.Errorf("element end: %w", err)
	}
	if len(node.Content) >= 3 {
		if err := node.Content[2].Decode(&e.Props); err != nil {
			return fmt.Errorf("element props: %w", err)
		}
	}
	return nil
}

// legacyProp decodes a property that is either a bare scalar or the
// (value, edit_flag) pair form.
type legacyProp struct {
	node yaml.Node
}

func (p *legacyProp) UnmarshalYAML(node *yaml.Node) error {
	p.node = *node
	return nil
}

func (p legacyProp) float() (float32, bool) {
	target := &p.node
	if p.node.Kind == yaml.SequenceNode && len(p.node.Content) >= 1 {
		target = p.node.Content[0]
	}
	var out float32
	if err := target.Decode(&out); err != nil {
		return 0, false
	}
	return out, true
}

func (p legacyProp) integer() (int, bool) {
	target := &p.node
	if p.node.Kind == yaml.SequenceNode && len(p.node.Content) >= 1 {
		target = p.node.Content[0]
	}
	var out int
	if err := target.Decode(&out); err != nil {
		return 0, false
	}
	return out, true
}

func (p legacyProp) boolean() (bool, bool) {
	target := &p.node
	if p.node.Kind == yaml.SequenceNode && len(p.node.Content) >= 1 {
		target = p.node.Content[0]
	}
	var out bool
	if err := target.Decode(&out); err != nil {
		return false, false
	}
	return out, true
}

// ImportLegacyBuilding translates a legacy building map into a site
// aggregate. Vertex indexes out of range are rejected; no partial site is
// ever returned.
func ImportLegacyBuilding(data []byte) (domain.Site, error) {
	var building legacyBuilding
	if err := yaml.Unmarshal(data, &building); err != nil {
		return domain.Site{}, domain.ImportError{Format: string(SourceLegacyBuilding), Err: err}
	}

	site := domain.Site{
		Name:       building.Name,
		Levels:     []domain.Level{},
		Anchors:    []domain.Anchor{},
		Edges:      []domain.Edge{},
		Lifts:      []domain.Lift{},
		NextAnchor: 1,
		NextEdge:   1,
		NextLevel:  1,
		NextLift:   1,
	}

	// map iteration order is random; sort level names for stable IDs
	names := make([]string, 0, len(building.Levels))
	for name := range building.Levels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		legacy := building.Levels[name]
		level := domain.Level{ID: site.NextLevel, Name: name, Elevation: legacy.Elevation}
		site.NextLevel++
		site.Levels = append(site.Levels, level)

		vertexIDs := make([]domain.AnchorID, len(legacy.Vertices))
		for i, v := range legacy.Vertices {
			anchor := domain.Anchor{
				ID:       site.NextAnchor,
				Name:     v.Name,
				Position: domain.Vec2{X: v.X, Y: v.Y},
				Level:    level.ID,
				Role:     domain.AnchorRoleGeneral,
			}
			site.NextAnchor++
			vertexIDs[i] = anchor.ID
			site.Anchors = append(site.Anchors, anchor)
		}

		resolve := func(kind string, index int) (domain.AnchorID, error) {
			if index < 0 || index >= len(vertexIDs) {
				return 0, fmt.Errorf("level %q %s references vertex %d of %d", name, kind, index, len(vertexIDs))
			}
			return vertexIDs[index], nil
		}

		for _, lane := range legacy.Lanes {
			start, err := resolve("lane", lane.Start)
			if err != nil {
				return domain.Site{}, domain.ImportError{Format: string(SourceLegacyBuilding), Err: err}
			}
			end, err := resolve("lane", lane.End)
			if err != nil {
				return domain.Site{}, domain.ImportError{Format: string(SourceLegacyBuilding), Err: err}
			}
			props := domain.LaneProps{}
			if idx, ok := lane.Props["graph_idx"].integer(); ok {
				props.GraphIndex = idx
			}
			if bidir, ok := lane.Props["bidirectional"].boolean(); ok {
				props.Bidirectional = bidir
			}
			site.Edges = append(site.Edges, domain.Edge{
				ID:      site.NextEdge,
				Kind:    domain.EdgeLane,
				Level:   level.ID,
				Anchors: []domain.AnchorID{start, end},
				Props:   domain.EdgeProps{Lane: &props},
			})
			site.NextEdge++
		}

		for _, wall := range legacy.Walls {
			start, err := resolve("wall", wall.Start)
			if err != nil {
				return domain.Site{}, domain.ImportError{Format: string(SourceLegacyBuilding), Err: err}
			}
			end, err := resolve("wall", wall.End)
			if err != nil {
				return domain.Site{}, domain.ImportError{Format: string(SourceLegacyBuilding), Err: err}
			}
			props := domain.WallProps{Height: defaultWallHeight}
			if h, ok := wall.Props["texture_height"].float(); ok && h > 0 {
				props.Height = h
			}
			site.Edges = append(site.Edges, domain.Edge{
				ID:      site.NextEdge,
				Kind:    domain.EdgeWall,
				Level:   level.ID,
				Anchors: []domain.AnchorID{start, end},
				Props:   domain.EdgeProps{Wall: &props},
			})
			site.NextEdge++
		}

		for _, m := range legacy.Measurements {
			start, err := resolve("measurement", m.Start)
			if err != nil {
				return domain.Site{}, domain.ImportError{Format: string(SourceLegacyBuilding), Err: err}
			}
			end, err := resolve("measurement", m.End)
			if err != nil {
				return domain.Site{}, domain.ImportError{Format: string(SourceLegacyBuilding), Err: err}
			}
			props := domain.MeasurementProps{}
			if d, ok := m.Props["distance"].float(); ok {
				props.Distance = d
			}
			site.Edges = append(site.Edges, domain.Edge{
				ID:      site.NextEdge,
				Kind:    domain.EdgeMeasurement,
				Level:   level.ID,
				Anchors: []domain.AnchorID{start, end},
				Props:   domain.EdgeProps{Measurement: &props},
			})
			site.NextEdge++
		}
	}

	if err := validateSite(site); err != nil {
		return domain.Site{}, domain.ImportError{Format: string(SourceLegacyBuilding), Err: err}
	}
	return site, nil
}
