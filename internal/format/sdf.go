package format

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"siteforge/pkg/domain"
)

// Simulation-description export: a world with one static model per level
// carrying wall boxes and floor slabs. Wall geometry is derived from the
// two endpoint anchors: box length is the anchor distance, the yaw is the
// segment heading, the center is the midpoint.

const (
	defaultWallHeight    float32 = 2.5
	wallThickness        float32 = 0.1
	floorSlabThickness   float32 = 0.05
	simulationSDFVersion         = "1.8"
)

type sdfRoot struct {
	XMLName xml.Name `xml:"sdf"`
	Version string   `xml:"version,attr"`
	World   sdfWorld `xml:"world"`
}

type sdfWorld struct {
	Name   string     `xml:"name,attr"`
	Models []sdfModel `xml:"model"`
}

type sdfModel struct {
	Name   string  `xml:"name,attr"`
	Static bool    `xml:"static"`
	Pose   string  `xml:"pose"`
	Link   sdfLink `xml:"link"`
}

type sdfLink struct {
	Name       string         `xml:"name,attr"`
	Collisions []sdfGeomEntry `xml:"collision"`
	Visuals    []sdfGeomEntry `xml:"visual"`
}

type sdfGeomEntry struct {
	Name     string      `xml:"name,attr"`
	Pose     string      `xml:"pose"`
	Geometry sdfGeometry `xml:"geometry"`
}

type sdfGeometry struct {
	Box sdfBox `xml:"box"`
}

type sdfBox struct {
	Size string `xml:"size"`
}

// ExportSimulation serializes the lossy simulation-description projection.
func ExportSimulation(site domain.Site) ([]byte, error) {
	anchors := make(map[domain.AnchorID]domain.Anchor, len(site.Anchors))
	for _, a := range site.Anchors {
		anchors[a.ID] = a
	}
	edgesByLevel := make(map[domain.LevelID][]domain.Edge)
	for _, e := range site.Edges {
		edgesByLevel[e.Level] = append(edgesByLevel[e.Level], e)
	}

	world := sdfWorld{Name: frameName(site.Name, "site")}
	for _, level := range site.SortedLevels() {
		model := sdfModel{
			Name:   fmt.Sprintf("%s_%d", frameName(level.Name, "level"), level.ID),
			Static: true,
			Pose:   fmt.Sprintf("0 0 %g 0 0 0", level.Elevation),
			Link:   sdfLink{Name: "structure"},
		}
		for _, edge := range edgesByLevel[level.ID] {
			switch edge.Kind {
			case domain.EdgeWall:
				entry, err := wallEntry(edge, anchors)
				if err != nil {
					return nil, domain.ExportError{Format: string(TargetSimulation), Err: err}
				}
				model.Link.Collisions = append(model.Link.Collisions, entry)
				model.Link.Visuals = append(model.Link.Visuals, entry)
			case domain.EdgeFloor:
				entry, err := floorEntry(edge, anchors)
				if err != nil {
					return nil, domain.ExportError{Format: string(TargetSimulation), Err: err}
				}
				model.Link.Collisions = append(model.Link.Collisions, entry)
				model.Link.Visuals = append(model.Link.Visuals, entry)
			}
		}
		world.Models = append(world.Models, model)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(sdfRoot{Version: simulationSDFVersion, World: world}); err != nil {
		return nil, domain.ExportError{Format: string(TargetSimulation), Err: err}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func wallEntry(edge domain.Edge, anchors map[domain.AnchorID]domain.Anchor) (sdfGeomEntry, error) {
	a, okA := anchors[edge.Anchors[0]]
	b, okB := anchors[edge.Anchors[1]]
	if !okA || !okB {
		return sdfGeomEntry{}, fmt.Errorf("wall %d references an undefined anchor", edge.ID)
	}
	height := defaultWallHeight
	if edge.Props.Wall != nil && edge.Props.Wall.Height > 0 {
		height = edge.Props.Wall.Height
	}
	length := a.Position.Distance(b.Position)
	mid := a.Position.Mid(b.Position)
	yaw := a.Position.Yaw(b.Position)
	return sdfGeomEntry{
		Name: fmt.Sprintf("wall_%d", edge.ID),
		Pose: fmt.Sprintf("%g %g %g 0 0 %g", mid.X, mid.Y, height/2, yaw),
		Geometry: sdfGeometry{Box: sdfBox{
			Size: fmt.Sprintf("%g %g %g", length, wallThickness, height),
		}},
	}, nil
}

// floorEntry projects a floor polygon onto its axis-aligned bounding box.
// A proper polygon mesh is out of scope for the box-based description.
func floorEntry(edge domain.Edge, anchors map[domain.AnchorID]domain.Anchor) (sdfGeomEntry, error) {
	var minX, minY, maxX, maxY float32
	for i, id := range edge.Anchors {
		a, ok := anchors[id]
		if !ok {
			return sdfGeomEntry{}, fmt.Errorf("floor %d references an undefined anchor", edge.ID)
		}
		p := a.Position
		if i == 0 {
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
			continue
		}
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return sdfGeomEntry{
		Name: fmt.Sprintf("floor_%d", edge.ID),
		Pose: fmt.Sprintf("%g %g %g 0 0 0", (minX+maxX)/2, (minY+maxY)/2, -floorSlabThickness/2),
		Geometry: sdfGeometry{Box: sdfBox{
			Size: fmt.Sprintf("%g %g %g", maxX-minX, maxY-minY, floorSlabThickness),
		}},
	}, nil
}
