package format

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"siteforge/pkg/domain"
)

// Robot-description export: a hierarchical frame/link tree. One root link
// per site, one link per level jointed at its elevation, one frame link
// per anchor jointed at its horizontal offset. Editor-only metadata such
// as ID counters and diagnostics is deliberately dropped.

type urdfRobot struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []urdfLink  `xml:"link"`
	Joints  []urdfJoint `xml:"joint"`
}

type urdfLink struct {
	Name string `xml:"name,attr"`
}

type urdfJoint struct {
	Name   string     `xml:"name,attr"`
	Type   string     `xml:"type,attr"`
	Parent urdfRef    `xml:"parent"`
	Child  urdfRef    `xml:"child"`
	Origin urdfOrigin `xml:"origin"`
}

type urdfRef struct {
	Link string `xml:"link,attr"`
}

type urdfOrigin struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr,omitempty"`
}

// ExportRobot serializes the lossy robot-description projection.
func ExportRobot(site domain.Site) ([]byte, error) {
	levels := make(map[domain.LevelID]domain.Level, len(site.Levels))
	for _, l := range site.Levels {
		levels[l.ID] = l
	}

	rootName := frameName(site.Name, "site")
	robot := urdfRobot{
		Name:  rootName,
		Links: []urdfLink{{Name: rootName}},
	}

	levelLinks := make(map[domain.LevelID]string, len(site.Levels))
	for _, l := range site.SortedLevels() {
		link := fmt.Sprintf("%s_%d", frameName(l.Name, "level"), l.ID)
		levelLinks[l.ID] = link
		robot.Links = append(robot.Links, urdfLink{Name: link})
		robot.Joints = append(robot.Joints, urdfJoint{
			Name:   link + "_joint",
			Type:   "fixed",
			Parent: urdfRef{Link: rootName},
			Child:  urdfRef{Link: link},
			Origin: urdfOrigin{XYZ: fmt.Sprintf("0 0 %g", l.Elevation)},
		})
	}

	for _, a := range site.Anchors {
		parent, ok := levelLinks[a.Level]
		if !ok {
			return nil, domain.ExportError{
				Format: string(TargetRobot),
				Err:    fmt.Errorf("anchor %d references undefined level %d", a.ID, a.Level),
			}
		}
		link := fmt.Sprintf("%s_%d", frameName(a.Name, "anchor"), a.ID)
		robot.Links = append(robot.Links, urdfLink{Name: link})
		robot.Joints = append(robot.Joints, urdfJoint{
			Name:   link + "_joint",
			Type:   "fixed",
			Parent: urdfRef{Link: parent},
			Child:  urdfRef{Link: link},
			Origin: urdfOrigin{XYZ: fmt.Sprintf("%g %g 0", a.Position.X, a.Position.Y)},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(robot); err != nil {
		return nil, domain.ExportError{Format: string(TargetRobot), Err: err}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// frameName derives a joint-safe frame name, falling back when the entity
// is unnamed.
func frameName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return name
}
