package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"siteforge/pkg/domain"
)

// siteDocumentVersion is bumped on incompatible document layout changes.
const siteDocumentVersion = 1

type siteDocument struct {
	Version int         `json:"version"`
	Site    domain.Site `json:"site"`
}

// ExportSite serializes the full-fidelity persisted document.
func ExportSite(site domain.Site) ([]byte, error) {
	doc := siteDocument{Version: siteDocumentVersion, Site: site}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, domain.ExportError{Format: string(TargetSite), Err: err}
	}
	return buf.Bytes(), nil
}

// ImportSite parses and validates a persisted document. Files referencing
// undefined anchor IDs, carrying duplicate IDs, or encoding a non-monotonic
// ID sequence are rejected outright; no partial site is ever returned.
func ImportSite(data []byte) (domain.Site, error) {
	var doc siteDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return domain.Site{}, domain.ImportError{Format: string(SourceSite), Err: err}
	}
	if doc.Version != siteDocumentVersion {
		return domain.Site{}, domain.ImportError{
			Format: string(SourceSite),
			Err:    fmt.Errorf("unsupported document version %d", doc.Version),
		}
	}
	if err := validateSite(doc.Site); err != nil {
		return domain.Site{}, domain.ImportError{Format: string(SourceSite), Err: err}
	}
	return doc.Site, nil
}

// validateSite checks the structural invariants a persisted document must
// satisfy before it may back an editing session.
func validateSite(site domain.Site) error {
	levels := make(map[domain.LevelID]domain.Level, len(site.Levels))
	elevations := make(map[float32]domain.LevelID, len(site.Levels))
	for _, l := range site.Levels {
		if l.ID == 0 || l.ID >= site.NextLevel {
			return fmt.Errorf("level %q has ID %d outside the monotonic sequence (next %d)", l.Name, l.ID, site.NextLevel)
		}
		if _, dup := levels[l.ID]; dup {
			return fmt.Errorf("duplicate level ID %d", l.ID)
		}
		if other, dup := elevations[l.Elevation]; dup {
			return fmt.Errorf("levels %d and %d share elevation %g", other, l.ID, l.Elevation)
		}
		levels[l.ID] = l
		elevations[l.Elevation] = l.ID
	}

	anchors := make(map[domain.AnchorID]domain.Anchor, len(site.Anchors))
	for _, a := range site.Anchors {
		if a.ID == 0 || a.ID >= site.NextAnchor {
			return fmt.Errorf("anchor %d outside the monotonic sequence (next %d)", a.ID, site.NextAnchor)
		}
		if _, dup := anchors[a.ID]; dup {
			return fmt.Errorf("duplicate anchor ID %d", a.ID)
		}
		if _, ok := levels[a.Level]; !ok {
			return fmt.Errorf("anchor %d references undefined level %d", a.ID, a.Level)
		}
		anchors[a.ID] = a
	}

	edgeIDs := make(map[domain.EdgeID]struct{}, len(site.Edges))
	for _, e := range site.Edges {
		if e.ID == 0 || e.ID >= site.NextEdge {
			return fmt.Errorf("edge %d outside the monotonic sequence (next %d)", e.ID, site.NextEdge)
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return fmt.Errorf("duplicate edge ID %d", e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
		if !e.Kind.Valid() {
			return fmt.Errorf("edge %d has unknown kind %q", e.ID, e.Kind)
		}
		min, max := e.Kind.AnchorBounds()
		if len(e.Anchors) < min || (max > 0 && len(e.Anchors) > max) {
			return fmt.Errorf("%s edge %d references %d anchors", e.Kind, e.ID, len(e.Anchors))
		}
		if _, ok := levels[e.Level]; !ok {
			return fmt.Errorf("edge %d references undefined level %d", e.ID, e.Level)
		}
		for _, id := range e.Anchors {
			a, ok := anchors[id]
			if !ok {
				return fmt.Errorf("edge %d references undefined anchor %d", e.ID, id)
			}
			if a.Level != e.Level {
				return fmt.Errorf("edge %d on level %d references anchor %d owned by level %d", e.ID, e.Level, id, a.Level)
			}
		}
	}

	liftIDs := make(map[domain.LiftID]struct{}, len(site.Lifts))
	for _, l := range site.Lifts {
		if l.ID == 0 || l.ID >= site.NextLift {
			return fmt.Errorf("lift %d outside the monotonic sequence (next %d)", l.ID, site.NextLift)
		}
		if _, dup := liftIDs[l.ID]; dup {
			return fmt.Errorf("duplicate lift ID %d", l.ID)
		}
		liftIDs[l.ID] = struct{}{}
		if l.LevelA == l.LevelB {
			return fmt.Errorf("lift %d connects level %d to itself", l.ID, l.LevelA)
		}
		for _, ref := range []struct {
			level  domain.LevelID
			anchor domain.AnchorID
		}{{l.LevelA, l.AnchorA}, {l.LevelB, l.AnchorB}} {
			if _, ok := levels[ref.level]; !ok {
				return fmt.Errorf("lift %d references undefined level %d", l.ID, ref.level)
			}
			a, ok := anchors[ref.anchor]
			if !ok {
				return fmt.Errorf("lift %d references undefined anchor %d", l.ID, ref.anchor)
			}
			if a.Level != ref.level {
				return fmt.Errorf("lift %d pairs anchor %d with level %d, but it is owned by level %d", l.ID, ref.anchor, ref.level, a.Level)
			}
		}
	}
	return nil
}
