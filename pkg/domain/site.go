package domain

import "sort"

// Site is the root aggregate: the full authored state of one building in a
// form suitable for serialization and for read-only consumers such as the
// rendering layer. Entity slices are ordered by ID; levels additionally
// expose an elevation ordering via SortedLevels. The Next* counters record
// the monotonic ID allocation watermark so that imported sites keep
// allocating fresh IDs and historical records stay valid.
type Site struct {
	Name          string   `json:"name"`
	GUID          string   `json:"guid,omitempty"`
	CoordinateRef string   `json:"coordinate_ref,omitempty"`
	Levels        []Level  `json:"levels"`
	Anchors       []Anchor `json:"anchors"`
	Edges         []Edge   `json:"edges"`
	Lifts         []Lift   `json:"lifts"`
	NextAnchor    AnchorID `json:"next_anchor"`
	NextEdge      EdgeID   `json:"next_edge"`
	NextLevel     LevelID  `json:"next_level"`
	NextLift      LiftID   `json:"next_lift"`
}

// Clone returns a deep copy of the site.
func (s Site) Clone() Site {
	cp := s
	cp.Levels = append([]Level(nil), s.Levels...)
	cp.Anchors = append([]Anchor(nil), s.Anchors...)
	cp.Lifts = append([]Lift(nil), s.Lifts...)
	cp.Edges = make([]Edge, len(s.Edges))
	for i, e := range s.Edges {
		cp.Edges[i] = CloneEdge(e)
	}
	return cp
}

// SortedLevels returns the levels ordered by ascending elevation. This is
// the "current floor" navigation order and the lift cabin stop sequence.
func (s Site) SortedLevels() []Level {
	out := append([]Level(nil), s.Levels...)
	sort.Slice(out, func(i, j int) bool { return out[i].Elevation < out[j].Elevation })
	return out
}

// CloneEdge returns a deep copy of an edge, including its anchor list and
// kind-specific props.
func CloneEdge(e Edge) Edge {
	cp := e
	cp.Anchors = append([]AnchorID(nil), e.Anchors...)
	if e.Props.Lane != nil {
		lane := *e.Props.Lane
		cp.Props.Lane = &lane
	}
	if e.Props.Wall != nil {
		wall := *e.Props.Wall
		cp.Props.Wall = &wall
	}
	if e.Props.Measurement != nil {
		m := *e.Props.Measurement
		cp.Props.Measurement = &m
	}
	return cp
}
