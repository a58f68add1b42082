package core

import (
	"fmt"
	"sort"

	"siteforge/pkg/domain"
)

// siteState is the arena holding every entity keyed by its opaque ID,
// together with the reverse-index tables used by deletion guards and
// drag-edit propagation. Counters are part of the state so that ID
// allocation stays monotonic across undo and redo.
type siteState struct {
	name          string
	guid          string
	coordinateRef string

	levels  map[LevelID]Level
	anchors map[AnchorID]Anchor
	edges   map[EdgeID]Edge
	lifts   map[LiftID]Lift

	// reverse indexes, rebuilt after every history replay
	edgesByAnchor map[AnchorID]map[EdgeID]struct{}
	liftsByAnchor map[AnchorID]map[LiftID]struct{}

	nextAnchor AnchorID
	nextEdge   EdgeID
	nextLevel  LevelID
	nextLift   LiftID
}

func newSiteState() siteState {
	return siteState{
		levels:        make(map[LevelID]Level),
		anchors:       make(map[AnchorID]Anchor),
		edges:         make(map[EdgeID]Edge),
		lifts:         make(map[LiftID]Lift),
		edgesByAnchor: make(map[AnchorID]map[EdgeID]struct{}),
		liftsByAnchor: make(map[AnchorID]map[LiftID]struct{}),
		nextAnchor:    1,
		nextEdge:      1,
		nextLevel:     1,
		nextLift:      1,
	}
}

func (s siteState) clone() siteState {
	cloned := newSiteState()
	cloned.name = s.name
	cloned.guid = s.guid
	cloned.coordinateRef = s.coordinateRef
	cloned.nextAnchor = s.nextAnchor
	cloned.nextEdge = s.nextEdge
	cloned.nextLevel = s.nextLevel
	cloned.nextLift = s.nextLift
	for k, v := range s.levels {
		cloned.levels[k] = v
	}
	for k, v := range s.anchors {
		cloned.anchors[k] = v
	}
	for k, v := range s.edges {
		cloned.edges[k] = domain.CloneEdge(v)
	}
	for k, v := range s.lifts {
		cloned.lifts[k] = v
	}
	cloned.rebuildIndexes()
	return cloned
}

func (s *siteState) rebuildIndexes() {
	s.edgesByAnchor = make(map[AnchorID]map[EdgeID]struct{})
	s.liftsByAnchor = make(map[AnchorID]map[LiftID]struct{})
	for id, e := range s.edges {
		for _, a := range e.Anchors {
			s.indexEdge(a, id)
		}
	}
	for id, l := range s.lifts {
		s.indexLift(l.AnchorA, id)
		s.indexLift(l.AnchorB, id)
	}
}

func (s *siteState) indexEdge(a AnchorID, e EdgeID) {
	set, ok := s.edgesByAnchor[a]
	if !ok {
		set = make(map[EdgeID]struct{})
		s.edgesByAnchor[a] = set
	}
	set[e] = struct{}{}
}

func (s *siteState) unindexEdge(a AnchorID, e EdgeID) {
	if set, ok := s.edgesByAnchor[a]; ok {
		delete(set, e)
		if len(set) == 0 {
			delete(s.edgesByAnchor, a)
		}
	}
}

func (s *siteState) indexLift(a AnchorID, l LiftID) {
	set, ok := s.liftsByAnchor[a]
	if !ok {
		set = make(map[LiftID]struct{})
		s.liftsByAnchor[a] = set
	}
	set[l] = struct{}{}
}

func (s *siteState) unindexLift(a AnchorID, l LiftID) {
	if set, ok := s.liftsByAnchor[a]; ok {
		delete(set, l)
		if len(set) == 0 {
			delete(s.liftsByAnchor, a)
		}
	}
}

// apply replays one change against the state. It is used by undo and redo;
// the transactional staging path mutates state directly through the typed
// operations instead. Indexes must be rebuilt by the caller afterwards.
func (s *siteState) apply(c Change) error {
	switch c.Entity {
	case EntityAnchor:
		return applyTyped(s.anchors, c, func(a Anchor) AnchorID { return a.ID })
	case EntityEdge:
		return applyTyped(s.edges, c, func(e Edge) EdgeID { return e.ID })
	case EntityLevel:
		return applyTyped(s.levels, c, func(l Level) LevelID { return l.ID })
	case EntityLift:
		return applyTyped(s.lifts, c, func(l Lift) LiftID { return l.ID })
	default:
		return fmt.Errorf("unknown entity type %q in change record", c.Entity)
	}
}

func applyTyped[T any, K comparable](m map[K]T, c Change, key func(T) K) error {
	switch c.Action {
	case ActionCreate, ActionUpdate:
		v, ok := c.After.(T)
		if !ok {
			return fmt.Errorf("change record for %s carries %T payload", c.Entity, c.After)
		}
		m[key(v)] = v
	case ActionDelete:
		v, ok := c.Before.(T)
		if !ok {
			return fmt.Errorf("change record for %s carries %T payload", c.Entity, c.Before)
		}
		delete(m, key(v))
	default:
		return fmt.Errorf("unknown action %q in change record", c.Action)
	}
	return nil
}

// snapshot renders the state as the serializable Site aggregate, with
// entity slices ordered by ID.
func (s siteState) snapshot() Site {
	site := Site{
		Name:          s.name,
		GUID:          s.guid,
		CoordinateRef: s.coordinateRef,
		Levels:        make([]Level, 0, len(s.levels)),
		Anchors:       make([]Anchor, 0, len(s.anchors)),
		Edges:         make([]Edge, 0, len(s.edges)),
		Lifts:         make([]Lift, 0, len(s.lifts)),
		NextAnchor:    s.nextAnchor,
		NextEdge:      s.nextEdge,
		NextLevel:     s.nextLevel,
		NextLift:      s.nextLift,
	}
	for _, v := range s.levels {
		site.Levels = append(site.Levels, v)
	}
	for _, v := range s.anchors {
		site.Anchors = append(site.Anchors, v)
	}
	for _, v := range s.edges {
		site.Edges = append(site.Edges, domain.CloneEdge(v))
	}
	for _, v := range s.lifts {
		site.Lifts = append(site.Lifts, v)
	}
	sort.Slice(site.Levels, func(i, j int) bool { return site.Levels[i].ID < site.Levels[j].ID })
	sort.Slice(site.Anchors, func(i, j int) bool { return site.Anchors[i].ID < site.Anchors[j].ID })
	sort.Slice(site.Edges, func(i, j int) bool { return site.Edges[i].ID < site.Edges[j].ID })
	sort.Slice(site.Lifts, func(i, j int) bool { return site.Lifts[i].ID < site.Lifts[j].ID })
	return site
}

// stateFromSite rebuilds the arena from a serialized aggregate. Counters
// below the highest live ID are lifted so allocation stays monotonic.
func stateFromSite(site Site) siteState {
	st := newSiteState()
	st.name = site.Name
	st.guid = site.GUID
	st.coordinateRef = site.CoordinateRef
	st.nextAnchor = site.NextAnchor
	st.nextEdge = site.NextEdge
	st.nextLevel = site.NextLevel
	st.nextLift = site.NextLift
	for _, l := range site.Levels {
		st.levels[l.ID] = l
		if l.ID >= st.nextLevel {
			st.nextLevel = l.ID + 1
		}
	}
	for _, a := range site.Anchors {
		st.anchors[a.ID] = a
		if a.ID >= st.nextAnchor {
			st.nextAnchor = a.ID + 1
		}
	}
	for _, e := range site.Edges {
		st.edges[e.ID] = domain.CloneEdge(e)
		if e.ID >= st.nextEdge {
			st.nextEdge = e.ID + 1
		}
	}
	for _, l := range site.Lifts {
		st.lifts[l.ID] = l
		if l.ID >= st.nextLift {
			st.nextLift = l.ID + 1
		}
	}
	if st.nextAnchor == 0 {
		st.nextAnchor = 1
	}
	if st.nextEdge == 0 {
		st.nextEdge = 1
	}
	if st.nextLevel == 0 {
		st.nextLevel = 1
	}
	if st.nextLift == 0 {
		st.nextLift = 1
	}
	st.rebuildIndexes()
	return st
}

// stateView adapts siteState to the domain.RuleView contract.
type stateView struct {
	state *siteState
}

func newStateView(state *siteState) stateView { return stateView{state: state} }

// ListAnchors returns all anchors ordered by ID.
func (v stateView) ListAnchors() []Anchor {
	out := make([]Anchor, 0, len(v.state.anchors))
	for _, a := range v.state.anchors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListEdges returns all edges ordered by ID.
func (v stateView) ListEdges() []Edge {
	out := make([]Edge, 0, len(v.state.edges))
	for _, e := range v.state.edges {
		out = append(out, domain.CloneEdge(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListLevels returns all levels ordered by ID.
func (v stateView) ListLevels() []Level {
	out := make([]Level, 0, len(v.state.levels))
	for _, l := range v.state.levels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListLifts returns all lifts ordered by ID.
func (v stateView) ListLifts() []Lift {
	out := make([]Lift, 0, len(v.state.lifts))
	for _, l := range v.state.lifts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindAnchor retrieves an anchor by ID.
func (v stateView) FindAnchor(id AnchorID) (Anchor, bool) {
	a, ok := v.state.anchors[id]
	return a, ok
}

// FindEdge retrieves an edge by ID.
func (v stateView) FindEdge(id EdgeID) (Edge, bool) {
	e, ok := v.state.edges[id]
	if !ok {
		return Edge{}, false
	}
	return domain.CloneEdge(e), true
}

// FindLevel retrieves a level by ID.
func (v stateView) FindLevel(id LevelID) (Level, bool) {
	l, ok := v.state.levels[id]
	return l, ok
}

// FindLift retrieves a lift by ID.
func (v stateView) FindLift(id LiftID) (Lift, bool) {
	l, ok := v.state.lifts[id]
	return l, ok
}

// EdgesTouching returns the IDs of every edge referencing the anchor,
// ordered for determinism.
func (v stateView) EdgesTouching(id AnchorID) []EdgeID {
	set := v.state.edgesByAnchor[id]
	out := make([]EdgeID, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
