package core

import (
	"fmt"

	"siteforge/pkg/domain"
)

// Transaction stages a batch of primitive mutations against a private clone
// of the store state. Nothing is externally visible until Commit; an
// uncommitted transaction can be discarded at any time with zero effect.
// The first gate failure poisons the transaction: every later staging call
// and the final Commit return the same error, so a multi-mutation batch is
// all-or-nothing.
type Transaction struct {
	store   *SiteStore
	state   siteState
	changes []Change
	err     error
}

// Err returns the poisoning error, if any staged mutation failed.
func (tx *Transaction) Err() error { return tx.err }

// Changes returns the staged change records.
func (tx *Transaction) Changes() []Change { return tx.changes }

// View exposes the staged state read-only, for previews during a gesture.
func (tx *Transaction) View() domain.RuleView { return newStateView(&tx.state) }

func (tx *Transaction) fail(err error) error {
	if tx.err == nil {
		tx.err = err
	}
	return err
}

func (tx *Transaction) record(c Change) {
	tx.changes = append(tx.changes, c)
}

// SetSiteMeta updates the site name and coordinate reference. Metadata is
// not undoable; it rides outside the change history like in the original
// editor's file properties panel.
func (tx *Transaction) SetSiteMeta(name, coordinateRef string) {
	if tx.err != nil {
		return
	}
	tx.state.name = name
	tx.state.coordinateRef = coordinateRef
}

// CreateLevel stages a new level. Elevations must be unique across levels.
func (tx *Transaction) CreateLevel(name string, elevation float32) (Level, error) {
	if tx.err != nil {
		return Level{}, tx.err
	}
	for _, l := range tx.state.levels {
		if l.Elevation == elevation {
			return Level{}, tx.fail(domain.StructuralViolationError{
				Reason: fmt.Sprintf("level %q already occupies elevation %g", l.Name, elevation),
			})
		}
	}
	level := Level{ID: tx.state.nextLevel, Name: name, Elevation: elevation}
	tx.state.nextLevel++
	tx.state.levels[level.ID] = level
	tx.record(Change{Entity: EntityLevel, Action: ActionCreate, After: level})
	return level, nil
}

// UpdateLevel stages a mutation of an existing level. The ID is immutable;
// elevation changes are re-gated for uniqueness.
func (tx *Transaction) UpdateLevel(id LevelID, mutator func(*Level) error) (Level, error) {
	if tx.err != nil {
		return Level{}, tx.err
	}
	current, ok := tx.state.levels[id]
	if !ok {
		return Level{}, tx.fail(domain.NotFoundError{Entity: EntityLevel, ID: uint32(id)})
	}
	before := current
	if err := mutator(&current); err != nil {
		return Level{}, tx.fail(err)
	}
	current.ID = id
	for _, l := range tx.state.levels {
		if l.ID != id && l.Elevation == current.Elevation {
			return Level{}, tx.fail(domain.StructuralViolationError{
				Reason: fmt.Sprintf("level %q already occupies elevation %g", l.Name, current.Elevation),
			})
		}
	}
	tx.state.levels[id] = current
	tx.record(Change{Entity: EntityLevel, Action: ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteLevel stages removal of a level. Levels still owning anchors or
// edges, or referenced by a lift, are protected.
func (tx *Transaction) DeleteLevel(id LevelID) error {
	if tx.err != nil {
		return tx.err
	}
	current, ok := tx.state.levels[id]
	if !ok {
		return tx.fail(domain.NotFoundError{Entity: EntityLevel, ID: uint32(id)})
	}
	for _, a := range tx.state.anchors {
		if a.Level == id {
			return tx.fail(domain.InUseError{Entity: EntityLevel, ID: uint32(id), Reason: "level still owns anchors"})
		}
	}
	for _, e := range tx.state.edges {
		if e.Level == id {
			return tx.fail(domain.InUseError{Entity: EntityLevel, ID: uint32(id), Reason: "level still owns edges"})
		}
	}
	for _, l := range tx.state.lifts {
		if l.LevelA == id || l.LevelB == id {
			return tx.fail(domain.InUseError{Entity: EntityLevel, ID: uint32(id), Reason: fmt.Sprintf("lift %d connects to the level", l.ID)})
		}
	}
	delete(tx.state.levels, id)
	tx.record(Change{Entity: EntityLevel, Action: ActionDelete, Before: current})
	return nil
}

// CreateAnchor stages a new anchor owned by the given level.
func (tx *Transaction) CreateAnchor(level LevelID, name string, position Vec2, role AnchorRole) (Anchor, error) {
	if tx.err != nil {
		return Anchor{}, tx.err
	}
	if _, ok := tx.state.levels[level]; !ok {
		return Anchor{}, tx.fail(domain.InvalidReferenceError{
			Reason: fmt.Sprintf("anchor references missing level %d", level),
		})
	}
	if role == "" {
		role = domain.AnchorRoleGeneral
	}
	anchor := Anchor{ID: tx.state.nextAnchor, Name: name, Position: position, Level: level, Role: role}
	tx.state.nextAnchor++
	tx.state.anchors[anchor.ID] = anchor
	tx.record(Change{Entity: EntityAnchor, Action: ActionCreate, After: anchor})
	return anchor, nil
}

// MoveAnchor stages a horizontal move. When the anchor is paired through a
// lift, every partner anchor is moved to the same horizontal position in
// the same staged batch, so one drag gesture stays one undo step.
func (tx *Transaction) MoveAnchor(id AnchorID, position Vec2) (Anchor, error) {
	if tx.err != nil {
		return Anchor{}, tx.err
	}
	current, ok := tx.state.anchors[id]
	if !ok {
		return Anchor{}, tx.fail(domain.NotFoundError{Entity: EntityAnchor, ID: uint32(id)})
	}
	moved := tx.moveAnchorDirect(current, position)
	for liftID := range tx.state.liftsByAnchor[id] {
		lift := tx.state.lifts[liftID]
		partnerID := lift.Partner(id)
		partner, ok := tx.state.anchors[partnerID]
		if !ok {
			// dangling pair is reported by the validator, nothing to sync
			continue
		}
		if partner.Position != position {
			tx.moveAnchorDirect(partner, position)
		}
	}
	return moved, nil
}

func (tx *Transaction) moveAnchorDirect(current Anchor, position Vec2) Anchor {
	before := current
	current.Position = position
	tx.state.anchors[current.ID] = current
	tx.record(Change{Entity: EntityAnchor, Action: ActionUpdate, Before: before, After: current})
	return current
}

// RenameAnchor stages a name change.
func (tx *Transaction) RenameAnchor(id AnchorID, name string) (Anchor, error) {
	if tx.err != nil {
		return Anchor{}, tx.err
	}
	current, ok := tx.state.anchors[id]
	if !ok {
		return Anchor{}, tx.fail(domain.NotFoundError{Entity: EntityAnchor, ID: uint32(id)})
	}
	before := current
	current.Name = name
	tx.state.anchors[id] = current
	tx.record(Change{Entity: EntityAnchor, Action: ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteAnchor stages removal of an anchor. Deletion is a referential
// integrity gate, not a cascade: anchors still referenced by any edge or
// lift are protected.
func (tx *Transaction) DeleteAnchor(id AnchorID) error {
	if tx.err != nil {
		return tx.err
	}
	current, ok := tx.state.anchors[id]
	if !ok {
		return tx.fail(domain.NotFoundError{Entity: EntityAnchor, ID: uint32(id)})
	}
	if set := tx.state.edgesByAnchor[id]; len(set) > 0 {
		return tx.fail(domain.InUseError{Entity: EntityAnchor, ID: uint32(id), Reason: fmt.Sprintf("%d edge(s) reference it", len(set))})
	}
	if set := tx.state.liftsByAnchor[id]; len(set) > 0 {
		return tx.fail(domain.InUseError{Entity: EntityAnchor, ID: uint32(id), Reason: fmt.Sprintf("%d lift(s) reference it", len(set))})
	}
	delete(tx.state.anchors, id)
	tx.record(Change{Entity: EntityAnchor, Action: ActionDelete, Before: current})
	return nil
}

// CreateEdge stages a new topology element. Every referenced anchor must
// exist, live on the edge's level, and for lanes and walls must not be a
// fiducial marker.
func (tx *Transaction) CreateEdge(kind EdgeKind, level LevelID, anchors []AnchorID, props EdgeProps) (Edge, error) {
	if tx.err != nil {
		return Edge{}, tx.err
	}
	if !kind.Valid() {
		return Edge{}, tx.fail(domain.StructuralViolationError{Reason: fmt.Sprintf("unknown edge kind %q", kind)})
	}
	min, max := kind.AnchorBounds()
	if len(anchors) < min || (max > 0 && len(anchors) > max) {
		return Edge{}, tx.fail(domain.StructuralViolationError{
			Reason: fmt.Sprintf("%s edge requires between %d and %d anchors, got %d", kind, min, max, len(anchors)),
		})
	}
	if _, ok := tx.state.levels[level]; !ok {
		return Edge{}, tx.fail(domain.InvalidReferenceError{Reason: fmt.Sprintf("edge references missing level %d", level)})
	}
	for _, id := range anchors {
		a, ok := tx.state.anchors[id]
		if !ok {
			return Edge{}, tx.fail(domain.InvalidReferenceError{Reason: fmt.Sprintf("edge references missing anchor %d", id)})
		}
		if a.Level != level {
			return Edge{}, tx.fail(domain.InvalidReferenceError{
				Reason: fmt.Sprintf("anchor %d belongs to level %d, not %d", id, a.Level, level),
			})
		}
		if a.Role == domain.AnchorRoleFiducial && (kind == EdgeLane || kind == EdgeWall) {
			return Edge{}, tx.fail(domain.InvalidReferenceError{
				Reason: fmt.Sprintf("fiducial anchor %d cannot carry a %s", id, kind),
			})
		}
	}
	edge := Edge{
		ID:      tx.state.nextEdge,
		Kind:    kind,
		Level:   level,
		Anchors: append([]AnchorID(nil), anchors...),
		Props:   props,
	}
	tx.state.nextEdge++
	tx.state.edges[edge.ID] = domain.CloneEdge(edge)
	for _, a := range edge.Anchors {
		tx.state.indexEdge(a, edge.ID)
	}
	tx.record(Change{Entity: EntityEdge, Action: ActionCreate, After: domain.CloneEdge(edge)})
	return edge, nil
}

// UpdateEdgeProps stages a change of an edge's kind-specific attributes.
// The kind, level, and anchor list are immutable; reshaping an edge is a
// delete plus create within the same transaction.
func (tx *Transaction) UpdateEdgeProps(id EdgeID, mutator func(*EdgeProps) error) (Edge, error) {
	if tx.err != nil {
		return Edge{}, tx.err
	}
	current, ok := tx.state.edges[id]
	if !ok {
		return Edge{}, tx.fail(domain.NotFoundError{Entity: EntityEdge, ID: uint32(id)})
	}
	before := domain.CloneEdge(current)
	updated := domain.CloneEdge(current)
	if err := mutator(&updated.Props); err != nil {
		return Edge{}, tx.fail(err)
	}
	tx.state.edges[id] = domain.CloneEdge(updated)
	tx.record(Change{Entity: EntityEdge, Action: ActionUpdate, Before: before, After: domain.CloneEdge(updated)})
	return updated, nil
}

// DeleteEdge stages removal of a topology element.
func (tx *Transaction) DeleteEdge(id EdgeID) error {
	if tx.err != nil {
		return tx.err
	}
	current, ok := tx.state.edges[id]
	if !ok {
		return tx.fail(domain.NotFoundError{Entity: EntityEdge, ID: uint32(id)})
	}
	delete(tx.state.edges, id)
	for _, a := range current.Anchors {
		tx.state.unindexEdge(a, id)
	}
	tx.record(Change{Entity: EntityEdge, Action: ActionDelete, Before: domain.CloneEdge(current)})
	return nil
}

// CreateLift stages a new lift pairing one anchor per connected level. The
// second anchor is snapped to the first one's horizontal position so the
// pair starts out coincident.
func (tx *Transaction) CreateLift(name string, levelA LevelID, anchorA AnchorID, levelB LevelID, anchorB AnchorID, cabin CabinShape) (Lift, error) {
	if tx.err != nil {
		return Lift{}, tx.err
	}
	if levelA == levelB {
		return Lift{}, tx.fail(domain.InvalidReferenceError{
			Reason: fmt.Sprintf("lift must connect two distinct levels, got level %d twice", levelA),
		})
	}
	if anchorA == anchorB {
		return Lift{}, tx.fail(domain.InvalidReferenceError{
			Reason: fmt.Sprintf("lift must pair two distinct anchors, got anchor %d twice", anchorA),
		})
	}
	for _, ref := range []struct {
		level  LevelID
		anchor AnchorID
	}{{levelA, anchorA}, {levelB, anchorB}} {
		if _, ok := tx.state.levels[ref.level]; !ok {
			return Lift{}, tx.fail(domain.InvalidReferenceError{Reason: fmt.Sprintf("lift references missing level %d", ref.level)})
		}
		a, ok := tx.state.anchors[ref.anchor]
		if !ok {
			return Lift{}, tx.fail(domain.InvalidReferenceError{Reason: fmt.Sprintf("lift references missing anchor %d", ref.anchor)})
		}
		if a.Level != ref.level {
			return Lift{}, tx.fail(domain.InvalidReferenceError{
				Reason: fmt.Sprintf("anchor %d belongs to level %d, not %d", ref.anchor, a.Level, ref.level),
			})
		}
		if len(tx.state.liftsByAnchor[ref.anchor]) > 0 {
			return Lift{}, tx.fail(domain.InvalidReferenceError{
				Reason: fmt.Sprintf("anchor %d is already paired through another lift", ref.anchor),
			})
		}
	}
	lift := Lift{
		ID:      tx.state.nextLift,
		Name:    name,
		LevelA:  levelA,
		AnchorA: anchorA,
		LevelB:  levelB,
		AnchorB: anchorB,
		Cabin:   cabin,
	}
	tx.state.nextLift++
	tx.state.lifts[lift.ID] = lift
	tx.state.indexLift(anchorA, lift.ID)
	tx.state.indexLift(anchorB, lift.ID)
	tx.record(Change{Entity: EntityLift, Action: ActionCreate, After: lift})
	if a, b := tx.state.anchors[anchorA], tx.state.anchors[anchorB]; b.Position != a.Position {
		tx.moveAnchorDirect(b, a.Position)
	}
	return lift, nil
}

// MoveLiftAnchor stages a horizontal move of both paired anchors at once,
// preserving each level's independent elevation.
func (tx *Transaction) MoveLiftAnchor(id LiftID, position Vec2) (Lift, error) {
	if tx.err != nil {
		return Lift{}, tx.err
	}
	lift, ok := tx.state.lifts[id]
	if !ok {
		return Lift{}, tx.fail(domain.NotFoundError{Entity: EntityLift, ID: uint32(id)})
	}
	if _, err := tx.MoveAnchor(lift.AnchorA, position); err != nil {
		return Lift{}, err
	}
	return lift, nil
}

// DeleteLift stages removal of a lift. The paired anchors survive and
// become independently movable again.
func (tx *Transaction) DeleteLift(id LiftID) error {
	if tx.err != nil {
		return tx.err
	}
	current, ok := tx.state.lifts[id]
	if !ok {
		return tx.fail(domain.NotFoundError{Entity: EntityLift, ID: uint32(id)})
	}
	delete(tx.state.lifts, id)
	tx.state.unindexLift(current.AnchorA, id)
	tx.state.unindexLift(current.AnchorB, id)
	tx.record(Change{Entity: EntityLift, Action: ActionDelete, Before: current})
	return nil
}
