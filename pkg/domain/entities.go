// Package domain defines the core site entities, change records, and
// rule evaluation primitives used by siteforge.
package domain

// AnchorID identifies a shared point entity. IDs are allocated
// monotonically per site and never reused after deletion.
type AnchorID uint32

// EdgeID identifies a topology element referencing anchors.
type EdgeID uint32

// LevelID identifies a floor within a site.
type LevelID uint32

// LiftID identifies a vertical connector pairing anchors across two levels.
type LiftID uint32

// EntityType identifies the type of record touched by a Change.
type EntityType string

// Supported entity type identifiers used in Change records and serialization buckets.
const (
	// EntityAnchor identifies a shared point record.
	EntityAnchor EntityType = "anchor"
	// EntityEdge identifies a topology element record.
	EntityEdge EntityType = "edge"
	// EntityLevel identifies a level record.
	EntityLevel EntityType = "level"
	// EntityLift identifies a lift record.
	EntityLift EntityType = "lift"
)

// AnchorRole distinguishes topology-bearing anchors from calibration markers.
type AnchorRole string

// Anchor roles. Fiducial anchors are carried through serialization and the
// simulation export but may not participate in lanes or walls.
const (
	AnchorRoleGeneral  AnchorRole = "general"
	AnchorRoleFiducial AnchorRole = "fiducial"
)

// Anchor is a named horizontal-plane point owned by exactly one level.
// Anchors paired through a lift stay owned by their respective levels but
// have their horizontal coordinates kept synchronized by the edit engine.
type Anchor struct {
	ID       AnchorID   `json:"id"`
	Name     string     `json:"name,omitempty"`
	Position Vec2       `json:"position"`
	Level    LevelID    `json:"level"`
	Role     AnchorRole `json:"role,omitempty"`
}

// EdgeKind enumerates the closed set of topology element kinds.
type EdgeKind string

// Topology element kinds. Each kind constrains the anchor count, see AnchorBounds.
const (
	// EdgeLane is a traversable robot lane between two anchors.
	EdgeLane EdgeKind = "lane"
	// EdgeWall is a vertical wall segment between two anchors.
	EdgeWall EdgeKind = "wall"
	// EdgeFloor is a closed floor-boundary polygon over three or more anchors.
	EdgeFloor EdgeKind = "floor"
	// EdgeMeasurement is an annotated distance between two anchors.
	EdgeMeasurement EdgeKind = "measurement"
)

// AnchorBounds returns the minimum and maximum number of anchors an edge of
// this kind may reference. A max of 0 means unbounded.
func (k EdgeKind) AnchorBounds() (min, max int) {
	switch k {
	case EdgeFloor:
		return 3, 0
	case EdgeLane, EdgeWall, EdgeMeasurement:
		return 2, 2
	default:
		return 2, 2
	}
}

// Valid reports whether k is a member of the closed kind set.
func (k EdgeKind) Valid() bool {
	switch k {
	case EdgeLane, EdgeWall, EdgeFloor, EdgeMeasurement:
		return true
	}
	return false
}

// LaneProps carries lane-specific attributes from the navigation graph.
type LaneProps struct {
	Bidirectional bool    `json:"bidirectional"`
	GraphIndex    int     `json:"graph_index"`
	SpeedLimit    float32 `json:"speed_limit,omitempty"`
}

// WallProps carries wall-specific attributes.
type WallProps struct {
	Height  float32 `json:"height"`
	Texture string  `json:"texture,omitempty"`
}

// MeasurementProps carries the surveyed distance annotation.
type MeasurementProps struct {
	Distance float32 `json:"distance"`
}

// EdgeProps holds the kind-specific attributes of an edge. At most the
// field matching the edge kind is set.
type EdgeProps struct {
	Lane        *LaneProps        `json:"lane,omitempty"`
	Wall        *WallProps        `json:"wall,omitempty"`
	Measurement *MeasurementProps `json:"measurement,omitempty"`
}

// Edge is a topology element referencing anchors by identity. It never
// stores raw coordinates; geometry is always derived from the anchor store.
type Edge struct {
	ID      EdgeID     `json:"id"`
	Kind    EdgeKind   `json:"kind"`
	Level   LevelID    `json:"level"`
	Anchors []AnchorID `json:"anchors"`
	Props   EdgeProps  `json:"props,omitempty"`
}

// Level is a named floor with an elevation used for vertical ordering.
// No two levels of a site may share an elevation.
type Level struct {
	ID        LevelID `json:"id"`
	Name      string  `json:"name"`
	Elevation float32 `json:"elevation"`
}

// CabinShape describes a lift cabin footprint in meters.
type CabinShape struct {
	Width     float32 `json:"width"`
	Depth     float32 `json:"depth"`
	DoorWidth float32 `json:"door_width"`
}

// Lift pairs one anchor per connected level. The paired anchors' horizontal
// coordinates are kept coincident; each keeps its own level's elevation.
type Lift struct {
	ID      LiftID     `json:"id"`
	Name    string     `json:"name,omitempty"`
	LevelA  LevelID    `json:"level_a"`
	AnchorA AnchorID   `json:"anchor_a"`
	LevelB  LevelID    `json:"level_b"`
	AnchorB AnchorID   `json:"anchor_b"`
	Cabin   CabinShape `json:"cabin"`
}

// Anchors returns the paired anchor IDs.
func (l Lift) Anchors() [2]AnchorID { return [2]AnchorID{l.AnchorA, l.AnchorB} }

// Partner returns the anchor paired with id, or 0 when id is not part of
// the lift.
func (l Lift) Partner(id AnchorID) AnchorID {
	switch id {
	case l.AnchorA:
		return l.AnchorB
	case l.AnchorB:
		return l.AnchorA
	}
	return 0
}

// Action enumerates primitive mutation kinds recorded in a Change.
type Action string

// Primitive mutation actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change is one primitive mutation together with enough state to derive
// its exact inverse: the entity value before and after the mutation.
// Before is nil for creates, After is nil for deletes.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Invert returns the change that exactly undoes c.
func (c Change) Invert() Change {
	switch c.Action {
	case ActionCreate:
		return Change{Entity: c.Entity, Action: ActionDelete, Before: c.After}
	case ActionDelete:
		return Change{Entity: c.Entity, Action: ActionCreate, After: c.Before}
	default:
		return Change{Entity: c.Entity, Action: ActionUpdate, Before: c.After, After: c.Before}
	}
}

// Severity captures diagnostic outcomes.
type Severity string

// Diagnostic severities. Validator findings are advisory and never block an
// already committed transaction; SeverityBlock is reserved for structural
// gates enforced inside the transaction engine itself.
const (
	SeverityBlock Severity = "block"
	SeverityWarn  Severity = "warn"
	SeverityLog   Severity = "log"
)

// Diagnostic reports a single validator finding against one entity.
type Diagnostic struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityType `json:"entity,omitempty"`
	EntityID uint32     `json:"entity_id,omitempty"`
}

// Result aggregates validator findings from one evaluation pass.
type Result struct {
	Diagnostics []Diagnostic
}

// Merge appends diagnostics from another result.
func (r *Result) Merge(other Result) {
	if len(other.Diagnostics) == 0 {
		return
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// HasBlocking reports whether the result contains blocking findings.
func (r Result) HasBlocking() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityBlock {
			return true
		}
	}
	return false
}
