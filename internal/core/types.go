package core

import "siteforge/pkg/domain"

type (
	AnchorID   = domain.AnchorID
	EdgeID     = domain.EdgeID
	LevelID    = domain.LevelID
	LiftID     = domain.LiftID
	EntityType = domain.EntityType
	AnchorRole = domain.AnchorRole
	EdgeKind   = domain.EdgeKind
	Severity   = domain.Severity
	Vec2       = domain.Vec2
	Anchor     = domain.Anchor
	Edge       = domain.Edge
	EdgeProps  = domain.EdgeProps
	Level      = domain.Level
	Lift       = domain.Lift
	CabinShape = domain.CabinShape
	Site       = domain.Site
	Change     = domain.Change
	Action     = domain.Action
	Diagnostic = domain.Diagnostic
	Result     = domain.Result
)

const (
	EntityAnchor = domain.EntityAnchor
	EntityEdge   = domain.EntityEdge
	EntityLevel  = domain.EntityLevel
	EntityLift   = domain.EntityLift
)

const (
	EdgeLane        = domain.EdgeLane
	EdgeWall        = domain.EdgeWall
	EdgeFloor       = domain.EdgeFloor
	EdgeMeasurement = domain.EdgeMeasurement
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
