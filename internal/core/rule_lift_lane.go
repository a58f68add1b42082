package core

import (
	"context"
	"fmt"

	"siteforge/pkg/domain"
)

// NewLiftLaneRule reports lift anchors that are not connected into the
// lane graph of their level. Whether a lift must also register as a
// traversable lane is still unconfirmed against the export-format
// consumers, so this rule ships behind a config toggle.
func NewLiftLaneRule() domain.Rule {
	return liftLaneRule{}
}

type liftLaneRule struct{}

func (liftLaneRule) Name() string { return "lift_lane" }

func (liftLaneRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, lift := range view.ListLifts() {
		for _, anchorID := range lift.Anchors() {
			hasLane := false
			for _, edgeID := range view.EdgesTouching(anchorID) {
				if edge, ok := view.FindEdge(edgeID); ok && edge.Kind == domain.EdgeLane {
					hasLane = true
					break
				}
			}
			if !hasLane {
				res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
					Rule:     "lift_lane",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("lift %q anchor %d is not reachable through any lane", lift.Name, anchorID),
					Entity:   domain.EntityLift,
					EntityID: uint32(lift.ID),
				})
			}
		}
	}
	return res, nil
}
