package core

import (
	"context"
	"fmt"

	"siteforge/pkg/domain"
)

// horizontal tolerance for lift pair coincidence, in meters
const liftCoincidenceEps = 1e-4

// NewLiftPairingRule reports lift anchor pairs that have drifted apart in
// the horizontal plane.
func NewLiftPairingRule() domain.Rule {
	return liftPairingRule{}
}

type liftPairingRule struct{}

func (liftPairingRule) Name() string { return "lift_pairing" }

func (liftPairingRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, lift := range view.ListLifts() {
		a, okA := view.FindAnchor(lift.AnchorA)
		b, okB := view.FindAnchor(lift.AnchorB)
		if !okA || !okB {
			continue // dangling_refs covers missing anchors
		}
		if !a.Position.ApproxEqual(b.Position, liftCoincidenceEps) {
			res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
				Rule:     "lift_pairing",
				Severity: domain.SeverityWarn,
				Message: fmt.Sprintf("lift %q anchors drifted apart: (%g,%g) vs (%g,%g)",
					lift.Name, a.Position.X, a.Position.Y, b.Position.X, b.Position.Y),
				Entity:   domain.EntityLift,
				EntityID: uint32(lift.ID),
			})
		}
	}
	return res, nil
}
