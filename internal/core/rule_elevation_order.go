package core

import (
	"context"
	"fmt"

	"siteforge/pkg/domain"
)

// NewElevationOrderRule reports levels whose elevation is not strictly
// increasing with creation order. The cabin stop sequence and default
// floor navigation both assume the orders agree.
func NewElevationOrderRule() domain.Rule {
	return elevationOrderRule{}
}

type elevationOrderRule struct{}

func (elevationOrderRule) Name() string { return "elevation_order" }

func (elevationOrderRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	levels := view.ListLevels() // ID order
	for i := 1; i < len(levels); i++ {
		prev, cur := levels[i-1], levels[i]
		if cur.Elevation <= prev.Elevation {
			res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
				Rule:     "elevation_order",
				Severity: domain.SeverityLog,
				Message: fmt.Sprintf("level %q (%g) sits at or below earlier level %q (%g)",
					cur.Name, cur.Elevation, prev.Name, prev.Elevation),
				Entity:   domain.EntityLevel,
				EntityID: uint32(cur.ID),
			})
		}
	}
	return res, nil
}
