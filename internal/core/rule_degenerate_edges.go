package core

import (
	"context"
	"fmt"

	"siteforge/pkg/domain"
)

// NewDegenerateEdgesRule reports edges referencing the same anchor more
// than once, which collapses their derived geometry.
func NewDegenerateEdgesRule() domain.Rule {
	return degenerateEdgesRule{}
}

type degenerateEdgesRule struct{}

func (degenerateEdgesRule) Name() string { return "degenerate_edges" }

func (degenerateEdgesRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, edge := range view.ListEdges() {
		seen := make(map[domain.AnchorID]struct{}, len(edge.Anchors))
		for _, id := range edge.Anchors {
			if _, dup := seen[id]; dup {
				res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
					Rule:     "degenerate_edges",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("%s edge references anchor %d more than once", edge.Kind, id),
					Entity:   domain.EntityEdge,
					EntityID: uint32(edge.ID),
				})
				break
			}
			seen[id] = struct{}{}
		}
	}
	return res, nil
}
