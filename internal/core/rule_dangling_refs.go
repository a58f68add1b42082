package core

import (
	"context"
	"fmt"

	"siteforge/pkg/domain"
)

// NewDanglingRefsRule reports entities referencing anchor or level IDs with
// no backing record. The transaction gates make this unreachable through
// the editing API; the rule still guards imported or restored state.
func NewDanglingRefsRule() domain.Rule {
	return danglingRefsRule{}
}

type danglingRefsRule struct{}

func (danglingRefsRule) Name() string { return "dangling_refs" }

func (danglingRefsRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, edge := range view.ListEdges() {
		for _, id := range edge.Anchors {
			if _, ok := view.FindAnchor(id); !ok {
				res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
					Rule:     "dangling_refs",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("%s edge references missing anchor %d", edge.Kind, id),
					Entity:   domain.EntityEdge,
					EntityID: uint32(edge.ID),
				})
			}
		}
		if _, ok := view.FindLevel(edge.Level); !ok {
			res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
				Rule:     "dangling_refs",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("%s edge references missing level %d", edge.Kind, edge.Level),
				Entity:   domain.EntityEdge,
				EntityID: uint32(edge.ID),
			})
		}
	}
	for _, anchor := range view.ListAnchors() {
		if _, ok := view.FindLevel(anchor.Level); !ok {
			res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
				Rule:     "dangling_refs",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("anchor %d is owned by missing level %d", anchor.ID, anchor.Level),
				Entity:   domain.EntityAnchor,
				EntityID: uint32(anchor.ID),
			})
		}
	}
	for _, lift := range view.ListLifts() {
		for _, id := range lift.Anchors() {
			if _, ok := view.FindAnchor(id); !ok {
				res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
					Rule:     "dangling_refs",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("lift %q references missing anchor %d", lift.Name, id),
					Entity:   domain.EntityLift,
					EntityID: uint32(lift.ID),
				})
			}
		}
	}
	return res, nil
}
