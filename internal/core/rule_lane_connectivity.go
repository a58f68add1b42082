package core

import (
	"context"
	"fmt"

	"siteforge/pkg/domain"
)

// NewLaneConnectivityRule reports isolated lanes: lanes whose endpoints
// touch no other lane. A robot can enter such a lane only by teleporting,
// so downstream navigation stacks usually ignore it.
func NewLaneConnectivityRule() domain.Rule {
	return laneConnectivityRule{}
}

type laneConnectivityRule struct{}

func (laneConnectivityRule) Name() string { return "lane_connectivity" }

func (laneConnectivityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	lanes := make([]domain.Edge, 0)
	laneCount := make(map[domain.AnchorID]int)
	for _, edge := range view.ListEdges() {
		if edge.Kind != domain.EdgeLane {
			continue
		}
		lanes = append(lanes, edge)
		for _, id := range edge.Anchors {
			laneCount[id]++
		}
	}
	if len(lanes) < 2 {
		return res, nil
	}
	for _, lane := range lanes {
		isolated := true
		for _, id := range lane.Anchors {
			if laneCount[id] > 1 {
				isolated = false
				break
			}
		}
		if isolated {
			res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
				Rule:     "lane_connectivity",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("lane %d shares no anchor with the rest of the lane graph", lane.ID),
				Entity:   domain.EntityEdge,
				EntityID: uint32(lane.ID),
			})
		}
	}
	return res, nil
}
