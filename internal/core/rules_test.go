package core

import (
	"context"
	"testing"

	"siteforge/pkg/domain"
)

// hasFinding reports whether a result carries a finding from the named rule.
func hasFinding(res Result, rule string) bool {
	for _, d := range res.Diagnostics {
		if d.Rule == rule {
			return true
		}
	}
	return false
}

func TestDanglingRefsOnRestoredState(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// a hand-built snapshot with a lane pointing at a missing anchor, as a
	// damaged file import would produce
	site := domain.Site{
		Name:       "broken",
		Levels:     []domain.Level{{ID: 1, Name: "L1"}},
		Anchors:    []domain.Anchor{{ID: 1, Name: "a1", Level: 1, Role: domain.AnchorRoleGeneral}},
		Edges:      []domain.Edge{{ID: 1, Kind: domain.EdgeLane, Level: 1, Anchors: []domain.AnchorID{1, 99}}},
		NextAnchor: 100,
		NextEdge:   2,
		NextLevel:  2,
		NextLift:   1,
	}
	res, err := store.Restore(ctx, site)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !hasFinding(res, "dangling_refs") {
		t.Fatalf("expected dangling_refs finding, got %+v", res.Diagnostics)
	}
	if res.HasBlocking() {
		t.Fatal("validator findings are advisory, never blocking")
	}
}

func TestLiftPairingDriftFinding(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	site := domain.Site{
		Name: "drifted",
		Levels: []domain.Level{
			{ID: 1, Name: "A", Elevation: 0},
			{ID: 2, Name: "B", Elevation: 5},
		},
		Anchors: []domain.Anchor{
			{ID: 1, Name: "a1", Level: 1, Position: domain.Vec2{X: 1, Y: 1}},
			{ID: 2, Name: "a2", Level: 2, Position: domain.Vec2{X: 4, Y: 4}},
		},
		Lifts: []domain.Lift{
			{ID: 1, Name: "lift-1", LevelA: 1, AnchorA: 1, LevelB: 2, AnchorB: 2},
		},
		NextAnchor: 3, NextEdge: 1, NextLevel: 3, NextLift: 2,
	}
	res, err := store.Restore(ctx, site)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !hasFinding(res, "lift_pairing") {
		t.Fatalf("expected lift_pairing finding, got %+v", res.Diagnostics)
	}

	// realigning the pair clears the finding
	if _, err := store.RunInTransaction(ctx, "realign", func(tx *Transaction) error {
		_, err := tx.MoveAnchor(1, domain.Vec2{X: 4, Y: 4})
		return err
	}); err != nil {
		t.Fatalf("realign: %v", err)
	}
	if hasFinding(store.Diagnostics(), "lift_pairing") {
		t.Fatalf("finding should clear after realignment: %+v", store.Diagnostics().Diagnostics)
	}
}

func TestDegenerateEdgeFinding(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)
	a := seedAnchor(t, store, level.ID, "a1", Vec2{})

	res, err := store.RunInTransaction(ctx, "zero lane", func(tx *Transaction) error {
		_, err := tx.CreateEdge(domain.EdgeLane, level.ID, []AnchorID{a.ID, a.ID}, EdgeProps{})
		return err
	})
	if err != nil {
		t.Fatalf("a degenerate edge is malformed, not invalid: %v", err)
	}
	if !hasFinding(res, "degenerate_edges") {
		t.Fatalf("expected degenerate_edges finding, got %+v", res.Diagnostics)
	}
}

func TestElevationOrderFinding(t *testing.T) {
	store := newTestStore(t)
	seedLevel(t, store, "upper", 10)
	seedLevel(t, store, "lower", 2)

	if !hasFinding(store.Diagnostics(), "elevation_order") {
		t.Fatalf("expected elevation_order finding, got %+v", store.Diagnostics().Diagnostics)
	}
	for _, d := range store.Diagnostics().Diagnostics {
		if d.Rule == "elevation_order" && d.Severity != domain.SeverityLog {
			t.Fatalf("elevation_order severity = %s, want log", d.Severity)
		}
	}
}

func TestLaneConnectivityFinding(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)
	a1 := seedAnchor(t, store, level.ID, "a1", Vec2{})
	a2 := seedAnchor(t, store, level.ID, "a2", Vec2{X: 1})
	a3 := seedAnchor(t, store, level.ID, "a3", Vec2{X: 5})
	a4 := seedAnchor(t, store, level.ID, "a4", Vec2{X: 6})

	addLane := func(a, b AnchorID) {
		t.Helper()
		if _, err := store.RunInTransaction(ctx, "lane", func(tx *Transaction) error {
			_, err := tx.CreateEdge(domain.EdgeLane, level.ID, []AnchorID{a, b}, EdgeProps{})
			return err
		}); err != nil {
			t.Fatalf("create lane: %v", err)
		}
	}

	// a single lane raises nothing
	addLane(a1.ID, a2.ID)
	if hasFinding(store.Diagnostics(), "lane_connectivity") {
		t.Fatal("a lone lane is not isolated")
	}

	// a second lane sharing no anchors is isolated (both are)
	addLane(a3.ID, a4.ID)
	if !hasFinding(store.Diagnostics(), "lane_connectivity") {
		t.Fatalf("expected lane_connectivity finding, got %+v", store.Diagnostics().Diagnostics)
	}

	// bridging them clears the finding
	addLane(a2.ID, a3.ID)
	if hasFinding(store.Diagnostics(), "lane_connectivity") {
		t.Fatalf("bridged graph still flagged: %+v", store.Diagnostics().Diagnostics)
	}
}

func TestLiftLaneRuleIsConfigGated(t *testing.T) {
	ctx := context.Background()

	build := func(store *SiteStore) {
		t.Helper()
		levelA := seedLevel(t, store, "A", 0)
		levelB := seedLevel(t, store, "B", 5)
		a1 := seedAnchor(t, store, levelA.ID, "a1", Vec2{})
		a2 := seedAnchor(t, store, levelB.ID, "a2", Vec2{})
		if _, err := store.RunInTransaction(ctx, "lift", func(tx *Transaction) error {
			_, err := tx.CreateLift("lift-1", levelA.ID, a1.ID, levelB.ID, a2.ID, CabinShape{Width: 1, Depth: 1})
			return err
		}); err != nil {
			t.Fatalf("create lift: %v", err)
		}
	}

	off := NewSiteStore("off", DefaultRulesEngine(RulesConfig{}))
	build(off)
	if hasFinding(off.Diagnostics(), "lift_lane") {
		t.Fatal("lift_lane must stay silent when disabled")
	}

	on := NewSiteStore("on", DefaultRulesEngine(RulesConfig{LiftRequiresLane: true}))
	build(on)
	if !hasFinding(on.Diagnostics(), "lift_lane") {
		t.Fatalf("expected lift_lane finding, got %+v", on.Diagnostics().Diagnostics)
	}
}
