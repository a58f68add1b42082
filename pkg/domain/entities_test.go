package domain

import "testing"

func TestEdgeKindAnchorBounds(t *testing.T) {
	cases := []struct {
		kind EdgeKind
		min  int
		max  int
	}{
		{EdgeLane, 2, 2},
		{EdgeWall, 2, 2},
		{EdgeMeasurement, 2, 2},
		{EdgeFloor, 3, 0},
	}
	for _, tc := range cases {
		gotMin, gotMax := tc.kind.AnchorBounds()
		if gotMin != tc.min || gotMax != tc.max {
			t.Fatalf("%s bounds = (%d, %d), want (%d, %d)", tc.kind, gotMin, gotMax, tc.min, tc.max)
		}
		if !tc.kind.Valid() {
			t.Fatalf("%s should be a valid kind", tc.kind)
		}
	}
	if EdgeKind("portal").Valid() {
		t.Fatal("unknown kind should not be valid")
	}
}

func TestChangeInvertRoundTrip(t *testing.T) {
	anchor := Anchor{ID: 7, Name: "dock", Position: Vec2{X: 1, Y: 2}, Level: 1}

	create := Change{Entity: EntityAnchor, Action: ActionCreate, After: anchor}
	inv := create.Invert()
	if inv.Action != ActionDelete {
		t.Fatalf("inverse of create = %s, want delete", inv.Action)
	}
	if got, ok := inv.Before.(Anchor); !ok || got.ID != anchor.ID {
		t.Fatalf("inverse of create lost payload: %#v", inv.Before)
	}

	del := Change{Entity: EntityAnchor, Action: ActionDelete, Before: anchor}
	inv = del.Invert()
	if inv.Action != ActionCreate {
		t.Fatalf("inverse of delete = %s, want create", inv.Action)
	}

	moved := anchor
	moved.Position = Vec2{X: 5, Y: 5}
	update := Change{Entity: EntityAnchor, Action: ActionUpdate, Before: anchor, After: moved}
	inv = update.Invert()
	if inv.Action != ActionUpdate {
		t.Fatalf("inverse of update = %s, want update", inv.Action)
	}
	if got := inv.After.(Anchor); got.Position != anchor.Position {
		t.Fatalf("inverse update should restore the old position, got %v", got.Position)
	}
	// inverting twice yields the original update
	twice := inv.Invert()
	if got := twice.After.(Anchor); got.Position != moved.Position {
		t.Fatalf("double inversion should restore the forward change, got %v", got.Position)
	}
}

func TestLiftPartner(t *testing.T) {
	lift := Lift{ID: 1, AnchorA: 10, AnchorB: 20}
	if got := lift.Partner(10); got != 20 {
		t.Fatalf("Partner(10) = %d, want 20", got)
	}
	if got := lift.Partner(20); got != 10 {
		t.Fatalf("Partner(20) = %d, want 10", got)
	}
	if got := lift.Partner(99); got != 0 {
		t.Fatalf("Partner of unrelated anchor = %d, want 0", got)
	}
	if got := lift.Anchors(); got != [2]AnchorID{10, 20} {
		t.Fatalf("Anchors() = %v", got)
	}
}

func TestResultMergeAndHasBlocking(t *testing.T) {
	var r Result
	r.Merge(Result{})
	if len(r.Diagnostics) != 0 {
		t.Fatal("merging an empty result should be a no-op")
	}
	r.Merge(Result{Diagnostics: []Diagnostic{{Rule: "a", Severity: SeverityWarn}}})
	r.Merge(Result{Diagnostics: []Diagnostic{{Rule: "b", Severity: SeverityLog}}})
	if len(r.Diagnostics) != 2 {
		t.Fatalf("merged %d diagnostics, want 2", len(r.Diagnostics))
	}
	if r.HasBlocking() {
		t.Fatal("warn and log findings are not blocking")
	}
	r.Merge(Result{Diagnostics: []Diagnostic{{Rule: "c", Severity: SeverityBlock}}})
	if !r.HasBlocking() {
		t.Fatal("expected blocking after merging a block finding")
	}
}
