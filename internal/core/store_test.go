package core

import (
	"context"
	"errors"
	"testing"

	"siteforge/pkg/domain"
)

func newTestStore(t *testing.T) *SiteStore {
	t.Helper()
	return NewSiteStore("test-site", DefaultRulesEngine(RulesConfig{}))
}

// seedLevel commits one level and returns it.
func seedLevel(t *testing.T, store *SiteStore, name string, elevation float32) Level {
	t.Helper()
	var level Level
	_, err := store.RunInTransaction(context.Background(), "add level", func(tx *Transaction) error {
		var err error
		level, err = tx.CreateLevel(name, elevation)
		return err
	})
	if err != nil {
		t.Fatalf("seed level %s: %v", name, err)
	}
	return level
}

func seedAnchor(t *testing.T, store *SiteStore, level LevelID, name string, pos Vec2) Anchor {
	t.Helper()
	var anchor Anchor
	_, err := store.RunInTransaction(context.Background(), "add anchor", func(tx *Transaction) error {
		var err error
		anchor, err = tx.CreateAnchor(level, name, pos, domain.AnchorRoleGeneral)
		return err
	})
	if err != nil {
		t.Fatalf("seed anchor %s: %v", name, err)
	}
	return anchor
}

func TestCommitUndoRedoRestoresState(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)

	before := store.Snapshot()

	anchor := seedAnchor(t, store, level.ID, "a1", Vec2{X: 1, Y: 2})
	if len(store.Snapshot().Anchors) != 1 {
		t.Fatal("anchor missing after commit")
	}

	if _, err := store.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	after := store.Snapshot()
	if len(after.Anchors) != 0 {
		t.Fatalf("undo left %d anchors", len(after.Anchors))
	}
	if len(after.Levels) != len(before.Levels) {
		t.Fatal("undo disturbed unrelated entities")
	}

	if _, err := store.Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	redone := store.Snapshot()
	if len(redone.Anchors) != 1 || redone.Anchors[0].ID != anchor.ID {
		t.Fatalf("redo should restore anchor %d, got %+v", anchor.ID, redone.Anchors)
	}
}

func TestUndoRedoBoundaries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo on empty history = %v, want ErrNothingToUndo", err)
	}
	if _, err := store.Redo(ctx); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("redo on empty history = %v, want ErrNothingToRedo", err)
	}

	seedLevel(t, store, "L1", 0)
	if !store.CanUndo() || store.CanRedo() {
		t.Fatal("after one commit: CanUndo should hold, CanRedo should not")
	}
	if _, err := store.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if store.CanUndo() || !store.CanRedo() {
		t.Fatal("after undo: CanRedo should hold, CanUndo should not")
	}
}

func TestCommitTruncatesRedoTail(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedLevel(t, store, "L1", 0)
	seedLevel(t, store, "L2", 3)

	if _, err := store.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	seedLevel(t, store, "L3", 6)

	if store.CanRedo() {
		t.Fatal("a commit after undo must discard the redo tail")
	}
	names := map[string]bool{}
	for _, l := range store.Snapshot().Levels {
		names[l.Name] = true
	}
	if !names["L1"] || names["L2"] || !names["L3"] {
		t.Fatalf("unexpected levels after truncation: %v", names)
	}
}

func TestIdentifiersNeverReused(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)

	first := seedAnchor(t, store, level.ID, "a1", Vec2{})
	if _, err := store.RunInTransaction(ctx, "delete anchor", func(tx *Transaction) error {
		return tx.DeleteAnchor(first.ID)
	}); err != nil {
		t.Fatalf("delete anchor: %v", err)
	}
	second := seedAnchor(t, store, level.ID, "a2", Vec2{})
	if second.ID <= first.ID {
		t.Fatalf("anchor ID %d reused after deleting %d", second.ID, first.ID)
	}

	// undo both, redo both: the recorded IDs replay exactly
	if _, err := store.Undo(ctx); err != nil {
		t.Fatalf("undo create: %v", err)
	}
	if _, err := store.Undo(ctx); err != nil {
		t.Fatalf("undo delete: %v", err)
	}
	if _, err := store.Redo(ctx); err != nil {
		t.Fatalf("redo delete: %v", err)
	}
	if _, err := store.Redo(ctx); err != nil {
		t.Fatalf("redo create: %v", err)
	}
	anchors := store.Snapshot().Anchors
	if len(anchors) != 1 || anchors[0].ID != second.ID {
		t.Fatalf("redo replayed wrong anchor set: %+v", anchors)
	}
}

func TestDeleteAnchorInUse(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)
	a1 := seedAnchor(t, store, level.ID, "a1", Vec2{})
	a2 := seedAnchor(t, store, level.ID, "a2", Vec2{X: 2})

	var edge Edge
	if _, err := store.RunInTransaction(ctx, "add lane", func(tx *Transaction) error {
		var err error
		edge, err = tx.CreateEdge(domain.EdgeLane, level.ID, []AnchorID{a1.ID, a2.ID}, EdgeProps{})
		return err
	}); err != nil {
		t.Fatalf("create lane: %v", err)
	}

	_, err := store.RunInTransaction(ctx, "delete anchor", func(tx *Transaction) error {
		return tx.DeleteAnchor(a1.ID)
	})
	var inUse domain.InUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("delete of referenced anchor = %v, want InUseError", err)
	}
	if len(store.Snapshot().Anchors) != 2 {
		t.Fatal("failed delete must not change state")
	}

	if _, err := store.RunInTransaction(ctx, "delete lane", func(tx *Transaction) error {
		return tx.DeleteEdge(edge.ID)
	}); err != nil {
		t.Fatalf("delete lane: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, "delete anchor", func(tx *Transaction) error {
		return tx.DeleteAnchor(a1.ID)
	}); err != nil {
		t.Fatalf("delete after freeing reference: %v", err)
	}
}

func TestLiftPairingMovesTogether(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	levelA := seedLevel(t, store, "A", 0)
	levelB := seedLevel(t, store, "B", 5)
	a1 := seedAnchor(t, store, levelA.ID, "a1", Vec2{X: 1, Y: 1})
	a2 := seedAnchor(t, store, levelB.ID, "a2", Vec2{X: 9, Y: 9})

	var lift Lift
	if _, err := store.RunInTransaction(ctx, "add lift", func(tx *Transaction) error {
		var err error
		lift, err = tx.CreateLift("lift-1", levelA.ID, a1.ID, levelB.ID, a2.ID, CabinShape{Width: 1.5, Depth: 1.5})
		return err
	}); err != nil {
		t.Fatalf("create lift: %v", err)
	}

	// pairing snaps the second shaft anchor onto the first
	snap := findAnchor(t, store, a2.ID)
	if snap.Position != (Vec2{X: 1, Y: 1}) {
		t.Fatalf("lift creation should align anchor b, got %v", snap.Position)
	}

	if _, err := store.RunInTransaction(ctx, "move anchor", func(tx *Transaction) error {
		_, err := tx.MoveAnchor(a1.ID, Vec2{X: 3, Y: 4})
		return err
	}); err != nil {
		t.Fatalf("move anchor: %v", err)
	}

	moved := findAnchor(t, store, a2.ID)
	if moved.Position != (Vec2{X: 3, Y: 4}) {
		t.Fatalf("paired anchor did not follow, got %v", moved.Position)
	}
	if moved.Level != levelB.ID {
		t.Fatal("paired anchor must stay on its own level")
	}

	// the propagated move is one undo step
	if _, err := store.Undo(ctx); err != nil {
		t.Fatalf("undo move: %v", err)
	}
	if got := findAnchor(t, store, a2.ID).Position; got != (Vec2{X: 1, Y: 1}) {
		t.Fatalf("undo should restore both shaft anchors, got %v", got)
	}
	if got := findAnchor(t, store, a1.ID).Position; got != (Vec2{X: 1, Y: 1}) {
		t.Fatalf("undo should restore the moved anchor, got %v", got)
	}
	_ = lift
}

func TestBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)
	before := store.Snapshot()

	_, err := store.RunInTransaction(ctx, "bulk edit", func(tx *Transaction) error {
		if _, err := tx.CreateAnchor(level.ID, "ok", Vec2{}, domain.AnchorRoleGeneral); err != nil {
			return err
		}
		// references a level that does not exist, poisoning the batch
		if _, err := tx.CreateAnchor(LevelID(999), "bad", Vec2{}, domain.AnchorRoleGeneral); err != nil {
			return err
		}
		_, err := tx.CreateAnchor(level.ID, "never reached", Vec2{}, domain.AnchorRoleGeneral)
		return err
	})
	var refErr domain.InvalidReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("batch error = %v, want InvalidReferenceError", err)
	}

	after := store.Snapshot()
	if len(after.Anchors) != len(before.Anchors) {
		t.Fatal("failed batch leaked partial state")
	}
	if store.CanUndo() != true {
		t.Fatal("only the seed commit should be undoable")
	}
	if len(store.History()) != 1 {
		t.Fatalf("failed batch appended a history record: %d", len(store.History()))
	}
}

func TestPoisonedTransactionKeepsFirstError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)

	tx := store.Begin()
	_, first := tx.CreateAnchor(LevelID(42), "bad", Vec2{}, domain.AnchorRoleGeneral)
	if first == nil {
		t.Fatal("expected gate failure")
	}
	if _, err := tx.CreateAnchor(level.ID, "later", Vec2{}, domain.AnchorRoleGeneral); !errors.Is(err, tx.Err()) {
		t.Fatalf("staging after poison = %v, want the poisoning error", err)
	}
	if _, err := store.Commit(ctx, tx, "bad batch"); !errors.Is(err, first) {
		t.Fatalf("commit of poisoned tx = %v, want %v", err, first)
	}
}

func TestSetSiteMetaIsNotUndoable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tx := store.Begin()
	tx.SetSiteMeta("renamed", "wgs84")
	if _, err := store.Commit(ctx, tx, "rename"); err != nil {
		t.Fatalf("metadata commit: %v", err)
	}

	snap := store.Snapshot()
	if snap.Name != "renamed" || snap.CoordinateRef != "wgs84" {
		t.Fatalf("metadata not applied: %q %q", snap.Name, snap.CoordinateRef)
	}
	if store.CanUndo() {
		t.Fatal("metadata edits must not create undo records")
	}
}

func TestElevationUniqueness(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedLevel(t, store, "L1", 2.5)

	_, err := store.RunInTransaction(ctx, "add level", func(tx *Transaction) error {
		_, err := tx.CreateLevel("L2", 2.5)
		return err
	})
	var structural domain.StructuralViolationError
	if !errors.As(err, &structural) {
		t.Fatalf("duplicate elevation = %v, want StructuralViolationError", err)
	}
}

func TestFiducialRejectedByLanesAndWalls(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)
	general := seedAnchor(t, store, level.ID, "a1", Vec2{})

	var fid Anchor
	if _, err := store.RunInTransaction(ctx, "add fiducial", func(tx *Transaction) error {
		var err error
		fid, err = tx.CreateAnchor(level.ID, "marker", Vec2{X: 1}, domain.AnchorRoleFiducial)
		return err
	}); err != nil {
		t.Fatalf("create fiducial: %v", err)
	}

	for _, kind := range []EdgeKind{domain.EdgeLane, domain.EdgeWall} {
		_, err := store.RunInTransaction(ctx, "add edge", func(tx *Transaction) error {
			_, err := tx.CreateEdge(kind, level.ID, []AnchorID{general.ID, fid.ID}, EdgeProps{})
			return err
		})
		var refErr domain.InvalidReferenceError
		if !errors.As(err, &refErr) {
			t.Fatalf("%s over fiducial = %v, want InvalidReferenceError", kind, err)
		}
	}

	// measurements may reference fiducials
	if _, err := store.RunInTransaction(ctx, "measure", func(tx *Transaction) error {
		_, err := tx.CreateEdge(domain.EdgeMeasurement, level.ID, []AnchorID{general.ID, fid.ID}, EdgeProps{})
		return err
	}); err != nil {
		t.Fatalf("measurement over fiducial: %v", err)
	}
}

func TestDiscardHasNoEffect(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)

	tx := store.Begin()
	if _, err := tx.CreateAnchor(level.ID, "ghost", Vec2{}, domain.AnchorRoleGeneral); err != nil {
		t.Fatalf("stage anchor: %v", err)
	}
	store.Discard(tx)
	if _, err := store.Commit(ctx, tx, "stale"); err == nil {
		t.Fatal("committing a discarded transaction must fail")
	}
	if len(store.Snapshot().Anchors) != 0 {
		t.Fatal("discarded transaction leaked state")
	}
}

func TestRestoreClearsHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	level := seedLevel(t, store, "L1", 0)
	seedAnchor(t, store, level.ID, "a1", Vec2{})

	snap := store.Snapshot()
	other := NewSiteStore("other", DefaultRulesEngine(RulesConfig{}))
	if _, err := other.Restore(ctx, snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if other.CanUndo() || other.CanRedo() {
		t.Fatal("restore must start a fresh history")
	}
	got := other.Snapshot()
	if len(got.Anchors) != 1 || len(got.Levels) != 1 {
		t.Fatalf("restore lost entities: %+v", got)
	}

	// new IDs continue above the restored ones
	next := seedAnchor(t, other, level.ID, "a2", Vec2{X: 1})
	if next.ID <= got.Anchors[0].ID {
		t.Fatalf("restored store reused ID %d", next.ID)
	}
}

func findAnchor(t *testing.T, store *SiteStore, id AnchorID) Anchor {
	t.Helper()
	for _, a := range store.Snapshot().Anchors {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("anchor %d not found", id)
	return Anchor{}
}
