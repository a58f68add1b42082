package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"siteforge/pkg/domain"
)

// ErrNothingToUndo is returned when the history cursor is at the oldest record.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrNothingToRedo is returned when the history cursor is at the newest record.
var ErrNothingToRedo = errors.New("nothing to redo")

// TransactionRecord is one committed, undoable batch of primitive mutations.
type TransactionRecord struct {
	Seq     int
	Label   string
	At      time.Time
	Changes []Change
}

// SiteStore owns the committed site state, the linear undo history with its
// cursor, and the advisory validator. All mutation flows through Begin and
// Commit on one logical edit thread; the internal mutex only guards against
// accidental cross-goroutine reads (for example the export worker taking a
// snapshot).
type SiteStore struct {
	mu          sync.RWMutex
	state       siteState
	history     []TransactionRecord
	cursor      int // number of records currently applied
	seq         int
	engine      *domain.RulesEngine
	diagnostics Result
	nowFn       func() time.Time
}

// NewSiteStore constructs an empty store validated by the provided engine.
// A nil engine disables advisory diagnostics.
func NewSiteStore(name string, engine *domain.RulesEngine) *SiteStore {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	st := newSiteState()
	st.name = name
	st.guid = uuid.NewString()
	return &SiteStore{
		state:  st,
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// Begin opens a transaction against a private clone of the committed state.
func (s *SiteStore) Begin() *Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Transaction{store: s, state: s.state.clone()}
}

// Commit atomically applies a staged transaction: the committed state is
// swapped for the staged clone, one record is appended (truncating any redo
// tail), and the validator re-runs. A poisoned transaction commits nothing
// and returns the poisoning error.
func (s *SiteStore) Commit(ctx context.Context, tx *Transaction, label string) (Result, error) {
	if tx == nil || tx.store != s {
		return Result{}, errors.New("transaction does not belong to this store")
	}
	if tx.err != nil {
		return Result{}, tx.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(tx.changes) == 0 {
		// metadata-only edits still land, but produce no undo record
		s.state.name = tx.state.name
		s.state.coordinateRef = tx.state.coordinateRef
		return s.revalidate(ctx, nil)
	}
	s.seq++
	record := TransactionRecord{
		Seq:     s.seq,
		Label:   label,
		At:      s.nowFn(),
		Changes: tx.changes,
	}
	s.history = append(s.history[:s.cursor], record)
	s.cursor = len(s.history)
	s.state = tx.state
	return s.revalidate(ctx, record.Changes)
}

// Discard drops a staged transaction with zero observable effect.
func (s *SiteStore) Discard(tx *Transaction) {
	if tx != nil {
		tx.err = errors.New("transaction discarded")
	}
}

// RunInTransaction stages fn's mutations as one batch and commits them as a
// single undo step.
func (s *SiteStore) RunInTransaction(ctx context.Context, label string, fn func(tx *Transaction) error) (Result, error) {
	tx := s.Begin()
	if err := fn(tx); err != nil {
		return Result{}, err
	}
	return s.Commit(ctx, tx, label)
}

// Undo replays the inverse of the most recent applied record, in reverse
// order and atomically: the inverses apply to a clone which is swapped in
// only when every change replays.
func (s *SiteStore) Undo(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == 0 {
		return Result{}, ErrNothingToUndo
	}
	record := s.history[s.cursor-1]
	next := s.state.clone()
	for i := len(record.Changes) - 1; i >= 0; i-- {
		if err := next.apply(record.Changes[i].Invert()); err != nil {
			return Result{}, err
		}
	}
	next.rebuildIndexes()
	s.state = next
	s.cursor--
	return s.revalidate(ctx, record.Changes)
}

// Redo re-applies a previously undone record with the same atomicity as Undo.
func (s *SiteStore) Redo(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.history) {
		return Result{}, ErrNothingToRedo
	}
	record := s.history[s.cursor]
	next := s.state.clone()
	for _, c := range record.Changes {
		if err := next.apply(c); err != nil {
			return Result{}, err
		}
	}
	next.rebuildIndexes()
	s.state = next
	s.cursor++
	return s.revalidate(ctx, record.Changes)
}

// revalidate runs the advisory rules against committed state. Caller holds
// the write lock. Findings never roll anything back.
func (s *SiteStore) revalidate(ctx context.Context, changes []Change) (Result, error) {
	view := newStateView(&s.state)
	res, err := s.engine.Evaluate(ctx, view, changes)
	if err != nil {
		return Result{}, err
	}
	s.diagnostics = res
	return res, nil
}

// Diagnostics returns the validator findings from the latest commit, undo,
// or redo. The rendering layer reads this each frame.
func (s *SiteStore) Diagnostics() Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Result{Diagnostics: append([]Diagnostic(nil), s.diagnostics.Diagnostics...)}
	return out
}

// CanUndo reports whether an undo step is available.
func (s *SiteStore) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor > 0
}

// CanRedo reports whether a redo step is available.
func (s *SiteStore) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor < len(s.history)
}

// History returns the committed records up to the cursor.
func (s *SiteStore) History() []TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]TransactionRecord(nil), s.history[:s.cursor]...)
}

// Snapshot renders the committed state as the serializable Site aggregate.
func (s *SiteStore) Snapshot() Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.snapshot()
}

// Restore replaces the committed state with a deserialized aggregate and
// clears the history: a freshly loaded site has nothing to undo.
func (s *SiteStore) Restore(ctx context.Context, site Site) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSite(site)
	if s.state.guid == "" {
		s.state.guid = uuid.NewString()
	}
	s.history = nil
	s.cursor = 0
	return s.revalidate(ctx, nil)
}

// View executes fn against a read-only snapshot of committed state.
func (s *SiteStore) View(fn func(view domain.RuleView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state.clone()
	return fn(newStateView(&snapshot))
}
