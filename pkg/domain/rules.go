package domain

import "context"

// RuleView provides read-only access to a committed site snapshot for rule
// evaluation. Listings are ordered by ID so rule output is deterministic.
type RuleView interface {
	ListAnchors() []Anchor
	ListEdges() []Edge
	ListLevels() []Level
	ListLifts() []Lift
	FindAnchor(id AnchorID) (Anchor, bool)
	FindEdge(id EdgeID) (Edge, bool)
	FindLevel(id LevelID) (Level, bool)
	FindLift(id LiftID) (Lift, bool)
	EdgesTouching(id AnchorID) []EdgeID
}

// Rule defines a single advisory consistency check executed after every
// committed transaction.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their diagnostics.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
