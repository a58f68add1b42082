package core

import "siteforge/pkg/domain"

// RulesConfig toggles the advisory rules whose exact contract is still
// being confirmed against downstream export consumers.
type RulesConfig struct {
	// LiftRequiresLane warns when a lift's paired anchors are not also
	// connected into the lane graph on their levels.
	LiftRequiresLane bool `toml:"lift_requires_lane"`
}

// DefaultRulesEngine builds the validator with the standard rule set.
func DefaultRulesEngine(cfg RulesConfig) *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewDanglingRefsRule())
	engine.Register(NewLiftPairingRule())
	engine.Register(NewDegenerateEdgesRule())
	engine.Register(NewElevationOrderRule())
	engine.Register(NewLaneConnectivityRule())
	if cfg.LiftRequiresLane {
		engine.Register(NewLiftLaneRule())
	}
	return engine
}
