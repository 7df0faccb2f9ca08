package predict

import (
	"baccarat-lite/outcome"
	"baccarat-lite/road"
)

// View is a read-only projection of a shoe handed to a strategy. Gating has already
// run: Decisive holds at least MinHistory outcomes and the latest hand is not a tie.
type View struct {
	Hands    []outcome.Hand
	Decisive []outcome.Outcome
	Roads    road.Roads
	Findings []road.PatternFinding
	Config   road.Config
}

// Last is the latest non-tie outcome.
func (v View) Last() outcome.Outcome {
	if len(v.Decisive) == 0 {
		return outcome.Invalid
	}
	return v.Decisive[len(v.Decisive)-1]
}

// LastHand is the latest recorded hand.
func (v View) LastHand() outcome.Hand {
	if len(v.Hands) == 0 {
		return outcome.Hand{}
	}
	return v.Hands[len(v.Hands)-1]
}

// Strategy is the interface every prediction heuristic implements.
type Strategy interface {
	// Decide is called once per prediction with the gated view.
	Decide(view View) road.Recommendation
	// Name returns the identifier used in configuration.
	Name() string
}
