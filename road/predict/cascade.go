package predict

import (
	"baccarat-lite/outcome"
	"baccarat-lite/road"
)

// RuleCascade applies fixed rules in priority order; the first that fires wins.
type RuleCascade struct{}

func (RuleCascade) Name() string { return NameRuleCascade }

func (RuleCascade) Decide(v View) road.Recommendation {
	seq := v.Decisive
	n := len(seq)
	last := v.Last()

	// 1. two in a row: expect the streak to break
	if n >= 2 && seq[n-1] == seq[n-2] {
		return road.Bet(last.Opposite(), "last two equal")
	}
	// 2. three alternating: keep jumping
	if n >= 3 && seq[n-1] != seq[n-2] && seq[n-2] != seq[n-3] {
		return road.Bet(last.Opposite(), "last three alternate")
	}
	// 3. a clear point margin on the last hand
	if h := v.LastHand(); h.HasPoints && h.PointGap() >= 2 {
		if h.Player > h.Banker {
			return road.Bet(outcome.Player, "player won by two or more points")
		}
		return road.Bet(outcome.Banker, "banker won by two or more points")
	}
	return road.Bet(outcome.Banker, "default to banker")
}
