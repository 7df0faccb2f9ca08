package predict

import (
	"fmt"

	"baccarat-lite/road"
)

// RoadVote follows the derived roads: the tail marks of the three roads vote, MATCH
// backs a repeat of the last outcome and BREAK backs a change.
type RoadVote struct{}

func (RoadVote) Name() string { return NameRoadVote }

func (RoadVote) Decide(v View) road.Recommendation {
	derived := v.Roads.Derived()
	votes := make([]road.RoadVote, 0, len(derived))
	match, brk, marked := 0, 0, 0
	for _, d := range derived {
		rv := road.RoadVote{Road: d.Kind, Marks: d.Tail(v.Config.VoteWindow)}
		for _, m := range rv.Marks {
			if m == road.MarkMatch {
				rv.Match++
			} else {
				rv.Break++
			}
		}
		if len(rv.Marks) > 0 {
			marked++
		}
		match += rv.Match
		brk += rv.Break
		votes = append(votes, rv)
	}

	last := v.Last()
	var rec road.Recommendation
	switch {
	case marked == 0:
		rec = road.InsufficientHistory("no derived road has a mark yet")
	case match > brk:
		rec = road.Bet(last, fmt.Sprintf("derived roads favour repeating (%d match / %d break)", match, brk))
	case brk > match:
		rec = road.Bet(last.Opposite(), fmt.Sprintf("derived roads favour a change (%d match / %d break)", match, brk))
	default:
		rec = breakVoteTie(v, match, brk)
	}
	rec.Votes = votes
	return rec
}

func breakVoteTie(v View, match, brk int) road.Recommendation {
	if v.Config.VoteTie == road.VoteTieBigEye {
		if m, ok := v.Roads.BigEyeBoy.Latest(); ok {
			if m == road.MarkMatch {
				return road.Bet(v.Last(), fmt.Sprintf("votes even (%d/%d), big eye boy says repeat", match, brk))
			}
			return road.Bet(v.Last().Opposite(), fmt.Sprintf("votes even (%d/%d), big eye boy says change", match, brk))
		}
	}
	return road.NoBet(fmt.Sprintf("votes even (%d match / %d break)", match, brk))
}
