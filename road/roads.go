package road

import "baccarat-lite/outcome"

// Roads is the full board for one outcome sequence.
type Roads struct {
	BeadPlate []outcome.Outcome `json:"bead_plate"`
	BigRoad   BigRoad           `json:"big_road"`
	BigEyeBoy DerivedRoad       `json:"big_eye_boy"`
	SmallRoad DerivedRoad       `json:"small_road"`
	Cockroach DerivedRoad       `json:"cockroach"`
}

// BuildRoads derives the big road and the three derived roads. Pure and idempotent.
func BuildRoads(outcomes []outcome.Outcome, mode DerivedMode) Roads {
	br := BuildBigRoad(outcomes)
	bead := make([]outcome.Outcome, len(outcomes))
	copy(bead, outcomes)
	return Roads{
		BeadPlate: bead,
		BigRoad:   br,
		BigEyeBoy: Derive(br, BigEyeBoy, mode),
		SmallRoad: Derive(br, SmallRoad, mode),
		Cockroach: Derive(br, Cockroach, mode),
	}
}

// Derived lists the three derived roads in start-column order.
func (r Roads) Derived() []DerivedRoad {
	return []DerivedRoad{r.BigEyeBoy, r.SmallRoad, r.Cockroach}
}
