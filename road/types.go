package road

import (
	"fmt"

	"baccarat-lite/outcome"
)

// Verdict 推荐结论
type Verdict byte

const (
	VerdictInsufficientHistory Verdict = iota + 1 // 资料不足
	VerdictHold                                   // 上一把开和，看一把
	VerdictNoBet                                  // 信号相互抵消，不下注
	VerdictBet                                    // 给出推荐
)

var VerdictDictionary = map[Verdict]string{
	VerdictInsufficientHistory: "insufficient_history",
	VerdictHold:                "hold",
	VerdictNoBet:               "no_bet",
	VerdictBet:                 "bet",
}

func (v Verdict) String() string {
	if s, ok := VerdictDictionary[v]; ok {
		return s
	}
	return "unknown"
}

func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Verdict) UnmarshalText(b []byte) error {
	for k, s := range VerdictDictionary {
		if s == string(b) {
			*v = k
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", string(b))
}

// Mark is one derived-road entry.
type Mark byte

const (
	MarkMatch Mark = iota + 1 // red
	MarkBreak                 // blue
)

func (m Mark) String() string {
	switch m {
	case MarkMatch:
		return "MATCH"
	case MarkBreak:
		return "BREAK"
	}
	return "?"
}

func (m Mark) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mark) UnmarshalText(b []byte) error {
	switch string(b) {
	case "MATCH":
		*m = MarkMatch
	case "BREAK":
		*m = MarkBreak
	default:
		return fmt.Errorf("unknown mark %q", string(b))
	}
	return nil
}

// DerivedKind 下三路
type DerivedKind byte

const (
	BigEyeBoy DerivedKind = iota + 1 // 大眼仔
	SmallRoad                        // 小路
	Cockroach                        // 曱甴路
)

var DerivedKinds = []DerivedKind{BigEyeBoy, SmallRoad, Cockroach}

func (k DerivedKind) String() string {
	switch k {
	case BigEyeBoy:
		return "big_eye_boy"
	case SmallRoad:
		return "small_road"
	case Cockroach:
		return "cockroach"
	}
	return "unknown"
}

// StartColumn is the 1-based big-road column a derived road starts comparing from.
// Comparisons look back StartColumn-1 columns.
func (k DerivedKind) StartColumn() int {
	switch k {
	case BigEyeBoy:
		return 2
	case SmallRoad:
		return 3
	case Cockroach:
		return 4
	}
	return 0
}

func (k DerivedKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *DerivedKind) UnmarshalText(b []byte) error {
	for _, kind := range DerivedKinds {
		if kind.String() == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown derived road %q", string(b))
}

// RoadVote is the tail of one derived road as counted by the road-vote strategy.
type RoadVote struct {
	Road  DerivedKind `json:"road" msgpack:"road"`
	Marks []Mark      `json:"marks" msgpack:"marks"`
	Match int         `json:"match" msgpack:"match"`
	Break int         `json:"break" msgpack:"break"`
}

// Recommendation is a predictor verdict plus the evidence that produced it.
// Outcome is meaningful only when Verdict is VerdictBet.
type Recommendation struct {
	Verdict  Verdict          `json:"verdict" msgpack:"verdict"`
	Outcome  outcome.Outcome  `json:"outcome,omitempty" msgpack:"outcome,omitempty"`
	Strategy string           `json:"strategy" msgpack:"strategy"`
	Reason   string           `json:"reason,omitempty" msgpack:"reason,omitempty"`
	Findings []PatternFinding `json:"findings" msgpack:"findings"`
	Votes    []RoadVote       `json:"votes,omitempty" msgpack:"votes,omitempty"`
}

func (r Recommendation) IsBet() bool {
	return r.Verdict == VerdictBet && r.Outcome.Decisive()
}

func Bet(o outcome.Outcome, reason string) Recommendation {
	return Recommendation{Verdict: VerdictBet, Outcome: o, Reason: reason}
}

func NoBet(reason string) Recommendation {
	return Recommendation{Verdict: VerdictNoBet, Reason: reason}
}

func InsufficientHistory(reason string) Recommendation {
	return Recommendation{Verdict: VerdictInsufficientHistory, Reason: reason}
}

func Hold(reason string) Recommendation {
	return Recommendation{Verdict: VerdictHold, Reason: reason}
}
