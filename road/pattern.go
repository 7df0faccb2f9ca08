package road

import "baccarat-lite/outcome"

// PatternKind 牌路形态
type PatternKind string

const (
	PatternDragon            PatternKind = "dragon"             // 长龙
	PatternSingleAlternation PatternKind = "single_alternation" // 单跳
	PatternDoubleAlternation PatternKind = "double_alternation" // 双跳
	PatternOneHallTwoRooms   PatternKind = "one_hall_two_rooms" // 一厅两房
	PatternSlope             PatternKind = "slope"
	PatternPairStick         PatternKind = "pair_stick"
)

// PatternFinding is one detected pattern. Value is set for dragons only.
type PatternFinding struct {
	Kind   PatternKind       `json:"kind" msgpack:"kind"`
	Window []outcome.Outcome `json:"window" msgpack:"window"`
	Value  outcome.Outcome   `json:"value,omitempty" msgpack:"value,omitempty"`
	Pairs  int               `json:"pairs,omitempty" msgpack:"pairs,omitempty"`
}

type detector func(seq []outcome.Outcome, cfg PatternConfig) (PatternFinding, bool)

// Evaluated in this order; findings are reported in the same order.
var detectors = []detector{
	detectDragon,
	detectSingleAlternation,
	detectDoubleAlternation,
	detectOneHallTwoRooms,
	detectSlope,
	detectPairStick,
}

// DetectPatterns scans the non-tie outcomes for every known pattern. The result is
// never nil; an empty slice means no notable pattern.
func DetectPatterns(outcomes []outcome.Outcome, cfg PatternConfig) []PatternFinding {
	seq := outcome.Decisive(outcomes)
	findings := make([]PatternFinding, 0, 2)
	for _, detect := range detectors {
		if f, ok := detect(seq, cfg); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

// HasPattern reports whether kind is among findings.
func HasPattern(findings []PatternFinding, kind PatternKind) bool {
	for _, f := range findings {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

func detectDragon(seq []outcome.Outcome, cfg PatternConfig) (PatternFinding, bool) {
	n := tailRun(seq)
	if n < cfg.DragonMin {
		return PatternFinding{}, false
	}
	return PatternFinding{
		Kind:   PatternDragon,
		Window: window(seq, n),
		Value:  seq[len(seq)-1],
	}, true
}

func detectSingleAlternation(seq []outcome.Outcome, cfg PatternConfig) (PatternFinding, bool) {
	n := tailAlternation(seq)
	if n < cfg.SingleAlternationMin {
		return PatternFinding{}, false
	}
	return PatternFinding{Kind: PatternSingleAlternation, Window: window(seq, n)}, true
}

// detectDoubleAlternation walks pairs back from the tail: each pair must be equal and
// differ from the pair after it.
func detectDoubleAlternation(seq []outcome.Outcome, cfg PatternConfig) (PatternFinding, bool) {
	n := 0
	for i := len(seq) - 2; i >= 0; i -= 2 {
		if seq[i] != seq[i+1] {
			break
		}
		if n > 0 && seq[i+1] == seq[i+2] {
			break
		}
		n += 2
	}
	if n < cfg.DoubleAlternationMin {
		return PatternFinding{}, false
	}
	return PatternFinding{Kind: PatternDoubleAlternation, Window: window(seq, n), Pairs: n / 2}, true
}

func detectOneHallTwoRooms(seq []outcome.Outcome, _ PatternConfig) (PatternFinding, bool) {
	if len(seq) < 3 {
		return PatternFinding{}, false
	}
	a, b, c := seq[len(seq)-3], seq[len(seq)-2], seq[len(seq)-1]
	if a != b && b == c {
		return PatternFinding{Kind: PatternOneHallTwoRooms, Window: window(seq, 3)}, true
	}
	return PatternFinding{}, false
}

func detectSlope(seq []outcome.Outcome, _ PatternConfig) (PatternFinding, bool) {
	if len(seq) < 4 {
		return PatternFinding{}, false
	}
	tail := seq[len(seq)-4:]
	for i := 1; i < len(tail); i++ {
		if tail[i] == tail[i-1] {
			return PatternFinding{}, false
		}
	}
	return PatternFinding{Kind: PatternSlope, Window: window(seq, 4)}, true
}

// detectPairStick scans from the start: a matching adjacent pair is consumed whole,
// otherwise the scan advances by one hand.
func detectPairStick(seq []outcome.Outcome, cfg PatternConfig) (PatternFinding, bool) {
	pairs, first, last := 0, -1, -1
	for i := 0; i+1 < len(seq); {
		if seq[i] == seq[i+1] {
			if first < 0 {
				first = i
			}
			last = i + 1
			pairs++
			i += 2
			continue
		}
		i++
	}
	if pairs < cfg.PairStickMin {
		return PatternFinding{}, false
	}
	w := make([]outcome.Outcome, last-first+1)
	copy(w, seq[first:last+1])
	return PatternFinding{Kind: PatternPairStick, Window: w, Pairs: pairs}, true
}

// tailRun is the length of the identical run ending the sequence.
func tailRun(seq []outcome.Outcome) int {
	if len(seq) == 0 {
		return 0
	}
	n := 1
	for i := len(seq) - 2; i >= 0 && seq[i] == seq[i+1]; i-- {
		n++
	}
	return n
}

// tailAlternation is the length of the strictly alternating stretch ending the sequence.
func tailAlternation(seq []outcome.Outcome) int {
	if len(seq) == 0 {
		return 0
	}
	n := 1
	for i := len(seq) - 2; i >= 0 && seq[i] != seq[i+1]; i-- {
		n++
	}
	return n
}

func window(seq []outcome.Outcome, n int) []outcome.Outcome {
	out := make([]outcome.Outcome, n)
	copy(out, seq[len(seq)-n:])
	return out
}
