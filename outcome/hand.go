package outcome

import "strings"

const maxPoint = 9

// Hand is one recorded result. Points are present only when the hand was entered
// as a player/banker point pair.
type Hand struct {
	Outcome   Outcome `json:"outcome" msgpack:"o" yaml:"outcome"`
	HasPoints bool    `json:"has_points,omitempty" msgpack:"h,omitempty" yaml:"has_points,omitempty"`
	Player    uint8   `json:"player,omitempty" msgpack:"p,omitempty" yaml:"player,omitempty"`
	Banker    uint8   `json:"banker,omitempty" msgpack:"b,omitempty" yaml:"banker,omitempty"`
}

// FromPoints maps a player/banker point pair to an outcome.
func FromPoints(player, banker int) (Outcome, error) {
	if player < 0 || player > maxPoint || banker < 0 || banker > maxPoint {
		return Invalid, invalidInput("", "points must be within 0-9")
	}
	switch {
	case player > banker:
		return Player, nil
	case player < banker:
		return Banker, nil
	default:
		return Tie, nil
	}
}

// HandFromPoints builds a Hand carrying its point pair.
func HandFromPoints(player, banker int) (Hand, error) {
	o, err := FromPoints(player, banker)
	if err != nil {
		return Hand{}, err
	}
	return Hand{Outcome: o, HasPoints: true, Player: uint8(player), Banker: uint8(banker)}, nil
}

// ParsePointPair parses "84" as player 8, banker 4.
func ParsePointPair(raw string) (Hand, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return Hand{}, invalidInput(raw, "point pair must be exactly two digits")
	}
	return HandFromPoints(int(s[0]-'0'), int(s[1]-'0'))
}

// Normalize accepts either a two-digit point pair or a single outcome token.
func Normalize(token string) (Hand, error) {
	s := strings.TrimSpace(token)
	if len(s) == 2 && isDigit(s[0]) && isDigit(s[1]) {
		return ParsePointPair(s)
	}
	o, err := Parse(s)
	if err != nil {
		return Hand{}, err
	}
	return Hand{Outcome: o}, nil
}

// PointGap is |player-banker|, or 0 when the hand has no points.
func (h Hand) PointGap() int {
	if !h.HasPoints {
		return 0
	}
	d := int(h.Player) - int(h.Banker)
	if d < 0 {
		d = -d
	}
	return d
}

// Outcomes projects hands to their outcomes.
func Outcomes(hands []Hand) []Outcome {
	out := make([]Outcome, len(hands))
	for i, h := range hands {
		out[i] = h.Outcome
	}
	return out
}

// Decisive filters out ties.
func Decisive(outcomes []Outcome) []Outcome {
	out := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Decisive() {
			out = append(out, o)
		}
	}
	return out
}

// Hands wraps bare outcomes as point-less hands.
func Hands(outcomes ...Outcome) []Hand {
	out := make([]Hand, len(outcomes))
	for i, o := range outcomes {
		out[i] = Hand{Outcome: o}
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
