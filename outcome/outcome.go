package outcome

import "strings"

// Outcome 单局结果
//
// 编码规则:
// - 0: 无效
// - 1: 庄 (Banker)
// - 2: 闲 (Player)
// - 3: 和 (Tie)
type Outcome byte

const (
	Invalid Outcome = iota
	Banker
	Player
	Tie
)

var outcomeNames = map[Outcome]string{
	Invalid: "INVALID",
	Banker:  "BANKER",
	Player:  "PLAYER",
	Tie:     "TIE",
}

var outcomeSymbols = map[Outcome]string{
	Banker: "莊",
	Player: "閒",
	Tie:    "和",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "INVALID"
}

// Symbol returns the single-rune chat symbol (莊/閒/和), or "?" for Invalid.
func (o Outcome) Symbol() string {
	if s, ok := outcomeSymbols[o]; ok {
		return s
	}
	return "?"
}

// Letter returns B/P/T.
func (o Outcome) Letter() string {
	switch o {
	case Banker:
		return "B"
	case Player:
		return "P"
	case Tie:
		return "T"
	}
	return "?"
}

func (o Outcome) Valid() bool { return o == Banker || o == Player || o == Tie }

// Decisive reports whether the outcome is a Banker or Player win.
func (o Outcome) Decisive() bool { return o == Banker || o == Player }

// Opposite swaps Banker and Player. Tie and Invalid map to themselves.
func (o Outcome) Opposite() Outcome {
	switch o {
	case Banker:
		return Player
	case Player:
		return Banker
	}
	return o
}

// MarshalText renders the outcome as its letter so JSON and YAML stay readable.
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, invalidInput("", "cannot encode invalid outcome")
	}
	return []byte(o.Letter()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

var tokenDictionary = map[string]Outcome{
	"莊": Banker, "庄": Banker, "b": Banker, "banker": Banker,
	"閒": Player, "闲": Player, "p": Player, "player": Player,
	"和": Tie, "t": Tie, "tie": Tie,
}

// Parse validates a literal outcome token. The token must spell exactly one outcome.
func Parse(token string) (Outcome, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Invalid, invalidInput(token, "empty outcome token")
	}
	if o, ok := tokenDictionary[strings.ToLower(trimmed)]; ok {
		return o, nil
	}
	return Invalid, invalidInput(token, "unrecognized outcome token")
}

// ParseRun splits a compact run such as "莊閒閒" or "BPP" into outcomes, one rune each.
func ParseRun(run string) ([]Outcome, error) {
	trimmed := strings.TrimSpace(run)
	if trimmed == "" {
		return nil, invalidInput(run, "empty outcome run")
	}
	out := make([]Outcome, 0, len(trimmed))
	for _, r := range trimmed {
		o, err := Parse(string(r))
		if err != nil {
			return nil, invalidInput(run, "run contains unrecognized symbol "+string(r))
		}
		out = append(out, o)
	}
	return out, nil
}

// Letters renders outcomes as a compact B/P/T string.
func Letters(outcomes []Outcome) string {
	var sb strings.Builder
	sb.Grow(len(outcomes))
	for _, o := range outcomes {
		sb.WriteString(o.Letter())
	}
	return sb.String()
}
