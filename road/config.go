package road

import "fmt"

// VoteTie selects what the road-vote strategy does when MATCH and BREAK votes are even.
type VoteTie string

const (
	VoteTieNoBet  VoteTie = "no-bet"
	VoteTieBigEye VoteTie = "big-eye"
)

// DerivedMode selects how the derived roads read the big road.
type DerivedMode string

const (
	// DerivedPerColumn emits one mark per new big-road column, so a derived road is
	// never longer than the big road is wide.
	DerivedPerColumn DerivedMode = "per-column"
	// DerivedPerCell is the casino rendering: one mark per big-road cell.
	DerivedPerCell DerivedMode = "per-cell"
)

const (
	DefaultRetentionWindow = 120
	DefaultMinHistory      = 3
	DefaultVoteWindow      = 1
	DefaultHistoryDepth    = 3
)

type PatternConfig struct {
	DragonMin            int `yaml:"dragon_min" json:"dragon_min"`
	SingleAlternationMin int `yaml:"single_alternation_min" json:"single_alternation_min"`
	DoubleAlternationMin int `yaml:"double_alternation_min" json:"double_alternation_min"`
	PairStickMin         int `yaml:"pair_stick_min" json:"pair_stick_min"`
}

func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		DragonMin:            4,
		SingleAlternationMin: 6,
		DoubleAlternationMin: 8,
		PairStickMin:         3,
	}
}

type Config struct {
	// Oldest hands are evicted once a shoe holds more than this many.
	RetentionWindow int `yaml:"retention_window" json:"retention_window"`
	// Non-tie hands required before any strategy may recommend a bet.
	MinHistory int `yaml:"min_history" json:"min_history"`

	// Road-vote: marks taken from the tail of each derived road.
	VoteWindow int     `yaml:"vote_window" json:"vote_window"`
	VoteTie    VoteTie `yaml:"vote_tie" json:"vote_tie"`

	DerivedMode DerivedMode `yaml:"derived_mode" json:"derived_mode"`

	// History-match: length of the outcome key looked up in archived shoes.
	HistoryDepth int `yaml:"history_depth" json:"history_depth"`

	Patterns PatternConfig `yaml:"patterns" json:"patterns"`
}

func DefaultConfig() Config {
	return Config{
		RetentionWindow: DefaultRetentionWindow,
		MinHistory:      DefaultMinHistory,
		VoteWindow:      DefaultVoteWindow,
		VoteTie:         VoteTieNoBet,
		DerivedMode:     DerivedPerColumn,
		HistoryDepth:    DefaultHistoryDepth,
		Patterns:        DefaultPatternConfig(),
	}
}

// WithDefaults fills every zero field from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.RetentionWindow == 0 {
		c.RetentionWindow = d.RetentionWindow
	}
	if c.MinHistory == 0 {
		c.MinHistory = d.MinHistory
	}
	if c.VoteWindow == 0 {
		c.VoteWindow = d.VoteWindow
	}
	if c.VoteTie == "" {
		c.VoteTie = d.VoteTie
	}
	if c.DerivedMode == "" {
		c.DerivedMode = d.DerivedMode
	}
	if c.HistoryDepth == 0 {
		c.HistoryDepth = d.HistoryDepth
	}
	if c.Patterns.DragonMin == 0 {
		c.Patterns.DragonMin = d.Patterns.DragonMin
	}
	if c.Patterns.SingleAlternationMin == 0 {
		c.Patterns.SingleAlternationMin = d.Patterns.SingleAlternationMin
	}
	if c.Patterns.DoubleAlternationMin == 0 {
		c.Patterns.DoubleAlternationMin = d.Patterns.DoubleAlternationMin
	}
	if c.Patterns.PairStickMin == 0 {
		c.Patterns.PairStickMin = d.Patterns.PairStickMin
	}
	return c
}

func (c Config) Validate() error {
	if c.RetentionWindow <= 0 {
		return errConfig(fmt.Sprintf("retention window must be > 0, got %d", c.RetentionWindow))
	}
	if c.MinHistory <= 0 {
		return errConfig(fmt.Sprintf("min history must be > 0, got %d", c.MinHistory))
	}
	if c.MinHistory > c.RetentionWindow {
		return errConfig(fmt.Sprintf("min history %d exceeds retention window %d", c.MinHistory, c.RetentionWindow))
	}
	if c.VoteWindow <= 0 {
		return errConfig(fmt.Sprintf("vote window must be > 0, got %d", c.VoteWindow))
	}
	switch c.VoteTie {
	case VoteTieNoBet, VoteTieBigEye:
	default:
		return errConfig(fmt.Sprintf("unknown vote tie policy %q", c.VoteTie))
	}
	switch c.DerivedMode {
	case DerivedPerColumn, DerivedPerCell:
	default:
		return errConfig(fmt.Sprintf("unknown derived mode %q", c.DerivedMode))
	}
	if c.HistoryDepth <= 0 {
		return errConfig(fmt.Sprintf("history depth must be > 0, got %d", c.HistoryDepth))
	}
	return c.Patterns.validate()
}

func (p PatternConfig) validate() error {
	if p.DragonMin < 2 {
		return errConfig("dragon_min must be >= 2")
	}
	if p.SingleAlternationMin < 3 {
		return errConfig("single_alternation_min must be >= 3")
	}
	if p.DoubleAlternationMin < 4 || p.DoubleAlternationMin%2 != 0 {
		return errConfig("double_alternation_min must be an even number >= 4")
	}
	if p.PairStickMin < 1 {
		return errConfig("pair_stick_min must be >= 1")
	}
	return nil
}
