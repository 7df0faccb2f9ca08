package road

import (
	"fmt"

	"baccarat-lite/outcome"
)

// Session is the mutable state of one shoe: the recorded hands and the last
// recommendation handed out. It does no locking; the owner serializes access.
type Session struct {
	cfg   Config
	hands []outcome.Hand
	last  *Recommendation
}

func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:   cfg,
		hands: make([]outcome.Hand, 0, 16),
	}, nil
}

// RestoreSession rebuilds a session from persisted state. Hands beyond the retention
// window are trimmed from the front.
func RestoreSession(cfg Config, hands []outcome.Hand, last *Recommendation) (*Session, error) {
	s, err := NewSession(cfg)
	if err != nil {
		return nil, err
	}
	for i, h := range hands {
		if !h.Outcome.Valid() {
			return nil, fmt.Errorf("restore hand %d: %w", i, outcome.ErrInvalidInput)
		}
	}
	s.hands = append(s.hands, hands...)
	s.evict()
	if last != nil {
		rec := *last
		s.last = &rec
	}
	return s, nil
}

func (s *Session) Config() Config { return s.cfg }

// Record appends a hand, evicting the oldest hands past the retention window.
func (s *Session) Record(h outcome.Hand) error {
	if !h.Outcome.Valid() {
		return &outcome.InvalidInputError{Input: h.Outcome.String(), Reason: "cannot record invalid outcome"}
	}
	s.hands = append(s.hands, h)
	s.evict()
	return nil
}

func (s *Session) evict() {
	if over := len(s.hands) - s.cfg.RetentionWindow; over > 0 {
		s.hands = append(s.hands[:0:0], s.hands[over:]...)
	}
}

// Reset clears the hands and the last recommendation.
func (s *Session) Reset() {
	s.hands = s.hands[:0]
	s.last = nil
}

func (s *Session) Len() int { return len(s.hands) }

func (s *Session) Hands() []outcome.Hand {
	out := make([]outcome.Hand, len(s.hands))
	copy(out, s.hands)
	return out
}

func (s *Session) Outcomes() []outcome.Outcome { return outcome.Outcomes(s.hands) }

// DecisiveCount is the number of non-tie hands.
func (s *Session) DecisiveCount() int {
	n := 0
	for _, h := range s.hands {
		if h.Outcome.Decisive() {
			n++
		}
	}
	return n
}

// Latest returns the most recent hand.
func (s *Session) Latest() (outcome.Hand, bool) {
	if len(s.hands) == 0 {
		return outcome.Hand{}, false
	}
	return s.hands[len(s.hands)-1], true
}

func (s *Session) LastRecommendation() (Recommendation, bool) {
	if s.last == nil {
		return Recommendation{}, false
	}
	return *s.last, true
}

func (s *Session) SetLastRecommendation(rec Recommendation) {
	s.last = &rec
}

// Snapshot is a read-only view of a session's board.
type Snapshot struct {
	Hands    []outcome.Hand   `json:"hands"`
	Roads    Roads            `json:"roads"`
	Patterns []PatternFinding `json:"patterns"`
	Last     *Recommendation  `json:"last,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	outcomes := s.Outcomes()
	snap := Snapshot{
		Hands:    s.Hands(),
		Roads:    BuildRoads(outcomes, s.cfg.DerivedMode),
		Patterns: DetectPatterns(outcomes, s.cfg.Patterns),
	}
	if s.last != nil {
		rec := *s.last
		snap.Last = &rec
	}
	return snap
}
