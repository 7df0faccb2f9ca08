package shoe

import (
	"fmt"
	"time"

	"baccarat-lite/outcome"
	"baccarat-lite/road"

	"github.com/google/uuid"
)

// Source records how a shoe reached the archive.
type Source string

const (
	SourcePlayed   Source = "played"   // ended with the end command
	SourceImported Source = "imported" // pasted in as a full history
)

// Shoe 一靴牌: a finished sequence of hands kept for history lookups.
type Shoe struct {
	ID        string         `json:"id"`
	Owner     string         `json:"owner"`
	Source    Source         `json:"source"`
	Hands     []outcome.Hand `json:"hands"`
	Tally     Tally          `json:"tally"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
}

// New stamps a fresh id on a copy of hands.
func New(owner string, source Source, hands []outcome.Hand, startedAt, endedAt time.Time) (*Shoe, error) {
	s := &Shoe{
		ID:        uuid.NewString(),
		Owner:     owner,
		Source:    source,
		Hands:     append([]outcome.Hand(nil), hands...),
		StartedAt: startedAt.UTC(),
		EndedAt:   endedAt.UTC(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shoe) Validate() error {
	if len(s.Hands) == 0 {
		return &ShoeError{Reason: "empty", Message: "no hands recorded", Err: ErrEmptyShoe}
	}
	for i, h := range s.Hands {
		if !h.Outcome.Valid() {
			return &ShoeError{Reason: "invalid_hand", Message: fmt.Sprintf("hand %d has no outcome", i), Err: outcome.ErrInvalidInput}
		}
	}
	switch s.Source {
	case SourcePlayed, SourceImported:
	default:
		return &ShoeError{Reason: "invalid_source", Message: fmt.Sprintf("unknown source %q", s.Source)}
	}
	return nil
}

func (s *Shoe) Outcomes() []outcome.Outcome { return outcome.Outcomes(s.Hands) }

func (s *Shoe) Summary() Summary { return Summarize(s.Hands, s.Tally) }

// Tally tracks how BET recommendations fared. Streak is positive for consecutive hits
// and negative for consecutive misses.
type Tally struct {
	Hits   int `json:"hits" msgpack:"hits"`
	Misses int `json:"misses" msgpack:"misses"`
	Streak int `json:"streak" msgpack:"streak"`
}

// Observe scores actual against rec. Only BET recommendations followed by a non-tie
// hand are scored.
func (t *Tally) Observe(rec road.Recommendation, actual outcome.Outcome) (scored, hit bool) {
	if !rec.IsBet() || !actual.Decisive() {
		return false, false
	}
	if rec.Outcome == actual {
		t.Hits++
		if t.Streak < 0 {
			t.Streak = 0
		}
		t.Streak++
		return true, true
	}
	t.Misses++
	if t.Streak > 0 {
		t.Streak = 0
	}
	t.Streak--
	return true, false
}

func (t Tally) Total() int { return t.Hits + t.Misses }

// HitRate is hits over scored hands, 0 when nothing was scored.
func (t Tally) HitRate() float64 {
	if t.Total() == 0 {
		return 0
	}
	return float64(t.Hits) / float64(t.Total())
}
