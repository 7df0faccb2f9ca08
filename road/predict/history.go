package predict

import (
	"fmt"

	"baccarat-lite/outcome"
	"baccarat-lite/road"
)

// HistorySource supplies archived shoes to the history-match strategy.
type HistorySource interface {
	Shoes() [][]outcome.Outcome
}

// StaticHistory is a HistorySource over shoes already in memory.
type StaticHistory [][]outcome.Outcome

func (h StaticHistory) Shoes() [][]outcome.Outcome { return h }

// HistoryMatch looks up the current tail in archived shoes and backs whatever most
// often followed it.
type HistoryMatch struct {
	Source HistorySource
}

func (HistoryMatch) Name() string { return NameHistoryMatch }

func (s HistoryMatch) Decide(v View) road.Recommendation {
	depth := v.Config.HistoryDepth
	if len(v.Decisive) < depth {
		return road.InsufficientHistory(fmt.Sprintf("need %d non-tie hands to search history", depth))
	}
	key := v.Decisive[len(v.Decisive)-depth:]

	var banker, player int
	if s.Source != nil {
		for _, shoe := range s.Source.Shoes() {
			b, p := countFollowers(outcome.Decisive(shoe), key)
			banker += b
			player += p
		}
	}

	pattern := outcome.Letters(key)
	switch {
	case banker == 0 && player == 0:
		return road.NoBet(fmt.Sprintf("%s never seen in history", pattern))
	case banker > player:
		return road.Bet(outcome.Banker, fmt.Sprintf("%s was followed by banker %d of %d times", pattern, banker, banker+player))
	case player > banker:
		return road.Bet(outcome.Player, fmt.Sprintf("%s was followed by player %d of %d times", pattern, player, banker+player))
	}
	return road.NoBet(fmt.Sprintf("%s split evenly in history (%d/%d)", pattern, banker, player))
}

// countFollowers counts what came right after every occurrence of key in seq.
func countFollowers(seq, key []outcome.Outcome) (banker, player int) {
	for i := 0; i+len(key) < len(seq); i++ {
		if !hasPrefix(seq[i:], key) {
			continue
		}
		switch seq[i+len(key)] {
		case outcome.Banker:
			banker++
		case outcome.Player:
			player++
		}
	}
	return banker, player
}

func hasPrefix(seq, key []outcome.Outcome) bool {
	if len(seq) < len(key) {
		return false
	}
	for i := range key {
		if seq[i] != key[i] {
			return false
		}
	}
	return true
}
