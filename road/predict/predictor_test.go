package predict

import (
	"testing"

	"baccarat-lite/outcome"
	"baccarat-lite/road"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	B = outcome.Banker
	P = outcome.Player
	T = outcome.Tie
)

func newPredictor(t *testing.T, name string, opts ...Option) *Predictor {
	t.Helper()
	p, err := New(road.DefaultConfig(), name, opts...)
	require.NoError(t, err)
	return p
}

func pointHand(t *testing.T, raw string) outcome.Hand {
	t.Helper()
	h, err := outcome.ParsePointPair(raw)
	require.NoError(t, err)
	return h
}

func TestNew_RejectsUnknownStrategy(t *testing.T) {
	_, err := New(road.DefaultConfig(), "martingale")
	assert.ErrorIs(t, err, road.ErrConfiguration)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := road.DefaultConfig()
	cfg.MinHistory = 0
	_, err := New(cfg, NameRuleCascade)
	assert.ErrorIs(t, err, road.ErrConfiguration)
}

func TestNew_HistoryMatchNeedsSource(t *testing.T) {
	_, err := New(road.DefaultConfig(), NameHistoryMatch)
	assert.ErrorIs(t, err, road.ErrConfiguration)

	p, err := New(road.DefaultConfig(), NameHistoryMatch, WithHistory(StaticHistory{}))
	require.NoError(t, err)
	assert.Equal(t, NameHistoryMatch, p.Name())
}

func TestNames(t *testing.T) {
	assert.Subset(t, Names(), []string{NameHistoryMatch, NameRoadVote, NameRuleCascade})
}

func TestEvaluate_GatingIsSharedByAllStrategies(t *testing.T) {
	for _, name := range []string{NameRoadVote, NameRuleCascade, NameHistoryMatch} {
		t.Run(name, func(t *testing.T) {
			p := newPredictor(t, name, WithHistory(StaticHistory{}))

			rec := p.Evaluate(nil)
			assert.Equal(t, road.VerdictInsufficientHistory, rec.Verdict)

			rec = p.Evaluate(outcome.Hands(B, T, P, T))
			assert.Equal(t, road.VerdictInsufficientHistory, rec.Verdict, "ties do not count toward history")

			rec = p.Evaluate(outcome.Hands(B, B, P, T))
			assert.Equal(t, road.VerdictHold, rec.Verdict)
			assert.False(t, rec.IsBet())
			assert.Equal(t, name, rec.Strategy)
		})
	}
}

func TestEvaluate_FourBankers(t *testing.T) {
	hands := outcome.Hands(B, B, B, B)

	vote := newPredictor(t, NameRoadVote).Evaluate(hands)
	assert.Equal(t, road.VerdictInsufficientHistory, vote.Verdict)
	require.Len(t, vote.Findings, 1)
	assert.Equal(t, road.PatternDragon, vote.Findings[0].Kind)
	assert.Equal(t, B, vote.Findings[0].Value)

	cascade := newPredictor(t, NameRuleCascade).Evaluate(hands)
	require.True(t, cascade.IsBet())
	assert.Equal(t, P, cascade.Outcome)
}

func TestEvaluate_SingleAlternation(t *testing.T) {
	hands := outcome.Hands(B, P, B, P, B, P, B, P)

	cascade := newPredictor(t, NameRuleCascade).Evaluate(hands)
	require.True(t, cascade.IsBet())
	assert.Equal(t, B, cascade.Outcome)
	assert.True(t, road.HasPattern(cascade.Findings, road.PatternSingleAlternation))

	vote := newPredictor(t, NameRoadVote).Evaluate(hands)
	require.True(t, vote.IsBet())
	assert.Equal(t, P, vote.Outcome, "all-match roads back a repeat of the last hand")
	require.Len(t, vote.Votes, 3)
}

func TestRoadVote(t *testing.T) {
	perCell := func(t *testing.T, edit func(*road.Config)) *Predictor {
		t.Helper()
		cfg := road.DefaultConfig()
		cfg.DerivedMode = road.DerivedPerCell
		if edit != nil {
			edit(&cfg)
		}
		p, err := New(cfg, NameRoadVote)
		require.NoError(t, err)
		return p
	}

	t.Run("match majority repeats", func(t *testing.T) {
		rec := perCell(t, nil).Evaluate(outcome.Hands(B, B, P, B, B, B, P, P))
		require.True(t, rec.IsBet())
		assert.Equal(t, P, rec.Outcome)
	})
	t.Run("break majority changes", func(t *testing.T) {
		rec := perCell(t, nil).Evaluate(outcome.Hands(B, B, B, B, B, B, P, B))
		require.True(t, rec.IsBet())
		assert.Equal(t, P, rec.Outcome)
	})
	t.Run("even votes", func(t *testing.T) {
		hands := outcome.Hands(B, B, P, B, B, B)
		rec := perCell(t, nil).Evaluate(hands)
		assert.Equal(t, road.VerdictNoBet, rec.Verdict)

		rec = perCell(t, func(c *road.Config) { c.VoteTie = road.VoteTieBigEye }).Evaluate(hands)
		require.True(t, rec.IsBet())
		assert.Equal(t, B, rec.Outcome)
	})
	t.Run("wider window", func(t *testing.T) {
		p := perCell(t, func(c *road.Config) { c.VoteWindow = 5 })
		// big eye boy: B B M B M, small: M B B B, cockroach: M -> 4 match / 6 break
		rec := p.Evaluate(outcome.Hands(B, B, P, B, B, B, P, P))
		require.True(t, rec.IsBet())
		assert.Equal(t, B, rec.Outcome)
		assert.Len(t, rec.Votes[0].Marks, 5)
		assert.Equal(t, 3, rec.Votes[1].Break)
	})
	t.Run("per column", func(t *testing.T) {
		cfg := road.DefaultConfig()
		cfg.VoteWindow = 5
		p, err := New(cfg, NameRoadVote)
		require.NoError(t, err)
		// big eye boy: B B, small: B, cockroach: none -> 0 match / 3 break
		rec := p.Evaluate(outcome.Hands(B, B, P, B, B, B, P, P))
		require.True(t, rec.IsBet())
		assert.Equal(t, B, rec.Outcome)
		require.Len(t, rec.Votes, 3)
		assert.Len(t, rec.Votes[0].Marks, 2)
		assert.Equal(t, 1, rec.Votes[1].Break)
		assert.Empty(t, rec.Votes[2].Marks)
	})
}

func TestRuleCascade(t *testing.T) {
	p := newPredictor(t, NameRuleCascade)

	hands := append(outcome.Hands(B, B), pointHand(t, "84"))
	rec := p.Evaluate(hands)
	require.True(t, rec.IsBet())
	assert.Equal(t, P, rec.Outcome)

	hands = append(outcome.Hands(P, P), pointHand(t, "46"))
	rec = p.Evaluate(hands)
	require.True(t, rec.IsBet())
	assert.Equal(t, B, rec.Outcome, "banker by two")

	hands = append(outcome.Hands(B, B), pointHand(t, "54"))
	rec = p.Evaluate(hands)
	require.True(t, rec.IsBet())
	assert.Equal(t, B, rec.Outcome, "narrow margin falls through to banker")

	rec = p.Evaluate(outcome.Hands(P, P, B))
	require.True(t, rec.IsBet())
	assert.Equal(t, B, rec.Outcome)
}

func TestHistoryMatch(t *testing.T) {
	archive := StaticHistory{
		{B, B, P, B, B, B, P, B, B, B, P, P},
		{P, T, P, P, B},
	}
	p := newPredictor(t, NameHistoryMatch, WithHistory(archive))

	rec := p.Evaluate(outcome.Hands(P, B, B, P))
	require.True(t, rec.IsBet())
	assert.Equal(t, B, rec.Outcome)

	rec = p.Evaluate(outcome.Hands(P, B, P))
	assert.Equal(t, road.VerdictNoBet, rec.Verdict, "PBP never occurs")

	// ties are skipped inside archived shoes: P T P P B reads as P P P B
	rec = p.Evaluate(outcome.Hands(P, P, P))
	require.True(t, rec.IsBet())
	assert.Equal(t, B, rec.Outcome)
}

func TestHistoryMatch_EvenSplitIsNoBet(t *testing.T) {
	p := newPredictor(t, NameHistoryMatch, WithHistory(StaticHistory{{B, B, B, B}, {B, B, B, P}}))
	rec := p.Evaluate(outcome.Hands(B, B, B))
	assert.Equal(t, road.VerdictNoBet, rec.Verdict)
}

func TestPredict_StoresLastAndResetGoesInsufficient(t *testing.T) {
	s, err := road.NewSession(road.DefaultConfig())
	require.NoError(t, err)
	for _, h := range outcome.Hands(B, B, B, B) {
		require.NoError(t, s.Record(h))
	}

	p := newPredictor(t, NameRuleCascade)
	rec := p.Predict(s)
	require.True(t, rec.IsBet())
	last, ok := s.LastRecommendation()
	require.True(t, ok)
	assert.Equal(t, rec, last)

	s.Reset()
	rec = p.Predict(s)
	assert.Equal(t, road.VerdictInsufficientHistory, rec.Verdict)
}

func TestEvaluate_NeverBetsTie(t *testing.T) {
	Register("always-tie", func(Options) (Strategy, error) { return tieStrategy{}, nil })
	p := newPredictor(t, "always-tie")
	rec := p.Evaluate(outcome.Hands(B, P, B))
	assert.Equal(t, road.VerdictNoBet, rec.Verdict)
	assert.False(t, rec.IsBet())
}

type tieStrategy struct{}

func (tieStrategy) Name() string { return "always-tie" }

func (tieStrategy) Decide(View) road.Recommendation { return road.Bet(outcome.Tie, "tie") }
