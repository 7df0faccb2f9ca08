package predict

import (
	"fmt"
	"sort"
	"sync"

	"baccarat-lite/outcome"
	"baccarat-lite/road"
)

const (
	NameRoadVote     = "road-vote"
	NameRuleCascade  = "rule-cascade"
	NameHistoryMatch = "history-match"
)

// Factory builds a strategy from the predictor's options.
type Factory func(opts Options) (Strategy, error)

// Options carries what a Factory may need beyond the road config.
type Options struct {
	History HistorySource
}

type Option func(*Options)

// WithHistory supplies archived shoes; required by history-match.
func WithHistory(src HistorySource) Option {
	return func(o *Options) { o.History = src }
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		NameRoadVote:    func(Options) (Strategy, error) { return RoadVote{}, nil },
		NameRuleCascade: func(Options) (Strategy, error) { return RuleCascade{}, nil },
		NameHistoryMatch: func(o Options) (Strategy, error) {
			if o.History == nil {
				return nil, road.ConfigError("history-match requires a history source")
			}
			return HistoryMatch{Source: o.History}, nil
		},
	}
)

// Register adds or replaces a named strategy.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Names lists registered strategies in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Predictor runs the shared gating and then one strategy.
type Predictor struct {
	cfg      road.Config
	strategy Strategy
}

// New validates cfg and resolves the strategy by name.
func New(cfg road.Config, name string, opts ...Option) (*Predictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, road.ConfigError(fmt.Sprintf("unknown strategy %q", name))
	}
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	s, err := factory(o)
	if err != nil {
		return nil, fmt.Errorf("build strategy %s: %w", name, err)
	}
	return &Predictor{cfg: cfg, strategy: s}, nil
}

func (p *Predictor) Name() string { return p.strategy.Name() }

func (p *Predictor) Config() road.Config { return p.cfg }

// Evaluate is a pure function of hands and configuration.
func (p *Predictor) Evaluate(hands []outcome.Hand) road.Recommendation {
	outcomes := outcome.Outcomes(hands)
	decisive := outcome.Decisive(outcomes)
	findings := road.DetectPatterns(outcomes, p.cfg.Patterns)

	var rec road.Recommendation
	switch {
	case len(decisive) < p.cfg.MinHistory:
		rec = road.InsufficientHistory(fmt.Sprintf("need %d non-tie hands, have %d", p.cfg.MinHistory, len(decisive)))
	case hands[len(hands)-1].Outcome == outcome.Tie:
		rec = road.Hold("last hand was a tie, watch one more hand")
	default:
		rec = p.strategy.Decide(View{
			Hands:    hands,
			Decisive: decisive,
			Roads:    road.BuildRoads(outcomes, p.cfg.DerivedMode),
			Findings: findings,
			Config:   p.cfg,
		})
		if rec.Verdict == road.VerdictBet && !rec.Outcome.Decisive() {
			rec = road.NoBet(fmt.Sprintf("strategy picked %s, which is never a bet", rec.Outcome))
		}
	}
	rec.Strategy = p.strategy.Name()
	rec.Findings = findings
	return rec
}

// Predict evaluates the session's hands and stores the result as its last
// recommendation.
func (p *Predictor) Predict(s *road.Session) road.Recommendation {
	rec := p.Evaluate(s.Hands())
	s.SetLastRecommendation(rec)
	return rec
}
