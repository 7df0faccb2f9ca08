// Package analyze runs the road engine once over a literal hand list. It backs the
// browser build and the stateless HTTP endpoint of the bot.
package analyze

import (
	"errors"
	"fmt"

	"baccarat-lite/outcome"
	"baccarat-lite/road"
	"baccarat-lite/road/predict"
)

// DefaultStrategy is used when a request names none.
const DefaultStrategy = predict.NameRuleCascade

type Request struct {
	// Tokens are single symbols or point pairs, e.g. ["莊", "84", "t"].
	Tokens []string `json:"tokens"`
	// Run is an alternative to Tokens: a compact symbol run such as "BBPT".
	Run      string       `json:"run,omitempty"`
	Strategy string       `json:"strategy,omitempty"`
	Config   *road.Config `json:"config,omitempty"`
	// History holds archived shoes as symbol runs, for history-match.
	History []string `json:"history,omitempty"`
}

type Response struct {
	OK             bool                 `json:"ok"`
	Snapshot       *road.Snapshot       `json:"snapshot,omitempty"`
	Recommendation *road.Recommendation `json:"recommendation,omitempty"`
	Error          *Error               `json:"error,omitempty"`
}

type Error struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("analyze error(reason=%s): %s", e.Reason, e.Message)
}

func fail(reason string, err error) Response {
	return Response{OK: false, Error: &Error{Reason: reason, Message: err.Error()}}
}

// Run never panics on bad input; every failure comes back as Response.Error.
func Run(req Request) Response {
	hands, err := parseHands(req)
	if err != nil {
		return fail("invalid_input", err)
	}

	cfg := road.DefaultConfig()
	if req.Config != nil {
		cfg = req.Config.WithDefaults()
	}
	name := req.Strategy
	if name == "" {
		name = DefaultStrategy
	}

	history := make(predict.StaticHistory, 0, len(req.History))
	for i, run := range req.History {
		seq, err := outcome.ParseRun(run)
		if err != nil {
			return fail("invalid_history", fmt.Errorf("history %d: %w", i, err))
		}
		history = append(history, seq)
	}

	p, err := predict.New(cfg, name, predict.WithHistory(history))
	if err != nil {
		if errors.Is(err, road.ErrConfiguration) {
			return fail("invalid_config", err)
		}
		return fail("predictor_init_failed", err)
	}
	session, err := road.RestoreSession(cfg, hands, nil)
	if err != nil {
		return fail("invalid_input", err)
	}

	rec := p.Predict(session)
	snap := session.Snapshot()
	return Response{OK: true, Snapshot: &snap, Recommendation: &rec}
}

func parseHands(req Request) ([]outcome.Hand, error) {
	if req.Run != "" {
		if len(req.Tokens) > 0 {
			return nil, errors.New("send tokens or run, not both")
		}
		seq, err := outcome.ParseRun(req.Run)
		if err != nil {
			return nil, err
		}
		return outcome.Hands(seq...), nil
	}
	hands := make([]outcome.Hand, 0, len(req.Tokens))
	for i, tok := range req.Tokens {
		h, err := outcome.Normalize(tok)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		hands = append(hands, h)
	}
	return hands, nil
}
