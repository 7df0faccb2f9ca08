// Package bot runs chat commands against the road engine: it owns the shoe
// lifecycle, scoring, archiving and board pushes.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"baccarat-lite/apps/bot/internal/archive"
	"baccarat-lite/apps/bot/internal/codec"
	"baccarat-lite/apps/bot/internal/command"
	"baccarat-lite/apps/bot/internal/config"
	"baccarat-lite/apps/bot/internal/session"
	"baccarat-lite/outcome"
	"baccarat-lite/road"
	"baccarat-lite/road/predict"
	"baccarat-lite/shoe"
)

// Reply is what a transport sends back to the chat.
type Reply struct {
	Kind           command.Kind         `json:"kind"`
	Text           string               `json:"text"`
	Recommendation *road.Recommendation `json:"recommendation,omitempty"`
}

// Board is pushed to live viewers after every change to a shoe.
type Board struct {
	Key            string               `json:"key"`
	Snapshot       road.Snapshot        `json:"snapshot"`
	Recommendation *road.Recommendation `json:"recommendation,omitempty"`
	Tally          shoe.Tally           `json:"tally"`
	Ended          bool                 `json:"ended,omitempty"`
}

type Publisher interface {
	PublishBoard(key string, board Board)
}

type Config struct {
	Sessions     *session.Manager
	Archive      archive.Service
	Engine       config.EngineConfig
	HistoryLimit int
	Publisher    Publisher
	Log          zerolog.Logger
}

type Service struct {
	sessions     *session.Manager
	archive      archive.Service
	engine       config.EngineConfig
	historyLimit int
	publisher    Publisher
	log          zerolog.Logger
	now          func() time.Time
}

func New(cfg Config) (*Service, error) {
	if cfg.Sessions == nil || cfg.Archive == nil {
		return nil, errors.New("bot: sessions and archive are required")
	}
	// fail at startup rather than on the first message
	if _, err := predict.New(cfg.Engine.Road, cfg.Engine.Strategy, predict.WithHistory(predict.StaticHistory{})); err != nil {
		return nil, err
	}
	return &Service{
		sessions:     cfg.Sessions,
		archive:      cfg.Archive,
		engine:       cfg.Engine,
		historyLimit: cfg.HistoryLimit,
		publisher:    cfg.Publisher,
		log:          cfg.Log.With().Str("component", "bot").Logger(),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// HandleText runs one chat message for key. Unparseable text gets the help reply
// and no error; storage failures return FailureText together with the error.
func (s *Service) HandleText(ctx context.Context, key, text string) (Reply, error) {
	cmd, err := command.Parse(text)
	if err != nil {
		return Reply{Kind: command.KindHelp, Text: codec.HelpText}, nil
	}

	var reply Reply
	switch cmd.Kind {
	case command.KindHelp:
		return Reply{Kind: cmd.Kind, Text: codec.HelpText}, nil
	case command.KindImport:
		reply, err = s.importShoe(ctx, key, cmd.Hands)
	case command.KindSeed:
		reply, err = s.seed(ctx, key, cmd.Hands)
	case command.KindRecord:
		reply, err = s.record(ctx, key, cmd.Hands[0])
	case command.KindEnd:
		reply, err = s.end(ctx, key)
	case command.KindReset:
		reply, err = s.reset(ctx, key)
	case command.KindRoad:
		reply, err = s.board(ctx, key)
	default:
		return Reply{Kind: command.KindHelp, Text: codec.HelpText}, nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Str("command", cmd.Kind.String()).Msg("command failed")
		return Reply{Kind: cmd.Kind, Text: codec.FailureText}, err
	}
	reply.Kind = cmd.Kind
	return reply, nil
}

func (s *Service) predictor(ctx context.Context) (*predict.Predictor, error) {
	var opts []predict.Option
	if s.engine.Strategy == predict.NameHistoryMatch {
		history, err := archive.History(ctx, s.archive, s.historyLimit)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		opts = append(opts, predict.WithHistory(history))
	}
	return predict.New(s.engine.Road, s.engine.Strategy, opts...)
}

func (s *Service) importShoe(ctx context.Context, key string, hands []outcome.Hand) (Reply, error) {
	now := s.now()
	sh, err := shoe.New(key, shoe.SourceImported, hands, now, now)
	if err != nil {
		return Reply{}, err
	}
	if err := s.archive.SaveShoe(ctx, sh); err != nil {
		return Reply{}, err
	}
	s.log.Info().Str("key", key).Str("shoe_id", sh.ID).Int("hands", len(hands)).Msg("shoe imported")
	return Reply{Text: codec.Counts(sh.Summary())}, nil
}

func (s *Service) seed(ctx context.Context, key string, hands []outcome.Hand) (Reply, error) {
	p, err := s.predictor(ctx)
	if err != nil {
		return Reply{}, err
	}
	var (
		rec   road.Recommendation
		board Board
	)
	err = s.sessions.Do(ctx, key, func(st *session.State) error {
		st.Restart(s.now())
		for _, h := range hands {
			if err := st.Session.Record(h); err != nil {
				return err
			}
		}
		rec = p.Predict(st.Session)
		board = boardOf(st, &rec)
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	s.publish(board)
	snap := board.Snapshot
	return Reply{
		Text:           codec.Reply(codec.SeededText, codec.Recommendation(rec), codec.Patterns(snap.Patterns)),
		Recommendation: &rec,
	}, nil
}

func (s *Service) record(ctx context.Context, key string, h outcome.Hand) (Reply, error) {
	p, err := s.predictor(ctx)
	if err != nil {
		return Reply{}, err
	}
	var (
		rec   road.Recommendation
		score string
		board Board
	)
	err = s.sessions.Do(ctx, key, func(st *session.State) error {
		if last, ok := st.Session.LastRecommendation(); ok {
			if scored, hit := st.Tally.Observe(last, h.Outcome); scored {
				score = codec.Score(hit, st.Tally)
			}
		}
		if err := st.Session.Record(h); err != nil {
			return err
		}
		rec = p.Predict(st.Session)
		board = boardOf(st, &rec)
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	s.publish(board)
	return Reply{
		Text:           codec.Reply(codec.Hand(h), score, codec.Recommendation(rec), codec.Patterns(board.Snapshot.Patterns)),
		Recommendation: &rec,
	}, nil
}

func (s *Service) end(ctx context.Context, key string) (Reply, error) {
	var (
		text  string
		board Board
		ended bool
	)
	err := s.sessions.Do(ctx, key, func(st *session.State) error {
		st.Discard()
		if st.Session.Len() == 0 {
			text = codec.NoShoeText
			return nil
		}
		sh, err := s.archiveState(ctx, st)
		if err != nil {
			return err
		}
		text = codec.Summary(sh.Summary())
		board = boardOf(st, nil)
		board.Ended = true
		ended = true
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	if ended {
		s.publish(board)
	}
	return Reply{Text: text}, nil
}

func (s *Service) reset(ctx context.Context, key string) (Reply, error) {
	err := s.sessions.Do(ctx, key, func(st *session.State) error {
		st.Discard()
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	s.publish(Board{Key: key, Snapshot: road.Snapshot{Roads: road.BuildRoads(nil, s.engine.Road.DerivedMode)}})
	return Reply{Text: codec.ResetText}, nil
}

func (s *Service) board(ctx context.Context, key string) (Reply, error) {
	var text string
	err := s.sessions.Do(ctx, key, func(st *session.State) error {
		if st.Fresh {
			st.Discard()
		}
		text = codec.Board(st.Session.Snapshot())
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: text}, nil
}

// Expire archives and drops a shoe last written before cutoff. A shoe written since
// the idle scan is left alone. Empty sessions are dropped without archiving.
func (s *Service) Expire(ctx context.Context, key string, cutoff time.Time) error {
	return s.sessions.Do(ctx, key, func(st *session.State) error {
		if !st.Fresh && !st.UpdatedAt.Before(cutoff) {
			st.Keep()
			s.log.Debug().Str("key", key).Msg("shoe active again, not expired")
			return nil
		}
		st.Discard()
		if st.Session.Len() == 0 {
			return nil
		}
		sh, err := s.archiveState(ctx, st)
		if err != nil {
			return err
		}
		s.log.Info().Str("key", key).Str("shoe_id", sh.ID).Msg("idle shoe expired")
		return nil
	})
}

func (s *Service) archiveState(ctx context.Context, st *session.State) (*shoe.Shoe, error) {
	sh, err := shoe.New(st.Key, shoe.SourcePlayed, st.Session.Hands(), st.StartedAt, s.now())
	if err != nil {
		return nil, err
	}
	sh.Tally = st.Tally
	if err := s.archive.SaveShoe(ctx, sh); err != nil {
		return nil, fmt.Errorf("archive shoe %s: %w", sh.ID, err)
	}
	s.log.Info().Str("key", st.Key).Str("shoe_id", sh.ID).Int("hands", len(sh.Hands)).Msg("shoe archived")
	return sh, nil
}

func (s *Service) publish(b Board) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishBoard(b.Key, b)
}

func boardOf(st *session.State, rec *road.Recommendation) Board {
	return Board{
		Key:            st.Key,
		Snapshot:       st.Session.Snapshot(),
		Recommendation: rec,
		Tally:          st.Tally,
	}
}
