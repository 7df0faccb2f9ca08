package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type IdleLister interface {
	IdleKeys(ctx context.Context, ttl time.Duration) ([]string, time.Time, error)
}

// Expirer ends one shoe unless it was written at or after cutoff.
type Expirer interface {
	Expire(ctx context.Context, key string, cutoff time.Time) error
}

// IdleSessionJob ends every shoe untouched for longer than TTL.
type IdleSessionJob struct {
	sessions IdleLister
	bot      Expirer
	ttl      time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

func NewIdleSessionJob(sessions IdleLister, bot Expirer, ttl time.Duration, log zerolog.Logger) *IdleSessionJob {
	return &IdleSessionJob{
		sessions: sessions,
		bot:      bot,
		ttl:      ttl,
		timeout:  time.Minute,
		log:      log.With().Str("job", "idle_sessions").Logger(),
	}
}

func (j *IdleSessionJob) Name() string { return "idle_sessions" }

func (j *IdleSessionJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	keys, cutoff, err := j.sessions.IdleKeys(ctx, j.ttl)
	if err != nil {
		return fmt.Errorf("list idle sessions: %w", err)
	}
	var errs []error
	expired := 0
	for _, key := range keys {
		if err := j.bot.Expire(ctx, key, cutoff); err != nil {
			errs = append(errs, fmt.Errorf("expire %s: %w", key, err))
			continue
		}
		expired++
	}
	if expired > 0 {
		j.log.Info().Int("expired", expired).Int("idle", len(keys)).Msg("idle sessions expired")
	}
	return errors.Join(errs...)
}
