package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baccarat-lite/apps/bot/internal/config"
	"baccarat-lite/outcome"
	"baccarat-lite/shoe"
)

const (
	B = outcome.Banker
	P = outcome.Player
	T = outcome.Tie
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func services(t *testing.T) map[string]Service {
	t.Helper()
	sqlite, err := NewSQLiteService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Service{
		"memory": NewMemoryService(),
		"sqlite": sqlite,
	}
}

func mustShoe(t *testing.T, owner string, endOffset time.Duration, outcomes ...outcome.Outcome) *shoe.Shoe {
	t.Helper()
	s, err := shoe.New(owner, shoe.SourcePlayed, outcome.Hands(outcomes...), base, base.Add(endOffset))
	require.NoError(t, err)
	return s
}

func TestService_SaveAndGet(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := mustShoe(t, "U1", time.Minute, B, P, T, B)
			s.Tally = shoe.Tally{Hits: 2, Misses: 1, Streak: 1}
			require.NoError(t, svc.SaveShoe(ctx, s))

			got, err := svc.GetShoe(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, s.ID, got.ID)
			assert.Equal(t, "U1", got.Owner)
			assert.Equal(t, s.Hands, got.Hands)
			assert.Equal(t, s.Tally, got.Tally)
			assert.True(t, s.EndedAt.Equal(got.EndedAt))

			_, err = svc.GetShoe(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestService_ListRecentNewestFirst(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := mustShoe(t, "U1", time.Minute, B, B)
			second := mustShoe(t, "U2", 2*time.Minute, P, P)
			third := mustShoe(t, "U1", 3*time.Minute, B, P)
			for _, s := range []*shoe.Shoe{second, first, third} {
				require.NoError(t, svc.SaveShoe(ctx, s))
			}

			all, err := svc.ListRecent(ctx, "", 10)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

			mine, err := svc.ListRecent(ctx, "U1", 10)
			require.NoError(t, err)
			require.Len(t, mine, 2)
			assert.Equal(t, third.ID, mine[0].ID)

			limited, err := svc.ListRecent(ctx, "", 1)
			require.NoError(t, err)
			require.Len(t, limited, 1)
			assert.Equal(t, third.ID, limited[0].ID)
		})
	}
}

func TestService_SaveOverwrites(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := mustShoe(t, "U1", time.Minute, B)
			require.NoError(t, svc.SaveShoe(ctx, s))
			s.Hands = outcome.Hands(P, P, P)
			require.NoError(t, svc.SaveShoe(ctx, s))

			all, err := svc.ListRecent(ctx, "", 10)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Len(t, all[0].Hands, 3)
		})
	}
}

func TestService_ImportRejectsTakenID(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := mustShoe(t, "U1", time.Minute, B, P)
			require.NoError(t, svc.ImportShoe(ctx, s))

			dup := *s
			dup.Hands = outcome.Hands(P, P, P)
			assert.ErrorIs(t, svc.ImportShoe(ctx, &dup), ErrExists)

			got, err := svc.GetShoe(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, s.Hands, got.Hands, "import never overwrites")
		})
	}
}

func TestService_Clear(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, svc.SaveShoe(ctx, mustShoe(t, "U1", time.Minute, B)))
			require.NoError(t, svc.SaveShoe(ctx, mustShoe(t, "U2", 2*time.Minute, P)))
			require.NoError(t, svc.SaveShoe(ctx, mustShoe(t, "U1", 3*time.Minute, T, B)))

			n, err := svc.Clear(ctx, "U1")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			left, err := svc.ListRecent(ctx, "", 10)
			require.NoError(t, err)
			require.Len(t, left, 1)
			assert.Equal(t, "U2", left[0].Owner)

			n, err = svc.Clear(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			left, err = svc.ListRecent(ctx, "", 10)
			require.NoError(t, err)
			assert.Empty(t, left)
		})
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	require.NoError(t, svc.SaveShoe(ctx, mustShoe(t, "U1", time.Minute, B, T, P)))
	require.NoError(t, svc.SaveShoe(ctx, mustShoe(t, "U2", 2*time.Minute, P, P)))

	h, err := History(ctx, svc, 10)
	require.NoError(t, err)
	assert.Equal(t, [][]outcome.Outcome{{P, P}, {B, T, P}}, h.Shoes())
}

func TestNewServiceFromConfig(t *testing.T) {
	svc, mode, err := NewServiceFromConfig(&config.Config{ArchiveMode: config.StoreModeMemory})
	require.NoError(t, err)
	assert.Equal(t, config.StoreModeMemory, mode)
	assert.IsType(t, &MemoryService{}, svc)

	svc, _, err = NewServiceFromConfig(&config.Config{ArchiveMode: config.StoreModeSQLite, SQLitePath: t.TempDir() + "/archive.db"})
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	svc, _, err = NewServiceFromConfig(&config.Config{ArchiveMode: config.StoreModeRedis})
	assert.Error(t, err)
	assert.Nil(t, svc)

	_, _, err = NewServiceFromConfig(&config.Config{ArchiveMode: config.StoreModePostgres})
	assert.Error(t, err)
}
