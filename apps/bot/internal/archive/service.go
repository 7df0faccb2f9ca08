// Package archive stores finished shoes and serves them back as history.
package archive

import (
	"context"
	"errors"
	"sort"
	"sync"

	"baccarat-lite/outcome"
	"baccarat-lite/road/predict"
	"baccarat-lite/shoe"
)

const defaultRecentLimit = 200

var (
	ErrNotFound = errors.New("shoe not found")
	ErrExists   = errors.New("shoe already archived")
)

// Service is the archive contract consumed by the bot and the admin API.
type Service interface {
	SaveShoe(ctx context.Context, s *shoe.Shoe) error
	// ImportShoe is SaveShoe without overwrite: a taken id fails with ErrExists.
	ImportShoe(ctx context.Context, s *shoe.Shoe) error
	GetShoe(ctx context.Context, id string) (*shoe.Shoe, error)
	// ListRecent returns newest first. An empty owner lists every owner.
	ListRecent(ctx context.Context, owner string, limit int) ([]*shoe.Shoe, error)
	// Clear removes the owner's shoes, or all shoes for an empty owner.
	Clear(ctx context.Context, owner string) (int, error)
	Close() error
}

// History loads up to limit recent shoes as a predictor history source.
func History(ctx context.Context, svc Service, limit int) (predict.StaticHistory, error) {
	shoes, err := svc.ListRecent(ctx, "", limit)
	if err != nil {
		return nil, err
	}
	out := make(predict.StaticHistory, 0, len(shoes))
	for _, s := range shoes {
		out = append(out, outcome.Outcomes(s.Hands))
	}
	return out, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > defaultRecentLimit {
		return defaultRecentLimit
	}
	return limit
}

// MemoryService keeps encoded shoes in process.
type MemoryService struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	order []string // insertion order
}

func NewMemoryService() *MemoryService {
	return &MemoryService{blobs: make(map[string][]byte)}
}

func (m *MemoryService) SaveShoe(_ context.Context, s *shoe.Shoe) error {
	b, err := shoe.Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[s.ID]; !ok {
		m.order = append(m.order, s.ID)
	}
	m.blobs[s.ID] = b
	return nil
}

func (m *MemoryService) ImportShoe(_ context.Context, s *shoe.Shoe) error {
	b, err := shoe.Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[s.ID]; ok {
		return ErrExists
	}
	m.order = append(m.order, s.ID)
	m.blobs[s.ID] = b
	return nil
}

func (m *MemoryService) GetShoe(_ context.Context, id string) (*shoe.Shoe, error) {
	m.mu.RLock()
	b, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return shoe.Decode(b)
}

func (m *MemoryService) ListRecent(_ context.Context, owner string, limit int) ([]*shoe.Shoe, error) {
	limit = normalizeLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*shoe.Shoe, 0, limit)
	for i := len(m.order) - 1; i >= 0; i-- {
		s, err := shoe.Decode(m.blobs[m.order[i]])
		if err != nil {
			return nil, err
		}
		if owner != "" && s.Owner != owner {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryService) Clear(_ context.Context, owner string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.order[:0]
	removed := 0
	for _, id := range m.order {
		if owner != "" {
			s, err := shoe.Decode(m.blobs[id])
			if err == nil && s.Owner != owner {
				kept = append(kept, id)
				continue
			}
		}
		delete(m.blobs, id)
		removed++
	}
	m.order = kept
	return removed, nil
}

func (m *MemoryService) Close() error { return nil }
