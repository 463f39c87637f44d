package scoringdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemoryRepository keeps scoring state in process. It backs the scorecard
// CLI and deployments without a database; the db argument is ignored.
type MemoryRepository struct {
	mu        sync.RWMutex
	games     map[string]*Game
	snapshots map[string]*Snapshot
	postings  map[uuid.UUID]*Posting
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		games:     map[string]*Game{},
		snapshots: map[string]*Snapshot{},
		postings:  map[uuid.UUID]*Posting{},
	}
}

var _ Repository = (*MemoryRepository)(nil)

func copyGame(g *Game) *Game {
	out := *g
	out.Definition = g.Definition.Clone()
	return &out
}

func (m *MemoryRepository) GetGame(ctx context.Context, db bun.IDB, gameID string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyGame(g), nil
}

func (m *MemoryRepository) UpsertGame(ctx context.Context, db bun.IDB, game *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	game.SpecName = game.Definition.Spec.Name
	game.SpecVersion = game.Definition.Spec.Version
	game.UpdatedAt = now
	if prev, ok := m.games[game.ID]; ok {
		game.CreatedAt = prev.CreatedAt
	} else if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	m.games[game.ID] = copyGame(game)
	return nil
}

func (m *MemoryRepository) GetSnapshot(ctx context.Context, db bun.IDB, gameID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *s
	return &out, nil
}

func (m *MemoryRepository) SaveSnapshot(ctx context.Context, db bun.IDB, snapshot *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snapshot.ComputedAt.IsZero() {
		snapshot.ComputedAt = time.Now()
	}
	s := *snapshot
	m.snapshots[snapshot.GameID] = &s
	return nil
}

func (m *MemoryRepository) CreatePosting(ctx context.Context, db bun.IDB, posting *Posting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if posting.ID == uuid.Nil {
		posting.ID = uuid.New()
	}
	if posting.Status == "" {
		posting.Status = PostingPending
	}
	now := time.Now()
	posting.CreatedAt, posting.UpdatedAt = now, now
	p := *posting
	m.postings[posting.ID] = &p
	return nil
}

func (m *MemoryRepository) GetPosting(ctx context.Context, db bun.IDB, id uuid.UUID) (*Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.postings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (m *MemoryRepository) UpdatePostingStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status PostingStatus, externalID, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.postings[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	p.Attempts++
	p.LastError = lastError
	if externalID != "" {
		p.ExternalID = externalID
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRepository) ListPostings(ctx context.Context, db bun.IDB, gameID string) ([]Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Posting
	for _, p := range m.postings {
		if p.GameID == gameID {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
