package scoringservice

import (
	"context"
	"sync"

	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Scoring Repo
// ------------------------

// FakeScoringRepository keeps games, snapshots and postings in memory. Any
// Func field that is set replaces the in-memory behaviour for that method.
type FakeScoringRepository struct {
	mu    sync.Mutex
	trace []string

	Games     map[string]*scoringdb.Game
	Snapshots map[string]*scoringdb.Snapshot
	Postings  map[uuid.UUID]*scoringdb.Posting

	GetGameFunc       func(ctx context.Context, db bun.IDB, gameID string) (*scoringdb.Game, error)
	UpsertGameFunc    func(ctx context.Context, db bun.IDB, game *scoringdb.Game) error
	GetSnapshotFunc   func(ctx context.Context, db bun.IDB, gameID string) (*scoringdb.Snapshot, error)
	SaveSnapshotFunc  func(ctx context.Context, db bun.IDB, snapshot *scoringdb.Snapshot) error
	CreatePostingFunc func(ctx context.Context, db bun.IDB, posting *scoringdb.Posting) error
}

// NewFakeScoringRepository initializes an empty fake.
func NewFakeScoringRepository() *FakeScoringRepository {
	return &FakeScoringRepository{
		trace:     []string{},
		Games:     map[string]*scoringdb.Game{},
		Snapshots: map[string]*scoringdb.Snapshot{},
		Postings:  map[uuid.UUID]*scoringdb.Posting{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeScoringRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeScoringRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeScoringRepository) GetGame(ctx context.Context, db bun.IDB, gameID string) (*scoringdb.Game, error) {
	f.record("GetGame")
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, db, gameID)
	}
	g, ok := f.Games[gameID]
	if !ok {
		return nil, scoringdb.ErrNotFound
	}
	cp := *g
	cp.Definition = g.Definition.Clone()
	return &cp, nil
}

func (f *FakeScoringRepository) UpsertGame(ctx context.Context, db bun.IDB, game *scoringdb.Game) error {
	f.record("UpsertGame")
	if f.UpsertGameFunc != nil {
		return f.UpsertGameFunc(ctx, db, game)
	}
	cp := *game
	cp.Definition = game.Definition.Clone()
	f.Games[game.ID] = &cp
	return nil
}

func (f *FakeScoringRepository) GetSnapshot(ctx context.Context, db bun.IDB, gameID string) (*scoringdb.Snapshot, error) {
	f.record("GetSnapshot")
	if f.GetSnapshotFunc != nil {
		return f.GetSnapshotFunc(ctx, db, gameID)
	}
	s, ok := f.Snapshots[gameID]
	if !ok {
		return nil, scoringdb.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *FakeScoringRepository) SaveSnapshot(ctx context.Context, db bun.IDB, snapshot *scoringdb.Snapshot) error {
	f.record("SaveSnapshot")
	if f.SaveSnapshotFunc != nil {
		return f.SaveSnapshotFunc(ctx, db, snapshot)
	}
	cp := *snapshot
	f.Snapshots[snapshot.GameID] = &cp
	return nil
}

func (f *FakeScoringRepository) CreatePosting(ctx context.Context, db bun.IDB, posting *scoringdb.Posting) error {
	f.record("CreatePosting")
	if f.CreatePostingFunc != nil {
		return f.CreatePostingFunc(ctx, db, posting)
	}
	if posting.ID == uuid.Nil {
		posting.ID = uuid.New()
	}
	cp := *posting
	f.Postings[posting.ID] = &cp
	return nil
}

func (f *FakeScoringRepository) GetPosting(ctx context.Context, db bun.IDB, id uuid.UUID) (*scoringdb.Posting, error) {
	f.record("GetPosting")
	p, ok := f.Postings[id]
	if !ok {
		return nil, scoringdb.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *FakeScoringRepository) UpdatePostingStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status scoringdb.PostingStatus, externalID, lastError string) error {
	f.record("UpdatePostingStatus")
	p, ok := f.Postings[id]
	if !ok {
		return scoringdb.ErrNotFound
	}
	p.Status = status
	p.ExternalID = externalID
	p.LastError = lastError
	p.Attempts++
	return nil
}

func (f *FakeScoringRepository) ListPostings(ctx context.Context, db bun.IDB, gameID string) ([]scoringdb.Posting, error) {
	f.record("ListPostings")
	var out []scoringdb.Posting
	for _, p := range f.Postings {
		if p.GameID == gameID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// ------------------------
// Fake Posting Queue
// ------------------------

// FakePostingQueue records enqueued postings.
type FakePostingQueue struct {
	Enqueued           []uuid.UUID
	EnqueuePostingFunc func(ctx context.Context, postingID uuid.UUID) error
}

func (q *FakePostingQueue) EnqueuePosting(ctx context.Context, postingID uuid.UUID) error {
	if q.EnqueuePostingFunc != nil {
		return q.EnqueuePostingFunc(ctx, postingID)
	}
	q.Enqueued = append(q.Enqueued, postingID)
	return nil
}

// Ensure the fakes satisfy their interfaces
var (
	_ scoringdb.Repository = (*FakeScoringRepository)(nil)
	_ PostingQueue         = (*FakePostingQueue)(nil)
)
