package scoringqueue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	loggerfrolfbot "github.com/Black-And-White-Club/frolf-bot-shared/observability/otel/logging"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/handicap"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// fakeRepo implements the posting half of scoringdb.Repository.
type fakeRepo struct {
	scoringdb.Repository

	postings map[uuid.UUID]*scoringdb.Posting
	updates  []scoringdb.PostingStatus
}

func (f *fakeRepo) GetPosting(_ context.Context, _ bun.IDB, id uuid.UUID) (*scoringdb.Posting, error) {
	p, ok := f.postings[id]
	if !ok {
		return nil, scoringdb.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) UpdatePostingStatus(_ context.Context, _ bun.IDB, id uuid.UUID, status scoringdb.PostingStatus, externalID, lastError string) error {
	p, ok := f.postings[id]
	if !ok {
		return scoringdb.ErrNotFound
	}
	f.updates = append(f.updates, status)
	p.Status, p.ExternalID, p.LastError = status, externalID, lastError
	p.Attempts++
	return nil
}

type fakeSubmitter struct {
	calls int
	id    string
	err   error
}

func (f *fakeSubmitter) Submit(context.Context, scoringdomain.PostingPayload) (string, error) {
	f.calls++
	return f.id, f.err
}

func newJob(id uuid.UUID) *river.Job[PostScoreJob] {
	return &river.Job[PostScoreJob]{
		JobRow: &rivertype.JobRow{ID: 42, Attempt: 1, Kind: PostScoreJob{}.Kind()},
		Args:   PostScoreJob{PostingID: id},
	}
}

func TestPostScoreWorker_Work(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		status     scoringdb.PostingStatus
		submitter  *fakeSubmitter
		wantCancel bool
		wantErr    bool
		wantStatus scoringdb.PostingStatus
		wantCalls  int
	}{
		{
			name:       "submitted",
			status:     scoringdb.PostingPending,
			submitter:  &fakeSubmitter{id: "score-1"},
			wantStatus: scoringdb.PostingSubmitted,
			wantCalls:  1,
		},
		{
			name:       "rejected is cancelled",
			status:     scoringdb.PostingPending,
			submitter:  &fakeSubmitter{err: fmt.Errorf("%w: bad tee", handicap.ErrRejected)},
			wantCancel: true,
			wantErr:    true,
			wantStatus: scoringdb.PostingFailed,
			wantCalls:  1,
		},
		{
			name:       "outage is retried",
			status:     scoringdb.PostingPending,
			submitter:  &fakeSubmitter{err: fmt.Errorf("%w: status 503", handicap.ErrUnavailable)},
			wantErr:    true,
			wantStatus: scoringdb.PostingPending,
			wantCalls:  1,
		},
		{
			name:       "already submitted is skipped",
			status:     scoringdb.PostingSubmitted,
			submitter:  &fakeSubmitter{id: "score-2"},
			wantStatus: scoringdb.PostingSubmitted,
			wantCalls:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{postings: map[uuid.UUID]*scoringdb.Posting{
				id: {ID: id, Status: tt.status, Payload: scoringdomain.PostingPayload{GolferID: "ghin-a"}},
			}}
			w := NewPostScoreWorker(loggerfrolfbot.NoOpLogger, repo, tt.submitter, rate.NewLimiter(rate.Inf, 1))

			err := w.Work(context.Background(), newJob(id))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.wantCancel {
				assert.ErrorIs(t, err, handicap.ErrRejected)
			}
			assert.Equal(t, tt.wantCalls, tt.submitter.calls)
			assert.Equal(t, tt.wantStatus, repo.postings[id].Status)
		})
	}
}

func TestPostScoreWorker_MissingPostingIsCancelled(t *testing.T) {
	repo := &fakeRepo{postings: map[uuid.UUID]*scoringdb.Posting{}}
	sub := &fakeSubmitter{}
	w := NewPostScoreWorker(loggerfrolfbot.NoOpLogger, repo, sub, nil)

	err := w.Work(context.Background(), newJob(uuid.New()))
	require.Error(t, err)
	assert.ErrorIs(t, err, scoringdb.ErrNotFound)
	assert.Zero(t, sub.calls)
}

func TestSubmissionOutcome(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus scoringdb.PostingStatus
		wantCancel bool
	}{
		{name: "ok", wantStatus: scoringdb.PostingSubmitted},
		{name: "rejected", err: fmt.Errorf("%w: tee", handicap.ErrRejected), wantStatus: scoringdb.PostingFailed, wantCancel: true},
		{name: "unavailable", err: handicap.ErrUnavailable, wantStatus: scoringdb.PostingPending},
		{name: "unknown", err: errors.New("decode"), wantStatus: scoringdb.PostingPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, cancel := submissionOutcome(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCancel, cancel)
		})
	}
}

func TestPostScoreJob_Kind(t *testing.T) {
	assert.Equal(t, "post_score", PostScoreJob{}.Kind())
}
