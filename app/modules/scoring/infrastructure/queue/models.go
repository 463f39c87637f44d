package scoringqueue

import "github.com/google/uuid"

// PostScoreJob submits one stored posting to the handicap authority.
type PostScoreJob struct {
	PostingID uuid.UUID `json:"posting_id"`
}

// Kind returns the job type identifier for River
func (PostScoreJob) Kind() string { return "post_score" }

// JobInfo represents information about a posting job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	PostingID   string `json:"posting_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
