package handicap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	"golang.org/x/oauth2"
)

const scoresPath = "/scores"

var (
	// ErrRejected is returned when the authority refuses a posting. Retrying
	// the same payload will not help.
	ErrRejected = errors.New("posting rejected by handicap authority")

	// ErrUnavailable is returned for transport failures and 5xx responses.
	ErrUnavailable = errors.New("handicap authority unavailable")
)

// Submitter posts normalized rounds to the handicap authority.
type Submitter interface {
	Submit(ctx context.Context, payload scoringdomain.PostingPayload) (string, error)
}

// Config configures the client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the handicap authority's score endpoint with a bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

type submitResponse struct {
	ID      string `json:"id"`
	ScoreID string `json:"score_id"`
}

type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// NewClient builds a client whose transport attaches cfg.Token to every request.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Token,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = timeout

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// Submit posts payload and returns the authority's score id.
func (c *Client) Submit(ctx context.Context, payload scoringdomain.PostingPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode posting: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scoresPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		reason := rejectionReason(raw)
		c.logger.WarnContext(ctx, "Handicap authority rejected posting",
			attr.String("golfer_id", payload.GolferID),
			attr.Int("status", resp.StatusCode),
			attr.String("reason", reason),
		)
		return "", fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, reason)
	}

	var out submitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	id := out.ID
	if id == "" {
		id = out.ScoreID
	}
	if id == "" {
		return "", fmt.Errorf("response carried no score id")
	}
	return id, nil
}

func rejectionReason(raw []byte) string {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil {
		if len(e.Errors) > 0 {
			return strings.Join(e.Errors, "; ")
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

var _ Submitter = (*Client)(nil)
