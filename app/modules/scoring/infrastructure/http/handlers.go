package scoringhttp

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	"github.com/go-chi/chi/v5"
)

// maxUploadBytes bounds scorecard uploads.
const maxUploadBytes = 5 << 20

// Handlers serves the scoring HTTP API.
type Handlers struct {
	service     scoringservice.Service
	logger      *slog.Logger
	defaultView scoringdomain.View
	now         func() time.Time
}

// NewHandlers creates the API handlers. defaultView applies to scoreboard
// reads that name no view; empty keeps the view the game was scored in.
func NewHandlers(service scoringservice.Service, logger *slog.Logger, defaultView scoringdomain.View) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{service: service, logger: logger, defaultView: defaultView, now: time.Now}
}

// internalError logs an infrastructure error and answers 500.
func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "HTTP request failed",
		attr.String("operation", op),
		attr.String("path", r.URL.Path),
		attr.Error(err),
	)
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (h *Handlers) ListSpecs(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListSpecs(r.Context())
	if err != nil {
		h.internalError(w, r, "ListSpecs", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	specs := []scoringdomain.GameSpec{}
	if res.Success != nil && *res.Success != nil {
		specs = *res.Success
	}
	writeJSON(w, http.StatusOK, specs)
}

func (h *Handlers) GetSpec(w http.ResponseWriter, r *http.Request) {
	version := 0
	if v := r.URL.Query().Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "version must be a non-negative integer")
			return
		}
		version = n
	}

	res, err := h.service.GetSpec(r.Context(), chi.URLParam(r, "name"), version)
	if err != nil {
		h.internalError(w, r, "GetSpec", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

// ComputeScoreboard scores a game posted in the body without storing it.
func (h *Handlers) ComputeScoreboard(w http.ResponseWriter, r *http.Request) {
	var game scoringdomain.Game
	if err := json.NewDecoder(r.Body).Decode(&game); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to decode request body: %v", err))
		return
	}

	res, err := h.service.ComputeScoreboard(r.Context(), game)
	if err != nil {
		h.internalError(w, r, "ComputeScoreboard", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

// SaveGame stores the game in the body under the id in the path.
func (h *Handlers) SaveGame(w http.ResponseWriter, r *http.Request) {
	var game scoringdomain.Game
	if err := json.NewDecoder(r.Body).Decode(&game); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to decode request body: %v", err))
		return
	}
	game.ID = chi.URLParam(r, "gameID")

	res, err := h.service.SaveGame(r.Context(), game)
	if err != nil {
		h.internalError(w, r, "SaveGame", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

func (h *Handlers) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	view, ok := h.viewParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "view must be gross, net or points")
		return
	}

	sb, done := h.scoreboard(w, r, view)
	if done {
		return
	}
	writeJSON(w, http.StatusOK, sb)
}

func (h *Handlers) RecomputeGame(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.RecomputeGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.internalError(w, r, "RecomputeGame", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

type recordScoreRequest struct {
	PlayerID   string    `json:"player_id"`
	Hole       int       `json:"hole"`
	Key        string    `json:"key,omitempty"`
	Value      string    `json:"value"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

func (h *Handlers) RecordScore(w http.ResponseWriter, r *http.Request) {
	var input recordScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to decode request body: %v", err))
		return
	}
	if input.PlayerID == "" || input.Hole <= 0 {
		writeError(w, http.StatusBadRequest, "player_id and a positive hole are required")
		return
	}

	res, err := h.service.RecordScore(r.Context(), scoringservice.ScoreUpdate{
		GameID:     chi.URLParam(r, "gameID"),
		PlayerID:   input.PlayerID,
		Hole:       input.Hole,
		Key:        input.Key,
		Value:      input.Value,
		RecordedAt: input.RecordedAt,
	})
	if err != nil {
		h.internalError(w, r, "RecordScore", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

// ImportScorecard applies an uploaded CSV or XLSX card to a stored game. The
// file is the multipart field "file".
func (h *Handlers) ImportScorecard(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := readUpload(w, r)
	if !ok {
		return
	}

	res, err := h.service.ImportScorecardIntoGame(r.Context(), chi.URLParam(r, "gameID"), filename, data)
	if err != nil {
		h.internalError(w, r, "ImportScorecardIntoGame", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

// ParseScorecard returns the content of an uploaded card without applying it.
func (h *Handlers) ParseScorecard(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := readUpload(w, r)
	if !ok {
		return
	}

	res, err := h.service.ImportScorecard(r.Context(), filename, data)
	if err != nil {
		h.internalError(w, r, "ImportScorecard", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

// RunningTotalsChart renders the stored scoreboard as a PNG line chart.
func (h *Handlers) RunningTotalsChart(w http.ResponseWriter, r *http.Request) {
	view, ok := h.viewParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "view must be gross, net or points")
		return
	}
	sb, done := h.scoreboard(w, r, view)
	if done {
		return
	}

	png, err := h.service.RenderRunningTotals(r.Context(), sb)
	if err != nil {
		h.internalError(w, r, "RenderRunningTotals", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handlers) ListPostings(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListPostings(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.internalError(w, r, "ListPostings", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, res.Success)
}

// PreviewPosting returns the payload a posting would send, storing nothing.
func (h *Handlers) PreviewPosting(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.BuildPosting(r.Context(), scoringservice.PostingRequest{
		GameID:    chi.URLParam(r, "gameID"),
		PlayerID:  chi.URLParam(r, "playerID"),
		ScoreType: r.URL.Query().Get("score_type"),
	})
	if err != nil {
		h.internalError(w, r, "BuildPosting", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

type submitPostingRequest struct {
	PlayerID  string `json:"player_id"`
	ScoreType string `json:"score_type,omitempty"`
}

// SubmitPosting stores a posting and queues it, answering 202.
func (h *Handlers) SubmitPosting(w http.ResponseWriter, r *http.Request) {
	var input submitPostingRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to decode request body: %v", err))
		return
	}

	res, err := h.service.SubmitPosting(r.Context(), scoringservice.PostingRequest{
		GameID:    chi.URLParam(r, "gameID"),
		PlayerID:  input.PlayerID,
		ScoreType: input.ScoreType,
	})
	if err != nil {
		h.internalError(w, r, "SubmitPosting", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusAccepted, *res.Success)
}

type settleRequest struct {
	Pools    []scoringdomain.Pool `json:"pools"`
	PotCents int64                `json:"pot_cents"`
}

// Settle splits a pot over the stored game's results.
func (h *Handlers) Settle(w http.ResponseWriter, r *http.Request) {
	var input settleRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to decode request body: %v", err))
		return
	}
	sb, done := h.scoreboard(w, r, "")
	if done {
		return
	}

	res, err := h.service.Settle(r.Context(), sb, input.Pools, input.PotCents)
	if err != nil {
		h.internalError(w, r, "Settle", err)
		return
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, *res.Success)
}

type playedAtRequest struct {
	Input string `json:"input"`
}

type playedAtResponse struct {
	PlayedAt string `json:"played_at"`
}

// ParsePlayedAt resolves a free-form date such as "yesterday".
func (h *Handlers) ParsePlayedAt(w http.ResponseWriter, r *http.Request) {
	var input playedAtRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to decode request body: %v", err))
		return
	}
	t, err := h.service.ParsePlayedAt(input.Input, h.now())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playedAtResponse{PlayedAt: t.Format(scoringdomain.PlayedAtLayout)})
}

// scoreboard loads the stored scoreboard of the path's game. done is true
// when a response was already written.
func (h *Handlers) scoreboard(w http.ResponseWriter, r *http.Request, view scoringdomain.View) (*scoringdomain.Scoreboard, bool) {
	res, err := h.service.GetScoreboard(r.Context(), chi.URLParam(r, "gameID"), view)
	if err != nil {
		h.internalError(w, r, "GetScoreboard", err)
		return nil, true
	}
	if res.Failure != nil {
		writeFailure(w, *res.Failure)
		return nil, true
	}
	return *res.Success, false
}

func (h *Handlers) viewParam(r *http.Request) (scoringdomain.View, bool) {
	v := r.URL.Query().Get("view")
	if v == "" {
		return h.defaultView, true
	}
	return scoringdomain.ParseView(v)
}

func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read upload: %v", err))
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read upload: %v", err))
		return "", nil, false
	}
	return header.Filename, data, true
}
