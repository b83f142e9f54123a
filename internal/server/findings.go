package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MeKo-Tech/contrastscan/internal/store"
	"github.com/MeKo-Tech/contrastscan/internal/wcag"
)

const (
	// DefaultFindingsLimit caps /api/findings responses without a limit parameter.
	DefaultFindingsLimit = 500
	// MaxFindingsLimit is the largest accepted limit parameter.
	MaxFindingsLimit = 10000
)

// FindingsHandler serves stored scan results.
type FindingsHandler struct {
	reader *store.Reader
	logger *slog.Logger
}

// FindingsConfig configures the findings handler.
type FindingsConfig struct {
	DBPath string
}

// RunResponse is the JSON form of a recorded run.
type RunResponse struct {
	StartedAt  string `json:"started_at"`
	ID         int64  `json:"id"`
	MinChannel int    `json:"min_channel"`
	MaxChannel int    `json:"max_channel"`
	Scanned    int    `json:"scanned"`
	Pass       int    `json:"pass"`
	FailSmall  int    `json:"fail_small"`
	FailLarge  int    `json:"fail_large"`
	Finished   bool   `json:"finished"`
}

// FindingsResponse is the JSON body of /api/findings.
type FindingsResponse struct {
	Run      RunResponse      `json:"run"`
	Findings []DeriveResponse `json:"findings"`
}

// NewFindingsHandler opens the results database.
func NewFindingsHandler(cfg FindingsConfig, logger *slog.Logger) (*FindingsHandler, error) {
	reader, err := store.OpenReader(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open results: %w", err)
	}

	return &FindingsHandler{
		reader: reader,
		logger: logger,
	}, nil
}

// Handler returns the HTTP handler function.
// Query parameters: run (defaults to the latest), level, limit (1..MaxFindingsLimit).
func (h *FindingsHandler) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveFindings(w, r)
	}
}

func (h *FindingsHandler) serveFindings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var level *wcag.Level
	if s := q.Get("level"); s != "" {
		l, ok := wcag.ParseLevel(s)
		if !ok {
			http.Error(w, "unknown level", http.StatusBadRequest)
			return
		}
		level = &l
	}

	limit := DefaultFindingsLimit
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > MaxFindingsLimit {
			http.Error(w, fmt.Sprintf("limit must be 1..%d", MaxFindingsLimit), http.StatusBadRequest)
			return
		}
		limit = v
	}

	var runID int64
	if s := q.Get("run"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			http.Error(w, "invalid run", http.StatusBadRequest)
			return
		}
		runID = v
	}

	run, err := h.selectRun(runID)
	if err != nil {
		if errors.Is(err, store.ErrNoRuns) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log().Error("Failed to read runs", "error", err)
		http.Error(w, "failed to read runs", http.StatusInternalServerError)
		return
	}

	findings, err := h.reader.Findings(run.ID, level, limit)
	if err != nil {
		h.log().Error("Failed to read findings", "run", run.ID, "error", err)
		http.Error(w, "failed to read findings", http.StatusInternalServerError)
		return
	}

	resp := FindingsResponse{
		Run: RunResponse{
			ID:         run.ID,
			StartedAt:  run.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			MinChannel: run.Meta.MinChannel,
			MaxChannel: run.Meta.MaxChannel,
			Scanned:    run.Stats.Scanned,
			Pass:       run.Stats.Pass,
			FailSmall:  run.Stats.FailSmall,
			FailLarge:  run.Stats.FailLarge,
			Finished:   run.Finished,
		},
		Findings: make([]DeriveResponse, 0, len(findings)),
	}
	for _, f := range findings {
		resp.Findings = append(resp.Findings, NewDeriveResponse(f))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log().Error("failed to encode findings", "error", err)
	}
}

// selectRun returns the run with the given id, or the latest run for id 0.
func (h *FindingsHandler) selectRun(want int64) (store.Run, error) {
	if want == 0 {
		return h.reader.LatestRun()
	}

	runs, err := h.reader.Runs()
	if err != nil {
		return store.Run{}, err
	}
	for _, run := range runs {
		if run.ID == want {
			return run, nil
		}
	}
	return store.Run{}, fmt.Errorf("run %d: %w", want, store.ErrNoRuns)
}

// Close closes the results database.
func (h *FindingsHandler) Close() error {
	return h.reader.Close()
}

func (h *FindingsHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
