// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	service "github.com/okian/mindcheck/internal/app"
	"github.com/okian/mindcheck/internal/domain/assessment"
	"github.com/okian/mindcheck/internal/domain/keywords"
	"github.com/okian/mindcheck/internal/domain/rules"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AssessmentDependencies
	RulesDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	assessmentsHandler *AssessmentsHandler
	rulesHandler       *RulesHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	o := serverOptions{maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}

	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider, deps),
		assessmentsHandler: NewAssessmentsHandler(deps, o.maxBodyBytes),
		rulesHandler:       NewRulesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rules", MetricsMiddleware(s.rulesHandler.HandleGetRules, "rules"))
	mux.HandleFunc("/assessments/batch", MetricsMiddleware(s.assessmentsHandler.HandlePostBatch, "assessments_batch"))
	mux.HandleFunc("/assessments", MetricsMiddleware(s.assessmentsHandler.HandlePostAssessment, "assessments"))
}

// snapshotRequest mirrors the POST /assessments body. Every answer except
// free_text is required.
type snapshotRequest struct {
	Mood                *assessment.Mood          `json:"mood"`
	Stress              *int                      `json:"stress"`
	SleepQuality        *assessment.SleepQuality  `json:"sleep_quality"`
	SleepHours          *float64                  `json:"sleep_hours"`
	Energy              *assessment.Level         `json:"energy"`
	Motivation          *assessment.Level         `json:"motivation"`
	Concentration       *assessment.Concentration `json:"concentration"`
	Appetite            *assessment.Appetite      `json:"appetite"`
	Social              *assessment.Social        `json:"social"`
	Workload            *assessment.Workload      `json:"workload"`
	SymptomDurationDays *int                      `json:"symptom_duration_days"`
	SelfHarmIdeation    *bool                     `json:"self_harm_ideation"`
	FreeText            string                    `json:"free_text"`
}

func (r snapshotRequest) toSnapshot() (assessment.Snapshot, error) {
	switch {
	case r.Mood == nil:
		return assessment.Snapshot{}, errors.New("missing mood")
	case r.Stress == nil:
		return assessment.Snapshot{}, errors.New("missing stress")
	case r.SleepQuality == nil:
		return assessment.Snapshot{}, errors.New("missing sleep_quality")
	case r.SleepHours == nil:
		return assessment.Snapshot{}, errors.New("missing sleep_hours")
	case r.Energy == nil:
		return assessment.Snapshot{}, errors.New("missing energy")
	case r.Motivation == nil:
		return assessment.Snapshot{}, errors.New("missing motivation")
	case r.Concentration == nil:
		return assessment.Snapshot{}, errors.New("missing concentration")
	case r.Appetite == nil:
		return assessment.Snapshot{}, errors.New("missing appetite")
	case r.Social == nil:
		return assessment.Snapshot{}, errors.New("missing social")
	case r.Workload == nil:
		return assessment.Snapshot{}, errors.New("missing workload")
	case r.SymptomDurationDays == nil:
		return assessment.Snapshot{}, errors.New("missing symptom_duration_days")
	case r.SelfHarmIdeation == nil:
		return assessment.Snapshot{}, errors.New("missing self_harm_ideation")
	}
	return assessment.Snapshot{
		Mood:                *r.Mood,
		Stress:              *r.Stress,
		SleepQuality:        *r.SleepQuality,
		SleepHours:          *r.SleepHours,
		Energy:              *r.Energy,
		Motivation:          *r.Motivation,
		Concentration:       *r.Concentration,
		Appetite:            *r.Appetite,
		Social:              *r.Social,
		Workload:            *r.Workload,
		SymptomDurationDays: *r.SymptomDurationDays,
		SelfHarmIdeation:    *r.SelfHarmIdeation,
		FreeText:            r.FreeText,
	}, nil
}

type batchRequest struct {
	Snapshots []snapshotRequest `json:"snapshots"`
}

type batchResponse struct {
	Items []service.BatchItem `json:"items"`
}

type rulesResponse struct {
	Rules    []rules.Descriptor `json:"rules"`
	Tiers    []rules.Tier       `json:"tiers"`
	Triggers []keywords.Trigger `json:"triggers"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeJSON reads one JSON document of at most limit bytes into v.
// Unknown fields and trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: limit %d bytes", ErrPayloadTooLarge, maxErr.Limit)
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
