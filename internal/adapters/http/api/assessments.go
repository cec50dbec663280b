package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/mindcheck/internal/adapters/mq/worker"
	service "github.com/okian/mindcheck/internal/app"
	"github.com/okian/mindcheck/internal/domain/assessment"
	"github.com/okian/mindcheck/internal/domain/evaluation"
)

// AssessmentDependencies defines the evaluation operations used by the handler.
type AssessmentDependencies interface {
	Evaluate(ctx context.Context, s assessment.Snapshot) (service.Assessment, error)
	EvaluateBatch(ctx context.Context, snaps []assessment.Snapshot) ([]service.BatchItem, error)
}

// AssessmentsHandler handles assessment requests.
type AssessmentsHandler struct {
	deps         AssessmentDependencies
	maxBodyBytes int64
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps AssessmentDependencies, maxBodyBytes int64) *AssessmentsHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &AssessmentsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePostAssessment handles POST /assessments requests.
func (h *AssessmentsHandler) HandlePostAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assessment"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req snapshotRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	snap, err := req.toSnapshot()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	a, err := h.deps.Evaluate(r.Context(), snap)
	if err != nil {
		writeEvaluationError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandlePostBatch handles POST /assessments/batch requests.
func (h *AssessmentsHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assessment_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req batchRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	snaps := make([]assessment.Snapshot, len(req.Snapshots))
	for i, sr := range req.Snapshots {
		snap, err := sr.toSnapshot()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("snapshots[%d]: %w", i, err)))
			return
		}
		snaps[i] = snap
	}

	items, err := h.deps.EvaluateBatch(r.Context(), snaps)
	if err != nil {
		writeEvaluationError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Items: items})
}

func writeDecodeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrPayloadTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
}

// writeEvaluationError maps service errors to HTTP statuses.
func writeEvaluationError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, assessment.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, worker.ErrPoolStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, evaluation.ErrInternal):
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
