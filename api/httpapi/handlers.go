package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cogniscale/cortex/facade"
	"github.com/cogniscale/cortex/query"
	"github.com/cogniscale/cortex/simulation"
	"github.com/cogniscale/cortex/types"
)

func durationFromMS(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Handlers implements the cortex HTTP API's route bodies against a Facade.
type Handlers struct {
	facade *facade.Facade
	logger *zap.Logger
}

// NewHandlers builds Handlers for f. A nil logger defaults to zap.NewNop().
func NewHandlers(f *facade.Facade, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{facade: f, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForKind maps the domain error taxonomy to HTTP status codes.
func statusForKind(kind types.ErrorKind) int {
	switch kind {
	case types.ErrInvalidInput, types.ErrParse:
		return http.StatusBadRequest
	case types.ErrAuthFailed:
		return http.StatusUnauthorized
	case types.ErrNotFound:
		return http.StatusNotFound
	case types.ErrConflict:
		return http.StatusConflict
	case types.ErrRateLimited:
		return http.StatusTooManyRequests
	case types.ErrTimeout:
		return http.StatusGatewayTimeout
	case types.ErrUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var derr *types.Error
	if errors.As(err, &derr) {
		writeJSON(w, statusForKind(derr.Kind), map[string]string{"error": string(derr.Kind), "message": derr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": err.Error()})
}

// dispatchRequestBody is the wire shape accepted by POST /api/v1/dispatch.
type dispatchRequestBody struct {
	InputType string         `json:"input_type"`
	Content   string         `json:"content"`
	Data      map[string]any `json:"data,omitempty"`
	AgentID   string         `json:"agent_id,omitempty"`
	TimeoutMS int64          `json:"timeout_ms,omitempty"`
}

// Dispatch handles POST /api/v1/dispatch (§4.11, §6).
func (h *Handlers) Dispatch(w http.ResponseWriter, r *http.Request) {
	var body dispatchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body", "message": err.Error()})
		return
	}
	req := facade.DispatchRequest{
		InputType: body.InputType,
		Content:   body.Content,
		Data:      body.Data,
		AgentID:   body.AgentID,
	}
	if body.TimeoutMS > 0 {
		req.Timeout = durationFromMS(body.TimeoutMS)
	}
	out, err := h.facade.Dispatch(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Health handles GET /health and /healthz (§4.11).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	report := h.facade.Health(r.Context())
	status := http.StatusOK
	if report.Overall == facade.HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /api/v1/metrics (§4.11).
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.facade.Metrics())
}

// simulateRequestBody is the wire shape accepted by POST /api/v1/simulate.
type simulateRequestBody struct {
	Root        *simulation.SimulationState      `json:"root"`
	Actions     []simulation.Action              `json:"actions"`
	Constraints []simulation.SimulationConstraint `json:"constraints,omitempty"`
}

// Simulate handles POST /api/v1/simulate (§4.8, §4.11).
func (h *Handlers) Simulate(w http.ResponseWriter, r *http.Request) {
	var body simulateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body", "message": err.Error()})
		return
	}
	if body.Root == nil {
		body.Root = simulation.NewSimulationState()
	}
	result := h.facade.Simulate(r.Context(), body.Root, body.Actions, body.Constraints)
	writeJSON(w, http.StatusOK, result)
}

// queryRequestBody is the wire shape accepted by POST /api/v1/query.
type queryRequestBody struct {
	Query string `json:"query"`
}

// Query handles POST /api/v1/query, parsing the textual query language
// (§4.10) and delegating execution to the query engine held inside the
// facade's initialized subsystems via Dispatch-adjacent access.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	var body queryRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body", "message": err.Error()})
		return
	}
	parsed, err := query.Parse(body.Query)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "parse_error", "message": err.Error()})
		return
	}
	rows, err := h.facade.Query(r.Context(), parsed)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
