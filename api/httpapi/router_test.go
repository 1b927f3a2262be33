package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogniscale/cortex/agent"
	agentcontext "github.com/cogniscale/cortex/agent/context"
	"github.com/cogniscale/cortex/api/auth"
	"github.com/cogniscale/cortex/config"
	"github.com/cogniscale/cortex/facade"
)

type stubAgent struct{ id, inputType string }

func (a *stubAgent) Metadata() agent.AgentMetadata {
	return agent.AgentMetadata{ID: a.id, Name: a.id, SupportedInputTypes: []string{a.inputType}}
}
func (a *stubAgent) ConfidenceThreshold() float64 { return 0.1 }
func (a *stubAgent) CognitivePreferences() agent.CognitivePreferences {
	return agent.DefaultCognitivePreferences()
}
func (a *stubAgent) CanHandle(inputType string) bool { return inputType == a.inputType }
func (a *stubAgent) AssessConfidence(context.Context, agent.Input, *agentcontext.Context) (float64, error) {
	return 0.9, nil
}
func (a *stubAgent) Execute(ctx context.Context, input agent.Input, _ *agentcontext.Context) (*agentcontext.AgentOutput, error) {
	return &agentcontext.AgentOutput{AgentID: a.id, OutputType: "text", Content: "ok: " + input.Content, Confidence: 0.9, Timestamp: time.Now()}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Facade.MaxConcurrentOperations = 2
	cfg.Facade.ComponentInitTimeout = time.Second
	f, err := facade.Initialize(cfg, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, f.Registry().RegisterAgent(&stubAgent{id: "a1", inputType: "greet"}))

	authn := auth.NewAuthenticator(config.AuthConfig{JWTSecret: "s", TokenTTL: time.Minute, APIKeyHeader: "X-API-Key"}, "cortex-test", nil)
	authn.RegisterAPIKey("test-key", auth.RoleDeveloper)

	return NewRouter(Deps{
		Facade:        f,
		Authenticator: authn,
	})
}

func TestRouter_HealthIsUnauthenticated(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_DispatchRequiresAuth(t *testing.T) {
	r := newTestRouter(t)
	body, _ := json.Marshal(dispatchRequestBody{InputType: "greet", Content: "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_DispatchSucceedsWithAPIKey(t *testing.T) {
	r := newTestRouter(t)
	body, _ := json.Marshal(dispatchRequestBody{InputType: "greet", Content: "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", bytes.NewReader(body))
	req.Header.Set("X-API-Key", "test-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out agentcontext.AgentOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "a1", out.AgentID)
}

func TestRouter_MetricsRequiresAuth(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_QueryParsesAndExecutes(t *testing.T) {
	r := newTestRouter(t)
	body, _ := json.Marshal(queryRequestBody{Query: "CONCEPTS"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	req.Header.Set("X-API-Key", "test-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_PrometheusMetricsIsUnauthenticatedAndScrapable(t *testing.T) {
	r := newTestRouter(t)

	healthReq := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(httptest.NewRecorder(), healthReq)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cortex_http_requests_total")
}

func TestRouter_CORSDeniesWithoutConfiguredOrigins(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
