package openapidoc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSpec_IncludesCoreRoutes(t *testing.T) {
	spec := BuildSpec("1.0.0", nil)
	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Equal(t, "1.0.0", spec.Info.Version)

	for _, path := range []string{"/health", "/api/v1/dispatch", "/api/v1/metrics", "/api/v1/simulate", "/api/v1/query", "/ws"} {
		_, ok := spec.Paths[path]
		assert.Truef(t, ok, "expected path %s in generated spec", path)
	}
	require.NotNil(t, spec.Paths["/api/v1/dispatch"].Post)
	assert.Contains(t, spec.Paths["/api/v1/dispatch"].Post.Security, "bearerAuth")
}

func TestHandler_ServesValidJSON(t *testing.T) {
	h := Handler("1.0.0", []Server{{URL: "http://localhost:8080"}})
	r := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()
	h(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	var spec OpenAPISpec
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &spec))
	assert.Equal(t, "cortex API", spec.Info.Title)
}
