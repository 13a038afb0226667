package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/policy"
	"github.com/markqiu/red-blud-eyes/sim/remote"
	"github.com/markqiu/red-blud-eyes/sim/session"
)

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.WarnLevel)
}

type envelope struct {
	OK    bool           `json:"ok"`
	Valid *bool          `json:"valid"`
	Error string         `json:"error"`
	State *session.State `json:"state"`
}

func testRouter(t *testing.T, webDir string, factory session.RemoteFactory) *gin.Engine {
	t.Helper()
	if factory == nil {
		factory = func(remote.Style) sim.Policy { return policy.Perfect{} }
	}
	return newRouter(session.New(session.WithRemoteFactory(factory)), "secret", webDir)
}

func do(t *testing.T, r http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestAPI_HealthAndEmptyState(t *testing.T) {
	r := testRouter(t, "", nil)

	code, env := do(t, r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.OK)

	code, env = do(t, r, http.MethodGet, "/api/state", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.OK)
	assert.Nil(t, env.State)
}

func TestAPI_FullRun(t *testing.T) {
	r := testRouter(t, "", nil)

	code, env := do(t, r, http.MethodPost, "/api/init", `{"numRed": 2, "numBlue": 2, "villagerMode": "mixed_ends", "openaiStyle": "rational"}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	require.NotNil(t, env.State)
	assert.Equal(t, 2, env.State.NumRed)
	assert.Equal(t, "llm", env.State.Villagers[0].Kind)

	code, env = do(t, r, http.MethodPost, "/api/announce", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.State.AnnouncementMade)

	code, env = do(t, r, http.MethodPost, "/api/next", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.State.CurrentDay)

	code, env = do(t, r, http.MethodPost, "/api/run_all", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, env.State.CurrentDay)
	for _, v := range env.State.Villagers {
		assert.Equal(t, v.Eyes == sim.Red, v.Departed)
	}

	code, env = do(t, r, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, env.State)
}

func TestAPI_InitWithEmptyBodyUsesDefaults(t *testing.T) {
	r := testRouter(t, "", nil)

	code, env := do(t, r, http.MethodPost, "/api/init", "")
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, 0, env.State.NumRed)
	assert.Equal(t, session.ModeMixedEnds, env.State.VillagerMode)
}

func TestAPI_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"next before init", http.MethodPost, "/api/next", "", http.StatusBadRequest},
		{"announce before init", http.MethodPost, "/api/announce", "", http.StatusBadRequest},
		{"run_all before init", http.MethodPost, "/api/run_all", "", http.StatusBadRequest},
		{"population too large", http.MethodPost, "/api/init", `{"numRed": 150, "numBlue": 51}`, http.StatusBadRequest},
		{"negative population", http.MethodPost, "/api/init", `{"numRed": -1}`, http.StatusBadRequest},
		{"bad mode", http.MethodPost, "/api/init", `{"numRed": 1, "villagerMode": "x"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/init", `{"numRed":`, http.StatusBadRequest},
		{"unknown endpoint", http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, testRouter(t, "", nil), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, code)
			assert.False(t, env.OK)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestAPI_ConfigErrorIs500(t *testing.T) {
	failing := func(remote.Style) sim.Policy {
		return sim.PolicyFunc(func(context.Context, *sim.Agent, int, bool) (bool, error) {
			return false, remote.ErrMissingAPIKey
		})
	}
	r := testRouter(t, "", failing)

	code, _ := do(t, r, http.MethodPost, "/api/init", `{"numRed": 1, "numBlue": 1}`)
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, r, http.MethodPost, "/api/next", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, env.Error, "API key")
}

func TestAPI_VerifyPassword(t *testing.T) {
	r := testRouter(t, "", nil)

	_, env := do(t, r, http.MethodPost, "/api/verify_password", `{"password": "secret"}`)
	require.NotNil(t, env.Valid)
	assert.True(t, *env.Valid)

	_, env = do(t, r, http.MethodPost, "/api/verify_password", `{"password": "guess"}`)
	require.NotNil(t, env.Valid)
	assert.False(t, *env.Valid)
}

func TestAPI_StaticFilesAndMetrics(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>village</h1>"), 0o600))
	r := testRouter(t, dir, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "village")

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	code, env := do(t, r, http.MethodGet, "/api/missing", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.OK)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(session.ErrNotInitialized))
	assert.Equal(t, http.StatusBadRequest, statusFor(sim.ErrInvalidPopulation))
	assert.Equal(t, http.StatusInternalServerError, statusFor(remote.ErrMissingAPIKey))
}
