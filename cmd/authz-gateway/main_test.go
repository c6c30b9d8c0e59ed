package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dockwall/dockwall/app"
	"github.com/dockwall/dockwall/config"
	"github.com/dockwall/dockwall/internal/observability"
	"github.com/dockwall/dockwall/routes"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const gatewayRules = `
groups:
  admins:
    - alice
  developers:
    - bob

policies:
  - description: default fleet policy
    hosts:
      - "+.*"
    policies:
      - name: admins run anything
        members:
          - admins
        rules:
          any:
            allow:
      - name: developers own their containers
        members:
          - developers
        rules:
          container_create:
            container_name: "^$USER-.*"
          container:
            read_only:
    default:
      deny:
`

func newGateway(t *testing.T) (*httptest.Server, *app.Dependencies) {
	t.Helper()

	rulesFile := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(rulesFile, []byte(gatewayRules), 0o600))

	t.Setenv("RULES_FILE", rulesFile)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ADMIN_JWT_SECRET", "integration-test-secret")
	t.Setenv("ADMIN_AUTH_DISABLED", "")
	t.Setenv("GATEWAY_HOSTNAME", "gw1")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := config.New()
	require.NoError(t, err)

	deps, err := app.NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	srv := httptest.NewServer(routes.SetupRoutes(deps))
	t.Cleanup(srv.Close)
	return srv, deps
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "operator",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("integration-test-secret"))
	require.NoError(t, err)
	return signed
}

func authorize(t *testing.T, srv *httptest.Server, payload map[string]interface{}) (bool, string) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/AuthZPlugin.AuthZReq", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decision struct {
		Allow bool   `json:"Allow"`
		Msg   string `json:"Msg"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decision))
	return decision.Allow, decision.Msg
}

func TestGatewayPluginHandshake(t *testing.T) {
	srv, _ := newGateway(t)

	resp, err := http.Post(srv.URL+"/Plugin.Activate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Implements []string `json:"Implements"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"authz"}, body.Implements)
}

func TestGatewayAuthorizationFlow(t *testing.T) {
	srv, _ := newGateway(t)

	allowed, _ := authorize(t, srv, map[string]interface{}{
		"User":          "alice",
		"RequestMethod": "DELETE",
		"RequestUri":    "/v1.32/containers/anything",
	})
	assert.True(t, allowed, "admins run anything")

	allowed, _ = authorize(t, srv, map[string]interface{}{
		"User":          "bob",
		"RequestMethod": "POST",
		"RequestUri":    "/v1.32/containers/create?name=bob-web",
	})
	assert.True(t, allowed, "developers create containers under their own name")

	allowed, msg := authorize(t, srv, map[string]interface{}{
		"User":          "bob",
		"RequestMethod": "POST",
		"RequestUri":    "/v1.32/containers/create?name=alice-web",
	})
	assert.False(t, allowed, "developers cannot squat another identity")
	assert.Contains(t, msg, "alice-web")

	allowed, _ = authorize(t, srv, map[string]interface{}{
		"User":          "bob",
		"RequestMethod": "GET",
		"RequestUri":    "/v1.32/containers/bob-web/logs",
	})
	assert.True(t, allowed, "developers read container state")

	allowed, _ = authorize(t, srv, map[string]interface{}{
		"User":          "bob",
		"RequestMethod": "POST",
		"RequestUri":    "/v1.32/containers/bob-web/kill",
	})
	assert.False(t, allowed, "read-only policy refuses mutations")

	allowed, _ = authorize(t, srv, map[string]interface{}{
		"User":          "mallory",
		"RequestMethod": "GET",
		"RequestUri":    "/v1.32/info",
	})
	assert.False(t, allowed, "unknown callers hit the default deny")
}

func TestGatewayResponsePhaseAlwaysAllows(t *testing.T) {
	srv, _ := newGateway(t)

	resp, err := http.Post(srv.URL+"/AuthZPlugin.AuthZRes", "application/json",
		bytes.NewReader([]byte(`{"User": "mallory"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decision struct {
		Allow bool `json:"Allow"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decision))
	assert.True(t, decision.Allow)
}

func TestGatewayHealthEndpoints(t *testing.T) {
	srv, _ := newGateway(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGatewayAdminAPIGate(t *testing.T) {
	srv, _ := newGateway(t)

	get := func(token string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/config", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, get(""))
	assert.Equal(t, http.StatusForbidden, get(adminToken(t, "viewer")))
	assert.Equal(t, http.StatusOK, get(adminToken(t, "admin")))
}

func TestGatewayReloadPicksUpRuleChanges(t *testing.T) {
	srv, deps := newGateway(t)

	allowed, _ := authorize(t, srv, map[string]interface{}{
		"User":          "mallory",
		"RequestMethod": "GET",
		"RequestUri":    "/v1.32/info",
	})
	require.False(t, allowed)

	// Open the fleet up, then reload through the admin API.
	opened := `
groups:
  everyone:
    - "*"
policies:
  - description: open fleet
    hosts:
      - "+.*"
    policies:
      - name: everyone passes
        members:
          - everyone
        rules:
          any:
            allow:
    default:
      deny:
`
	require.NoError(t, os.WriteFile(deps.Config.Rules.File, []byte(opened), 0o600))

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/config/reload", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "admin"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	allowed, _ = authorize(t, srv, map[string]interface{}{
		"User":          "mallory",
		"RequestMethod": "GET",
		"RequestUri":    "/v1.32/info",
	})
	assert.True(t, allowed, "reload publishes the new configuration")
}

func TestLoggerConfigurations(t *testing.T) {
	for _, tt := range []struct{ level, format string }{
		{"info", "json"},
		{"debug", "console"},
		{"error", "json"},
	} {
		logger, err := observability.NewLogger(tt.level, tt.format)
		require.NoError(t, err, "%s/%s", tt.level, tt.format)
		require.NotNil(t, logger)
		_ = logger.Sync()
	}

	_, err := observability.NewLogger("not-a-level", "json")
	assert.Error(t, err)
}
