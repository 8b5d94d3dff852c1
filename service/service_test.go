package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treetop-labs/selftest/metrics"
	"github.com/treetop-labs/selftest/runner"
)

func getHealthz(t *testing.T, h *HealthzServer) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec.Code, rec.Body.String()
}

func TestHealthzReportsOkByDefault(t *testing.T) {
	h := &HealthzServer{}
	code, body := getHealthz(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","passed":0,"failed":0,"skipped":0}`, body)
}

func TestHealthzTracksFailures(t *testing.T) {
	h := &HealthzServer{}

	h.SetStatus(true, runner.Stats{Total: 3, Passed: 1, Failed: 2})
	code, body := getHealthz(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.JSONEq(t, `{"status":"failing","passed":1,"failed":2,"skipped":0}`, body)

	h.SetStatus(false, runner.Stats{Total: 3, Passed: 3})
	code, body = getHealthz(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","passed":3,"failed":0,"skipped":0}`, body)
}

func TestServiceSetResult(t *testing.T) {
	s := New(DefaultConfig())

	s.SetResult(nil)
	code, _ := getHealthz(t, s.Healthz)
	assert.Equal(t, http.StatusOK, code)

	s.SetResult(&runner.Result{
		Status: runner.StatusFail,
		Stats:  runner.Stats{Total: 2, Passed: 1, Failed: 1},
	})
	code, body := getHealthz(t, s.Healthz)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.JSONEq(t, `{"status":"failing","passed":1,"failed":1,"skipped":0}`, body)

	s.SetResult(&runner.Result{
		Status: runner.StatusPass,
		Stats:  runner.Stats{Total: 2, Passed: 2},
	})
	code, _ = getHealthz(t, s.Healthz)
	assert.Equal(t, http.StatusOK, code)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"all disabled", Config{}, false},
		{"metrics missing host", Config{Metrics: MetricsConfig{Enabled: true, Port: "7300"}}, true},
		{"healthz missing port", Config{Healthz: HealthzConfig{Enabled: true, Host: "0.0.0.0"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordSubtest("service-probe", "pass")

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "selftest_subtests_total")
}

func TestShutdownBeforeStart(t *testing.T) {
	s := New(DefaultConfig())
	assert.NotPanics(t, s.Shutdown)
}
