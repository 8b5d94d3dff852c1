package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/cors"

	"github.com/treetop-labs/selftest/runner"
)

type HealthzServer struct {
	ctx    context.Context
	server *http.Server

	// mu guards the latest observed run outcome. A fresh process
	// probes healthy until a run reports otherwise.
	mu      sync.RWMutex
	failing bool
	stats   runner.Stats
}

type healthzResponse struct {
	Status  string `json:"status"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

func (h *HealthzServer) Start(ctx context.Context, addr string) error {
	hdlr := http.NewServeMux()
	hdlr.HandleFunc("/healthz", h.Handle)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	server := &http.Server{
		Handler: c.Handler(hdlr),
		Addr:    addr,
	}
	h.server = server
	h.ctx = ctx
	return h.server.ListenAndServe()
}

func (h *HealthzServer) Shutdown() error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(h.ctx)
}

// SetStatus records the outcome of the most recent run.
func (h *HealthzServer) SetStatus(failing bool, stats runner.Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failing = failing
	h.stats = stats
}

func (h *HealthzServer) Handle(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := healthzResponse{
		Status:  "ok",
		Passed:  h.stats.Passed,
		Failed:  h.stats.Failed,
		Skipped: h.stats.Skipped,
	}
	failing := h.failing
	h.mu.RUnlock()

	code := http.StatusOK
	if failing {
		resp.Status = "failing"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}
