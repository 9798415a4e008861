// Package dashboard serves the fan-out control panel over HTTP.
package dashboard

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
	"github.com/doeshing/faultline/internal/services"
)

//go:embed index.html
var indexHTML []byte

// Server exposes the run manager as a small JSON API plus a static page.
type Server struct {
	manager *services.RunManager
	env     ports.EnvReporter
	logger  ports.Logger
	policy  domain.GatePolicy
}

// NewServer builds a dashboard server around a run manager.
func NewServer(manager *services.RunManager, env ports.EnvReporter, logger ports.Logger, policy domain.GatePolicy) *Server {
	return &Server{manager: manager, env: env, logger: logger, policy: policy}
}

// runRequest is the POST /api/run payload. Field names follow the dashboard
// page's form model.
type runRequest struct {
	Mode              string `json:"mode"`
	Optimizer         string `json:"optimizer"`
	Incidents         int    `json:"incidents"`
	Concurrency       int    `json:"concurrency"`
	Seed              int64  `json:"seed"`
	SimulateLatencyMS int    `json:"simulate_latency_ms"`
	TargetURL         string `json:"target_url"`
	TargetContainer   string `json:"target_container"`
	MaxSecurityRisk   string `json:"max_security_risk"`
	ConfirmRiskAt     string `json:"require_confirmation_for_risk"`
	AutoConfirm       bool   `json:"auto_confirm"`
	EnvFile           string `json:"env_file"`
	StrategyHint      string `json:"strategy_hint"`
}

func (r runRequest) toConfig(base domain.GatePolicy) domain.RunConfig {
	policy := base
	if r.MaxSecurityRisk != "" {
		policy.MaxRisk = domain.ParseRiskLevel(r.MaxSecurityRisk)
	}
	if r.ConfirmRiskAt != "" {
		policy.ConfirmAt = domain.ParseRiskLevel(r.ConfirmRiskAt)
	}
	policy.AutoConfirm = policy.AutoConfirm || r.AutoConfirm

	return domain.RunConfig{
		Mode:            r.Mode,
		Optimizer:       r.Optimizer,
		Incidents:       r.Incidents,
		Concurrency:     r.Concurrency,
		Seed:            r.Seed,
		SimulateLatency: time.Duration(r.SimulateLatencyMS) * time.Millisecond,
		TargetURL:       r.TargetURL,
		TargetContainer: r.TargetContainer,
		Policy:          policy,
		StrategyHint:    r.StrategyHint,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/run", s.handleRun)
	mux.HandleFunc("POST /api/stop", s.handleStop)
	return mux
}

// ListenAndServe blocks until the context is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("dashboard listening", map[string]interface{}{"addr": addr})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Snapshot())
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.Body != nil {
		// An empty or malformed body falls back to defaults, matching how
		// the page submits partial forms.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := s.env.LoadProject(req.EnvFile); err != nil {
		s.logger.Warn("env file load failed", map[string]interface{}{"error": err.Error()})
	}

	ok, msg := s.manager.Start(req.toConfig(s.policy))
	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]interface{}{
		"ok":      ok,
		"message": msg,
		"state":   s.manager.Snapshot(),
	})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	stopped := s.manager.Stop()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    stopped,
		"state": s.manager.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
