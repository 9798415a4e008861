// Package target implements the failure-scenario target service: a small HTTP
// server whose health endpoints reflect filesystem markers, environment
// variables, and the bound port. All mutation happens once at boot via
// BootstrapMarkers; every request handler is a pure reader.
package target

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// Server is the scenario health dispatcher.
//
// A non-empty Scenario pins the process to single-scenario mode: GET /
// evaluates that one precondition. An empty Scenario selects multi-scenario
// mode, where / serves an aggregate index and /service1../service3 evaluate
// the individual checks independently.
type Server struct {
	Scenario      domain.Scenario
	LockfilePath  string
	ReadyFlagPath string
	RequiredEnv   string
	ReadyAtBoot   bool
	Logger        ports.Logger
}

// New builds a server from target settings, applying defaults for anything
// unset. scenario may be empty for multi-scenario mode.
func New(settings domain.TargetSettings, scenario domain.Scenario, log ports.Logger) *Server {
	s := &Server{
		Scenario:      scenario,
		LockfilePath:  settings.Lockfile,
		ReadyFlagPath: settings.ReadyFlag,
		RequiredEnv:   settings.RequiredEnv,
		ReadyAtBoot:   settings.ReadyAtBoot,
		Logger:        log,
	}
	if s.LockfilePath == "" {
		s.LockfilePath = domain.DefaultLockfilePath
	}
	if s.ReadyFlagPath == "" {
		s.ReadyFlagPath = domain.DefaultReadyFlagPath
	}
	if s.RequiredEnv == "" {
		s.RequiredEnv = domain.DefaultRequiredEnv
	}
	return s
}

// Port returns the port this process should bind: the mismatch port for the
// port_mismatch scenario, the default target port otherwise.
func (s *Server) Port(settings domain.TargetSettings) int {
	normal := settings.Port
	if normal == 0 {
		normal = domain.DefaultTargetPort
	}
	mismatch := settings.MismatchPort
	if mismatch == 0 {
		mismatch = domain.MismatchTargetPort
	}
	if s.Scenario == domain.ScenarioPortMismatch {
		return mismatch
	}
	return normal
}

// BootstrapMarkers establishes the deterministic boot state: both markers are
// removed unconditionally, then scenario-specific setup runs. Exactly one
// reset happens per process boot, so no state leaks across restarts.
func (s *Server) BootstrapMarkers() error {
	for _, path := range []string{s.LockfilePath, s.ReadyFlagPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reset marker %s: %w", path, err)
		}
	}

	// stale_lockfile simulates a crashed process that never released its
	// lock: the marker is created at boot and nothing in this process will
	// ever remove it.
	if s.Scenario == domain.ScenarioStaleLockfile || s.Scenario == "" {
		if err := touch(s.LockfilePath); err != nil {
			return fmt.Errorf("create lockfile marker: %w", err)
		}
	}

	// The legacy startup deliberately omits the ready flag so the readiness
	// check fails until an operator intervenes; the corrected variant models
	// healthy-by-default.
	if s.ReadyAtBoot {
		if err := touch(s.ReadyFlagPath); err != nil {
			return fmt.Errorf("create readiness marker: %w", err)
		}
	}
	return nil
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/service1", s.handleScenario(domain.ScenarioStaleLockfile))
	mux.HandleFunc("/service2", s.handleScenario(domain.ScenarioReadinessProbeFail))
	mux.HandleFunc("/service3", s.handleScenario(domain.ScenarioBadEnvConfig))
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "reason": "not found"})
		return
	}
	if s.Scenario != "" {
		s.respondScenario(w, s.Scenario)
		return
	}

	// Multi-scenario index: every check evaluated independently. The index
	// itself stays 200 so probers can always enumerate the paths.
	type entry struct {
		Path     string          `json:"path"`
		Scenario domain.Scenario `json:"scenario"`
		Status   string          `json:"status"`
		Reason   string          `json:"reason,omitempty"`
	}
	entries := []entry{
		{Path: "/service1", Scenario: domain.ScenarioStaleLockfile},
		{Path: "/service2", Scenario: domain.ScenarioReadinessProbeFail},
		{Path: "/service3", Scenario: domain.ScenarioBadEnvConfig},
	}
	for i := range entries {
		if ok, reason := s.check(entries[i].Scenario); ok {
			entries[i].Status = "ok"
		} else {
			entries[i].Status = "error"
			entries[i].Reason = reason
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "services": entries})
}

func (s *Server) handleScenario(sc domain.Scenario) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondScenario(w, sc)
	}
}

func (s *Server) respondScenario(w http.ResponseWriter, sc domain.Scenario) {
	if !sc.Valid() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"reason": fmt.Sprintf("unknown scenario %s", sc),
		})
		return
	}
	if sc == domain.ScenarioPortMismatch {
		// The failure lives at the TCP layer: probers on the expected port
		// get connection refused. The process's own index stays healthy.
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"scenario": string(sc),
			"note":     "service listens on non-default port",
		})
		return
	}
	if ok, reason := s.check(sc); !ok {
		if s.Logger != nil {
			s.Logger.Debug("health check failed", map[string]interface{}{"scenario": sc, "reason": reason})
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "reason": reason})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "scenario": string(sc)})
}

// check evaluates one scenario precondition against observable state.
func (s *Server) check(sc domain.Scenario) (bool, string) {
	switch sc {
	case domain.ScenarioStaleLockfile:
		if fileExists(s.LockfilePath) {
			return false, fmt.Sprintf("stale lockfile present at %s", s.LockfilePath)
		}
		return true, ""
	case domain.ScenarioBadEnvConfig:
		if os.Getenv(s.RequiredEnv) == "" {
			return false, fmt.Sprintf("missing required env %s", s.RequiredEnv)
		}
		return true, ""
	case domain.ScenarioReadinessProbeFail:
		if !fileExists(s.ReadyFlagPath) {
			return false, fmt.Sprintf("missing readiness file %s", s.ReadyFlagPath)
		}
		return true, ""
	case domain.ScenarioPortMismatch:
		return true, ""
	}
	return false, fmt.Sprintf("unknown scenario %s", sc)
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
