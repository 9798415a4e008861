package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/pkg/logger"
	"github.com/doeshing/faultline/internal/services"
)

type stubEnv struct{}

func (stubEnv) LoadProject(string) error { return nil }
func (stubEnv) Status() domain.EnvStatus { return domain.EnvStatus{"OPENAI_API_KEY": false} }

type stubClassifier struct{}

func (stubClassifier) Classify(string) (domain.RiskAssessment, error) {
	return domain.RiskAssessment{Level: domain.RiskLow}, nil
}

func newTestServer(latency time.Duration) (*httptest.Server, *services.RunManager) {
	log := logger.NewStd(false)
	runner := services.NewSimRunner(stubClassifier{}, log)
	runner.SetLatency(latency)
	manager := services.NewRunManager(runner, stubEnv{}, nil, log, domain.DashboardSettings{})
	srv := NewServer(manager, stubEnv{}, log, domain.GatePolicy{MaxRisk: domain.RiskHigh})
	return httptest.NewServer(srv.Handler()), manager
}

func TestIndexServesPage(t *testing.T) {
	ts, _ := newTestServer(0)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %s", ct)
	}
}

func TestStateStartsIdle(t *testing.T) {
	ts, _ := newTestServer(0)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var state domain.RunState
	if err := json.NewDecoder(res.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Status != domain.RunIdle {
		t.Fatalf("status = %s", state.Status)
	}
}

func TestRunEndpointStartsAndConflicts(t *testing.T) {
	ts, manager := newTestServer(30 * time.Millisecond)
	defer ts.Close()

	payload := `{"mode":"optimized","incidents":6,"concurrency":2,"seed":3}`
	res, err := http.Post(ts.URL+"/api/run", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("first run status = %d", res.StatusCode)
	}

	res, err = http.Post(ts.URL+"/api/run", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("second run status = %d, want 409", res.StatusCode)
	}

	manager.Wait()

	snap := manager.Snapshot()
	if snap.Status != domain.RunCompleted {
		t.Fatalf("status = %s", snap.Status)
	}
	if snap.Config.Incidents != 6 || snap.Config.Concurrency != 2 {
		t.Fatalf("config = %+v", snap.Config)
	}
}

func TestStopEndpoint(t *testing.T) {
	ts, manager := newTestServer(50 * time.Millisecond)
	defer ts.Close()

	res, err := http.Post(ts.URL+"/api/run", "application/json",
		strings.NewReader(`{"incidents":20,"concurrency":1}`))
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	res, err = http.Post(ts.URL+"/api/stop", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var body struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.OK {
		t.Fatal("stop should report ok while a run is in flight")
	}
	manager.Wait()
}
