package trace

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

func stores(t *testing.T) map[string]ports.TraceRepository {
	t.Helper()
	return map[string]ports.TraceRepository{
		"sqlite": NewSQLiteStore(t.TempDir()),
		"jsonl":  NewJSONLStore(t.TempDir()),
	}
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Append(domain.TraceRecord{
				Scenario:    domain.ScenarioStaleLockfile,
				ServiceUp:   true,
				StepCount:   3,
				MaxRiskSeen: domain.RiskLow,
			})
			if err != nil {
				t.Fatalf("Append: %v", err)
			}
			records, err := store.Records(0, "")
			if err != nil {
				t.Fatalf("Records: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			if records[0].ID == "" {
				t.Error("record should receive a generated ID")
			}
			if records[0].Timestamp.IsZero() {
				t.Error("record should receive a timestamp")
			}
		})
	}
}

func TestRecordsNewestFirstWithLimitAndSearch(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			seed := []domain.TraceRecord{
				{IncidentID: "inc-0001", Scenario: domain.ScenarioStaleLockfile, Timestamp: base},
				{IncidentID: "inc-0002", Scenario: domain.ScenarioBadEnvConfig, Timestamp: base.Add(time.Minute)},
				{IncidentID: "inc-0003", Scenario: domain.ScenarioPortMismatch, Timestamp: base.Add(2 * time.Minute)},
			}
			for _, rec := range seed {
				if err := store.Append(rec); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			records, err := store.Records(2, "")
			if err != nil {
				t.Fatalf("Records: %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("limit not applied, got %d records", len(records))
			}
			if records[0].IncidentID != "inc-0003" {
				t.Fatalf("expected newest first, got %s", records[0].IncidentID)
			}

			records, err = store.Records(0, "bad_env")
			if err != nil {
				t.Fatalf("Records(search): %v", err)
			}
			if len(records) != 1 || records[0].IncidentID != "inc-0002" {
				t.Fatalf("search mismatch: %+v", records)
			}
		})
	}
}

func TestClearAndExport(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Append(domain.TraceRecord{Scenario: domain.ScenarioReadinessProbeFail}); err != nil {
				t.Fatalf("Append: %v", err)
			}
			dest := filepath.Join(t.TempDir(), "export.jsonl")
			if err := store.ExportJSON(dest); err != nil {
				t.Fatalf("ExportJSON: %v", err)
			}
			if err := store.Clear(); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			records, err := store.Records(0, "")
			if err != nil {
				t.Fatalf("Records after clear: %v", err)
			}
			if len(records) != 0 {
				t.Fatalf("expected empty store, got %d records", len(records))
			}
		})
	}
}
