// Package trace persists remediation outcomes for later inspection.
package trace

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/pkg/filesystem"
	"github.com/doeshing/faultline/internal/ports"
)

// SQLiteStore persists trace records in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) <dir>/traces.db. An empty dir defaults to
// ~/.faultline/trace. On open failure the store degrades to the JSONL
// fallback transparently.
func NewSQLiteStore(dir string) *SQLiteStore {
	if dir == "" {
		dir = filepath.Join(filesystem.UserHomeDir(), ".faultline", "trace")
	} else {
		dir = filesystem.ExpandPath(dir)
	}
	path := filepath.Join(dir, "traces.db")
	_ = os.MkdirAll(dir, 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS traces (
		id TEXT PRIMARY KEY,
		timestamp TEXT,
		run_id TEXT,
		incident_id TEXT,
		scenario TEXT,
		severity TEXT,
		service_up INTEGER,
		step_count INTEGER,
		latency_ms INTEGER,
		max_risk TEXT,
		trace_key TEXT,
		error TEXT
	);`)
	return err
}

// Append inserts a record, assigning an ID and timestamp when missing.
func (s *SQLiteStore) Append(record domain.TraceRecord) error {
	record = withDefaults(record)
	if s.db == nil {
		return (&JSONLStore{path: fallbackPath(s.path)}).Append(record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO traces
		(id, timestamp, run_id, incident_id, scenario, severity, service_up, step_count, latency_ms, max_risk, trace_key, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.UTC().Format(time.RFC3339),
		record.RunID,
		record.IncidentID,
		string(record.Scenario),
		string(record.Severity),
		boolToInt(record.ServiceUp),
		record.StepCount,
		record.LatencyMS,
		string(record.MaxRiskSeen),
		record.TraceKey,
		record.Error,
	)
	return err
}

// Records returns trace entries, newest first (limit/search optional).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.TraceRecord, error) {
	if s.db == nil {
		return (&JSONLStore{path: fallbackPath(s.path)}).Records(limit, search)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT id, timestamp, run_id, incident_id, scenario, severity, service_up, step_count, latency_ms, max_risk, trace_key, error FROM traces")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE scenario LIKE ? OR incident_id LIKE ? OR trace_key LIKE ?")
		needle := "%" + search + "%"
		args = append(args, needle, needle, needle)
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.TraceRecord
	for rows.Next() {
		var rec domain.TraceRecord
		var ts, scenario, severity, maxRisk string
		var serviceUp int
		if err := rows.Scan(&rec.ID, &ts, &rec.RunID, &rec.IncidentID, &scenario, &severity, &serviceUp, &rec.StepCount, &rec.LatencyMS, &maxRisk, &rec.TraceKey, &rec.Error); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Scenario = domain.Scenario(scenario)
		rec.Severity = domain.Severity(severity)
		rec.MaxRiskSeen = domain.RiskLevel(maxRisk)
		rec.ServiceUp = serviceUp == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all trace entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return (&JSONLStore{path: fallbackPath(s.path)}).Clear()
	}
	_, err := s.db.Exec("DELETE FROM traces")
	return err
}

// ExportJSON writes the trace table to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func withDefaults(record domain.TraceRecord) domain.TraceRecord {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	return record
}

func fallbackPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "traces.jsonl")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.TraceRepository = (*SQLiteStore)(nil)
