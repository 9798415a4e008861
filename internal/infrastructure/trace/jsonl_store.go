package trace

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/pkg/filesystem"
	"github.com/doeshing/faultline/internal/ports"
)

// JSONLStore appends trace records to a jsonl file. It doubles as the
// degraded-mode fallback for the sqlite store.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONLStore creates a store under <dir>/traces.jsonl (dir defaults to
// ~/.faultline/trace).
func NewJSONLStore(dir string) *JSONLStore {
	if dir == "" {
		dir = filepath.Join(filesystem.UserHomeDir(), ".faultline", "trace")
	} else {
		dir = filesystem.ExpandPath(dir)
	}
	return &JSONLStore{path: filepath.Join(dir, "traces.jsonl")}
}

// Append implements ports.TraceRepository.
func (s *JSONLStore) Append(record domain.TraceRecord) error {
	record = withDefaults(record)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}

// Records loads entries, newest first (best-effort parse).
func (s *JSONLStore) Records(limit int, search string) ([]domain.TraceRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	var records []domain.TraceRecord
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) == 0 {
			continue
		}
		var rec domain.TraceRecord
		if err := json.Unmarshal(lines[i], &rec); err != nil {
			continue
		}
		if search != "" && !matches(rec, search) {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

// Clear removes the trace file.
func (s *JSONLStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExportJSON copies the trace file to dest.
func (s *JSONLStore) ExportJSON(dest string) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			data = nil
		} else {
			return err
		}
	}
	return os.WriteFile(dest, data, 0o644)
}

// Path returns the backing file path.
func (s *JSONLStore) Path() string {
	return s.path
}

func matches(rec domain.TraceRecord, search string) bool {
	needle := strings.ToLower(search)
	for _, hay := range []string{string(rec.Scenario), rec.IncidentID, rec.TraceKey} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

var _ ports.TraceRepository = (*JSONLStore)(nil)
