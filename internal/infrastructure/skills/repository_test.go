package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doeshing/faultline/internal/domain"
)

func TestListEmbeddedDefaults(t *testing.T) {
	// Point at a root that does not exist so the embedded set serves.
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing"))

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{"bad-env-config", "port-mismatch", "readiness-probe-fail", "stale-lockfile"}
	if len(list) != len(want) {
		t.Fatalf("expected %d skills, got %d", len(want), len(list))
	}
	for i, skill := range list {
		if skill.ID != want[i] {
			t.Errorf("skill[%d] = %s, want %s", i, skill.ID, want[i])
		}
		if skill.Summary == "" {
			t.Errorf("skill %s missing description", skill.ID)
		}
	}
}

func TestSelectByScenario(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing"))

	sel, err := repo.Select(domain.ScenarioReadinessProbeFail, "")
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if sel.SkillID != "readiness-probe-fail" {
		t.Fatalf("expected readiness-probe-fail, got %s", sel.SkillID)
	}
	if !strings.Contains(sel.StrategyHint, "ready.flag") {
		t.Fatalf("hint should mention ready.flag, got %q", sel.StrategyHint)
	}
}

func TestSelectByKeywordRouting(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing"))

	tests := []struct {
		report string
		want   string
	}{
		{"deployment fails with missing REQUIRED_API_KEY", "bad-env-config"},
		{"probe stays red, ready.flag absent", "readiness-probe-fail"},
		{"connection refused, maybe listening on 5001", "port-mismatch"},
		{"previous crash left a lock behind", "stale-lockfile"},
		{"something entirely unrelated", "stale-lockfile"},
	}
	for _, tt := range tests {
		sel, err := repo.Select("", tt.report)
		if err != nil {
			t.Fatalf("Select(%q) error: %v", tt.report, err)
		}
		if sel.SkillID != tt.want {
			t.Errorf("Select(%q) = %s, want %s", tt.report, sel.SkillID, tt.want)
		}
	}
}

func TestDiskRootShadowsEmbedded(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "disk-only")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	doc := `---
name: disk-only
description: Runbook that exists only on disk.
hint: Use the disk-only runbook.
---

# Disk Only
`
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := NewFileRepository(root)
	list, err := repo.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "disk-only" {
		t.Fatalf("expected only the disk skill, got %+v", list)
	}

	skill, body, err := repo.Get("disk-only")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if skill.Title != "disk-only" {
		t.Fatalf("front matter name not parsed: %+v", skill)
	}
	if !strings.Contains(body, "# Disk Only") {
		t.Fatalf("body should exclude front matter, got %q", body)
	}
}

func TestGetUnknownSkillNamesCatalog(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing"))
	_, _, err := repo.Get("no-such-skill")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "stale-lockfile") {
		t.Fatalf("error should list available skills, got %v", err)
	}
}
