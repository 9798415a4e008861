// Package skills discovers markdown runbooks and routes incidents to them.
package skills

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/faultline/assets"
	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// DefaultRoot is the conventional on-disk skills location.
const DefaultRoot = ".agents/skills"

const skillFileName = "SKILL.md"

// FileRepository serves runbooks from a directory tree laid out as
// <root>/<skill-id>/SKILL.md, falling back to the embedded defaults when the
// root does not exist.
type FileRepository struct {
	root string
}

// NewFileRepository builds a repository rooted at root (DefaultRoot if empty).
func NewFileRepository(root string) *FileRepository {
	if root == "" {
		root = DefaultRoot
	}
	return &FileRepository{root: root}
}

// frontMatter is the YAML header of a SKILL.md file.
type frontMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Hint        string `yaml:"hint"`
}

func (r *FileRepository) skillFS() (fs.FS, string) {
	if info, err := os.Stat(r.root); err == nil && info.IsDir() {
		return os.DirFS(r.root), r.root
	}
	sub, err := fs.Sub(assets.DefaultSkills, "defaults/skills")
	if err != nil {
		// embed layout is fixed at build time
		panic(err)
	}
	return sub, "embedded"
}

// List implements ports.SkillRepository.
func (r *FileRepository) List() ([]domain.Skill, error) {
	fsys, origin := r.skillFS()
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read skills root %s: %w", origin, err)
	}
	var out []domain.Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillPath := path.Join(entry.Name(), skillFileName)
		data, err := fs.ReadFile(fsys, skillPath)
		if err != nil {
			continue
		}
		fm, _ := splitFrontMatter(data)
		out = append(out, domain.Skill{
			ID:      entry.Name(),
			Path:    path.Join(origin, skillPath),
			Title:   fm.Name,
			Summary: fm.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements ports.SkillRepository, returning the skill and its markdown
// body.
func (r *FileRepository) Get(id string) (domain.Skill, string, error) {
	fsys, origin := r.skillFS()
	skillPath := path.Join(id, skillFileName)
	data, err := fs.ReadFile(fsys, skillPath)
	if err != nil {
		available := r.catalog()
		return domain.Skill{}, "", fmt.Errorf("skill file not found: %s/%s (available skills: %s)", origin, skillPath, available)
	}
	fm, body := splitFrontMatter(data)
	return domain.Skill{
		ID:      id,
		Path:    path.Join(origin, skillPath),
		Title:   fm.Name,
		Summary: fm.Description,
	}, body, nil
}

// Select implements ports.SkillRepository: scenario mapping first, then
// keyword routing over the error report, then the stale-lockfile fallback.
func (r *FileRepository) Select(scenario domain.Scenario, errorReport string) (domain.SkillSelection, error) {
	id := resolveSkillID(scenario, errorReport)

	fsys, origin := r.skillFS()
	skillPath := path.Join(id, skillFileName)
	data, err := fs.ReadFile(fsys, skillPath)
	if err != nil {
		return domain.SkillSelection{}, fmt.Errorf("skill file not found: %s/%s (available skills: %s)", origin, skillPath, r.catalog())
	}

	fm, _ := splitFrontMatter(data)
	hint := strings.TrimSpace(fm.Hint)
	if hint == "" {
		hint = "Apply the selected skill runbook and verify with curl."
	}
	return domain.SkillSelection{
		SkillID:      id,
		SkillPath:    path.Join(origin, skillPath),
		StrategyHint: hint,
	}, nil
}

func (r *FileRepository) catalog() string {
	list, err := r.List()
	if err != nil || len(list) == 0 {
		return "none"
	}
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	return strings.Join(ids, ", ")
}

var scenarioSkill = map[domain.Scenario]string{
	domain.ScenarioStaleLockfile:      "stale-lockfile",
	domain.ScenarioBadEnvConfig:       "bad-env-config",
	domain.ScenarioReadinessProbeFail: "readiness-probe-fail",
	domain.ScenarioPortMismatch:       "port-mismatch",
}

// keywordRoutes is evaluated in order; the first needle found in the error
// report wins.
var keywordRoutes = []struct {
	needle string
	skill  string
}{
	{"lock", "stale-lockfile"},
	{"required_api_key", "bad-env-config"},
	{"missing env", "bad-env-config"},
	{"ready.flag", "readiness-probe-fail"},
	{"readiness", "readiness-probe-fail"},
	{"port", "port-mismatch"},
	{"5001", "port-mismatch"},
}

func resolveSkillID(scenario domain.Scenario, errorReport string) string {
	if id, ok := scenarioSkill[scenario]; ok {
		return id
	}
	report := strings.ToLower(errorReport)
	for _, route := range keywordRoutes {
		if strings.Contains(report, route.needle) {
			return route.skill
		}
	}
	return "stale-lockfile"
}

// splitFrontMatter separates the YAML header from the markdown body. Files
// without a header yield an empty frontMatter and the whole document as body.
func splitFrontMatter(data []byte) (frontMatter, string) {
	var fm frontMatter
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return fm, text
	}
	rest := text[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return fm, text
	}
	header := rest[:idx]
	body := rest[idx+len("\n---"):]
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return frontMatter{}, text
	}
	return fm, strings.TrimLeft(body, "\n")
}

var _ ports.SkillRepository = (*FileRepository)(nil)
