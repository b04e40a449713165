// Package templates loads pipeline templates from TOML files, layered over
// the built-in templates.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/lenslate/darkroom/internal/shared/infrastructure/security"
	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// templateFile mirrors the on-disk TOML layout.
type templateFile struct {
	Name   string      `toml:"name"`
	Stages []stageFile `toml:"stages"`
}

type stageFile struct {
	Name          string   `toml:"name"`
	Description   string   `toml:"description"`
	Phase         string   `toml:"phase"`
	DurationHours float64  `toml:"duration_hours"`
	DependsOn     []string `toml:"depends_on"`
	Deliverables  []string `toml:"deliverables"`
}

// Loader resolves pipeline templates. File templates from the configured
// directory take precedence over built-ins of the same name.
type Loader struct {
	fromFiles map[string]domain.Template
}

// NewLoader reads every .toml file in dir. A missing or empty dir is fine;
// built-ins still resolve.
func NewLoader(dir string) (*Loader, error) {
	loader := &Loader{fromFiles: make(map[string]domain.Template)}
	if dir == "" {
		return loader, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return loader, nil
		}
		return nil, fmt.Errorf("reading template dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		tpl, err := loadFile(filepath.Join(dir, entry.Name()), dir)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", entry.Name(), err)
		}
		loader.fromFiles[tpl.Name] = tpl
	}

	return loader, nil
}

// Resolve implements commands.TemplateSource.
func (l *Loader) Resolve(name string) (domain.Template, bool) {
	if tpl, ok := l.fromFiles[name]; ok {
		return tpl, true
	}
	return domain.BuiltinTemplate(name)
}

// Names lists every resolvable template, file templates first.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.fromFiles))
	seen := make(map[string]struct{}, len(l.fromFiles))
	for name := range l.fromFiles {
		names = append(names, name)
		seen[name] = struct{}{}
	}
	for _, name := range domain.BuiltinTemplateNames() {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

func loadFile(path, baseDir string) (domain.Template, error) {
	data, err := security.SafeReadFileInDir(path, baseDir)
	if err != nil {
		return domain.Template{}, err
	}

	var file templateFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.Template{}, fmt.Errorf("parsing toml: %w", err)
	}

	name := strings.TrimSpace(file.Name)
	if name == "" {
		return domain.Template{}, fmt.Errorf("template name is required")
	}
	if len(file.Stages) == 0 {
		return domain.Template{}, fmt.Errorf("template %q has no stages", name)
	}

	specs := make([]domain.StageSpec, 0, len(file.Stages))
	for _, stage := range file.Stages {
		specs = append(specs, domain.StageSpec{
			Name:                   stage.Name,
			Description:            stage.Description,
			Phase:                  domain.Phase(stage.Phase),
			EstimatedDurationHours: stage.DurationHours,
			DependsOn:              stage.DependsOn,
			Deliverables:           stage.Deliverables,
		})
	}

	// Validate by building a throwaway pipeline so a broken file fails at
	// load time, not at project creation.
	if _, err := domain.NewProject(name, domain.PriorityMedium, time.Now().UTC(), specs); err != nil {
		return domain.Template{}, fmt.Errorf("invalid pipeline: %w", err)
	}

	return domain.Template{Name: name, Stages: specs}, nil
}
