package ai

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"inkwell/internal/domain/models"
	"inkwell/internal/domain/services"
)

//go:embed config/*.yaml
var configFiles embed.FS

// ActionPreset is the prompt configuration for a single transformation.
type ActionPreset struct {
	Name            services.AIAction `yaml:"name"`
	SystemPrompt    string            `yaml:"system_prompt"`
	RequiresTone    bool              `yaml:"requires_tone"`
	Temperature     float64           `yaml:"temperature"`
	MaxOutputTokens int               `yaml:"max_output_tokens"`
}

// Prompt renders the system prompt, substituting the target tone for
// presets that take one.
func (p *ActionPreset) Prompt(tone models.Tone) string {
	if !p.RequiresTone {
		return p.SystemPrompt
	}
	return strings.ReplaceAll(p.SystemPrompt, "{tone}", string(tone))
}

type actionsFile struct {
	Actions []ActionPreset `yaml:"actions"`
}

// Registry holds the embedded action presets.
type Registry struct {
	actions map[services.AIAction]*ActionPreset
	mu      sync.RWMutex
}

// NewRegistry loads the embedded action preset YAML
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/actions.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read actions.yaml: %w", err)
	}

	var file actionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions.yaml: %w", err)
	}
	if len(file.Actions) == 0 {
		return nil, fmt.Errorf("actions.yaml defines no actions")
	}

	r := &Registry{actions: make(map[services.AIAction]*ActionPreset, len(file.Actions))}
	for i := range file.Actions {
		preset := &file.Actions[i]
		if preset.Name == "" || preset.SystemPrompt == "" {
			return nil, fmt.Errorf("actions.yaml entry %d is missing name or system_prompt", i)
		}
		r.actions[preset.Name] = preset
	}
	return r, nil
}

// Get returns the preset for an action
func (r *Registry) Get(action services.AIAction) (*ActionPreset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	preset, ok := r.actions[action]
	return preset, ok
}

// Actions returns the registered action names
func (r *Registry) Actions() []services.AIAction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]services.AIAction, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}
