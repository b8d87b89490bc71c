package prompt

// Config describes a prompt definition loaded from YAML frontmatter.
type Config struct {
	Slug          string         `yaml:"slug" json:"slug"`
	Name          string         `yaml:"name,omitempty" json:"name,omitempty"`
	Description   string         `yaml:"description,omitempty" json:"description,omitempty"`
	Version       string         `yaml:"version,omitempty" json:"version,omitempty"`
	Updated       string         `yaml:"updated,omitempty" json:"updated,omitempty"`
	Input         InputSpec      `yaml:"input,omitempty" json:"input,omitempty"`
	Template      string         `yaml:"template,omitempty" json:"template,omitempty"`
	Tools         []ToolConfig   `yaml:"tools,omitempty" json:"tools,omitempty"`
	ProviderHints map[string]any `yaml:"provider_hints,omitempty" json:"provider_hints,omitempty"`
}

// InputSpec defines prompt input requirements.
type InputSpec struct {
	RequiredVariables []string `yaml:"required_variables,omitempty" json:"required_variables,omitempty"`
	OptionalVariables []string `yaml:"optional_variables,omitempty" json:"optional_variables,omitempty"`
}

// ToolConfig represents a server-side tool the prompt expects.
type ToolConfig struct {
	Type   string         `yaml:"type" json:"type"`
	Config map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// Prompt wraps a validated prompt configuration with its source.
type Prompt struct {
	Config Config
	Source string
}

// UsesTool reports whether the prompt declares a tool of the given type.
func (p *Prompt) UsesTool(toolType string) bool {
	if p == nil {
		return false
	}
	for _, tool := range p.Config.Tools {
		if tool.Type == toolType {
			return true
		}
	}
	return false
}
