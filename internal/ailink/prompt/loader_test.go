package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	prompts, err := LoadDefaults()
	require.NoError(t, err)
	require.NotEmpty(t, prompts)

	reg, err := NewRegistry(prompts)
	require.NoError(t, err)

	prompt, err := reg.Get(ClaimVerificationSlug)
	require.NoError(t, err)
	assert.Contains(t, prompt.Config.Template, "{{claim}}")
	assert.Contains(t, prompt.Config.Template, "SCORE:")
	assert.Contains(t, prompt.Config.Template, "VERDICT:")
	assert.Contains(t, prompt.Config.Template, "ANALYSIS:")
	assert.True(t, prompt.UsesTool("web_search"))
}

func TestLoadRejectsInvalidPrompts(t *testing.T) {
	cases := map[string]string{
		"missing slug":     "---\nname: x\n---\nbody",
		"missing template": "---\nslug: x\n---\n",
		"unknown tool":     "---\nslug: x\ntools:\n  - type: code_interpreter\n---\nbody",
		"unreferenced var": "---\nslug: x\ninput:\n  required_variables: [claim]\n---\nno placeholder",
		"no frontmatter":   "just text",
		"empty":            "   ",
		"broken yaml":      "---\nslug: [\n---\nbody",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(name, []byte(data))
			assert.Error(t, err)
		})
	}
}

func TestRegistryWithOverrides(t *testing.T) {
	dir := t.TempDir()
	override := "---\nslug: claim-verification\ninput:\n  required_variables: [claim]\n---\nCheck {{claim}} briefly."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.md"), []byte(override), 0o600))
	extra := "---\nslug: headline-check\n---\nHeadline: {{claim}}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.md"), []byte(extra), 0o600))

	reg, err := RegistryWithOverrides(dir)
	require.NoError(t, err)

	prompt, err := reg.Get(ClaimVerificationSlug)
	require.NoError(t, err)
	assert.Equal(t, "Check {{claim}} briefly.", prompt.Config.Template)

	_, err = reg.Get("headline-check")
	require.NoError(t, err)
	assert.Len(t, reg.List(), 2)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	p := &Prompt{Config: Config{Slug: "a", Template: "x"}}
	_, err := NewRegistry([]*Prompt{p, p})
	require.Error(t, err)
}
