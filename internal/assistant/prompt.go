package assistant

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptSpec is the YAML prompt configuration for the resume assistant.
type PromptSpec struct {
	System string `yaml:"system"`
	// Human is the per-question template; {context} and {question} are
	// substituted.
	Human string `yaml:"human"`
	Style struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

const defaultHuman = "Resume context:\n{context}\n\nQuestion: {question}"

func LoadPromptSpec(path string) (PromptSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return PromptSpec{}, err
	}
	return ParsePromptSpec(b)
}

func ParsePromptSpec(b []byte) (PromptSpec, error) {
	var spec PromptSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return PromptSpec{}, fmt.Errorf("parse prompt spec: %w", err)
	}
	if strings.TrimSpace(spec.System) == "" {
		return PromptSpec{}, fmt.Errorf("prompt spec: system prompt is required")
	}
	if strings.TrimSpace(spec.Human) == "" {
		spec.Human = defaultHuman
	}
	return spec, nil
}

func (s PromptSpec) render(context, question string) string {
	r := strings.NewReplacer("{context}", context, "{question}", question)
	return r.Replace(s.Human)
}
