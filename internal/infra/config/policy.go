package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"marketcolor/internal/domain"
)

//go:embed policy_default.yaml
var defaultPolicyYAML []byte

// DefaultPolicy returns the embedded policy.
func DefaultPolicy() (*domain.Policy, error) {
	return ParsePolicy(defaultPolicyYAML)
}

// LoadPolicy reads the policy at path, or the embedded default when path is empty.
func LoadPolicy(path string) (*domain.Policy, error) {
	if path == "" {
		return DefaultPolicy()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", path, err)
	}
	return p, nil
}

// ParsePolicy decodes and validates a YAML policy document.
func ParsePolicy(data []byte) (*domain.Policy, error) {
	var p domain.Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// MarshalPolicy renders the effective policy as YAML.
func MarshalPolicy(p *domain.Policy) ([]byte, error) {
	return yaml.Marshal(p)
}
