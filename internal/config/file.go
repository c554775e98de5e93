package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

// LoadFile reads the persisted configuration. A missing file is an empty
// source, not an error.
func LoadFile(path string) (*Partial, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Partial{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read config file: %w", domain.ErrConfiguration, err)
	}

	var p Partial
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: parse config file %s: %v", domain.ErrConfiguration, path, err)
	}

	if p.Profile == "" {
		p.Profile = p.AWSProfile
	}
	p.AWSProfile = ""

	return &p, nil
}

// Save overwrites the file at path with cfg.
func Save(path string, cfg *domain.GatewayConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
