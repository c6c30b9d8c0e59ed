// Package file loads the rule configuration from a YAML document on disk.
package file

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/repositories"
	"github.com/dockwall/dockwall/services"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Source reads groups and policy rules from a single YAML file.
type Source struct {
	path   string
	logger *zap.Logger
}

// NewSource creates a file-backed rule source
func NewSource(path string, logger *zap.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// Name identifies the source in logs
func (s *Source) Name() string {
	return "file"
}

// Load reads, decodes, and validates the rule file. Unknown keys in the
// document are rejected so typos surface at load time instead of silently
// weakening the policy.
func (s *Source) Load(ctx context.Context) (*models.RuleConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, services.WrapConfiguration("cannot read rule file "+s.path, err)
	}

	var raw repositories.RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, services.WrapConfiguration("cannot parse rule file "+s.path, err)
	}

	cfg, err := repositories.Build(&raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("rule file loaded",
		zap.String("path", s.path),
		zap.Int("groups", len(cfg.Groups)),
		zap.Int("rules", len(cfg.Rules)))

	return cfg, nil
}
