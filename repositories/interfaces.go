package repositories

import (
	"context"

	"github.com/dockwall/dockwall/models"
)

// RuleSource supplies the rule configuration (groups + policy rules) from a
// backing store. Implementations return a fully validated, typed
// configuration; structurally invalid data never leaves a source.
type RuleSource interface {
	// Name identifies the source in logs ("file", "postgres").
	Name() string

	// Load reads and validates the complete rule configuration.
	Load(ctx context.Context) (*models.RuleConfig, error)
}
