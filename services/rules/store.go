package rules

import (
	"sync/atomic"

	"github.com/dockwall/dockwall/models"
	"go.uber.org/zap"
)

// Snapshot is one immutable generation of the rule configuration. Resolution
// reads a single snapshot for the whole request, so a concurrent reload can
// never expose a half-updated configuration.
type Snapshot struct {
	Groups models.Groups
	Rules  []models.PolicyRule
}

// Store owns the process-wide rule configuration. Reads are lock-free
// pointer loads; updates build a complete new snapshot and publish it
// atomically.
type Store struct {
	snapshot atomic.Pointer[Snapshot]
	logger   *zap.Logger
}

// NewStore creates an empty Store. The store is not ready until the first
// Update.
func NewStore(logger *zap.Logger) *Store {
	return &Store{logger: logger}
}

// Update publishes a new configuration generation. Groups are merged into
// the current set (new keys added, existing keys overwritten); the policy
// rule list is fully replaced when non-nil. Passing nil leaves the
// corresponding part unchanged.
func (s *Store) Update(groups models.Groups, rules []models.PolicyRule) {
	current := s.snapshot.Load()

	next := &Snapshot{}
	if current != nil {
		next.Groups = current.Groups
		next.Rules = current.Rules
	}
	if groups != nil {
		if next.Groups == nil {
			next.Groups = models.Groups{}
		}
		next.Groups = next.Groups.Merge(groups)
	}
	if rules != nil {
		next.Rules = rules
	}

	s.snapshot.Store(next)
	s.logger.Info("rule configuration published",
		zap.Int("groups", len(next.Groups)),
		zap.Int("rules", len(next.Rules)))
}

// Apply publishes a loaded rule configuration.
func (s *Store) Apply(cfg *models.RuleConfig) {
	s.Update(cfg.Groups, cfg.Rules)
}

// Snapshot returns the current configuration generation, or nil when no
// configuration has been published yet.
func (s *Store) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Ready reports whether a configuration has been published.
func (s *Store) Ready() bool {
	return s.snapshot.Load() != nil
}
