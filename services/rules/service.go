package rules

import (
	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/services"
	"go.uber.org/zap"
)

// ActionResolver maps (HTTP method, URI) pairs to structured actions.
type ActionResolver interface {
	Resolve(method, uri string) models.Action
}

// Service resolves the ordered check set that applies to a request. It is
// the top-level entry point of the rule-resolution cascade: signed host
// matching selects exactly one policy rule, group membership selects a
// policy within it, and action-hierarchy fallback selects the checks.
type Service struct {
	store       *Store
	resolver    ActionResolver
	defaultHost string
	logger      *zap.Logger
}

// NewService creates a rule resolution service. defaultHost is used when a
// payload carries no target host of its own.
func NewService(store *Store, resolver ActionResolver, defaultHost string, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		resolver:    resolver,
		defaultHost: defaultHost,
		logger:      logger,
	}
}

// GetRules returns the check set for a payload. Only the first rule whose
// host rule matches is ever inspected; any inner fallthrough (no policies,
// no policy match, empty check resolution) returns that rule's default
// check set without consulting later rules. When no rule's host rule
// matches, the caller-visible no-matching-rule outcome is returned and the
// caller must treat it as a denial.
func (s *Service) GetRules(payload *models.Payload) (models.CheckList, error) {
	snap := s.store.Snapshot()
	if snap == nil {
		return nil, services.ErrNoConfiguration
	}

	action := s.resolver.Resolve(payload.RequestMethod, payload.RequestURI)
	hostname := payload.Hostname(s.defaultHost)

	for i := range snap.Rules {
		rule := &snap.Rules[i]

		matched, err := MatchHost(hostname, rule.Hosts)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}

		if len(rule.Policies) == 0 {
			s.logger.Debug("rule has no policies, using default",
				zap.String("rule", rule.Description),
				zap.String("host", hostname))
			return defaultChecks(rule), nil
		}

		actionRules := SelectPolicy(payload.User, rule.Policies, snap.Groups)
		if actionRules == nil {
			s.logger.Debug("no policy matched caller, using default",
				zap.String("rule", rule.Description),
				zap.String("user", payload.User),
				zap.Bool("anonymous", payload.Anonymous()))
			return defaultChecks(rule), nil
		}

		checks := ResolveChecks(action, actionRules)
		if checks.Empty() {
			s.logger.Debug("no checks resolved for action, using default",
				zap.String("rule", rule.Description),
				zap.String("action", action.Name))
			return defaultChecks(rule), nil
		}

		return checks, nil
	}

	s.logger.Debug("no policy rule matches host",
		zap.String("host", hostname),
		zap.String("action", action.Name))
	return nil, services.ErrNoMatchingRule
}

// defaultChecks copies the rule's mandatory default so callers can never
// alias or mutate the shared snapshot.
func defaultChecks(rule *models.PolicyRule) models.CheckList {
	checks := make(models.CheckList, 0, len(rule.Default))
	return append(checks, rule.Default...)
}
