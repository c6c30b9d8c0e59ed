package authz

import (
	"errors"

	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/services"
	"github.com/dockwall/dockwall/services/checks"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RuleResolver resolves the ordered check set applying to a payload.
type RuleResolver interface {
	GetRules(payload *models.Payload) (models.CheckList, error)
}

// CheckRegistry dereferences check names to plugin instances.
type CheckRegistry interface {
	Get(name string) (checks.Check, error)
}

// Decision is the outcome of authorizing one request. Msg carries the
// caller-facing reason for a rejection; Err carries operator-facing
// diagnostics (configuration trouble), mirroring the runtime's plugin
// response split.
type Decision struct {
	ID      string
	Allowed bool
	Msg     string
	Err     string
}

// Service authorizes payloads: it resolves the applicable check set, then
// executes each entry against the registry in order, stopping at the first
// failure. Exhausting the set with no failure allows the request.
type Service struct {
	rules    RuleResolver
	registry CheckRegistry
	logger   *zap.Logger
}

// NewService creates an authorization service
func NewService(rules RuleResolver, registry CheckRegistry, logger *zap.Logger) *Service {
	return &Service{
		rules:    rules,
		registry: registry,
		logger:   logger,
	}
}

// Authorize decides whether the request described by payload is permitted.
// Denials and invalid requests are expected outcomes; configuration errors
// abort the resolution, are logged at error level, and fail closed.
func (s *Service) Authorize(payload *models.Payload) Decision {
	decisionID := uuid.NewString()

	checkSet, err := s.rules.GetRules(payload)
	if err != nil {
		return s.failed(decisionID, payload, err)
	}

	for _, spec := range checkSet {
		plugin, err := s.registry.Get(spec.Name)
		if err != nil {
			cfgErr := services.NewDomainError(services.ErrorTypeConfiguration,
				"check "+spec.Name+" is not registered", err)
			return s.failed(decisionID, payload, cfgErr)
		}
		if err := plugin.Run(spec.Args, payload); err != nil {
			return s.failed(decisionID, payload, err)
		}
	}

	s.logger.Debug("request allowed",
		zap.String("decision_id", decisionID),
		zap.String("user", payload.User),
		zap.String("method", payload.RequestMethod),
		zap.String("uri", payload.RequestURI),
		zap.Int("checks", len(checkSet)))

	return Decision{ID: decisionID, Allowed: true}
}

// failed maps a resolution or check error to a closed decision.
func (s *Service) failed(decisionID string, payload *models.Payload, err error) Decision {
	decision := Decision{ID: decisionID, Allowed: false}

	var domainErr *services.DomainError
	switch {
	case errors.As(err, &domainErr) && domainErr.Type == services.ErrorTypeDenied:
		decision.Msg = domainErr.Message
		s.logger.Info("request denied",
			zap.String("decision_id", decisionID),
			zap.String("user", payload.User),
			zap.String("method", payload.RequestMethod),
			zap.String("uri", payload.RequestURI),
			zap.String("reason", domainErr.Message))

	case errors.As(err, &domainErr) && domainErr.Type == services.ErrorTypeInvalidRequest:
		decision.Msg = domainErr.Message
		decision.Err = "invalid request"
		s.logger.Info("request rejected as invalid",
			zap.String("decision_id", decisionID),
			zap.String("user", payload.User),
			zap.String("method", payload.RequestMethod),
			zap.String("uri", payload.RequestURI),
			zap.String("reason", domainErr.Message))

	default:
		// Configuration or unexpected errors fail closed and are escalated
		// to the operator through the Err channel and the error log.
		decision.Msg = "authorization unavailable"
		decision.Err = err.Error()
		s.logger.Error("authorization failed",
			zap.String("decision_id", decisionID),
			zap.String("user", payload.User),
			zap.String("method", payload.RequestMethod),
			zap.String("uri", payload.RequestURI),
			zap.Error(err))
	}

	return decision
}
