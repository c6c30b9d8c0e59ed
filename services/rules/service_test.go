package rules

import (
	"errors"
	"testing"

	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// staticResolver maps every request to a fixed action
type staticResolver struct {
	action models.Action
}

func (r staticResolver) Resolve(method, uri string) models.Action {
	return r.action
}

func newTestService(t *testing.T, cfg *models.RuleConfig, action models.Action) *Service {
	t.Helper()
	store := NewStore(zap.NewNop())
	if cfg != nil {
		store.Apply(cfg)
	}
	return NewService(store, staticResolver{action: action}, "gateway", zap.NewNop())
}

func payloadFor(user, host string) *models.Payload {
	return &models.Payload{
		User:          user,
		RequestMethod: "POST",
		RequestURI:    "/v1.32/containers/create",
		Host:          host,
	}
}

func TestGetRulesNoConfiguration(t *testing.T) {
	svc := newTestService(t, nil, models.Action{})

	_, err := svc.GetRules(payloadFor("alice", "srv1"))
	require.Error(t, err)
	assert.True(t, services.IsConfigurationError(err))
}

func TestGetRulesRuleWithoutPoliciesReturnsDefault(t *testing.T) {
	// Scenario: a catch-all rule with no policies returns its default check
	// set for any request on any host.
	cfg := &models.RuleConfig{
		Groups: models.Groups{},
		Rules: []models.PolicyRule{
			{
				Description: "deny everything",
				Hosts:       mustPatterns(t, "+.*"),
				Default:     models.CheckList{{Name: "deny"}},
			},
		},
	}
	svc := newTestService(t, cfg, models.Action{Name: "container_create", Namespace: "container"})

	for _, host := range []string{"srv1", "db9", "whatever.example.com"} {
		checks, err := svc.GetRules(payloadFor("alice", host))
		require.NoError(t, err)
		require.Len(t, checks, 1)
		assert.Equal(t, "deny", checks[0].Name)
	}
}

func TestGetRulesNoHostMatchIsDenied(t *testing.T) {
	cfg := &models.RuleConfig{
		Groups: models.Groups{},
		Rules: []models.PolicyRule{
			{
				Hosts:   mustPatterns(t, "+web[0-9]+"),
				Default: models.CheckList{{Name: "allow"}},
			},
		},
	}
	svc := newTestService(t, cfg, models.Action{})

	_, err := svc.GetRules(payloadFor("alice", "db1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNoMatchingRule))
	assert.True(t, services.IsDeniedError(err))
}

func TestGetRulesOnlyFirstHostMatchingRuleIsInspected(t *testing.T) {
	// The first rule matches the host but resolves nothing for the caller;
	// it must fall back to its own default, never advance to the second
	// rule even though that one would also match.
	cfg := &models.RuleConfig{
		Groups: models.Groups{"admins": {"alice"}},
		Rules: []models.PolicyRule{
			{
				Description: "first",
				Hosts:       mustPatterns(t, "+.*"),
				Policies: []models.Policy{
					{Name: "admin", Members: []string{"admins"}, Rules: models.ActionRules{"any": {{Name: "allow"}}}},
				},
				Default: models.CheckList{{Name: "deny"}},
			},
			{
				Description: "second",
				Hosts:       mustPatterns(t, "+.*"),
				Default:     models.CheckList{{Name: "allow"}},
			},
		},
	}
	svc := newTestService(t, cfg, models.Action{Name: "container_create", Namespace: "container"})

	// bob matches no policy in the first rule: its default applies.
	checks, err := svc.GetRules(payloadFor("bob", "srv1"))
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "deny", checks[0].Name)

	// alice resolves within the first rule.
	checks, err = svc.GetRules(payloadFor("alice", "srv1"))
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "allow", checks[0].Name)
}

func TestGetRulesEmptyResolutionFallsBackToDefault(t *testing.T) {
	cfg := &models.RuleConfig{
		Groups: models.Groups{"admins": {"alice"}},
		Rules: []models.PolicyRule{
			{
				Hosts: mustPatterns(t, "+.*"),
				Policies: []models.Policy{
					{
						Name:    "admin",
						Members: []string{"admins"},
						// Only image actions are covered; container actions
						// resolve to nothing.
						Rules: models.ActionRules{"image_push": {{Name: "allow"}}},
					},
				},
				Default: models.CheckList{{Name: "deny"}},
			},
		},
	}
	svc := newTestService(t, cfg, models.Action{Name: "container_create", Namespace: "container"})

	checks, err := svc.GetRules(payloadFor("alice", "srv1"))
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "deny", checks[0].Name)
}

func TestGetRulesSkipsNonMatchingRules(t *testing.T) {
	cfg := &models.RuleConfig{
		Groups: models.Groups{},
		Rules: []models.PolicyRule{
			{
				Description: "web hosts",
				Hosts:       mustPatterns(t, "+web[0-9]+"),
				Default:     models.CheckList{{Name: "deny"}},
			},
			{
				Description: "db hosts",
				Hosts:       mustPatterns(t, "+db[0-9]+"),
				Default:     models.CheckList{{Name: "allow"}},
			},
		},
	}
	svc := newTestService(t, cfg, models.Action{})

	checks, err := svc.GetRules(payloadFor("alice", "db3"))
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "allow", checks[0].Name)
}

func TestGetRulesUnsignedPatternAborts(t *testing.T) {
	cfg := &models.RuleConfig{
		Groups: models.Groups{},
		Rules: []models.PolicyRule{
			{
				Hosts:   []models.HostPattern{{}}, // never parsed, no sign
				Default: models.CheckList{{Name: "allow"}},
			},
		},
	}
	svc := newTestService(t, cfg, models.Action{})

	_, err := svc.GetRules(payloadFor("alice", "srv1"))
	require.Error(t, err)
	assert.True(t, services.IsConfigurationError(err))
}

func TestGetRulesUsesDefaultHostWhenPayloadHasNone(t *testing.T) {
	cfg := &models.RuleConfig{
		Groups: models.Groups{},
		Rules: []models.PolicyRule{
			{
				Hosts:   mustPatterns(t, "+gateway"),
				Default: models.CheckList{{Name: "allow"}},
			},
		},
	}
	svc := newTestService(t, cfg, models.Action{})

	checks, err := svc.GetRules(payloadFor("alice", ""))
	require.NoError(t, err)
	require.Len(t, checks, 1)
}

func TestGetRulesReturnsCopyOfDefault(t *testing.T) {
	cfg := &models.RuleConfig{
		Groups: models.Groups{},
		Rules: []models.PolicyRule{
			{
				Hosts:   mustPatterns(t, "+.*"),
				Default: models.CheckList{{Name: "deny"}},
			},
		},
	}
	svc := newTestService(t, cfg, models.Action{})

	checks, err := svc.GetRules(payloadFor("alice", "srv1"))
	require.NoError(t, err)

	checks.Add("allow", nil)

	again, err := svc.GetRules(payloadFor("alice", "srv1"))
	require.NoError(t, err)
	assert.Len(t, again, 1, "snapshot default must not be aliased by callers")
}
