package repositories

import (
	"fmt"

	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/services"
	"github.com/dockwall/dockwall/utils"
)

// Raw configuration schema shared by the rule sources: the file source
// decodes a whole RawConfig from YAML, the Postgres source assembles one
// from table rows. Validation and conversion to typed models happen once,
// here, so deferred errors become load-time failures.

// RawConfig is the unvalidated shape of a complete rule configuration.
type RawConfig struct {
	Groups   map[string][]string `yaml:"groups" json:"groups" validate:"required,min=1"`
	Policies []RawRule           `yaml:"policies" json:"policies" validate:"required,min=1,dive"`
}

// RawRule is the unvalidated shape of one policy rule.
type RawRule struct {
	Description string           `yaml:"description" json:"description"`
	Hosts       []string         `yaml:"hosts" json:"hosts" validate:"required,min=1"`
	Policies    []RawPolicy      `yaml:"policies" json:"policies" validate:"omitempty,dive"`
	Default     models.CheckList `yaml:"default" json:"default" validate:"required,min=1"`
}

// RawPolicy is the unvalidated shape of one group-to-rules binding.
type RawPolicy struct {
	Name    string                      `yaml:"name" json:"name"`
	Members []string                    `yaml:"members" json:"members" validate:"required,min=1"`
	Rules   map[string]models.CheckList `yaml:"rules" json:"rules" validate:"required,min=1"`
}

// Build validates the raw configuration and converts it into typed models.
// Any structural problem (missing defaults, unsigned host pattern, invalid
// expression) is a configuration error.
func Build(raw *RawConfig) (*models.RuleConfig, error) {
	if err := utils.ValidateStruct(raw); err != nil {
		return nil, services.WrapConfiguration("rule configuration is structurally invalid", err)
	}

	cfg := &models.RuleConfig{
		Groups: models.Groups(raw.Groups),
		Rules:  make([]models.PolicyRule, 0, len(raw.Policies)),
	}

	for i, rr := range raw.Policies {
		rule := models.PolicyRule{
			Description: rr.Description,
			Hosts:       make([]models.HostPattern, 0, len(rr.Hosts)),
			Default:     rr.Default,
		}
		for _, h := range rr.Hosts {
			pattern, err := models.ParseHostPattern(h)
			if err != nil {
				return nil, services.WrapConfiguration(
					fmt.Sprintf("rule %d (%s)", i, rr.Description), err)
			}
			rule.Hosts = append(rule.Hosts, pattern)
		}
		for _, rp := range rr.Policies {
			for _, group := range rp.Members {
				if _, ok := raw.Groups[group]; !ok {
					return nil, services.NewDomainError(services.ErrorTypeConfiguration,
						fmt.Sprintf("policy %q references unknown group %q", rp.Name, group), nil)
				}
			}
			rule.Policies = append(rule.Policies, models.Policy{
				Name:    rp.Name,
				Members: rp.Members,
				Rules:   models.ActionRules(rp.Rules),
			})
		}
		cfg.Rules = append(cfg.Rules, rule)
	}

	return cfg, nil
}
