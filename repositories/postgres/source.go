package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/repositories"
	"github.com/dockwall/dockwall/services"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Source reads groups and policy rules from PostgreSQL. Schema:
//
//	groups(name text primary key, members text[] not null)
//	policy_rules(position int primary key, description text,
//	             hosts text[] not null, policies jsonb, defaults jsonb not null)
//
// The policies and defaults documents use the same shape as the YAML rule
// file, so both sources share validation and conversion.
type Source struct {
	db     *DB
	logger *zap.Logger
}

// NewSource creates a Postgres-backed rule source
func NewSource(db *DB, logger *zap.Logger) *Source {
	return &Source{db: db, logger: logger}
}

// Name identifies the source in logs
func (s *Source) Name() string {
	return "postgres"
}

// Load assembles the raw configuration from the groups and policy_rules
// tables and validates it as a whole.
func (s *Source) Load(ctx context.Context) (*models.RuleConfig, error) {
	raw := repositories.RawConfig{
		Groups: make(map[string][]string),
	}

	if err := s.loadGroups(ctx, &raw); err != nil {
		return nil, err
	}
	if err := s.loadRules(ctx, &raw); err != nil {
		return nil, err
	}

	cfg, err := repositories.Build(&raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("rule configuration loaded from database",
		zap.Int("groups", len(cfg.Groups)),
		zap.Int("rules", len(cfg.Rules)))

	return cfg, nil
}

func (s *Source) loadGroups(ctx context.Context, raw *repositories.RawConfig) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, members FROM groups ORDER BY name`)
	if err != nil {
		return services.WrapConfiguration("failed to query groups", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var members pq.StringArray
		if err := rows.Scan(&name, &members); err != nil {
			return services.WrapConfiguration("failed to scan group row", err)
		}
		raw.Groups[name] = members
	}
	if err := rows.Err(); err != nil {
		return services.WrapConfiguration("failed to read groups", err)
	}
	return nil
}

func (s *Source) loadRules(ctx context.Context, raw *repositories.RawConfig) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, description, hosts, policies, defaults
		FROM policy_rules
		ORDER BY position`)
	if err != nil {
		return services.WrapConfiguration("failed to query policy rules", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			position    int
			description sql.NullString
			hosts       pq.StringArray
			policies    []byte
			defaults    []byte
		)
		if err := rows.Scan(&position, &description, &hosts, &policies, &defaults); err != nil {
			return services.WrapConfiguration("failed to scan policy rule row", err)
		}

		rule := repositories.RawRule{
			Description: description.String,
			Hosts:       hosts,
		}
		if len(policies) > 0 {
			if err := json.Unmarshal(policies, &rule.Policies); err != nil {
				return services.WrapConfiguration(
					fmt.Sprintf("policy rule %d has a malformed policies document", position), err)
			}
		}
		if len(defaults) > 0 {
			if err := json.Unmarshal(defaults, &rule.Default); err != nil {
				return services.WrapConfiguration(
					fmt.Sprintf("policy rule %d has a malformed defaults document", position), err)
			}
		}

		raw.Policies = append(raw.Policies, rule)
	}
	if err := rows.Err(); err != nil {
		return services.WrapConfiguration("failed to read policy rules", err)
	}
	return nil
}
