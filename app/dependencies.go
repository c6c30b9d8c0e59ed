package app

import (
	"context"
	"fmt"

	"github.com/dockwall/dockwall/auth"
	"github.com/dockwall/dockwall/config"
	"github.com/dockwall/dockwall/middleware"
	"github.com/dockwall/dockwall/repositories"
	"github.com/dockwall/dockwall/repositories/file"
	"github.com/dockwall/dockwall/repositories/postgres"
	"github.com/dockwall/dockwall/services/authz"
	"github.com/dockwall/dockwall/services/catalog"
	"github.com/dockwall/dockwall/services/checks"
	"github.com/dockwall/dockwall/services/rules"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB // nil when rules load from file

	// Rule configuration
	RuleSource repositories.RuleSource
	RuleStore  *rules.Store

	// Services
	Rules      *rules.Service
	Checks     *checks.Registry
	Authorizer *authz.Service

	// Admin API auth
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies,
// including the initial rule configuration load.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initRuleSource(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize rule source: %w", err)
	}

	if err := deps.initServices(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.initAuth(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initRuleSource selects the rule source: Postgres when DATABASE_URL is
// configured, the YAML rule file otherwise.
func (d *Dependencies) initRuleSource(cfg *config.Config) error {
	if cfg.Database != nil {
		db, err := postgres.NewDB(*cfg.Database, d.Logger)
		if err != nil {
			return err
		}
		d.DB = db
		d.RuleSource = postgres.NewSource(db, d.Logger)
		return nil
	}

	d.RuleSource = file.NewSource(cfg.Rules.File, d.Logger)
	return nil
}

// initServices loads the initial configuration and wires the resolution and
// authorization services.
func (d *Dependencies) initServices(ctx context.Context, cfg *config.Config) error {
	d.RuleStore = rules.NewStore(d.Logger)

	ruleConfig, err := d.RuleSource.Load(ctx)
	if err != nil {
		return fmt.Errorf("initial rule load from %s source: %w", d.RuleSource.Name(), err)
	}
	d.RuleStore.Apply(ruleConfig)

	d.Rules = rules.NewService(d.RuleStore, catalog.NewResolver(), cfg.Rules.DefaultHost, d.Logger)
	d.Checks = checks.NewDefaultRegistry()
	d.Authorizer = authz.NewService(d.Rules, d.Checks, d.Logger)

	d.Logger.Info("authorization services initialized",
		zap.String("rule_source", d.RuleSource.Name()),
		zap.String("default_host", cfg.Rules.DefaultHost),
		zap.Strings("checks", d.Checks.Names()))

	return nil
}

// initAuth wires the admin API token gate
func (d *Dependencies) initAuth(cfg *config.Config) {
	validator := auth.NewValidator(cfg.Auth.JWTSecret)
	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, cfg.Auth.Disabled, d.Logger)
	if cfg.Auth.Disabled {
		d.Logger.Warn("admin API authentication is disabled")
	}
}

// Close releases held resources
func (d *Dependencies) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
