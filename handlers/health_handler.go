package handlers

import (
	"net/http"

	"github.com/dockwall/dockwall/app"
	"github.com/dockwall/dockwall/utils"
	"go.uber.org/zap"
)

// HealthCheck reports process liveness
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, map[string]string{"status": "ok"})
	}
}

// ReadinessCheck reports whether the gateway can make decisions: a rule
// configuration must be loaded and the database (when used) reachable.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.RuleStore.Ready() {
			_ = utils.WriteServiceUnavailable(w, "No rule configuration loaded")
			return
		}

		if deps.DB != nil {
			if err := deps.DB.HealthCheck(r.Context()); err != nil {
				deps.Logger.Warn("database health check failed", zap.Error(err))
				_ = utils.WriteServiceUnavailable(w, "Database unreachable")
				return
			}
		}

		_ = utils.WriteOK(w, map[string]string{"status": "ready"})
	}
}
