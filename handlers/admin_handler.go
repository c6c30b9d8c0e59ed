package handlers

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/dockwall/dockwall/app"
	"github.com/dockwall/dockwall/utils"
	"go.uber.org/zap"
)

// ReloadConfigHandler re-reads the rule source and atomically publishes the
// new snapshot. In-flight authorizations keep reading the old generation
// until the swap completes.
func ReloadConfigHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := chimw.GetReqID(ctx)

		cfg, err := deps.RuleSource.Load(ctx)
		if err != nil {
			deps.Logger.Error("configuration reload failed",
				zap.String("request_id", requestID),
				zap.String("source", deps.RuleSource.Name()),
				zap.Error(err))
			HandleServiceError(w, err, deps.Logger)
			return
		}

		deps.RuleStore.Apply(cfg)

		deps.Logger.Info("configuration reloaded",
			zap.String("request_id", requestID),
			zap.String("source", deps.RuleSource.Name()),
			zap.Int("groups", len(cfg.Groups)),
			zap.Int("rules", len(cfg.Rules)))

		_ = utils.WriteOK(w, map[string]interface{}{
			"source": deps.RuleSource.Name(),
			"groups": len(cfg.Groups),
			"rules":  len(cfg.Rules),
		})
	}
}

// GetConfigHandler summarizes the active configuration generation
func GetConfigHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := deps.RuleStore.Snapshot()
		if snap == nil {
			_ = utils.WriteNotFound(w, "No rule configuration loaded")
			return
		}

		groups := make(map[string]int, len(snap.Groups))
		for name, members := range snap.Groups {
			groups[name] = len(members)
		}

		ruleSummaries := make([]map[string]interface{}, 0, len(snap.Rules))
		for _, rule := range snap.Rules {
			hosts := make([]string, 0, len(rule.Hosts))
			for _, h := range rule.Hosts {
				hosts = append(hosts, h.String())
			}
			ruleSummaries = append(ruleSummaries, map[string]interface{}{
				"description": rule.Description,
				"hosts":       hosts,
				"policies":    len(rule.Policies),
				"defaults":    len(rule.Default),
			})
		}

		_ = utils.WriteOK(w, map[string]interface{}{
			"source": deps.RuleSource.Name(),
			"groups": groups,
			"rules":  ruleSummaries,
			"checks": deps.Checks.Names(),
		})
	}
}
