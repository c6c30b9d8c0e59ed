package handlers

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/dockwall/dockwall/app"
	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/utils"
	"go.uber.org/zap"
)

// activateResponse is the plugin handshake reply
type activateResponse struct {
	Implements []string `json:"Implements"`
}

// authzResponse is the authorization plugin decision reply. Msg is shown to
// the caller on denial; Err carries operator diagnostics.
type authzResponse struct {
	Allow bool   `json:"Allow"`
	Msg   string `json:"Msg,omitempty"`
	Err   string `json:"Err,omitempty"`
}

// PluginActivateHandler answers the runtime's plugin discovery handshake
func PluginActivateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, activateResponse{
			Implements: []string{"authz"},
		})
	}
}

// AuthZRequestHandler decides the request phase of the authorization
// protocol. The protocol always answers 200; denial travels in the body.
func AuthZRequestHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload models.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			deps.Logger.Warn("malformed authorization payload",
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.Error(err))
			_ = utils.WriteJSON(w, http.StatusOK, authzResponse{
				Allow: false,
				Msg:   "malformed authorization payload",
				Err:   err.Error(),
			})
			return
		}

		decision := deps.Authorizer.Authorize(&payload)

		w.Header().Set("X-Decision-ID", decision.ID)
		_ = utils.WriteJSON(w, http.StatusOK, authzResponse{
			Allow: decision.Allowed,
			Msg:   decision.Msg,
			Err:   decision.Err,
		})
	}
}

// AuthZResponseHandler decides the response phase. The gateway filters
// requests only, so responses always pass.
func AuthZResponseHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, authzResponse{Allow: true})
	}
}
