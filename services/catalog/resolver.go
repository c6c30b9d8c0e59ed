package catalog

import (
	"regexp"
	"strings"

	"github.com/dockwall/dockwall/models"
)

// entry maps an HTTP method and URI shape to an action name. The namespace
// is the part of the name before the first underscore.
type entry struct {
	method string
	path   *regexp.Regexp
	action string
}

var versionPrefix = regexp.MustCompile(`^/v[0-9]+(?:\.[0-9]+)*`)

func e(method, pattern, action string) entry {
	return entry{
		method: method,
		path:   regexp.MustCompile("^" + pattern + "$"),
		action: action,
	}
}

// catalog covers the Docker Engine API surface the gateway fronts. Entries
// are matched in order; the first hit wins.
var catalog = []entry{
	// Containers
	e("GET", `/containers/json`, "container_list"),
	e("POST", `/containers/create`, "container_create"),
	e("GET", `/containers/[^/]+/json`, "container_inspect"),
	e("GET", `/containers/[^/]+/top`, "container_top"),
	e("GET", `/containers/[^/]+/logs`, "container_logs"),
	e("GET", `/containers/[^/]+/changes`, "container_changes"),
	e("GET", `/containers/[^/]+/export`, "container_export"),
	e("GET", `/containers/[^/]+/stats`, "container_stats"),
	e("POST", `/containers/[^/]+/resize`, "container_resize"),
	e("POST", `/containers/[^/]+/start`, "container_start"),
	e("POST", `/containers/[^/]+/stop`, "container_stop"),
	e("POST", `/containers/[^/]+/restart`, "container_restart"),
	e("POST", `/containers/[^/]+/kill`, "container_kill"),
	e("POST", `/containers/[^/]+/update`, "container_update"),
	e("POST", `/containers/[^/]+/rename`, "container_rename"),
	e("POST", `/containers/[^/]+/pause`, "container_pause"),
	e("POST", `/containers/[^/]+/unpause`, "container_unpause"),
	e("POST", `/containers/[^/]+/attach`, "container_attach"),
	e("GET", `/containers/[^/]+/attach/ws`, "container_attach_ws"),
	e("POST", `/containers/[^/]+/wait`, "container_wait"),
	e("DELETE", `/containers/[^/]+`, "container_delete"),
	e("HEAD", `/containers/[^/]+/archive`, "container_archive_info"),
	e("GET", `/containers/[^/]+/archive`, "container_archive_get"),
	e("PUT", `/containers/[^/]+/archive`, "container_archive_put"),
	e("POST", `/containers/prune`, "container_prune"),
	e("POST", `/containers/[^/]+/exec`, "exec_create"),

	// Exec
	e("POST", `/exec/[^/]+/start`, "exec_start"),
	e("POST", `/exec/[^/]+/resize`, "exec_resize"),
	e("GET", `/exec/[^/]+/json`, "exec_inspect"),

	// Images
	e("GET", `/images/json`, "image_list"),
	e("POST", `/build`, "image_build"),
	e("POST", `/images/create`, "image_create"),
	e("GET", `/images/[^/]+/json`, "image_inspect"),
	e("GET", `/images/[^/]+/history`, "image_history"),
	e("POST", `/images/[^/]+/push`, "image_push"),
	e("POST", `/images/[^/]+/tag`, "image_tag"),
	e("DELETE", `/images/[^/]+`, "image_delete"),
	e("GET", `/images/search`, "image_search"),
	e("POST", `/images/prune`, "image_prune"),

	// Volumes
	e("GET", `/volumes`, "volume_list"),
	e("POST", `/volumes/create`, "volume_create"),
	e("GET", `/volumes/[^/]+`, "volume_inspect"),
	e("DELETE", `/volumes/[^/]+`, "volume_delete"),
	e("POST", `/volumes/prune`, "volume_prune"),

	// Networks
	e("GET", `/networks`, "network_list"),
	e("POST", `/networks/create`, "network_create"),
	e("GET", `/networks/[^/]+`, "network_inspect"),
	e("POST", `/networks/[^/]+/connect`, "network_connect"),
	e("POST", `/networks/[^/]+/disconnect`, "network_disconnect"),
	e("DELETE", `/networks/[^/]+`, "network_delete"),
	e("POST", `/networks/prune`, "network_prune"),

	// System
	e("GET", `/info`, "system_info"),
	e("GET", `/version`, "system_version"),
	e("GET", `/_ping`, "system_ping"),
	e("HEAD", `/_ping`, "system_ping"),
	e("GET", `/events`, "system_events"),
	e("POST", `/auth`, "system_auth"),
	e("GET", `/system/df`, "system_disk_usage"),
}

// Resolver maps (HTTP method, URI) pairs to structured actions.
type Resolver struct{}

// NewResolver creates a Resolver over the static Docker Engine API catalog.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve derives the action for a request. The query string and the
// leading API version segment are ignored. Unrecognized requests resolve to
// the zero Action.
func (r *Resolver) Resolve(method, uri string) models.Action {
	path := uri
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = versionPrefix.ReplaceAllString(path, "")
	if path == "" {
		path = "/"
	}

	for _, entry := range catalog {
		if entry.method != method {
			continue
		}
		if entry.path.MatchString(path) {
			return models.Action{
				Name:      entry.action,
				Namespace: namespaceOf(entry.action),
			}
		}
	}
	return models.Action{}
}

// namespaceOf returns the resource category of an action name, e.g.
// "container" for "container_create".
func namespaceOf(action string) string {
	if i := strings.IndexByte(action, '_'); i > 0 {
		return action[:i]
	}
	return action
}
