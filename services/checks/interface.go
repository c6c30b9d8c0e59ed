package checks

import "github.com/dockwall/dockwall/models"

// Check is a single validation plugin. Run inspects the request and returns
// nil to pass, a denied domain error when policy forbids the request, or an
// invalid-request domain error when the request lacks information the check
// needs. Checks are pure functions of (args, payload): no side effects, no
// shared state.
//
// args comes straight from the resolved check set: nil, a string, a list,
// or a nested structure, interpreted per check.
type Check interface {
	// Name returns the identifier used in rule configuration.
	Name() string

	// Run executes the check against the payload.
	Run(args interface{}, payload *models.Payload) error
}
