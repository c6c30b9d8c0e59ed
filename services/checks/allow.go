package checks

import "github.com/dockwall/dockwall/models"

// Allow passes every request unconditionally. It is the usual default for
// permissive rules.
type Allow struct{}

// NewAllow creates the allow check
func NewAllow() *Allow {
	return &Allow{}
}

// Name returns the configuration identifier
func (c *Allow) Name() string {
	return "allow"
}

// Run always passes
func (c *Allow) Run(args interface{}, payload *models.Payload) error {
	return nil
}
