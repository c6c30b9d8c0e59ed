package checks

import (
	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/services"
)

// Deny rejects every request unconditionally. It is the usual default for
// restrictive rules.
type Deny struct{}

// NewDeny creates the deny check
func NewDeny() *Deny {
	return &Deny{}
}

// Name returns the configuration identifier
func (c *Deny) Name() string {
	return "deny"
}

// Run always denies
func (c *Deny) Run(args interface{}, payload *models.Payload) error {
	return services.NewDomainError(services.ErrorTypeDenied, "denied by policy", nil)
}
