package checks

import (
	"fmt"

	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/services"
)

// ReadOnly denies any request that could mutate state: only GET and HEAD
// methods pass.
type ReadOnly struct{}

// NewReadOnly creates the read-only check
func NewReadOnly() *ReadOnly {
	return &ReadOnly{}
}

// Name returns the configuration identifier
func (c *ReadOnly) Name() string {
	return "read_only"
}

// Run denies non-read HTTP methods
func (c *ReadOnly) Run(args interface{}, payload *models.Payload) error {
	switch payload.RequestMethod {
	case "GET", "HEAD":
		return nil
	}
	return services.NewDomainError(services.ErrorTypeDenied,
		fmt.Sprintf("method %s denied by read-only policy", payload.RequestMethod), nil)
}
