package rules

import (
	"fmt"

	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/services"
)

// MatchHost evaluates a hostname against an ordered list of signed patterns.
// The match state starts false; a matching '+' pattern sets it true, a
// matching '-' pattern sets it false, and later entries override earlier
// ones. A pattern without a sign is a configuration error, surfaced
// immediately rather than defaulted.
func MatchHost(hostname string, patterns []models.HostPattern) (bool, error) {
	match := false
	for _, p := range patterns {
		switch p.Sign {
		case models.HostSignAllow:
			if p.MatchString(hostname) {
				match = true
			}
		case models.HostSignDeny:
			if p.MatchString(hostname) {
				match = false
			}
		default:
			return false, services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("host pattern %q is missing '+' or '-'", p.String()), nil)
		}
	}
	return match, nil
}
