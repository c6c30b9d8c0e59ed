package rules

import "github.com/dockwall/dockwall/models"

// SelectPolicy returns the action rules of the first policy, in list order,
// whose bound groups admit the username: directly, via the "*" wildcard, or
// via the Anonymous pairing for an unauthenticated caller (empty username).
// Returns nil when no policy matches, which triggers the rule-level default.
func SelectPolicy(username string, policies []models.Policy, groups models.Groups) models.ActionRules {
	for _, policy := range policies {
		for _, group := range policy.Members {
			if groups.Contains(group, username) {
				return policy.Rules
			}
		}
	}
	return nil
}
