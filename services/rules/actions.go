package rules

import "github.com/dockwall/dockwall/models"

// ResolveChecks extracts the checks that apply to an action from a policy's
// action rules. Tiers are tried in strict order, first hit wins, no merging
// across tiers: exact action name, then the action's namespace, then the
// literal "any". Key presence decides a tier, so an explicitly empty tier
// still shadows the later ones. An empty result means "no decision", not
// "allow"; callers fall back to the rule default.
func ResolveChecks(action models.Action, rules models.ActionRules) models.CheckList {
	checks := make(models.CheckList, 0)

	var tier models.CheckList
	var matched bool
	if action.Known() {
		tier, matched = rules[action.Name]
		if !matched {
			tier, matched = rules[action.Namespace]
		}
	}
	if !matched {
		tier, matched = rules[models.AnyAction]
	}
	if !matched {
		return checks
	}

	for _, spec := range tier {
		checks.Add(spec.Name, spec.Args)
	}
	return checks
}
