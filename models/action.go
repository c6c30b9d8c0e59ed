package models

// Action is a named operation derived from an HTTP method and URI, with a
// namespace (the resource category) used for fallback matching. The zero
// Action represents an unrecognized request; it can only match the "any"
// tier during check resolution.
type Action struct {
	Name      string
	Namespace string
}

// Known reports whether the action was recognized by the catalog.
func (a Action) Known() bool {
	return a.Name != ""
}
