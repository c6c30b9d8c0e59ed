package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// AnyAction is the catch-all key in ActionRules that matches every action.
const AnyAction = "any"

// AnonymousMember is the group member that admits unauthenticated callers.
const AnonymousMember = "Anonymous"

// WildcardMember is the group member that admits every caller.
const WildcardMember = "*"

// Groups maps a group name to its member usernames.
type Groups map[string][]string

// Contains reports whether the group admits the given username. The literal
// member "*" admits any caller; "Anonymous" admits only the anonymous
// sentinel (empty username), never a caller who happens to carry that name.
// An empty username never matches a regular member.
func (g Groups) Contains(group, username string) bool {
	for _, member := range g[group] {
		switch {
		case member == WildcardMember:
			return true
		case member == AnonymousMember:
			if username == "" {
				return true
			}
		case username != "" && member == username:
			return true
		}
	}
	return false
}

// Merge returns a new Groups with the entries of other applied on top of g:
// new keys are added, existing keys are overwritten. Neither input is mutated.
func (g Groups) Merge(other Groups) Groups {
	merged := make(Groups, len(g)+len(other))
	for name, members := range g {
		merged[name] = members
	}
	for name, members := range other {
		merged[name] = members
	}
	return merged
}

// CheckSpec is a single named, parameterized validation instruction.
// Args is nil, a string, a list, or a nested structure, interpreted by the
// check plugin it names.
type CheckSpec struct {
	Name string
	Args interface{}
}

// CheckList is an ordered, append-only sequence of checks. It decodes from a
// YAML or JSON mapping preserving the document order of its keys.
type CheckList []CheckSpec

// Add appends a check, preserving insertion order.
func (c *CheckList) Add(name string, args interface{}) {
	*c = append(*c, CheckSpec{Name: name, Args: args})
}

// Empty reports whether no checks were resolved.
func (c CheckList) Empty() bool {
	return len(c) == 0
}

// UnmarshalYAML decodes a YAML mapping of check name to arguments,
// preserving key order.
func (c *CheckList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("check list must be a mapping, got %s at line %d", nodeKind(node.Kind), node.Line)
	}
	out := make(CheckList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("invalid check name: %w", err)
		}
		var args interface{}
		if err := node.Content[i+1].Decode(&args); err != nil {
			return fmt.Errorf("invalid arguments for check %q: %w", name, err)
		}
		out = append(out, CheckSpec{Name: name, Args: args})
	}
	*c = out
	return nil
}

// UnmarshalJSON decodes a JSON object of check name to arguments, preserving
// key order by scanning the token stream instead of an unordered map.
func (c *CheckList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("check list must be a JSON object")
	}
	out := make(CheckList, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("invalid check name %v", keyTok)
		}
		var args interface{}
		if err := dec.Decode(&args); err != nil {
			return fmt.Errorf("invalid arguments for check %q: %w", name, err)
		}
		out = append(out, CheckSpec{Name: name, Args: args})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

// HostSign is the polarity of a signed host pattern.
type HostSign int

const (
	// HostSignNone marks a pattern that was never parsed; matching against
	// it is a configuration error.
	HostSignNone HostSign = iota
	// HostSignAllow sets the match state to true when the pattern matches.
	HostSignAllow
	// HostSignDeny sets the match state to false when the pattern matches.
	HostSignDeny
)

// HostPattern is one entry of a host rule: a regular expression carrying an
// explicit '+' or '-' sign. Matching is anchored at the start of the
// hostname.
type HostPattern struct {
	Sign HostSign
	re   *regexp.Regexp
	raw  string
}

// ParseHostPattern parses a signed pattern such as "+srv[0-9]+" or
// "-.*\.prod". A missing sign is an error, never defaulted.
func ParseHostPattern(s string) (HostPattern, error) {
	if s == "" {
		return HostPattern{}, fmt.Errorf("host pattern is empty")
	}
	var sign HostSign
	switch s[0] {
	case '+':
		sign = HostSignAllow
	case '-':
		sign = HostSignDeny
	default:
		return HostPattern{}, fmt.Errorf("host pattern %q is missing '+' or '-'", s)
	}
	re, err := regexp.Compile("^(?:" + s[1:] + ")")
	if err != nil {
		return HostPattern{}, fmt.Errorf("host pattern %q: %w", s, err)
	}
	return HostPattern{Sign: sign, re: re, raw: s}, nil
}

// MatchString reports whether the hostname matches the pattern expression.
func (p HostPattern) MatchString(hostname string) bool {
	return p.re != nil && p.re.MatchString(hostname)
}

// String returns the original signed pattern text.
func (p HostPattern) String() string {
	return p.raw
}

// ActionRules maps an action name, an action namespace, or the literal "any"
// to the checks that apply when it matches.
type ActionRules map[string]CheckList

// Policy binds a set of group names to action rules within a policy rule.
type Policy struct {
	Name    string
	Members []string
	Rules   ActionRules
}

// PolicyRule is the top-level resolution unit: a host rule, an optional
// ordered policy list, and a mandatory default check list used when no
// policy or action match applies.
type PolicyRule struct {
	Description string
	Hosts       []HostPattern
	Policies    []Policy
	Default     CheckList
}

// RuleConfig is the aggregate configuration loaded from a rule source:
// all groups plus the ordered policy rule list.
type RuleConfig struct {
	Groups Groups
	Rules  []PolicyRule
}
