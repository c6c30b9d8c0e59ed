package checks

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/dockwall/dockwall/models"
	"github.com/dockwall/dockwall/services"
)

// ContainerName validates the container name a request addresses against
// one or more patterns. The name comes from the "name" query parameter for
// create-style requests and from the trailing path segment otherwise.
// Patterns match from the beginning of the name; the $USER and $USERNAME
// tokens are replaced by the caller identity before matching.
type ContainerName struct{}

// NewContainerName creates the container-name check
func NewContainerName() *ContainerName {
	return &ContainerName{}
}

// Name returns the configuration identifier
func (c *ContainerName) Name() string {
	return "container_name"
}

// Run validates the addressed container name. Nil arguments pass any
// request that carries an extractable name; a list of patterns passes when
// any one matches.
func (c *ContainerName) Run(args interface{}, payload *models.Payload) error {
	name, err := extractName(payload)
	if err != nil {
		return err
	}

	if args == nil {
		return nil
	}

	patterns, err := patternList(args)
	if err != nil {
		return err
	}

	for _, pattern := range patterns {
		rewritten := substituteIdentity(pattern, payload.User)
		re, err := regexp.Compile("^(?:" + rewritten + ")")
		if err != nil {
			return services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("container name pattern %q is not a valid expression", pattern), err)
		}
		if re.MatchString(name) {
			return nil
		}
	}

	return services.NewDomainError(services.ErrorTypeDenied,
		fmt.Sprintf("container name %q denied by policy", name), nil)
}

// extractName derives the candidate container name from the request. A
// request without a parsable URI is invalid, not denied: the check cannot
// decide on it.
func extractName(payload *models.Payload) (string, error) {
	if payload.RequestURI == "" {
		return "", services.NewDomainError(services.ErrorTypeInvalidRequest,
			"payload carries no request URI", nil)
	}
	u, err := url.Parse(payload.RequestURI)
	if err != nil {
		return "", services.NewDomainError(services.ErrorTypeInvalidRequest,
			"payload request URI is not parsable", err)
	}

	if strings.HasSuffix(u.Path, "/create") {
		// Create-style request: the name rides in the query string and may
		// legitimately be absent (the runtime generates one).
		return u.Query().Get("name"), nil
	}

	segment := u.Path
	if i := strings.LastIndexByte(segment, '/'); i >= 0 {
		segment = segment[i+1:]
	}
	if segment == "" {
		return "", services.NewDomainError(services.ErrorTypeDenied,
			"request path carries no resource name", nil)
	}
	return segment, nil
}

// patternList normalizes check arguments to a pattern slice: a single
// string or an ordered list of strings (logical OR). Anything else is a
// configuration error.
func patternList(args interface{}) ([]string, error) {
	switch v := args.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []interface{}:
		patterns := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, services.NewDomainError(services.ErrorTypeConfiguration,
					fmt.Sprintf("container name pattern %v is not a string", item), nil)
			}
			patterns = append(patterns, s)
		}
		return patterns, nil
	default:
		return nil, services.NewDomainError(services.ErrorTypeConfiguration,
			fmt.Sprintf("container name arguments of type %T are not supported", args), nil)
	}
}
