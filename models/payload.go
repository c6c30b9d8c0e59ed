package models

import (
	"encoding/json"
	"fmt"
)

// Payload is the raw authorization request forwarded by the container
// runtime. Field names follow the Docker authorization plugin wire format;
// RequestBody arrives base64 encoded and decodes transparently.
type Payload struct {
	User           string            `json:"User"`
	RequestMethod  string            `json:"RequestMethod"`
	RequestURI     string            `json:"RequestUri"`
	RequestBody    []byte            `json:"RequestBody,omitempty"`
	RequestHeaders map[string]string `json:"RequestHeaders,omitempty"`
	Host           string            `json:"Host,omitempty"`
}

// Anonymous reports whether the request carries no caller identity.
// An empty User is the anonymous sentinel, never a valid username.
func (p *Payload) Anonymous() bool {
	return p.User == ""
}

// Hostname returns the request's target host: the explicit Host field when
// present, otherwise the Host request header, otherwise fallback (typically
// the gateway's own hostname).
func (p *Payload) Hostname(fallback string) string {
	if p.Host != "" {
		return p.Host
	}
	if h, ok := p.RequestHeaders["Host"]; ok && h != "" {
		return h
	}
	return fallback
}

// Body decodes the JSON request body. Returns nil without error when the
// payload carries no body.
func (p *Payload) Body() (map[string]interface{}, error) {
	if len(p.RequestBody) == 0 {
		return nil, nil
	}
	var body map[string]interface{}
	if err := json.Unmarshal(p.RequestBody, &body); err != nil {
		return nil, fmt.Errorf("malformed request body: %w", err)
	}
	return body, nil
}
