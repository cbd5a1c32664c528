package query

import (
	"fmt"
	"strings"
)

// Origin tells where a query was issued from.
type Origin string

const (
	// OriginPublic is a front-end request.
	OriginPublic Origin = "public"
	// OriginAdmin is a request from the admin area.
	OriginAdmin Origin = "admin"
)

// Transport tells how a query reached the server.
type Transport string

const (
	// TransportNormal is a regular page or REST request.
	TransportNormal Transport = "normal"
	// TransportAJAX is an admin-ajax style background request.
	TransportAJAX Transport = "ajax"
)

// TriState is an explicit per-query override that may be left unset.
type TriState int

const (
	// Unset means the query carries no override.
	Unset TriState = iota
	// ForceEnable asks for integration.
	ForceEnable
	// ForceDisable opts the query out of integration.
	ForceDisable
)

func (t TriState) String() string {
	switch t {
	case ForceEnable:
		return "true"
	case ForceDisable:
		return "false"
	default:
		return "unset"
	}
}

// ParseTriState parses an ep_integrate style value.
// Empty input yields Unset.
func ParseTriState(s string) (TriState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unset, nil
	case "1", "true", "yes", "on":
		return ForceEnable, nil
	case "0", "false", "no", "off":
		return ForceDisable, nil
	default:
		return Unset, fmt.Errorf("invalid integrate override %q", s)
	}
}

// Context describes one incoming content query. It is built per request
// and never persisted.
type Context struct {
	Origin    Origin
	Transport Transport

	// AdminIntegration allows admin-area queries to integrate.
	AdminIntegration bool
	// AJAXIntegration allows AJAX queries to integrate.
	AJAXIntegration bool

	// Integrate is the per-query ep_integrate override.
	Integrate TriState
}

// IsAdmin reports whether the query originates from the admin area.
func (c Context) IsAdmin() bool { return c.Origin == OriginAdmin }

// IsAJAX reports whether the query arrived over AJAX.
func (c Context) IsAJAX() bool { return c.Transport == TransportAJAX }
