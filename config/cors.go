package config

import "strings"

// CORSMode selects how browser origins are checked.
type CORSMode int

const (
	// CORSAllowAll accepts every origin.
	CORSAllowAll CORSMode = iota
	// CORSAllowOrigin accepts only origins matching a configured value.
	CORSAllowOrigin
)

func (m CORSMode) String() string {
	if m == CORSAllowOrigin {
		return "origin"
	}
	return "all"
}

// CORSPolicy is resolved once at startup and never re-read per request.
type CORSPolicy struct {
	Mode   CORSMode
	Origin string // only meaningful for CORSAllowOrigin
}

// AllowAll returns a policy that accepts any origin.
func AllowAll() CORSPolicy {
	return CORSPolicy{Mode: CORSAllowAll}
}

// AllowOrigin returns a policy restricted to origin (exact or prefix match).
func AllowOrigin(origin string) CORSPolicy {
	return CORSPolicy{Mode: CORSAllowOrigin, Origin: origin}
}

// Policy resolves the configured mode. "origin" without a ClientURL falls
// back to AllowAll, since an absent allowed origin means no restriction.
func (c CORSConfig) Policy() CORSPolicy {
	origin := strings.TrimSpace(c.ClientURL)
	if strings.EqualFold(strings.TrimSpace(c.Mode), "origin") && origin != "" {
		return AllowOrigin(origin)
	}
	return AllowAll()
}

// Allows reports whether a request carrying the given Origin header may
// proceed. A missing Origin header is always allowed.
func (p CORSPolicy) Allows(origin string) bool {
	if p.Mode == CORSAllowAll || p.Origin == "" || origin == "" {
		return true
	}
	return origin == p.Origin || strings.HasPrefix(origin, p.Origin)
}
