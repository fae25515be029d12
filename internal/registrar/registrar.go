// Package registrar attaches and detaches community custom domains on the
// hosting platform that serves community sites.
package registrar

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// DomainPattern is the syntax a custom domain must match.
const DomainPattern = `^[a-z0-9]+([\-\.]{1}[a-z0-9]+)*\.[a-z]{2,5}$`

var domainRegexp = regexp.MustCompile(DomainPattern)

// Sentinel errors for registrar operations.
var (
	ErrUnauthorized = errors.New("registrar: unauthorized")
	ErrRateLimited  = errors.New("registrar: rate limited by provider")
	ErrConflict     = errors.New("registrar: domain belongs to another project")
	ErrServer       = errors.New("registrar: provider error")
)

// Registrar provisions custom domains.
type Registrar interface {
	// AddDomain attaches domain so requests for it reach the platform.
	AddDomain(ctx context.Context, domain string) error
	// RemoveDomain detaches domain. Removing an unknown domain is not an error.
	RemoveDomain(ctx context.Context, domain string) error
}

// IsValidDomain reports whether domain matches DomainPattern.
func IsValidDomain(domain string) bool {
	return domainRegexp.MatchString(domain)
}

// IsReserved reports whether value contains the platform root domain.
// The port, if any, is ignored.
func IsReserved(value, rootDomain string) bool {
	root, _, _ := strings.Cut(rootDomain, ":")
	if root == "" {
		return false
	}
	return strings.Contains(value, root)
}

// Noop accepts every call. Used when no provider is configured.
type Noop struct{}

// AddDomain implements Registrar.
func (Noop) AddDomain(context.Context, string) error { return nil }

// RemoveDomain implements Registrar.
func (Noop) RemoveDomain(context.Context, string) error { return nil }

// OpError wraps a provider failure with the operation and domain.
type OpError struct {
	Op       string // "add" or "remove"
	Provider string
	Domain   string
	Err      error
}

func (e *OpError) Error() string {
	return e.Provider + " " + e.Op + " [" + e.Domain + "]: " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}
