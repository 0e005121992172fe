package errors

import (
	"errors"
	"fmt"
)

// Not-found sentinels shared between the infra clients and the lifecycle
// coordinator.
var (
	ErrRecordNotFound = errors.New("dns record not found")
	ErrConfigNotFound = errors.New("tunnel config not found")
)

// ValidationKind distinguishes which identifier failed validation.
type ValidationKind string

const (
	InvalidName      ValidationKind = "invalid_name"
	InvalidPort      ValidationKind = "invalid_port"
	InvalidSubdomain ValidationKind = "invalid_subdomain"
)

// ValidationError rejects a malformed name, port or subdomain before any
// side effect occurs.
type ValidationError struct {
	Kind  ValidationKind
	Value string
}

func (e ValidationError) Error() string {
	switch e.Kind {
	case InvalidName:
		return fmt.Sprintf("invalid tunnel name %q: must match [A-Za-z0-9-]+", e.Value)
	case InvalidPort:
		return fmt.Sprintf("invalid port %q: must be an integer in [1, 65535]", e.Value)
	case InvalidSubdomain:
		return fmt.Sprintf("invalid subdomain %q: must match [A-Za-z0-9-]+", e.Value)
	default:
		return fmt.Sprintf("invalid value %q", e.Value)
	}
}

// ProviderError carries cloudflared's diagnostic output verbatim.
type ProviderError struct {
	Op     string
	Output string
	Err    error
}

func (e ProviderError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("cloudflared %s: %v: %s", e.Op, e.Err, e.Output)
	}
	return fmt.Sprintf("cloudflared %s: %v", e.Op, e.Err)
}

func (e ProviderError) Unwrap() error { return e.Err }

// NoIdentifierError is returned when tunnel creation reported success but
// no UUID-shaped identifier could be extracted from the output.
type NoIdentifierError struct {
	Output string
}

func (e NoIdentifierError) Error() string {
	return "cloudflared reported success but returned no tunnel identifier"
}

// DNSError wraps a failed Cloudflare DNS API call. DNS cleanup is
// best-effort, so callers usually log this instead of aborting.
type DNSError struct {
	Op  string
	Err error
}

func (e DNSError) Error() string {
	return "dns " + e.Op + ": " + e.Err.Error()
}

func (e DNSError) Unwrap() error { return e.Err }

// ServiceError wraps a failed systemd operation.
type ServiceError struct {
	Op  string
	Err error
}

func (e ServiceError) Error() string {
	return "service " + e.Op + ": " + e.Err.Error()
}

func (e ServiceError) Unwrap() error { return e.Err }
