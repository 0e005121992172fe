// Package validate holds the pure identifier checks that run before any
// side effect of a lifecycle operation.
package validate

import (
	"regexp"
	"strconv"

	domerr "tunnelctl/internal/domain/errors"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Name checks a tunnel name against ^[A-Za-z0-9-]+$.
func Name(s string) error {
	if !identifierRe.MatchString(s) {
		return domerr.ValidationError{Kind: domerr.InvalidName, Value: s}
	}
	return nil
}

// Subdomain checks a subdomain label against ^[A-Za-z0-9-]+$.
func Subdomain(s string) error {
	if !identifierRe.MatchString(s) {
		return domerr.ValidationError{Kind: domerr.InvalidSubdomain, Value: s}
	}
	return nil
}

// Port parses s as an integer and requires it to lie in [1, 65535].
// Non-numeric input is an InvalidPort error, same as an out-of-range value.
func Port(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return 0, domerr.ValidationError{Kind: domerr.InvalidPort, Value: s}
	}
	return n, nil
}
