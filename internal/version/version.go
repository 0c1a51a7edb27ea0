// Package version orders semantic-version strings.
//
// Versions are major.minor.patch with an optional prerelease and build suffix,
// compared with standard semver precedence: a prerelease sorts before its
// release and build metadata is ignored. A leading "v" is accepted but not
// required.
package version

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Current is the application release whose document shapes this build
// writes. It matches the newest migration step.
const Current = "3.8.1"

// ErrInvalid is wrapped by every ParseError.
var ErrInvalid = errors.New("invalid version")

// ParseError reports a malformed version string.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: want major.minor.patch[-prerelease][+build]", e.Value)
}

func (e *ParseError) Unwrap() error { return ErrInvalid }

// canonical returns v in the "v"-prefixed form understood by x/mod/semver.
// Shorthand forms such as "1.2" are rejected even though semver accepts them.
func canonical(v string) (string, error) {
	s := strings.TrimSpace(v)
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	if !semver.IsValid(s) {
		return "", &ParseError{Value: v}
	}
	core, _, _ := strings.Cut(s, "+")
	if semver.Canonical(s) != core {
		return "", &ParseError{Value: v}
	}
	return s, nil
}

// Validate returns a *ParseError when v is not a full semantic version.
func Validate(v string) error {
	_, err := canonical(v)
	return err
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to,
// or after b.
func Compare(a, b string) (int, error) {
	ca, err := canonical(a)
	if err != nil {
		return 0, err
	}
	cb, err := canonical(b)
	if err != nil {
		return 0, err
	}
	return semver.Compare(ca, cb), nil
}

// Less reports whether a sorts strictly before b.
func Less(a, b string) (bool, error) {
	c, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}
