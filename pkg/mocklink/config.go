package mocklink

import (
	"errors"
	"fmt"
	"strings"
)

// MissingHandlerPolicy controls what Dispatch does when no handler matches
// an operation.
type MissingHandlerPolicy string

// Missing handler policies.
const (
	// PolicyThrowError makes Dispatch return a *MissingHandlerError
	// synchronously, before any stream exists.
	PolicyThrowError MissingHandlerPolicy = "throw-error"

	// PolicyWarnAndReturnError logs a warning and returns a stream that
	// errors once subscribed.
	PolicyWarnAndReturnError MissingHandlerPolicy = "warn-and-return-error"

	// PolicyReturnError returns a stream that errors once subscribed,
	// without logging.
	PolicyReturnError MissingHandlerPolicy = "return-error"
)

// DefaultMissingHandlerPolicy is used when no policy is configured.
const DefaultMissingHandlerPolicy = PolicyThrowError

// DefaultRequestLogSize is the number of dispatches kept by the default
// request log.
const DefaultRequestLogSize = 1000

// ErrInvalidPolicy is returned when a missing handler policy is not recognized.
var ErrInvalidPolicy = errors.New("invalid missing handler policy")

// ParseMissingHandlerPolicy parses a policy name. Matching is case-insensitive
// and an empty string selects the default policy.
func ParseMissingHandlerPolicy(s string) (MissingHandlerPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultMissingHandlerPolicy, nil
	case string(PolicyThrowError):
		return PolicyThrowError, nil
	case string(PolicyWarnAndReturnError):
		return PolicyWarnAndReturnError, nil
	case string(PolicyReturnError):
		return PolicyReturnError, nil
	default:
		return "", fmt.Errorf("%w: %q (expected throw-error, warn-and-return-error or return-error)", ErrInvalidPolicy, s)
	}
}

// Valid reports whether p is one of the known policies.
func (p MissingHandlerPolicy) Valid() bool {
	switch p {
	case PolicyThrowError, PolicyWarnAndReturnError, PolicyReturnError:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler so that policies decoded
// from YAML or JSON are validated.
func (p *MissingHandlerPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseMissingHandlerPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Config holds link configuration.
type Config struct {
	// MissingHandlerPolicy selects the behavior for unmatched operations.
	MissingHandlerPolicy MissingHandlerPolicy `json:"missingHandlerPolicy,omitempty" yaml:"missingHandlerPolicy,omitempty"`

	// DisableSubscriptionLogging is the default for handles created through
	// Link.NewSubscriptionHandle.
	DisableSubscriptionLogging bool `json:"disableSubscriptionLogging,omitempty" yaml:"disableSubscriptionLogging,omitempty"`

	// RequestLogSize caps the default in-memory request log. Zero uses
	// DefaultRequestLogSize.
	RequestLogSize int `json:"requestLogSize,omitempty" yaml:"requestLogSize,omitempty"`
}

// DefaultConfig returns the default link configuration.
func DefaultConfig() Config {
	return Config{
		MissingHandlerPolicy: DefaultMissingHandlerPolicy,
		RequestLogSize:       DefaultRequestLogSize,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MissingHandlerPolicy != "" && !c.MissingHandlerPolicy.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPolicy, c.MissingHandlerPolicy)
	}
	if c.RequestLogSize < 0 {
		return fmt.Errorf("requestLogSize must not be negative, got %d", c.RequestLogSize)
	}
	return nil
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	if c.MissingHandlerPolicy == "" {
		c.MissingHandlerPolicy = DefaultMissingHandlerPolicy
	}
	if c.RequestLogSize == 0 {
		c.RequestLogSize = DefaultRequestLogSize
	}
	return c
}
