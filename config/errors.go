package config

import (
	"errors"
	"fmt"
)

// Kind classifies a configuration parse or validation failure.
type Kind string

const (
	KindMalformedLine    Kind = "malformed line"
	KindUnknownAttribute Kind = "unknown attribute"
	KindUnexpectedLine   Kind = "unexpected line"
	KindEmptyDocument    Kind = "empty document"
	KindMissingField     Kind = "missing required field"
	KindInvalidNetwork   Kind = "invalid network"
	KindInvalidKey       Kind = "invalid key"
	KindInvalidPort      Kind = "invalid port"
	KindInvalidMTU       Kind = "invalid mtu"
	KindInvalidKeepalive Kind = "invalid keepalive"
	KindInvalidEndpoint  Kind = "invalid endpoint"
)

// ParseError is the error type for all configuration failures in this
// package. Section is "[Interface]" or "[Peer]" when the failure occurred
// while parsing a section's lines, and empty for document-level failures.
// Key decoding failures wrap the crypto package's sentinel errors, so both
// errors.As for *ParseError and errors.Is for the sentinels work.
type ParseError struct {
	Kind    Kind
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("%s in %s: %v", e.Kind, e.Section, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, section, format string, args ...any) error {
	return &ParseError{Kind: kind, Section: section, Err: fmt.Errorf(format, args...)}
}

// inSection fills in the section context of an error produced below the
// section parsers. Errors that already carry a section pass through.
func inSection(section string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Section == "" {
		return &ParseError{Kind: pe.Kind, Section: section, Err: pe.Err}
	}
	return err
}
