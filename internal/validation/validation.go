// Package validation holds the small field checks shared by the state
// controller and the HTTP handlers. Failures are collected in order as
// user-facing strings; nothing here returns a Go error.
package validation

import (
	"net/mail"
	"strings"
)

// Errors is an ordered list of human-readable validation failures.
type Errors []string

func (e Errors) Empty() bool { return len(e) == 0 }

// Require appends msg when value is blank.
func (e Errors) Require(value, msg string) Errors {
	if strings.TrimSpace(value) == "" {
		return append(e, msg)
	}
	return e
}

// Check appends msg when ok is false.
func (e Errors) Check(ok bool, msg string) Errors {
	if !ok {
		return append(e, msg)
	}
	return e
}

// ValidEmail reports whether s parses as an address. Blank is not valid;
// callers decide whether blank is allowed at all.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}
