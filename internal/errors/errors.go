// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMissingToken    = errors.New("login response has no token")
	ErrInvalidBaseURL  = errors.New("invalid base url")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrUnknownVariant  = errors.New("unknown probe variant")
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitAuth      = 1
	ExitTransport = 2
	ExitProtocol  = 3
)

// TransportError is a network level failure: DNS, refused connection, TLS
// handshake, timeout or an interrupted response body.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError is returned when the login endpoint does not answer with 200.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed with status %d", e.StatusCode)
}

// ProtocolError is returned when a response body cannot be interpreted.
type ProtocolError struct {
	Reason string
	Body   string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return "protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ExitCode maps a run error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var te *TransportError
	var pe *ProtocolError
	switch {
	case errors.As(err, &te):
		return ExitTransport
	case errors.As(err, &pe):
		return ExitProtocol
	default:
		// AuthError and anything unexpected
		return ExitAuth
	}
}
