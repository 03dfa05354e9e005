// Package errs defines the error kinds returned by the monitor lifecycle.
//
// Each lifecycle operation fails with exactly one kind: *ConnectError, *FetchError
// or *DisplayError. The wrapped cause is one of the sentinels below or an
// underlying transport error. Match kinds with errors.As and causes with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrCredentialMissing = errors.New("credential missing")
	ErrEndpointInvalid   = errors.New("endpoint invalid")
	ErrNoAssets          = errors.New("no assets configured")
	ErrMalformedContract = errors.New("malformed contract response")
	ErrConnectionClosed  = errors.New("connection already released")

	// ErrNotConnected is returned by the runtime-checked monitor when fetch runs with an empty connection slot.
	ErrNotConnected = errors.New("no connection found - connect was not called first")
	// ErrNotFetched is returned by the runtime-checked monitor when display runs with an empty metrics slot.
	ErrNotFetched = errors.New("no metrics found - fetch was not called first")
	// ErrHandleConsumed is returned when a phase-typed handle is used again after it transitioned.
	ErrHandleConsumed = errors.New("handle already consumed by a transition")
)

// ConnectError reports a failure to acquire a connection.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string { return fmt.Sprintf("connect: %v", e.Err) }
func (e *ConnectError) Unwrap() error { return e.Err }

// FetchError reports a failure to build a metric set. Asset is empty when the
// failure is not tied to a single asset.
type FetchError struct {
	Asset string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Asset == "" {
		return fmt.Sprintf("fetch: %v", e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Asset, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DisplayError reports a display call made before a metric set exists.
type DisplayError struct {
	Err error
}

func (e *DisplayError) Error() string { return fmt.Sprintf("display: %v", e.Err) }
func (e *DisplayError) Unwrap() error { return e.Err }

// Connect wraps err as a *ConnectError unless it already is one.
func Connect(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConnectError
	if errors.As(err, &ce) {
		return err
	}
	return &ConnectError{Err: err}
}

// Fetch wraps err as a *FetchError for asset unless it already is one.
func Fetch(asset string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Asset: asset, Err: err}
}
