// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package remediate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Mode selects the remediation strategy. A run never applies both.
type Mode int

const (
	// Distrust marks the known root explicitly untrusted for every usage.
	Distrust Mode = iota
	// Remove marks every matching store entry for permanent deletion.
	Remove
)

// String returns the mode name as used in configuration.
func (m Mode) String() string {
	switch m {
	case Distrust:
		return "distrust"
	case Remove:
		return "remove"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name. The empty string is [Distrust].
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "distrust":
		return Distrust, nil
	case "remove", "removal":
		return Remove, nil
	default:
		return 0, fmt.Errorf("remediate: unknown mode %q", s)
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// LoadReason is the lifecycle event that triggered a run.
type LoadReason string

// Qualifying load reasons. Any other value skips remediation.
const (
	ReasonStartup LoadReason = "startup"
	ReasonInstall LoadReason = "install"
	ReasonEnable  LoadReason = "enable"
)

// Qualifies reports whether r may trigger remediation.
func (r LoadReason) Qualifies() bool {
	switch r {
	case ReasonStartup, ReasonInstall, ReasonEnable:
		return true
	default:
		return false
	}
}

// Options is the record passed with a lifecycle event.
type Options struct {
	LoadReason LoadReason
}

// State is the progress of a [Session].
type State int

const (
	Uninitialized State = iota
	Scanning
	Remediating
	Invalidating
	// Initialized is terminal. It is reached after the first qualifying run,
	// whether that run succeeded or failed.
	Initialized
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Scanning:
		return "scanning"
	case Remediating:
		return "remediating"
	case Invalidating:
		return "invalidating"
	case Initialized:
		return "initialized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status summarizes how a call to [Session.Main] ended.
type Status string

const (
	// StatusSkipped means the load reason did not qualify. Session state is
	// unchanged.
	StatusSkipped Status = "skipped"
	// StatusAlreadyInitialized means an earlier qualifying run already
	// happened. Nothing was touched.
	StatusAlreadyInitialized Status = "already-initialized"
	// StatusConditionNotMet means the host state did not call for remediation.
	StatusConditionNotMet Status = "condition-not-met"
	// StatusNoMatch means removal found nothing to delete.
	StatusNoMatch Status = "no-match"
	// StatusRemediated means the trust store was changed.
	StatusRemediated Status = "remediated"
	// StatusFailed means a stage failed. See [Outcome.Err].
	StatusFailed Status = "failed"
)

// Outcome reports a single call to [Session.Main].
type Outcome struct {
	// ID correlates log lines of one call.
	ID     uuid.UUID `json:"id"`
	Status Status    `json:"status"`
	Mode   Mode      `json:"mode"`
	// Matched counts store entries whose fingerprint equals the target's.
	// Distrust mode does not scan and always reports zero.
	Matched int `json:"matched"`
	// Marked counts entries marked for deletion.
	Marked int `json:"marked"`
	// Invalidated reports whether the session caches were torn down.
	Invalidated bool `json:"invalidated"`
	// Cleared counts the cached sessions the teardown dropped. Invalidated
	// with zero Cleared means the configured caches held nothing.
	Cleared int `json:"cleared"`
	// Err is the first stage error, or nil. A remediated outcome may still
	// carry a partial deletion or teardown failure.
	Err error `json:"-"`
}

// Stage names a fallible boundary of a run.
type Stage string

const (
	StageCondition  Stage = "condition"
	StageDecode     Stage = "decode"
	StageScan       Stage = "scan"
	StageMutate     Stage = "mutate"
	StageFlush      Stage = "flush"
	StageInvalidate Stage = "invalidate"
)

// Error kinds. Every [*Error] matches exactly one of them with [errors.Is].
var (
	// ErrEnvironmentUnavailable indicates a host service could not be reached
	// or did not answer in time.
	ErrEnvironmentUnavailable = errors.New("remediate: environment unavailable")
	// ErrMalformedDescriptor indicates the embedded root could not be decoded.
	ErrMalformedDescriptor = errors.New("remediate: malformed descriptor")
	// ErrStoreMutation indicates the host rejected a trust or deletion change.
	ErrStoreMutation = errors.New("remediate: store mutation failed")
	// ErrSessionTeardown indicates the session caches could not be cleared.
	ErrSessionTeardown = errors.New("remediate: session teardown failed")
)

// Error is a failure at one stage of a run.
type Error struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Stage, e.Err)
}

// Unwrap returns the kind and the cause.
func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }
