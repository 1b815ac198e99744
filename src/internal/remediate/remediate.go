// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package remediate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/helper/hostcall"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/scanner"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/session"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/truststore"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/fingerprint"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/knownroot"
	"github.com/H0llyW00dzZ/root-remediator/src/logger"
)

// DefaultTimeout bounds every host call when [Config.Timeout] is zero.
const DefaultTimeout = 10 * time.Second

// Condition decides whether the host needs remediation.
type Condition interface {
	ShouldRemediate(ctx context.Context) bool
}

// ConditionFunc adapts a function to [Condition].
type ConditionFunc func(ctx context.Context) bool

// ShouldRemediate calls f.
func (f ConditionFunc) ShouldRemediate(ctx context.Context) bool { return f(ctx) }

// Always is a [Condition] that always holds.
var Always = ConditionFunc(func(context.Context) bool { return true })

// Config wires a [Session] to its host services. Store and Condition are
// required. The session never closes Store.
type Config struct {
	Mode Mode
	// Target is the root to neutralize. The zero value means [knownroot.Superfish].
	Target      knownroot.Descriptor
	Condition   Condition
	Store       truststore.Store
	Invalidator session.Invalidator
	// Algorithm is the fingerprint used to match store entries in [Remove] mode.
	Algorithm fingerprint.Algorithm
	// Timeout bounds each host call. Zero means [DefaultTimeout]; negative
	// disables the bound.
	Timeout time.Duration
	Logger  logger.Logger
}

// Session owns the at-most-once state of one process. Construct it once and
// pass it to every lifecycle event.
//
// Session is safe for concurrent use by multiple goroutines.
type Session struct {
	cfg Config

	mu    sync.Mutex
	state State
}

// NewSession returns a session in the [Uninitialized] state.
func NewSession(cfg Config) *Session {
	if cfg.Target == (knownroot.Descriptor{}) {
		cfg.Target = knownroot.Superfish
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Session{cfg: cfg}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Main handles a lifecycle event. The first event with a qualifying load
// reason runs the whole sequence; every later event is a no-op. Failures are
// logged and reported in the outcome, never returned or retried.
func (s *Session) Main(ctx context.Context, opts Options) Outcome {
	out := Outcome{ID: uuid.New(), Mode: s.cfg.Mode}

	if !opts.LoadReason.Qualifies() {
		s.logf("[%s] load reason %q does not qualify, skipping", out.ID, opts.LoadReason)
		out.Status = StatusSkipped
		return out
	}
	if !s.begin() {
		out.Status = StatusAlreadyInitialized
		return out
	}
	defer s.setState(Initialized)

	s.logf("[%s] initializing (%s, %s mode)", out.ID, opts.LoadReason, s.cfg.Mode)
	s.run(ctx, &out)

	switch {
	case out.Err != nil:
		if out.Status != StatusRemediated {
			out.Status = StatusFailed
		}
		s.logf("[%s] %s %s failed: %v", out.ID, s.cfg.Mode, s.cfg.Target, out.Err)
	case out.Status == StatusConditionNotMet:
		s.logf("[%s] condition not met; leaving %s untouched", out.ID, s.cfg.Target)
	case out.Status == StatusNoMatch:
		s.logf("[%s] %s not found in trust store", out.ID, s.cfg.Target)
	default:
		s.logf("[%s] %s: matched=%d marked=%d invalidated=%t cleared=%d", out.ID, out.Status, out.Matched, out.Marked, out.Invalidated, out.Cleared)
	}
	return out
}

// begin is the guarded check-and-set of the at-most-once flag.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Uninitialized {
		return false
	}
	s.state = Scanning
	return true
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) run(ctx context.Context, out *Outcome) {
	if s.cfg.Condition == nil || s.cfg.Store == nil {
		out.Err = &Error{Stage: StageCondition, Kind: ErrEnvironmentUnavailable, Err: errors.New("session is not wired to a condition and a store")}
		return
	}
	if !s.cfg.Condition.ShouldRemediate(ctx) {
		out.Status = StatusConditionNotMet
		return
	}

	var mutated bool
	switch s.cfg.Mode {
	case Distrust:
		mutated, out.Err = s.distrust(ctx)
	case Remove:
		mutated, out.Err = s.remove(ctx, out)
	default:
		out.Err = &Error{Stage: StageMutate, Kind: ErrStoreMutation, Err: errors.New("unknown mode " + s.cfg.Mode.String())}
	}
	if !mutated {
		if out.Err == nil {
			out.Status = StatusNoMatch
		}
		return
	}

	out.Status = StatusRemediated
	cleared, err := s.invalidate(ctx)
	out.Cleared = cleared
	if err != nil {
		out.Err = err
		return
	}
	out.Invalidated = true
	if cleared == 0 {
		s.logf("[%s] session teardown found no cached sessions", out.ID)
	}
}

// distrust stages explicit distrust of the target on a handle and flushes it.
// The handle stays open until Flush has returned; closing it earlier would
// discard the staged trust.
func (s *Session) distrust(ctx context.Context) (bool, error) {
	s.setState(Remediating)

	cert, err := s.cfg.Target.Decode()
	if err != nil {
		return false, &Error{Stage: StageDecode, Kind: ErrMalformedDescriptor, Err: err}
	}

	h, err := hostcall.Do(ctx, s.cfg.Timeout, "import", func(ctx context.Context) (*truststore.Handle, error) {
		return s.cfg.Store.Import(ctx, cert)
	})
	if err != nil {
		return false, &Error{Stage: StageMutate, Kind: ErrEnvironmentUnavailable, Err: err}
	}
	defer h.Close()

	if err := hostcall.Run(ctx, s.cfg.Timeout, "set trust", func(ctx context.Context) error {
		return s.cfg.Store.SetTrust(ctx, h, truststore.Distrusted)
	}); err != nil {
		return false, &Error{Stage: StageMutate, Kind: kindOf(err, ErrStoreMutation), Err: err}
	}

	if err := s.flush(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// remove marks every live entry matching the target for deletion. It reports
// a mutation only when at least one mark was flushed.
func (s *Session) remove(ctx context.Context, out *Outcome) (bool, error) {
	sc := scanner.New(s.cfg.Store, s.cfg.Algorithm)
	matches, err := hostcall.Do(ctx, s.cfg.Timeout, "enumerate", func(ctx context.Context) ([]scanner.Match, error) {
		return sc.FindMatching(ctx, s.cfg.Target)
	})
	if err != nil {
		if errors.Is(err, knownroot.ErrMalformedDescriptor) {
			return false, &Error{Stage: StageDecode, Kind: ErrMalformedDescriptor, Err: err}
		}
		return false, &Error{Stage: StageScan, Kind: ErrEnvironmentUnavailable, Err: err}
	}
	out.Matched = len(matches)
	if len(matches) == 0 {
		return false, nil
	}

	s.setState(Remediating)

	var (
		marked   int
		firstErr error
	)
	for _, m := range matches {
		err := hostcall.Run(ctx, s.cfg.Timeout, "mark for deletion", func(ctx context.Context) error {
			return s.cfg.Store.MarkForDeletion(ctx, m.Entry)
		})
		if err != nil {
			s.logf("cannot mark %q for deletion: %v", m.Nickname, err)
			if firstErr == nil {
				firstErr = &Error{Stage: StageMutate, Kind: kindOf(err, ErrStoreMutation), Err: err}
			}
			continue
		}
		marked++
	}
	if marked == 0 {
		return false, firstErr
	}

	if err := s.flush(ctx); err != nil {
		return false, err
	}
	out.Marked = marked
	return true, firstErr
}

func (s *Session) flush(ctx context.Context) error {
	err := hostcall.Run(ctx, s.cfg.Timeout, "flush", s.cfg.Store.Flush)
	if err != nil {
		return &Error{Stage: StageFlush, Kind: kindOf(err, ErrStoreMutation), Err: err}
	}
	return nil
}

// invalidate tears down the session caches and returns how many cached
// items were dropped. Without an invalidator nothing is torn down.
func (s *Session) invalidate(ctx context.Context) (int, error) {
	s.setState(Invalidating)
	if s.cfg.Invalidator == nil {
		return 0, &Error{Stage: StageInvalidate, Kind: ErrSessionTeardown, Err: errors.New("no session cache configured")}
	}

	n, err := hostcall.Do(ctx, s.cfg.Timeout, "logout and teardown", s.cfg.Invalidator.LogoutAndTeardown)
	if err != nil {
		return n, &Error{Stage: StageInvalidate, Kind: ErrSessionTeardown, Err: err}
	}
	return n, nil
}

// kindOf classifies unreachable or unresponsive services as environment
// failures and everything else as fallback.
func kindOf(err, fallback error) error {
	switch {
	case errors.Is(err, hostcall.ErrTimeout),
		errors.Is(err, truststore.ErrUnsupported),
		errors.Is(err, truststore.ErrClosed),
		errors.Is(err, context.Canceled):
		return ErrEnvironmentUnavailable
	default:
		return fallback
	}
}

func (s *Session) logf(format string, v ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Printf(format, v...)
	}
}
