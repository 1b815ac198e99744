// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package app wires configuration into the remediation components shared by
// the command line and the MCP server.
package app

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"sync"

	"github.com/H0llyW00dzZ/root-remediator/src/config"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/condition"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/registry"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/remediate"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/scanner"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/session"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/truststore"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/fingerprint"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/knownroot"
	"github.com/H0llyW00dzZ/root-remediator/src/logger"
)

// Env holds the components built from one configuration. It owns the
// process's remediation session, so one Env must serve every lifecycle
// event of a process.
//
// Env is safe for concurrent use by multiple goroutines.
type Env struct {
	Config    *config.Config
	Logger    logger.Logger
	Mode      remediate.Mode
	Algorithm fingerprint.Algorithm
	Checker   *condition.Checker
	// Tickets is the process's TLS client session cache. It is torn down
	// together with the on-disk cache after a remediation.
	Tickets     *session.TicketCache
	Invalidator session.Invalidator

	mu      sync.Mutex
	store   truststore.Store
	session *remediate.Session
}

// New validates the configured names and builds the components.
func New(cfg *config.Config, log logger.Logger) (*Env, error) {
	if log == nil {
		log = logger.NewCLILogger(logger.DefaultPrefix, false)
	}

	mode, err := remediate.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	alg, err := fingerprint.ParseAlgorithm(cfg.Fingerprint)
	if err != nil {
		return nil, err
	}

	var reg registry.Reader = registry.System()
	if cfg.Registry.Static {
		reg = registry.NewStatic(cfg.Registry.Keys...)
	}

	checker := condition.ForDistrust(reg)
	if mode == remediate.Remove {
		checker = condition.ForRemoval(reg)
	}
	if cfg.Platform != "" {
		platform := cfg.Platform
		checker.Platform = func() string { return platform }
	}
	checker.Timeout = cfg.Timeout()
	checker.Logger = log

	tickets := session.NewTicketCache(cfg.SessionCache.MaxTickets)
	inv := session.Multi{tickets}
	if cfg.SessionCache.Dir != "" {
		inv = append(inv, session.DirCache{Dir: cfg.SessionCache.Dir})
	}

	return &Env{
		Config:      cfg,
		Logger:      log,
		Mode:        mode,
		Algorithm:   alg,
		Checker:     checker,
		Tickets:     tickets,
		Invalidator: inv,
	}, nil
}

// Store opens the configured trust store on first use and returns it.
func (e *Env) Store() (truststore.Store, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.storeLocked()
}

func (e *Env) storeLocked() (truststore.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	s, err := truststore.Open(e.Config.Store.Backend, e.Config.Store.Path)
	if err != nil {
		return nil, err
	}
	e.store = s
	return s, nil
}

// Session returns the process's remediation session, creating it on first
// use. A store that cannot be opened is reported by the session itself on
// its first qualifying run.
func (e *Env) Session() *remediate.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return e.session
	}

	store, err := e.storeLocked()
	if err != nil {
		e.Logger.Printf("cannot open %s trust store: %v", e.Config.Store.Backend, err)
		store = unavailable{err}
	}
	e.session = remediate.NewSession(remediate.Config{
		Mode:        e.Mode,
		Condition:   e.Checker,
		Store:       store,
		Invalidator: e.Invalidator,
		Algorithm:   e.Algorithm,
		Timeout:     e.Config.Timeout(),
		Logger:      e.Logger,
	})
	return e.session
}

// Remediate delivers a lifecycle event to the process's session.
func (e *Env) Remediate(ctx context.Context, reason remediate.LoadReason) remediate.Outcome {
	return e.Session().Main(ctx, remediate.Options{LoadReason: reason})
}

// Scan lists the store entries that match the known root.
func (e *Env) Scan(ctx context.Context) ([]scanner.Match, error) {
	store, err := e.Store()
	if err != nil {
		return nil, err
	}
	return scanner.New(store, e.Algorithm).FindMatching(ctx, knownroot.Superfish)
}

// Close releases the trust store.
func (e *Env) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store == nil {
		return nil
	}
	err := e.store.Close()
	e.store = nil
	return err
}

// unavailable stands in for a store that failed to open. Every call fails
// with an error the session classifies as an unavailable environment.
type unavailable struct{ err error }

func (u unavailable) fail() error {
	if errors.Is(u.err, truststore.ErrUnsupported) {
		return u.err
	}
	return fmt.Errorf("%w: %w", truststore.ErrClosed, u.err)
}

func (u unavailable) Import(context.Context, *x509.Certificate) (*truststore.Handle, error) {
	return nil, u.fail()
}

func (u unavailable) SetTrust(context.Context, *truststore.Handle, truststore.Trust) error {
	return u.fail()
}

func (u unavailable) Entries(context.Context) ([]truststore.Entry, error) { return nil, u.fail() }

func (u unavailable) MarkForDeletion(context.Context, truststore.Entry) error { return u.fail() }

func (u unavailable) Flush(context.Context) error { return u.fail() }

func (u unavailable) Close() error { return nil }
