// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/fingerprint"
)

var (
	// ErrInvalidTrust indicates a malformed trust string.
	ErrInvalidTrust = errors.New("truststore: invalid trust string")

	// ErrHandleClosed indicates use of a handle after Close.
	ErrHandleClosed = errors.New("truststore: handle closed")

	// ErrForeignHandle indicates a handle passed to a store that did not create it.
	ErrForeignHandle = errors.New("truststore: handle belongs to another store")

	// ErrNotFound indicates that an entry is no longer present in the store.
	ErrNotFound = errors.New("truststore: entry not found")

	// ErrUnsupported indicates a backend that is not available on this platform.
	ErrUnsupported = errors.New("truststore: backend not supported on this platform")

	// ErrUnsupportedTrust indicates a trust combination the backend cannot express.
	ErrUnsupportedTrust = errors.New("truststore: trust combination not supported by backend")

	// ErrClosed indicates use of a store after Close.
	ErrClosed = errors.New("truststore: store closed")
)

// Entry is a certificate currently present in a trust store.
//
// Entries are snapshots; mutating one has no effect on the store.
type Entry struct {
	// Nickname is the store's display label for the certificate.
	Nickname string
	// DER is the raw certificate as held by the store.
	DER []byte
	// Cert is the parsed certificate, or nil when the standard parser
	// rejects the DER.
	Cert *x509.Certificate
	// Key identifies the entry inside its store (SHA-256 over the full DER).
	// It is zero when the store holds no decodable DER for the entry.
	Key fingerprint.Fingerprint
	// Trust is the entry's current trust.
	Trust Trust
}

// Store is the host trust-store service.
//
// Mutations are staged and only become durable when Flush returns nil.
// A trust change staged on a [Handle] is discarded if the handle is closed
// before Flush, so callers must keep the handle open until Flush completes.
type Store interface {
	// Import constructs an in-memory trust object for cert. The certificate
	// does not need to be present in the store.
	Import(ctx context.Context, cert *x509.Certificate) (*Handle, error)
	// SetTrust stages trust for the handle's certificate.
	SetTrust(ctx context.Context, h *Handle, trust Trust) error
	// Entries enumerates the store afresh. Entries pending deletion are omitted.
	Entries(ctx context.Context) ([]Entry, error)
	// MarkForDeletion stages permanent removal of an entry.
	MarkForDeletion(ctx context.Context, e Entry) error
	// Flush durably applies every staged mutation.
	Flush(ctx context.Context) error
	// Close releases the store. Unflushed mutations are discarded.
	Close() error
}

// Handle owns an in-memory trust object created by [Store.Import].
//
// Handle is safe for concurrent use by multiple goroutines.
type Handle struct {
	mu      sync.Mutex
	owner   Store
	cert    *x509.Certificate
	key     fingerprint.Fingerprint
	trust   *Trust
	closed  bool
	onClose func() error
}

func newHandle(owner Store, cert *x509.Certificate, onClose func() error) *Handle {
	key, _ := fingerprint.Of(cert, fingerprint.Certificate)
	return &Handle{owner: owner, cert: cert, key: key, onClose: onClose}
}

// Certificate returns the handle's certificate.
func (h *Handle) Certificate() *x509.Certificate { return h.cert }

// Key returns the store identity of the handle's certificate.
func (h *Handle) Key() fingerprint.Fingerprint { return h.key }

// Staged returns the trust staged on the handle, if any.
func (h *Handle) Staged() (Trust, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.trust == nil {
		return Trust{}, false
	}
	return *h.trust, true
}

// Closed reports whether the handle has been released.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close releases the trust object. Any staged trust that has not been
// flushed is lost. Close is idempotent.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.trust = nil
	onClose := h.onClose
	h.mu.Unlock()

	if onClose != nil {
		return onClose()
	}
	return nil
}

func (h *Handle) stage(owner Store, trust Trust) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.owner != owner {
		return ErrForeignHandle
	}
	if h.closed {
		return ErrHandleClosed
	}
	h.trust = &trust
	return nil
}

// nicknameFor derives a display label from a certificate subject.
func nicknameFor(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	if cn := strings.TrimSpace(cert.Subject.CommonName); cn != "" {
		return cn
	}
	if len(cert.Subject.Organization) > 0 {
		return cert.Subject.Organization[0]
	}
	return cert.Subject.String()
}

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendSystem = "system"
)

// Open returns the store for a backend name. The file backend requires path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendFile:
		if path == "" {
			return nil, errors.New("truststore: file backend requires a path")
		}
		return NewFileStore(path), nil
	case BackendSystem:
		return OpenSystem()
	default:
		return nil, fmt.Errorf("truststore: unknown backend %q", backend)
	}
}
