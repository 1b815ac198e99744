// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

//go:build windows

package truststore

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/fingerprint"
)

const (
	systemStoreLocation = windows.CERT_SYSTEM_STORE_LOCAL_MACHINE
	rootStoreName       = "ROOT"
	disallowedStoreName = "Disallowed"
	certEncoding        = windows.X509_ASN_ENCODING | windows.PKCS_7_ASN_ENCODING
)

// WindowsStore is the local machine's Windows system certificate store,
// where installers place machine-wide roots. Explicit distrust is expressed
// by placing the certificate in the machine's Disallowed store, which
// CryptoAPI consults before any root for every user. Mutations require an
// elevated process; the machine stores never prompt.
//
// WindowsStore is safe for concurrent use by multiple goroutines.
type WindowsStore struct {
	mu       sync.Mutex
	root     windows.Handle
	closed   bool
	contexts map[*Handle]*windows.CertContext
	deletes  map[fingerprint.Fingerprint]struct{}
}

// OpenSystem opens the local machine ROOT system store.
func OpenSystem() (Store, error) {
	root, err := openSystemStore(rootStoreName)
	if err != nil {
		return nil, err
	}
	return &WindowsStore{
		root:     root,
		contexts: make(map[*Handle]*windows.CertContext),
		deletes:  make(map[fingerprint.Fingerprint]struct{}),
	}, nil
}

// openSystemStore opens the named system store of the local machine, which
// must already exist.
func openSystemStore(name string) (windows.Handle, error) {
	ptr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	h, err := windows.CertOpenStore(
		windows.CERT_STORE_PROV_SYSTEM,
		0,
		0,
		systemStoreLocation|windows.CERT_STORE_OPEN_EXISTING_FLAG,
		uintptr(unsafe.Pointer(ptr)),
	)
	if err != nil {
		return 0, fmt.Errorf("truststore: open %s store: %w", name, err)
	}
	return h, nil
}

// Import creates a CryptoAPI certificate context for cert. The context is
// freed when the handle is closed.
func (s *WindowsStore) Import(ctx context.Context, cert *x509.Certificate) (*Handle, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if cert == nil || len(cert.Raw) == 0 {
		return nil, errors.New("truststore: cannot import an empty certificate")
	}

	certCtx, err := windows.CertCreateCertificateContext(certEncoding, &cert.Raw[0], uint32(len(cert.Raw)))
	if err != nil {
		return nil, fmt.Errorf("truststore: create certificate context: %w", err)
	}

	var h *Handle
	h = newHandle(s, cert, func() error {
		s.mu.Lock()
		delete(s.contexts, h)
		s.mu.Unlock()
		return windows.CertFreeCertificateContext(certCtx)
	})

	s.mu.Lock()
	s.contexts[h] = certCtx
	s.mu.Unlock()
	return h, nil
}

// SetTrust stages trust for the handle's certificate. Windows can only
// express all-distrusted (Disallowed store) or not distrusted.
func (s *WindowsStore) SetTrust(ctx context.Context, h *Handle, trust Trust) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if !trust.IsDistrusted() && (trust.SSL == Untrusted || trust.Email == Untrusted || trust.ObjectSigning == Untrusted) {
		return fmt.Errorf("%w: %s", ErrUnsupportedTrust, trust)
	}
	return h.stage(s, trust)
}

// Entries enumerates the ROOT store.
func (s *WindowsStore) Entries(ctx context.Context) ([]Entry, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []Entry
	err := enumerate(s.root, func(c *windows.CertContext) (bool, error) {
		der := append([]byte(nil), unsafe.Slice(c.EncodedCert, c.Length)...)
		e := Entry{DER: der, Key: fingerprint.Fingerprint(sha256.Sum256(der)), Trust: TrustedRoot}
		if cert, err := x509.ParseCertificate(der); err == nil {
			e.Cert = cert
			e.Nickname = nicknameFor(cert)
		}
		entries = append(entries, e)
		return true, nil
	})
	return entries, err
}

// MarkForDeletion stages removal of e from the ROOT store.
func (s *WindowsStore) MarkForDeletion(ctx context.Context, e Entry) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.deletes[e.Key] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Flush deletes marked ROOT entries and synchronizes the Disallowed store
// with staged trust.
func (s *WindowsStore) Flush(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.deletes) > 0 {
		if err := deleteMatching(s.root, s.deletes); err != nil {
			return err
		}
		clear(s.deletes)
	}

	var distrust []*windows.CertContext
	restore := make(map[fingerprint.Fingerprint]struct{})
	for h, certCtx := range s.contexts {
		trust, ok := h.Staged()
		if !ok {
			continue
		}
		if trust.IsDistrusted() {
			distrust = append(distrust, certCtx)
		} else {
			restore[h.Key()] = struct{}{}
		}
	}
	if len(distrust) == 0 && len(restore) == 0 {
		return nil
	}

	disallowed, err := openSystemStore(disallowedStoreName)
	if err != nil {
		return err
	}
	defer windows.CertCloseStore(disallowed, 0)

	for _, certCtx := range distrust {
		if err := windows.CertAddCertificateContextToStore(disallowed, certCtx, windows.CERT_STORE_ADD_REPLACE_EXISTING, nil); err != nil {
			return fmt.Errorf("truststore: add to %s store: %w", disallowedStoreName, err)
		}
	}
	if len(restore) > 0 {
		if err := deleteMatching(disallowed, restore); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every outstanding context and the ROOT store.
func (s *WindowsStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	handles := make([]*Handle, 0, len(s.contexts))
	for h := range s.contexts {
		handles = append(handles, h)
	}
	clear(s.deletes)
	s.mu.Unlock()

	var errs []error
	for _, h := range handles {
		errs = append(errs, h.Close())
	}
	errs = append(errs, windows.CertCloseStore(s.root, 0))
	return errors.Join(errs...)
}

func (s *WindowsStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// enumerate walks every certificate in store. fn must not retain c.
func enumerate(store windows.Handle, fn func(c *windows.CertContext) (bool, error)) error {
	var prev *windows.CertContext
	for {
		c, err := windows.CertEnumCertificatesInStore(store, prev)
		if err != nil {
			if errors.Is(err, windows.Errno(windows.CRYPT_E_NOT_FOUND)) {
				return nil
			}
			return fmt.Errorf("truststore: enumerate store: %w", err)
		}
		if c == nil {
			return nil
		}
		more, err := fn(c)
		if err != nil || !more {
			windows.CertFreeCertificateContext(c)
			return err
		}
		prev = c
	}
}

// deleteMatching removes every certificate whose full-DER fingerprint is in keys.
func deleteMatching(store windows.Handle, keys map[fingerprint.Fingerprint]struct{}) error {
	return enumerate(store, func(c *windows.CertContext) (bool, error) {
		der := unsafe.Slice(c.EncodedCert, c.Length)
		key := fingerprint.Fingerprint(sha256.Sum256(der))
		if _, ok := keys[key]; !ok {
			return true, nil
		}
		// CertDeleteCertificateFromStore frees its argument, so delete a
		// duplicate and keep c valid for the enumeration.
		dup := windows.CertDuplicateCertificateContext(c)
		if err := windows.CertDeleteCertificateFromStore(dup); err != nil {
			return false, fmt.Errorf("truststore: delete certificate: %w", err)
		}
		return true, nil
	})
}
