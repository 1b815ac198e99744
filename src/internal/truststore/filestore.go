// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/fingerprint"
)

// fileFormatVersion is the on-disk schema version written by [FileStore].
const fileFormatVersion = 1

// fileDB is the on-disk layout of a [FileStore].
type fileDB struct {
	Version      int         `yaml:"version"`
	Certificates []fileEntry `yaml:"certificates"`
}

type fileEntry struct {
	Nickname        string `yaml:"nickname"`
	DER             string `yaml:"der"`
	Trust           string `yaml:"trust"`
	PendingDeletion bool   `yaml:"pendingDeletion,omitempty"`
}

// FileStore is a trust database persisted as a YAML document, laid out like
// an NSS certificate database: one record per certificate with a trust
// string and a pending-deletion flag.
//
// Every enumeration re-reads the file so changes made by other processes are
// observed. Flush re-reads, merges staged mutations and writes the result
// atomically through a temporary file and rename.
//
// FileStore is safe for concurrent use by multiple goroutines.
type FileStore struct {
	path string

	mu      sync.Mutex
	closed  bool
	handles map[*Handle]struct{}
	deletes map[fingerprint.Fingerprint]struct{}
}

// NewFileStore returns a store backed by the file at path. The file is
// created on the first Flush if it does not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:    path,
		handles: make(map[*Handle]struct{}),
		deletes: make(map[fingerprint.Fingerprint]struct{}),
	}
}

// Path returns the database location.
func (s *FileStore) Path() string { return s.path }

// Import constructs a trust object for cert.
func (s *FileStore) Import(ctx context.Context, cert *x509.Certificate) (*Handle, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if cert == nil || len(cert.Raw) == 0 {
		return nil, errors.New("truststore: cannot import an empty certificate")
	}

	var h *Handle
	h = newHandle(s, cert, func() error {
		s.mu.Lock()
		delete(s.handles, h)
		s.mu.Unlock()
		return nil
	})

	s.mu.Lock()
	s.handles[h] = struct{}{}
	s.mu.Unlock()
	return h, nil
}

// SetTrust stages trust for the handle's certificate.
func (s *FileStore) SetTrust(ctx context.Context, h *Handle, trust Trust) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return h.stage(s, trust)
}

// Entries reads the database and returns every entry not pending deletion,
// in file order. A record whose DER is not valid base64 is returned without
// DER and with a zero Key; a record with an unparsable trust string is
// returned with unspecified trust. Neither fails the enumeration.
func (s *FileStore) Entries(ctx context.Context) ([]Entry, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	db, err := s.load()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(db.Certificates))
	for _, rec := range db.Certificates {
		if rec.PendingDeletion {
			continue
		}
		entries = append(entries, rec.entry())
	}
	return entries, nil
}

// MarkForDeletion stages permanent removal of e.
func (s *FileStore) MarkForDeletion(ctx context.Context, e Entry) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if e.Key.IsZero() {
		return fmt.Errorf("%w: entry has no key", ErrNotFound)
	}

	s.mu.Lock()
	s.deletes[e.Key] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Flush merges staged trust changes and deletion marks into the database
// and writes it atomically. Staged deletions of entries that have vanished
// since enumeration fail with [ErrNotFound] and nothing is written.
func (s *FileStore) Flush(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.deletes) == 0 && !s.hasStagedTrustLocked() {
		return nil
	}

	db, err := s.load()
	if err != nil {
		return err
	}

	// Duplicate records share a key; every one of them is updated.
	index := make(map[fingerprint.Fingerprint][]int, len(db.Certificates))
	for i, rec := range db.Certificates {
		der, err := base64.StdEncoding.DecodeString(rec.DER)
		if err != nil {
			continue
		}
		key := recordKey(der)
		index[key] = append(index[key], i)
	}

	for key := range s.deletes {
		idx, ok := index[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		for _, i := range idx {
			db.Certificates[i].PendingDeletion = true
		}
	}

	for h := range s.handles {
		trust, ok := h.Staged()
		if !ok {
			continue
		}
		if idx, ok := index[h.Key()]; ok {
			for _, i := range idx {
				db.Certificates[i].Trust = trust.String()
			}
			continue
		}
		db.Certificates = append(db.Certificates, fileEntry{
			Nickname: nicknameFor(h.Certificate()),
			DER:      base64.StdEncoding.EncodeToString(h.Certificate().Raw),
			Trust:    trust.String(),
		})
		index[h.Key()] = []int{len(db.Certificates) - 1}
	}

	if err := s.store(db); err != nil {
		return err
	}

	clear(s.deletes)
	return nil
}

// Compact permanently drops entries that are pending deletion, the way the
// host purges them on its next maintenance pass.
func (s *FileStore) Compact(ctx context.Context) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return 0, err
	}

	kept := db.Certificates[:0]
	for _, rec := range db.Certificates {
		if !rec.PendingDeletion {
			kept = append(kept, rec)
		}
	}
	removed := len(db.Certificates) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	db.Certificates = kept
	return removed, s.store(db)
}

// Add appends cert with the given trust and persists immediately. It is used
// to seed databases; remediation never installs certificates.
func (s *FileStore) Add(ctx context.Context, cert *x509.Certificate, trust Trust) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return err
	}
	db.Certificates = append(db.Certificates, fileEntry{
		Nickname: nicknameFor(cert),
		DER:      base64.StdEncoding.EncodeToString(cert.Raw),
		Trust:    trust.String(),
	})
	return s.store(db)
}

// Close releases the store and discards unflushed mutations.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	clear(s.deletes)
	clear(s.handles)
	return nil
}

func (s *FileStore) check(ctx context.Context) error {
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

func (s *FileStore) hasStagedTrustLocked() bool {
	for h := range s.handles {
		if _, ok := h.Staged(); ok {
			return true
		}
	}
	return false
}

// load reads the database through a pooled buffer. A missing file is an
// empty database.
func (s *FileStore) load() (*fileDB, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileDB{Version: fileFormatVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("truststore: open %s: %w", s.path, err)
	}
	defer f.Close()

	data, err := gc.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("truststore: read %s: %w", s.path, err)
	}

	db := &fileDB{}
	if err := yaml.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("truststore: parse %s: %w", s.path, err)
	}
	if db.Version == 0 {
		db.Version = fileFormatVersion
	}
	if db.Version != fileFormatVersion {
		return nil, fmt.Errorf("truststore: %s: unsupported version %d", s.path, db.Version)
	}
	return db, nil
}

// store writes db next to the target and renames it into place.
func (s *FileStore) store(db *fileDB) error {
	data, err := yaml.Marshal(db)
	if err != nil {
		return fmt.Errorf("truststore: encode %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("truststore: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".truststore-*")
	if err != nil {
		return fmt.Errorf("truststore: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("truststore: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("truststore: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("truststore: close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("truststore: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("truststore: replace %s: %w", s.path, err)
	}
	return nil
}

// recordKey identifies a record by the SHA-256 of its raw DER, well-formed
// or not.
func recordKey(der []byte) fingerprint.Fingerprint {
	return fingerprint.Fingerprint(sha256.Sum256(der))
}

func (rec fileEntry) entry() Entry {
	e := Entry{Nickname: rec.Nickname}
	if trust, err := ParseTrust(rec.Trust); err == nil {
		e.Trust = trust
	}

	der, err := base64.StdEncoding.DecodeString(rec.DER)
	if err != nil || len(der) == 0 {
		return e
	}
	e.DER = der
	e.Key = recordKey(der)

	if cert, err := x509.ParseCertificate(der); err == nil {
		e.Cert = cert
		if e.Nickname == "" {
			e.Nickname = nicknameFor(cert)
		}
	}
	return e
}
