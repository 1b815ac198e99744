// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package scanner locates known compromised roots in a trust store by
// exact fingerprint comparison.
package scanner

import (
	"context"
	"fmt"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/truststore"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/fingerprint"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/knownroot"
)

// Scanner matches trust-store entries against a descriptor.
type Scanner struct {
	Store     truststore.Store
	Algorithm fingerprint.Algorithm
}

// New returns a scanner over store using alg for both sides of the comparison.
func New(store truststore.Store, alg fingerprint.Algorithm) *Scanner {
	return &Scanner{Store: store, Algorithm: alg}
}

// Match is a store entry whose fingerprint equals the target's.
type Match struct {
	truststore.Entry
	Fingerprint fingerprint.Fingerprint
}

// Target decodes the descriptor and computes its fingerprint.
func (s *Scanner) Target(target knownroot.Descriptor) (fingerprint.Fingerprint, error) {
	cert, err := target.Decode()
	if err != nil {
		return fingerprint.Fingerprint{}, err
	}
	return fingerprint.Of(cert, s.Algorithm)
}

// FindMatching enumerates the store once and returns every entry whose
// fingerprint equals the target's, in enumeration order. Duplicate entries
// are all returned. Entries whose DER cannot be fingerprinted never match.
func (s *Scanner) FindMatching(ctx context.Context, target knownroot.Descriptor) ([]Match, error) {
	want, err := s.Target(target)
	if err != nil {
		return nil, err
	}

	entries, err := s.Store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanner: enumerate: %w", err)
	}

	var matches []Match
	for _, e := range entries {
		got, err := fingerprint.OfDER(e.DER, s.Algorithm)
		if err != nil {
			continue
		}
		if got.Equal(want) {
			matches = append(matches, Match{Entry: e, Fingerprint: got})
		}
	}
	return matches, nil
}
