// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package scanner_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/scanner"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/truststore"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/certtest"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/fingerprint"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/knownroot"
)

type failingStore struct{ truststore.Store }

func (failingStore) Entries(context.Context) ([]truststore.Entry, error) {
	return nil, errors.New("service unavailable")
}

func TestFindMatching(t *testing.T) {
	ctx := context.Background()
	superfish, err := knownroot.Superfish.Decode()
	require.NoError(t, err)

	tests := []struct {
		name  string
		seed  func(t *testing.T, store *truststore.FileStore)
		alg   fingerprint.Algorithm
		count int
	}{
		{
			name: "Empty store",
			seed: func(t *testing.T, store *truststore.FileStore) {},
		},
		{
			name: "No match among other roots",
			seed: func(t *testing.T, store *truststore.FileStore) {
				require.NoError(t, store.Add(ctx, certtest.NewRoot(t, "Superfish, Inc."), truststore.TrustedRoot))
				require.NoError(t, store.Add(ctx, certtest.NewRoot(t, "Other"), truststore.TrustedRoot))
			},
		},
		{
			name: "Single match",
			seed: func(t *testing.T, store *truststore.FileStore) {
				require.NoError(t, store.Add(ctx, certtest.NewRoot(t, "Other"), truststore.TrustedRoot))
				require.NoError(t, store.Add(ctx, superfish, truststore.TrustedRoot))
			},
			count: 1,
		},
		{
			name: "Duplicate entries all match",
			seed: func(t *testing.T, store *truststore.FileStore) {
				require.NoError(t, store.Add(ctx, superfish, truststore.TrustedRoot))
				require.NoError(t, store.Add(ctx, certtest.NewRoot(t, "Other"), truststore.TrustedRoot))
				require.NoError(t, store.Add(ctx, superfish, truststore.Distrusted))
			},
			count: 2,
		},
		{
			name: "Full certificate digest",
			seed: func(t *testing.T, store *truststore.FileStore) {
				require.NoError(t, store.Add(ctx, superfish, truststore.TrustedRoot))
			},
			alg:   fingerprint.Certificate,
			count: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := truststore.NewFileStore(filepath.Join(t.TempDir(), "db.yaml"))
			tt.seed(t, store)

			s := scanner.New(store, tt.alg)
			matches, err := s.FindMatching(ctx, knownroot.Superfish)
			require.NoError(t, err)
			assert.Len(t, matches, tt.count)

			want, err := s.Target(knownroot.Superfish)
			require.NoError(t, err)
			for _, m := range matches {
				assert.True(t, want.Equal(m.Fingerprint))
				assert.Equal(t, superfish.Raw, m.DER)
			}
		})
	}
}

func TestFindMatchingOrder(t *testing.T) {
	ctx := context.Background()
	superfish, err := knownroot.Superfish.Decode()
	require.NoError(t, err)

	store := truststore.NewFileStore(filepath.Join(t.TempDir(), "db.yaml"))
	require.NoError(t, store.Add(ctx, superfish, truststore.TrustedRoot))
	require.NoError(t, store.Add(ctx, superfish, truststore.Distrusted))

	matches, err := scanner.New(store, fingerprint.SPKI).FindMatching(ctx, knownroot.Superfish)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, truststore.TrustedRoot, matches[0].Trust)
	assert.Equal(t, truststore.Distrusted, matches[1].Trust)
}

func TestFindMatchingSkipsUnusableEntries(t *testing.T) {
	ctx := context.Background()
	superfish, err := knownroot.Superfish.Decode()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "db.yaml")
	db := fmt.Sprintf(`version: 1
certificates:
  - nickname: legacy
    der: AAAA
    trust: C,C,C
  - nickname: "Superfish, Inc."
    der: %s
    trust: C,C,C
`, base64.StdEncoding.EncodeToString(superfish.Raw))
	require.NoError(t, os.WriteFile(path, []byte(db), 0o644))

	for _, alg := range []fingerprint.Algorithm{fingerprint.SPKI, fingerprint.Certificate} {
		t.Run(alg.String(), func(t *testing.T) {
			matches, err := scanner.New(truststore.NewFileStore(path), alg).FindMatching(ctx, knownroot.Superfish)
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, "Superfish, Inc.", matches[0].Nickname)
		})
	}
}

func TestFindMatchingErrors(t *testing.T) {
	ctx := context.Background()

	_, err := scanner.New(failingStore{}, fingerprint.SPKI).FindMatching(ctx, knownroot.Superfish)
	assert.ErrorContains(t, err, "service unavailable")

	store := truststore.NewFileStore(filepath.Join(t.TempDir(), "db.yaml"))
	_, err = scanner.New(store, fingerprint.SPKI).FindMatching(ctx, knownroot.Descriptor{Name: "broken", Base64DER: "!!"})
	assert.ErrorIs(t, err, knownroot.ErrMalformedDescriptor)
}
