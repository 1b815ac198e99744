// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/truststore"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/certtest"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/knownroot"
)

func newStore(t *testing.T) *truststore.FileStore {
	t.Helper()
	return truststore.NewFileStore(filepath.Join(t.TempDir(), "cert9.yaml"))
}

func TestFileStoreOperations(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		testFunc func(t *testing.T, store *truststore.FileStore)
	}{
		{
			name: "Missing file is empty",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				entries, err := store.Entries(ctx)
				require.NoError(t, err)
				assert.Empty(t, entries)

				require.NoError(t, store.Flush(ctx), "flushing nothing should succeed")
				_, err = os.Stat(store.Path())
				assert.True(t, os.IsNotExist(err), "flushing nothing should not create the file")
			},
		},
		{
			name: "Add and enumerate in order",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				a := certtest.NewRoot(t, "Alpha Root")
				b := certtest.NewRoot(t, "Beta Root")
				require.NoError(t, store.Add(ctx, a, truststore.TrustedRoot))
				require.NoError(t, store.Add(ctx, b, truststore.Trust{}))

				entries, err := store.Entries(ctx)
				require.NoError(t, err)
				require.Len(t, entries, 2)

				assert.Equal(t, "Alpha Root", entries[0].Nickname)
				assert.Equal(t, truststore.TrustedRoot, entries[0].Trust)
				assert.True(t, a.Equal(entries[0].Cert))
				assert.Equal(t, a.Raw, entries[0].DER)
				assert.Equal(t, "Beta Root", entries[1].Nickname)
				assert.False(t, entries[0].Key.Equal(entries[1].Key))
			},
		},
		{
			name: "Distrust certificate not present in store",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				cert, err := knownroot.Superfish.Decode()
				require.NoError(t, err)

				h, err := store.Import(ctx, cert)
				require.NoError(t, err)
				defer h.Close()

				require.NoError(t, store.SetTrust(ctx, h, truststore.Distrusted))
				require.NoError(t, store.Flush(ctx))

				entries, err := store.Entries(ctx)
				require.NoError(t, err)
				require.Len(t, entries, 1)
				assert.Equal(t, "Superfish, Inc.", entries[0].Nickname)
				assert.Equal(t, truststore.Distrusted, entries[0].Trust)
			},
		},
		{
			name: "Distrust certificate already present",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				cert, err := knownroot.Superfish.Decode()
				require.NoError(t, err)
				require.NoError(t, store.Add(ctx, cert, truststore.TrustedRoot))

				h, err := store.Import(ctx, cert)
				require.NoError(t, err)
				defer h.Close()

				require.NoError(t, store.SetTrust(ctx, h, truststore.Distrusted))
				require.NoError(t, store.Flush(ctx))

				entries, err := store.Entries(ctx)
				require.NoError(t, err)
				require.Len(t, entries, 1, "existing record must be updated, not duplicated")
				assert.Equal(t, truststore.Distrusted, entries[0].Trust)
			},
		},
		{
			name: "Closing handle before flush loses the change",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				cert, err := knownroot.Superfish.Decode()
				require.NoError(t, err)
				require.NoError(t, store.Add(ctx, cert, truststore.TrustedRoot))

				h, err := store.Import(ctx, cert)
				require.NoError(t, err)
				require.NoError(t, store.SetTrust(ctx, h, truststore.Distrusted))

				require.NoError(t, h.Close())
				assert.True(t, h.Closed())
				_, staged := h.Staged()
				assert.False(t, staged)

				require.NoError(t, store.Flush(ctx))

				entries, err := store.Entries(ctx)
				require.NoError(t, err)
				require.Len(t, entries, 1)
				assert.Equal(t, truststore.TrustedRoot, entries[0].Trust)

				assert.ErrorIs(t, store.SetTrust(ctx, h, truststore.Distrusted), truststore.ErrHandleClosed)
			},
		},
		{
			name: "Distrust twice is idempotent",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				cert, err := knownroot.Superfish.Decode()
				require.NoError(t, err)

				distrust := func() {
					h, err := store.Import(ctx, cert)
					require.NoError(t, err)
					defer h.Close()
					require.NoError(t, store.SetTrust(ctx, h, truststore.Distrusted))
					require.NoError(t, store.Flush(ctx))
				}

				distrust()
				once, err := os.ReadFile(store.Path())
				require.NoError(t, err)

				distrust()
				twice, err := os.ReadFile(store.Path())
				require.NoError(t, err)

				assert.Equal(t, string(once), string(twice))
			},
		},
		{
			name: "Mark for deletion and compact",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				keep := certtest.NewRoot(t, "Keep Root")
				drop, err := knownroot.Superfish.Decode()
				require.NoError(t, err)
				require.NoError(t, store.Add(ctx, keep, truststore.TrustedRoot))
				require.NoError(t, store.Add(ctx, drop, truststore.TrustedRoot))

				entries, err := store.Entries(ctx)
				require.NoError(t, err)
				require.Len(t, entries, 2)

				require.NoError(t, store.MarkForDeletion(ctx, entries[1]))

				before, err := store.Entries(ctx)
				require.NoError(t, err)
				assert.Len(t, before, 2, "marks are staged until Flush")

				require.NoError(t, store.Flush(ctx))

				after, err := store.Entries(ctx)
				require.NoError(t, err)
				require.Len(t, after, 1)
				assert.Equal(t, "Keep Root", after[0].Nickname)

				raw, err := os.ReadFile(store.Path())
				require.NoError(t, err)
				assert.Contains(t, string(raw), "pendingDeletion: true")

				removed, err := store.Compact(ctx)
				require.NoError(t, err)
				assert.Equal(t, 1, removed)

				raw, err = os.ReadFile(store.Path())
				require.NoError(t, err)
				assert.NotContains(t, string(raw), "pendingDeletion")
			},
		},
		{
			name: "Deleting a vanished entry fails without writing",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				cert := certtest.NewRoot(t, "Ghost Root")
				require.NoError(t, store.Add(ctx, cert, truststore.TrustedRoot))

				entries, err := store.Entries(ctx)
				require.NoError(t, err)
				require.NoError(t, os.Remove(store.Path()))

				require.NoError(t, store.MarkForDeletion(ctx, entries[0]))
				assert.ErrorIs(t, store.Flush(ctx), truststore.ErrNotFound)

				_, err = os.Stat(store.Path())
				assert.True(t, os.IsNotExist(err))
			},
		},
		{
			name: "Zero key is rejected",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				assert.ErrorIs(t, store.MarkForDeletion(ctx, truststore.Entry{}), truststore.ErrNotFound)
			},
		},
		{
			name: "Foreign handle",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				other := newStore(t)
				h, err := other.Import(ctx, certtest.NewRoot(t, "Foreign"))
				require.NoError(t, err)
				defer h.Close()

				assert.ErrorIs(t, store.SetTrust(ctx, h, truststore.Distrusted), truststore.ErrForeignHandle)
			},
		},
		{
			name: "Cancelled context",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				cctx, cancel := context.WithCancel(ctx)
				cancel()

				_, err := store.Entries(cctx)
				assert.ErrorIs(t, err, context.Canceled)
				assert.ErrorIs(t, store.Flush(cctx), context.Canceled)
			},
		},
		{
			name: "Closed store",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				require.NoError(t, store.Close())
				_, err := store.Entries(ctx)
				assert.ErrorIs(t, err, truststore.ErrClosed)
			},
		},
		{
			name: "Unusable records do not fail enumeration",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				cert, err := knownroot.Superfish.Decode()
				require.NoError(t, err)
				db := fmt.Sprintf(`version: 1
certificates:
  - nickname: bad-base64
    der: "!!"
    trust: C,C,C
  - nickname: not-a-cert
    der: AAAA
    trust: C,C,C
  - nickname: "Superfish, Inc."
    der: %s
    trust: bogus
`, base64.StdEncoding.EncodeToString(cert.Raw))
				require.NoError(t, os.WriteFile(store.Path(), []byte(db), 0o644))

				entries, err := store.Entries(ctx)
				require.NoError(t, err)
				require.Len(t, entries, 3)

				assert.Empty(t, entries[0].DER)
				assert.True(t, entries[0].Key.IsZero())
				assert.Equal(t, []byte{0, 0, 0}, entries[1].DER)
				assert.Nil(t, entries[1].Cert)
				assert.False(t, entries[1].Key.IsZero())
				assert.Equal(t, truststore.Trust{}, entries[2].Trust)
				assert.True(t, cert.Equal(entries[2].Cert))

				require.NoError(t, store.MarkForDeletion(ctx, entries[2]))
				require.NoError(t, store.Flush(ctx))

				entries, err = store.Entries(ctx)
				require.NoError(t, err)
				require.Len(t, entries, 2)
				assert.Equal(t, "bad-base64", entries[0].Nickname)
				assert.Equal(t, "not-a-cert", entries[1].Nickname)
			},
		},
		{
			name: "Corrupt database",
			testFunc: func(t *testing.T, store *truststore.FileStore) {
				require.NoError(t, os.WriteFile(store.Path(), []byte("certificates: [ {der: "), 0o644))
				_, err := store.Entries(ctx)
				assert.Error(t, err)

				require.NoError(t, os.WriteFile(store.Path(), []byte("version: 7\n"), 0o644))
				_, err = store.Entries(ctx)
				assert.ErrorContains(t, err, "unsupported version")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t, newStore(t))
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.yaml")

	store, err := truststore.Open("file", path)
	require.NoError(t, err)
	assert.IsType(t, &truststore.FileStore{}, store)

	_, err = truststore.Open("file", "")
	assert.Error(t, err)

	_, err = truststore.Open("keychain", path)
	assert.Error(t, err)

	if runtime.GOOS != "windows" {
		_, err = truststore.Open("system", "")
		assert.ErrorIs(t, err, truststore.ErrUnsupported)
	}
}
