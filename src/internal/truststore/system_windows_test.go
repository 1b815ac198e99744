// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

//go:build windows

package truststore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func TestSystemStoreScope(t *testing.T) {
	assert.Equal(t, uint32(windows.CERT_SYSTEM_STORE_LOCAL_MACHINE), uint32(systemStoreLocation),
		"machine-wide roots live in the local machine stores")

	for _, name := range []string{rootStoreName, disallowedStoreName} {
		t.Run(name, func(t *testing.T) {
			h, err := openSystemStore(name)
			require.NoError(t, err)
			assert.NoError(t, windows.CertCloseStore(h, 0))
		})
	}
}

func TestOpenSystemEnumeratesMachineRoots(t *testing.T) {
	store, err := OpenSystem()
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.Entries(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, entries, "the local machine ROOT store ships with roots")
	for _, e := range entries {
		assert.False(t, e.Key.IsZero())
	}
}
