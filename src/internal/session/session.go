// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Invalidator discards cached secure-session material.
type Invalidator interface {
	// LogoutAndTeardown drops every cached session secret and ticket so no
	// session negotiated before the call can be resumed. It returns the
	// number of cached items dropped; zero means the cache was empty.
	LogoutAndTeardown(ctx context.Context) (int, error)
}

// InvalidatorFunc adapts a function to [Invalidator].
type InvalidatorFunc func(ctx context.Context) (int, error)

// LogoutAndTeardown calls f.
func (f InvalidatorFunc) LogoutAndTeardown(ctx context.Context) (int, error) { return f(ctx) }

// Multi tears down several caches. Every member is attempted even when an
// earlier one fails; the errors are joined.
type Multi []Invalidator

// LogoutAndTeardown implements [Invalidator]. The count is the sum over
// every member, including members that also failed.
func (m Multi) LogoutAndTeardown(ctx context.Context) (int, error) {
	var (
		total int
		errs  []error
	)
	for _, inv := range m {
		if inv == nil {
			continue
		}
		n, err := inv.LogoutAndTeardown(ctx)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// DirCache is an on-disk session cache directory, such as a browser
// profile's ticket store. Teardown removes everything inside the directory
// but keeps the directory itself.
type DirCache struct {
	Dir string
}

// LogoutAndTeardown implements [Invalidator] and counts the top-level
// entries removed. A missing directory holds no sessions and is not an
// error.
func (d DirCache) LogoutAndTeardown(ctx context.Context) (int, error) {
	if d.Dir == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(d.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("session: read %s: %w", d.Dir, err)
	}

	var (
		removed int
		errs    []error
	)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := os.RemoveAll(filepath.Join(d.Dir, e.Name())); err != nil {
			errs = append(errs, fmt.Errorf("session: remove %s: %w", e.Name(), err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
