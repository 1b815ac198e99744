// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnsupported indicates that no registry exists on this platform.
var ErrUnsupported = errors.New("registry: not supported on this platform")

// Root is a predefined top-level registry hive.
type Root int

const (
	// LocalMachine is HKEY_LOCAL_MACHINE.
	LocalMachine Root = iota
	// CurrentUser is HKEY_CURRENT_USER.
	CurrentUser
)

// String returns the conventional abbreviation of the hive.
func (r Root) String() string {
	switch r {
	case LocalMachine:
		return "HKLM"
	case CurrentUser:
		return "HKCU"
	default:
		return fmt.Sprintf("Root(%d)", int(r))
	}
}

// ParseRoot accepts the abbreviated or full hive name, case-insensitively.
func ParseRoot(s string) (Root, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "HKLM", "HKEY_LOCAL_MACHINE":
		return LocalMachine, nil
	case "HKCU", "HKEY_CURRENT_USER":
		return CurrentUser, nil
	default:
		return 0, fmt.Errorf("registry: unknown root %q", s)
	}
}

// Reader is read-only access to a hierarchical key store.
type Reader interface {
	// HasChild reports whether key path under root has a direct subkey named child.
	HasChild(ctx context.Context, root Root, path, child string) (bool, error)
}

// Static is an in-memory registry holding a fixed set of key paths.
// Keys are matched case-insensitively and with either path separator, as
// the Windows registry does.
//
// Static is safe for concurrent use by multiple goroutines.
type Static struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewStatic returns a registry containing the given keys, each written as
// "HIVE\path\to\key".
func NewStatic(keys ...string) *Static {
	s := &Static{keys: make(map[string]struct{})}
	for _, k := range keys {
		s.keys[normalize(k)] = struct{}{}
	}
	return s
}

// Set adds a key.
func (s *Static) Set(root Root, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[normalize(Join(root, path))] = struct{}{}
}

// Delete removes a key.
func (s *Static) Delete(root Root, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, normalize(Join(root, path)))
}

// HasChild implements [Reader].
func (s *Static) HasChild(ctx context.Context, root Root, path, child string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[normalize(Join(root, path, child))]
	return ok, nil
}

// Join builds a full key name such as HKLM\SOFTWARE\Vendor.
func Join(root Root, parts ...string) string {
	elems := make([]string, 0, len(parts)+1)
	elems = append(elems, root.String())
	for _, p := range parts {
		if p = strings.Trim(p, `\/`); p != "" {
			elems = append(elems, p)
		}
	}
	return strings.Join(elems, `\`)
}

func normalize(key string) string {
	key = strings.ReplaceAll(key, "/", `\`)
	key = strings.Trim(key, `\`)
	head, rest, _ := strings.Cut(key, `\`)
	if root, err := ParseRoot(head); err == nil && head != "" {
		head = root.String()
	}
	if rest == "" {
		return strings.ToUpper(head)
	}
	return strings.ToUpper(head + `\` + rest)
}
