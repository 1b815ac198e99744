// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package condition_test

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/condition"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/helper/hostcall"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/registry"
	"github.com/H0llyW00dzZ/root-remediator/src/logger"
)

const (
	uninstallKey = `HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Superfish Inc. VisualDiscovery`
	installedKey = `HKLM\SOFTWARE\Superfish Inc.\VisualDiscovery`
)

func platform(id string) condition.PlatformFunc {
	return func() string { return id }
}

type readerFunc func(ctx context.Context, root registry.Root, path, child string) (bool, error)

func (f readerFunc) HasChild(ctx context.Context, root registry.Root, path, child string) (bool, error) {
	return f(ctx, root, path, child)
}

func newLogger(buf *bytes.Buffer) logger.Logger {
	l := logger.NewCLILogger(logger.DefaultPrefix, true)
	l.SetOutput(buf)
	return l
}

func TestShouldRemediate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		checker  func(registry.Reader) *condition.Checker
		keys     []string
		platform string
		want     bool
	}{
		{name: "Distrust with uninstall marker", checker: condition.ForDistrust, keys: []string{uninstallKey}, platform: "windows", want: true},
		{name: "Distrust without uninstall marker", checker: condition.ForDistrust, platform: "windows", want: false},
		{name: "Removal with product key gone", checker: condition.ForRemoval, platform: "windows", want: true},
		{name: "Removal with product still installed", checker: condition.ForRemoval, keys: []string{installedKey}, platform: "windows", want: false},
		{name: "Removal ignores uninstall marker", checker: condition.ForRemoval, keys: []string{uninstallKey}, platform: "windows", want: true},
		{name: "Platform identity is exact", checker: condition.ForDistrust, keys: []string{uninstallKey}, platform: "Windows", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.checker(registry.NewStatic(tt.keys...))
			c.Platform = platform(tt.platform)
			assert.Equal(t, tt.want, c.ShouldRemediate(ctx))
		})
	}
}

func TestNonWindowsFailsClosed(t *testing.T) {
	ctx := context.Background()
	registries := map[string]registry.Reader{
		"empty":     registry.NewStatic(),
		"uninstall": registry.NewStatic(uninstallKey),
		"installed": registry.NewStatic(installedKey),
		"both":      registry.NewStatic(uninstallKey, installedKey),
	}

	for _, os := range []string{"linux", "darwin", "freebsd", ""} {
		for name, reg := range registries {
			t.Run(os+"/"+name, func(t *testing.T) {
				var buf bytes.Buffer
				called := false
				spy := readerFunc(func(ctx context.Context, root registry.Root, path, child string) (bool, error) {
					called = true
					return reg.HasChild(ctx, root, path, child)
				})

				for _, c := range []*condition.Checker{condition.ForDistrust(spy), condition.ForRemoval(spy)} {
					c.Platform = platform(os)
					c.Logger = newLogger(&buf)
					assert.False(t, c.ShouldRemediate(ctx))

					_, err := c.Check(ctx)
					assert.ErrorIs(t, err, condition.ErrWrongPlatform)
				}
				assert.False(t, called, "registry must not be queried off Windows")
				assert.Contains(t, buf.String(), "windows only")
			})
		}
	}
}

func TestLookupFailureFailsClosed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		reader registry.Reader
		setup  func(c *condition.Checker)
	}{
		{
			name: "Lookup error",
			reader: readerFunc(func(context.Context, registry.Root, string, string) (bool, error) {
				return false, errors.New("access denied")
			}),
		},
		{
			name:   "No registry",
			reader: nil,
		},
		{
			name: "Hung lookup",
			reader: readerFunc(func(ctx context.Context, root registry.Root, path, child string) (bool, error) {
				<-ctx.Done()
				time.Sleep(10 * time.Millisecond)
				return true, nil
			}),
			setup: func(c *condition.Checker) { c.Timeout = 20 * time.Millisecond },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, newChecker := range []func(registry.Reader) *condition.Checker{condition.ForDistrust, condition.ForRemoval} {
				var buf bytes.Buffer
				c := newChecker(tt.reader)
				c.Platform = platform(condition.Windows)
				c.Logger = newLogger(&buf)
				if tt.setup != nil {
					tt.setup(c)
				}

				assert.False(t, c.ShouldRemediate(ctx))
				assert.Contains(t, buf.String(), "not remediating")

				_, err := c.Check(ctx)
				assert.ErrorIs(t, err, condition.ErrEnvironmentUnavailable)
			}
		})
	}
}

func TestCheckTimeout(t *testing.T) {
	c := condition.ForDistrust(readerFunc(func(ctx context.Context, root registry.Root, path, child string) (bool, error) {
		<-ctx.Done()
		return true, nil
	}))
	c.Platform = platform(condition.Windows)
	c.Timeout = 10 * time.Millisecond

	ok, err := c.Check(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, condition.ErrEnvironmentUnavailable)
	assert.ErrorIs(t, err, hostcall.ErrTimeout)
}

func TestSystemRegistryOffWindows(t *testing.T) {
	if runtime.GOOS == condition.Windows {
		t.Skip("host has a registry")
	}

	c := condition.ForDistrust(registry.System())
	c.Platform = platform(condition.Windows)

	ok, err := c.Check(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, registry.ErrUnsupported)
}

func TestMarkers(t *testing.T) {
	assert.Equal(t, uninstallKey, condition.UninstallMarker.String())
	assert.Equal(t, installedKey, condition.InstalledMarker.String())

	d := condition.ForDistrust(nil)
	require.Equal(t, condition.MarkerPresent, d.Gate)
	assert.Equal(t, "marker-present", d.Gate.String())

	r := condition.ForRemoval(nil)
	require.Equal(t, condition.MarkerAbsent, r.Gate)
	assert.Equal(t, "marker-absent", r.Gate.String())
}
