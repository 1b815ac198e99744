// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package condition

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/H0llyW00dzZ/root-remediator/src/internal/helper/hostcall"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/registry"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/knownroot"
	"github.com/H0llyW00dzZ/root-remediator/src/logger"
)

// Windows is the platform identity on which remediation may run.
const Windows = "windows"

// ErrWrongPlatform indicates a platform on which the compromised installer
// never ran.
var ErrWrongPlatform = errors.New("condition: not a Windows platform")

// ErrEnvironmentUnavailable indicates that host state could not be read.
var ErrEnvironmentUnavailable = errors.New("condition: environment unavailable")

// PlatformFunc returns the OS identifier of the host.
type PlatformFunc func() string

// HostPlatform reports [runtime.GOOS].
func HostPlatform() string { return runtime.GOOS }

// Gate selects which registry marker decides whether to remediate.
type Gate int

const (
	// MarkerPresent remediates while the marker key exists, i.e. while the
	// offending software is still installed.
	MarkerPresent Gate = iota
	// MarkerAbsent remediates once the marker key is gone, i.e. after the
	// offending software has been uninstalled.
	MarkerAbsent
)

// String returns the gate name.
func (g Gate) String() string {
	switch g {
	case MarkerPresent:
		return "marker-present"
	case MarkerAbsent:
		return "marker-absent"
	default:
		return fmt.Sprintf("Gate(%d)", int(g))
	}
}

// Marker is a registry key whose existence is tested.
type Marker struct {
	Root  registry.Root
	Path  string
	Child string
}

// String returns the full key name.
func (m Marker) String() string { return registry.Join(m.Root, m.Path, m.Child) }

// UninstallMarker is the uninstall entry VisualDiscovery registers.
var UninstallMarker = Marker{
	Root:  registry.LocalMachine,
	Path:  knownroot.UninstallPath,
	Child: knownroot.UninstallMarker,
}

// InstalledMarker is the vendor product key VisualDiscovery creates.
var InstalledMarker = Marker{
	Root:  registry.LocalMachine,
	Path:  knownroot.VendorPath,
	Child: knownroot.InstalledMarker,
}

// Checker decides whether remediation should run on this host.
type Checker struct {
	Platform PlatformFunc
	Registry registry.Reader
	Gate     Gate
	Marker   Marker
	// Timeout bounds the registry lookup. Zero means no bound.
	Timeout time.Duration
	Logger  logger.Logger
}

// Check evaluates the gate and explains a negative answer with an error.
// It never remediates on uncertain state: any lookup failure yields false.
func (c *Checker) Check(ctx context.Context) (bool, error) {
	platform := HostPlatform
	if c.Platform != nil {
		platform = c.Platform
	}
	if os := platform(); os != Windows {
		return false, fmt.Errorf("%w: %s", ErrWrongPlatform, os)
	}

	if c.Registry == nil {
		return false, fmt.Errorf("%w: no registry", ErrEnvironmentUnavailable)
	}

	present, err := hostcall.Do(ctx, c.Timeout, "registry lookup "+c.Marker.String(),
		func(ctx context.Context) (bool, error) {
			return c.Registry.HasChild(ctx, c.Marker.Root, c.Marker.Path, c.Marker.Child)
		})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEnvironmentUnavailable, err)
	}

	switch c.Gate {
	case MarkerPresent:
		return present, nil
	case MarkerAbsent:
		return !present, nil
	default:
		return false, fmt.Errorf("condition: unknown gate %v", c.Gate)
	}
}

// ShouldRemediate reports whether remediation should run. Reasons for a
// negative answer are logged, never returned.
func (c *Checker) ShouldRemediate(ctx context.Context) bool {
	ok, err := c.Check(ctx)
	switch {
	case errors.Is(err, ErrWrongPlatform):
		c.logf("root removal is windows only (%v)", err)
	case err != nil:
		c.logf("cannot determine install state, not remediating: %v", err)
	case !ok && c.Gate == MarkerPresent:
		c.logf("%s not found; not remediating", c.Marker)
	case !ok:
		c.logf("%s still present; offending software is still installed, not removing root", c.Marker)
	}
	return ok
}

func (c *Checker) logf(format string, v ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, v...)
	}
}

// ForDistrust returns a checker that remediates while the uninstall entry
// of the offending software is present.
func ForDistrust(r registry.Reader) *Checker {
	return &Checker{Registry: r, Gate: MarkerPresent, Marker: UninstallMarker}
}

// ForRemoval returns a checker that remediates once the offending software's
// product key is gone.
func ForRemoval(r registry.Reader) *Checker {
	return &Checker{Registry: r, Gate: MarkerAbsent, Marker: InstalledMarker}
}
