// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package knownroot

import (
	"crypto/x509"
	"errors"
	"fmt"

	x509certs "github.com/H0llyW00dzZ/root-remediator/src/internal/x509/certs"
)

// ErrMalformedDescriptor indicates that an embedded descriptor could not be
// decoded. This is a packaging defect rather than a runtime condition.
var ErrMalformedDescriptor = errors.New("knownroot: malformed descriptor")

// Descriptor identifies exactly one compromised root CA by its certificate
// content. Descriptors are immutable and only used as comparison keys.
type Descriptor struct {
	// Name is a human-readable label used in logs.
	Name string
	// Base64DER is the certificate in base64-wrapped DER form.
	Base64DER string
}

// Decode parses the descriptor into a certificate.
//
// Returns:
//   - *x509.Certificate: a fresh certificate value, never shared between calls
//   - error: wraps [ErrMalformedDescriptor] when decoding fails
func (d Descriptor) Decode() (*x509.Certificate, error) {
	cert, err := x509certs.New().DecodeBase64(d.Base64DER)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedDescriptor, d.Name, err)
	}
	return cert, nil
}

// String returns the descriptor name.
func (d Descriptor) String() string { return d.Name }

// Superfish is the "Superfish, Inc." root shipped with the VisualDiscovery
// adware on some Windows machines. Its private key is public knowledge, so
// anything it signs must be treated as attacker-controlled.
var Superfish = Descriptor{
	Name: "Superfish, Inc.",
	Base64DER: "" +
		"MIIC9TCCAl6gAwIBAgIJANL8E4epRNznMA0GCSqGSIb3DQEBBQUAMFsxGDAWBgNV" +
		"BAoTD1N1cGVyZmlzaCwgSW5jLjELMAkGA1UEBxMCU0YxCzAJBgNVBAgTAkNBMQsw" +
		"CQYDVQQGEwJVUzEYMBYGA1UEAxMPU3VwZXJmaXNoLCBJbmMuMB4XDTE0MDUxMjE2" +
		"MjUyNloXDTM0MDUwNzE2MjUyNlowWzEYMBYGA1UEChMPU3VwZXJmaXNoLCBJbmMu" +
		"MQswCQYDVQQHEwJTRjELMAkGA1UECBMCQ0ExCzAJBgNVBAYTAlVTMRgwFgYDVQQD" +
		"Ew9TdXBlcmZpc2gsIEluYy4wgZ8wDQYJKoZIhvcNAQEBBQADgY0AMIGJAoGBAOjz" +
		"Shh2Xxk/sc9Y6X9DBwmVgDXFD/5xMSeBmRImIKXfj2r8QlU57gk4idngNsSsAYJb" +
		"1Tnm+Y8HiN/+7vahFM6pdEXY/fAXVyqC4XouEpNarIrXFWPRt5tVgA9YvBxJ7SBi" +
		"3bZMpTrrHD2g/3pxptMQeDOuS8Ic/ZJKocPnQaQtAgMBAAGjgcAwgb0wDAYDVR0T" +
		"BAUwAwEB/zAdBgNVHQ4EFgQU+5izU38URC7o7tUJml4OVoaoNYgwgY0GA1UdIwSB" +
		"hTCBgoAU+5izU38URC7o7tUJml4OVoaoNYihX6RdMFsxGDAWBgNVBAoTD1N1cGVy" +
		"ZmlzaCwgSW5jLjELMAkGA1UEBxMCU0YxCzAJBgNVBAgTAkNBMQswCQYDVQQGEwJV" +
		"UzEYMBYGA1UEAxMPU3VwZXJmaXNoLCBJbmMuggkA0vwTh6lE3OcwDQYJKoZIhvcN" +
		"AQEFBQADgYEApHyg7ApKx3DEcWjzOyLi3JyN0JL+c35yK1VEmxu0Qusfr76645Oj" +
		"1IsYwpTws6a9ZTRMzST4GQvFFQra81eLqYbPbMPuhC+FCxkUF5i0DNSWi+kczJXJ" +
		"TtCqSwGl9t9JEoFqvtW+znZ9TqyLiOMw7TGEUI+88VAqW0qmXnwPcfo=",
}

// Registry locations written by the VisualDiscovery installer. They live
// under HKEY_LOCAL_MACHINE.
const (
	// UninstallPath is the parent of every installed program's uninstall entry.
	UninstallPath = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`
	// UninstallMarker is the uninstall entry present while VisualDiscovery is installed.
	UninstallMarker = "Superfish Inc. VisualDiscovery"
	// VendorPath is the vendor key created by the installer.
	VendorPath = `SOFTWARE\Superfish Inc.`
	// InstalledMarker is the product key present while VisualDiscovery is installed.
	InstalledMarker = "VisualDiscovery"
)
