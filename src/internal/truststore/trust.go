// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"fmt"
	"strings"
)

// Level is the trust state of a certificate for one usage category.
type Level int

const (
	// Unspecified means the store expresses no explicit decision; trust is
	// derived from the chain.
	Unspecified Level = iota
	// Trusted marks a trust anchor for the usage.
	Trusted
	// Untrusted is an explicit distrust that overrides chain-based trust.
	Untrusted
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case Unspecified:
		return "unspecified"
	case Trusted:
		return "trusted"
	case Untrusted:
		return "untrusted"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Trust holds the per-usage trust levels of a certificate.
type Trust struct {
	SSL           Level
	Email         Level
	ObjectSigning Level
}

// Distrusted explicitly distrusts all three usage categories.
var Distrusted = Trust{SSL: Untrusted, Email: Untrusted, ObjectSigning: Untrusted}

// TrustedRoot trusts all three usage categories.
var TrustedRoot = Trust{SSL: Trusted, Email: Trusted, ObjectSigning: Trusted}

// IsDistrusted reports whether every usage is explicitly untrusted.
func (t Trust) IsDistrusted() bool { return t == Distrusted }

// validTrustLetters are the flag letters of the NSS trust string encoding.
const validTrustLetters = "pPcCTuw"

// ParseTrust decodes a trust string of three comma-separated fields for SSL,
// email and object signing, for example "C,C,C" or "pu,pu,pu".
//
// Per field: any of C, T or P means trusted; p without one of those means
// explicitly untrusted; anything else is unspecified. The letters c, u and w
// carry no trust decision and are accepted but ignored.
//
// The empty string is unspecified for every usage.
func ParseTrust(s string) (Trust, error) {
	if strings.TrimSpace(s) == "" {
		return Trust{}, nil
	}

	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return Trust{}, fmt.Errorf("%w: %q: want 3 fields, got %d", ErrInvalidTrust, s, len(fields))
	}

	levels := make([]Level, 3)
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if strings.Trim(f, validTrustLetters) != "" {
			return Trust{}, fmt.Errorf("%w: %q: unknown flag in %q", ErrInvalidTrust, s, f)
		}
		switch {
		case strings.ContainsAny(f, "CTP"):
			levels[i] = Trusted
		case strings.ContainsRune(f, 'p'):
			levels[i] = Untrusted
		default:
			levels[i] = Unspecified
		}
	}

	return Trust{SSL: levels[0], Email: levels[1], ObjectSigning: levels[2]}, nil
}

// String encodes the trust in the form accepted by [ParseTrust].
func (t Trust) String() string {
	return encodeLevel(t.SSL) + "," + encodeLevel(t.Email) + "," + encodeLevel(t.ObjectSigning)
}

func encodeLevel(l Level) string {
	switch l {
	case Trusted:
		return "C"
	case Untrusted:
		return "p"
	default:
		return ""
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (t Trust) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *Trust) UnmarshalText(text []byte) error {
	parsed, err := ParseTrust(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
