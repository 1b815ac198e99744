// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package fingerprint

import (
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	// ErrMalformedCertificate indicates that the DER input is not a structurally valid certificate.
	ErrMalformedCertificate = errors.New("fingerprint: malformed certificate")

	// ErrInvalidFingerprint indicates that a textual fingerprint could not be parsed.
	ErrInvalidFingerprint = errors.New("fingerprint: invalid fingerprint")

	// ErrUnknownAlgorithm indicates an unsupported digest input selector.
	ErrUnknownAlgorithm = errors.New("fingerprint: unknown algorithm")
)

// Size is the length of a fingerprint in bytes.
const Size = sha256.Size

// Fingerprint is a SHA-256 digest identifying a certificate by content.
type Fingerprint [Size]byte

// Algorithm selects which part of a certificate is digested.
type Algorithm int

const (
	// SPKI digests the DER SubjectPublicKeyInfo. Re-issued certificates for
	// the same key share this fingerprint.
	SPKI Algorithm = iota
	// Certificate digests the full DER certificate.
	Certificate
)

// String returns the configuration name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case SPKI:
		return "spki-sha256"
	case Certificate:
		return "cert-sha256"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps a configuration name to an [Algorithm].
// The empty string selects [SPKI].
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "spki", "spki-sha256":
		return SPKI, nil
	case "cert", "certificate", "cert-sha256":
		return Certificate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// Of computes the fingerprint of a parsed certificate.
func Of(cert *x509.Certificate, alg Algorithm) (Fingerprint, error) {
	switch alg {
	case SPKI:
		return sha256.Sum256(cert.RawSubjectPublicKeyInfo), nil
	case Certificate:
		return sha256.Sum256(cert.Raw), nil
	default:
		return Fingerprint{}, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, alg)
	}
}

// OfDER computes the fingerprint of a DER certificate without a full
// [x509.ParseCertificate]. Trust stores carry legacy roots that the standard
// parser rejects (negative serials, odd extensions); those must still be
// matchable, so only the outer structure is walked.
func OfDER(der []byte, alg Algorithm) (Fingerprint, error) {
	switch alg {
	case SPKI:
		spki, err := extractSPKI(der)
		if err != nil {
			return Fingerprint{}, err
		}
		return sha256.Sum256(spki), nil
	case Certificate:
		if !isCertificateSequence(der) {
			return Fingerprint{}, ErrMalformedCertificate
		}
		return sha256.Sum256(der), nil
	default:
		return Fingerprint{}, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, alg)
	}
}

// isCertificateSequence reports whether der is exactly one DER SEQUENCE.
func isCertificateSequence(der []byte) bool {
	input := cryptobyte.String(der)
	var cert cryptobyte.String
	return input.ReadASN1(&cert, cryptobyte_asn1.SEQUENCE) && input.Empty()
}

// extractSPKI returns the raw SubjectPublicKeyInfo element of a certificate.
//
//	Certificate ::= SEQUENCE { tbsCertificate, signatureAlgorithm, signature }
//	TBSCertificate ::= SEQUENCE {
//	    version [0] EXPLICIT OPTIONAL, serialNumber, signature,
//	    issuer, validity, subject, subjectPublicKeyInfo, ... }
func extractSPKI(der []byte) ([]byte, error) {
	input := cryptobyte.String(der)
	var cert, tbs cryptobyte.String
	if !input.ReadASN1(&cert, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return nil, ErrMalformedCertificate
	}
	if !cert.ReadASN1(&tbs, cryptobyte_asn1.SEQUENCE) {
		return nil, ErrMalformedCertificate
	}
	if !tbs.SkipOptionalASN1(cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()) ||
		!tbs.SkipASN1(cryptobyte_asn1.INTEGER) || // serialNumber
		!tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) || // signature
		!tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) || // issuer
		!tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) || // validity
		!tbs.SkipASN1(cryptobyte_asn1.SEQUENCE) { // subject
		return nil, ErrMalformedCertificate
	}

	var spki cryptobyte.String
	if !tbs.ReadASN1Element(&spki, cryptobyte_asn1.SEQUENCE) {
		return nil, ErrMalformedCertificate
	}
	return spki, nil
}

// Equal reports whether two fingerprints are identical. There is no partial
// or fuzzy matching.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return subtle.ConstantTimeCompare(f[:], other[:]) == 1
}

// IsZero reports whether f is the zero value.
func (f Fingerprint) IsZero() bool { return f == Fingerprint{} }

// String renders the fingerprint as colon-separated upper-case hex, the form
// shown by certificate viewers.
func (f Fingerprint) String() string {
	var b strings.Builder
	b.Grow(Size*3 - 1)
	for i, c := range f {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%02X", c)
	}
	return b.String()
}

// Hex renders the fingerprint as lower-case hex without separators.
func (f Fingerprint) Hex() string { return hex.EncodeToString(f[:]) }

// MarshalText implements [encoding.TextMarshaler].
func (f Fingerprint) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Parse accepts colon-separated or bare hex in either case.
func Parse(s string) (Fingerprint, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	raw, err := hex.DecodeString(clean)
	if err != nil || len(raw) != Size {
		return Fingerprint{}, fmt.Errorf("%w: %q", ErrInvalidFingerprint, s)
	}

	var f Fingerprint
	copy(f[:], raw)
	return f, nil
}
