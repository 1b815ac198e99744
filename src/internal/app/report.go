// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package app

import (
	"crypto/x509"

	x509certs "github.com/H0llyW00dzZ/root-remediator/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/fingerprint"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/x509/knownroot"
)

// CertificateReport identifies one certificate.
type CertificateReport struct {
	Subject    string `json:"subject"`
	Issuer     string `json:"issuer"`
	IsCA       bool   `json:"is_ca"`
	SPKISHA256 string `json:"spki_sha256"`
	CertSHA256 string `json:"cert_sha256"`
	// KnownRoot names the compromised root whose key the certificate
	// carries, if any.
	KnownRoot string `json:"known_root,omitempty"`
	// DER is the certificate as single-line base64 DER, the form accepted
	// back by the fingerprint input and the embedded root table.
	DER string `json:"der"`
}

// DecodeReports decodes every certificate in data (PEM bundle, DER or
// PKCS#7) and reports its fingerprints.
func DecodeReports(data []byte) ([]CertificateReport, error) {
	certs, err := x509certs.New().DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	return Reports(certs)
}

// Reports reports each of certs, in order.
func Reports(certs []*x509.Certificate) ([]CertificateReport, error) {
	reports := make([]CertificateReport, 0, len(certs))
	for _, c := range certs {
		r, err := Report(c)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Report computes the fingerprints of cert.
func Report(cert *x509.Certificate) (CertificateReport, error) {
	spki, err := fingerprint.Of(cert, fingerprint.SPKI)
	if err != nil {
		return CertificateReport{}, err
	}
	full, err := fingerprint.Of(cert, fingerprint.Certificate)
	if err != nil {
		return CertificateReport{}, err
	}

	r := CertificateReport{
		Subject:    cert.Subject.String(),
		Issuer:     cert.Issuer.String(),
		IsCA:       cert.IsCA,
		SPKISHA256: spki.String(),
		CertSHA256: full.String(),
		DER:        x509certs.New().EncodeBase64(cert),
	}

	if known, err := knownroot.Superfish.Decode(); err == nil {
		if want, err := fingerprint.Of(known, fingerprint.SPKI); err == nil && want.Equal(spki) {
			r.KnownRoot = knownroot.Superfish.Name
		}
	}
	return r, nil
}
