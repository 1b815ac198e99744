// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"strings"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrInvalidBlockType indicates a PEM block that holds neither a
	// certificate nor a PKCS#7 container.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrInvalidBase64 indicates that base64-wrapped DER could not be decoded.
	ErrInvalidBase64 = errors.New("x509certs: invalid base64 data")
)

// PEM block types understood by [Certificate].
const (
	blockCertificate = "CERTIFICATE"
	blockPKCS7       = "PKCS7"
)

// Certificate decodes and encodes [X.509] certificates in the forms trust
// stores and root exports use: PEM bundles, DER, PKCS#7 (.p7b) containers
// and single-line base64 DER.
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Certificate struct {
	certBlockType string
}

// New creates a new Certificate with default settings.
func New() *Certificate {
	return &Certificate{certBlockType: blockCertificate}
}

// IsPEM checks if the data is in PEM format.
func (c *Certificate) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// Decode returns the first certificate in data. See [Certificate.DecodeMultiple]
// for the accepted forms.
func (c *Certificate) Decode(data []byte) (*x509.Certificate, error) {
	certs, err := c.DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	return certs[0], nil
}

// DecodeMultiple returns every certificate in data, in order. data may be a
// PEM bundle of CERTIFICATE and PKCS7 blocks, one or more concatenated DER
// certificates, or a DER PKCS#7 container. The result is never empty when
// the error is nil.
func (c *Certificate) DecodeMultiple(data []byte) ([]*x509.Certificate, error) {
	if c.IsPEM(data) {
		return c.decodePEM(data)
	}
	if certs, err := x509.ParseCertificates(data); err == nil && len(certs) > 0 {
		return certs, nil
	}
	return decodePKCS7(data)
}

func (c *Certificate) decodePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest

		switch block.Type {
		case c.certBlockType:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, ErrParseCertificate
			}
			certs = append(certs, cert)
		case blockPKCS7:
			bundle, err := decodePKCS7(block.Bytes)
			if err != nil {
				return nil, err
			}
			certs = append(certs, bundle...)
		default:
			return nil, ErrInvalidBlockType
		}
	}
	if len(certs) == 0 {
		return nil, ErrParseCertificate
	}
	return certs, nil
}

// decodePKCS7 extracts the certificates of a signed-data container with
// Cloudflare's parser.
func decodePKCS7(der []byte) ([]*x509.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(der)
	if err != nil {
		return nil, ErrParsePKCS7
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return p.Content.SignedData.Certificates, nil
}

// DecodeBase64 decodes a certificate from base64-wrapped DER, the form used
// for embedded certificate constants. Whitespace and line breaks are ignored.
func (c *Certificate) DecodeBase64(data string) (*x509.Certificate, error) {
	der, err := base64.StdEncoding.DecodeString(stripSpace(data))
	if err != nil {
		return nil, ErrInvalidBase64
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, ErrParseCertificate
	}
	return cert, nil
}

// EncodeBase64 encodes a certificate as single-line base64 DER, the inverse
// of [Certificate.DecodeBase64].
func (c *Certificate) EncodeBase64(cert *x509.Certificate) string {
	return base64.StdEncoding.EncodeToString(cert.Raw)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}

// EncodePEM encodes a certificate as one CERTIFICATE block.
func (c *Certificate) EncodePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: c.certBlockType, Bytes: cert.Raw})
}

// EncodePEMBundle concatenates the PEM blocks of certs, in order.
func (c *Certificate) EncodePEMBundle(certs []*x509.Certificate) []byte {
	var data []byte
	for _, cert := range certs {
		data = append(data, c.EncodePEM(cert)...)
	}
	return data
}
