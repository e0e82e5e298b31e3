// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func rsaSignPKCS1v15ForTest(key *rsa.PrivateKey, digest []byte) ([]byte, error) {
	return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest)
}

func ecdsaSignForTest(key *ecdsa.PrivateKey, digest []byte) ([]byte, error) {
	return ecdsa.SignASN1(rand.Reader, key, digest)
}

// genRSAKey and genECKey back the test fixtures below; generated fresh per
// test run rather than checked in, matching go-mail's
// createTestCertificateByIssuer style in the retrieval pack.
func genRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func genECKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return k
}

// certFixture bundles a DER certificate with the signing key used to build
// certificates under it.
type certFixture struct {
	DER     []byte
	Key     *rsa.PrivateKey
	x509Cer *x509.Certificate
}

type caFixtureOpts struct {
	commonName string
	notBefore  time.Time
	notAfter   time.Time
	pathLen    int
	hasPathLen bool
	isCA       bool
	keyUsage   x509.KeyUsage
}

// makeCA builds a self-signed (or issuer-signed, if parent is non-nil) CA
// certificate, exercising the same x509.CreateCertificate path go-mail's
// test fixtures and boulder's CA tests use.
func makeCA(t *testing.T, o caFixtureOpts, parent *certFixture) *certFixture {
	t.Helper()
	key := genRSAKey(t)
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: o.commonName},
		NotBefore:    o.notBefore,
		NotAfter:     o.notAfter,
		KeyUsage:     o.keyUsage | x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		IsCA:         o.isCA,
		BasicConstraintsValid: true,
	}
	if o.hasPathLen {
		tmpl.MaxPathLen = o.pathLen
		tmpl.MaxPathLenZero = o.pathLen == 0
	} else {
		tmpl.MaxPathLenZero = false
	}

	signerCert := tmpl
	signerKey := key
	if parent != nil {
		signerCert = parent.x509Cer
		signerKey = parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, signerCert, &key.PublicKey, signerKey)
	require.NoError(t, err)
	parsed, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &certFixture{DER: der, Key: key, x509Cer: parsed}
}

type eeFixtureOpts struct {
	commonName string
	dnsNames   []string
	notBefore  time.Time
	notAfter   time.Time
	ekus       []x509.ExtKeyUsage
}

// makeEE builds a leaf end-entity certificate signed by issuer.
func makeEE(t *testing.T, o eeFixtureOpts, issuer *certFixture) *certFixture {
	t.Helper()
	key := genRSAKey(t)
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: o.commonName},
		DNSNames:     o.dnsNames,
		NotBefore:    o.notBefore,
		NotAfter:     o.notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  o.ekus,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, issuer.x509Cer, &key.PublicKey, issuer.Key)
	require.NoError(t, err)
	parsed, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &certFixture{DER: der, Key: key, x509Cer: parsed}
}

func defaultCAOpts(cn string) caFixtureOpts {
	return caFixtureOpts{
		commonName: cn,
		notBefore:  time.Now().Add(-time.Hour),
		notAfter:   time.Now().Add(24 * time.Hour),
		isCA:       true,
	}
}

func defaultEEOpts(cn string, dns ...string) eeFixtureOpts {
	return eeFixtureOpts{
		commonName: cn,
		dnsNames:   dns,
		notBefore:  time.Now().Add(-time.Hour),
		notAfter:   time.Now().Add(24 * time.Hour),
	}
}
