// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"crypto/rand"
	"crypto/x509"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCRL(t *testing.T, issuer *certFixture, revoked ...*big.Int) CRL {
	t.Helper()
	var entries []x509.RevocationListEntry
	for _, serial := range revoked {
		entries = append(entries, x509.RevocationListEntry{
			SerialNumber:   serial,
			RevocationTime: time.Now().Add(-time.Minute),
		})
	}
	tmpl := &x509.RevocationList{
		Number:                    big.NewInt(1),
		ThisUpdate:                time.Now().Add(-time.Hour),
		NextUpdate:                time.Now().Add(time.Hour),
		RevokedCertificateEntries: entries,
	}
	der, err := x509.CreateRevocationList(rand.Reader, tmpl, issuer.x509Cer, issuer.Key)
	require.NoError(t, err)
	crl, err := x509.ParseRevocationList(der)
	require.NoError(t, err)
	return crl
}

func TestFindRevocationMatch(t *testing.T) {
	root := makeCA(t, defaultCAOpts("CRL Root"), nil)
	leaf := makeEE(t, defaultEEOpts("crl.example.com"), root)
	crl := makeCRL(t, root, leaf.x509Cer.SerialNumber)

	assert.True(t, findRevocation(crl, leaf.x509Cer.SerialNumber, time.Now()))
}

func TestFindRevocationNoMatch(t *testing.T) {
	root := makeCA(t, defaultCAOpts("CRL Root No Match"), nil)
	leaf := makeEE(t, defaultEEOpts("crl2.example.com"), root)
	other := big.NewInt(999999)
	crl := makeCRL(t, root, other)

	assert.False(t, findRevocation(crl, leaf.x509Cer.SerialNumber, time.Now()))
}

func TestFindRevocationNilSerial(t *testing.T) {
	root := makeCA(t, defaultCAOpts("CRL Root Nil"), nil)
	crl := makeCRL(t, root)
	assert.False(t, findRevocation(crl, nil, time.Now()))
}

func TestCrlIssuerMatches(t *testing.T) {
	root := makeCA(t, defaultCAOpts("CRL Issuer Root"), nil)
	crl := makeCRL(t, root)
	subject, err := NewCertificate(root.DER, ParseOptions{}).Subject()
	require.NoError(t, err)

	ok, err := crlIssuerMatches(crl, subject)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCrlIssuerMismatch(t *testing.T) {
	root := makeCA(t, defaultCAOpts("CRL Issuer Root A"), nil)
	other := makeCA(t, defaultCAOpts("CRL Issuer Root B"), nil)
	crl := makeCRL(t, root)
	otherSubject, err := NewCertificate(other.DER, ParseOptions{}).Subject()
	require.NoError(t, err)

	ok, err := crlIssuerMatches(crl, otherSubject)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCrlSignatureAlgorithmKnown(t *testing.T) {
	md, pk := crlSignatureAlgorithm(x509.SHA256WithRSA)
	assert.NotZero(t, md)
	assert.Equal(t, x509.RSA, pk)
}
