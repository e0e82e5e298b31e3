// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"crypto"
	"crypto/x509"
	stdasn1 "encoding/asn1"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAlgorithmIdentifierKnown(t *testing.T) {
	md, pk, sigAlgo, _ := classifyAlgorithmIdentifier(oidSignatureSHA256WithRSA, nil)
	assert.Equal(t, crypto.SHA256, md)
	assert.Equal(t, x509.RSA, pk)
	assert.Equal(t, x509.SHA256WithRSA, sigAlgo)
}

func TestClassifyAlgorithmIdentifierECDSA(t *testing.T) {
	md, pk, sigAlgo, _ := classifyAlgorithmIdentifier(oidSignatureECDSAWithSHA384, nil)
	assert.Equal(t, crypto.SHA384, md)
	assert.Equal(t, x509.ECDSA, pk)
	assert.Equal(t, x509.ECDSAWithSHA384, sigAlgo)
}

func TestClassifyAlgorithmIdentifierUnknown(t *testing.T) {
	unknown := stdasn1.ObjectIdentifier{1, 2, 3, 4, 5}
	md, pk, sigAlgo, _ := classifyAlgorithmIdentifier(unknown, nil)
	assert.Equal(t, crypto.Hash(0), md)
	assert.Equal(t, x509.UnknownPublicKeyAlgorithm, pk)
	assert.Equal(t, x509.UnknownSignatureAlgorithm, sigAlgo)
}

func TestClassifyAlgorithmIdentifierEd25519(t *testing.T) {
	md, pk, sigAlgo, _ := classifyAlgorithmIdentifier(oidSignatureEd25519, nil)
	assert.Equal(t, crypto.Hash(0), md)
	assert.Equal(t, x509.Ed25519, pk)
	assert.Equal(t, x509.PureEd25519, sigAlgo)
}

func TestGetRSAPSSAlgorithmFromParamsMalformed(t *testing.T) {
	assert.Equal(t, x509.UnknownSignatureAlgorithm, getRSAPSSAlgorithmFromParams([]byte("not asn1")))
}
