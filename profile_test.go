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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileAllowsHash(t *testing.T) {
	assert.True(t, DefaultProfile.AllowsHash(crypto.SHA256))
	assert.False(t, DefaultProfile.AllowsHash(crypto.SHA1))
	assert.False(t, DefaultProfile.AllowsHash(crypto.Hash(0)))
}

func TestProfileAllowsPK(t *testing.T) {
	assert.True(t, DefaultProfile.AllowsPK(x509.RSA))
	assert.True(t, DefaultProfile.AllowsPK(x509.ECDSA))
	assert.False(t, DefaultProfile.AllowsPK(x509.DSA))
}

func TestProfileAllowsKeyRSA(t *testing.T) {
	small, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	large, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	assert.False(t, DefaultProfile.AllowsKey(&small.PublicKey))
	assert.True(t, DefaultProfile.AllowsKey(&large.PublicKey))
}

func TestProfileAllowsKeyECDSA(t *testing.T) {
	p256, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	p224, err := ecdsa.GenerateKey(elliptic.P224(), rand.Reader)
	require.NoError(t, err)

	assert.True(t, DefaultProfile.AllowsKey(&p256.PublicKey))
	assert.False(t, DefaultProfile.AllowsKey(&p224.PublicKey))
}

func TestSuiteBProfileRejectsRSA(t *testing.T) {
	assert.False(t, SuiteBProfile.AllowsPK(x509.RSA))
	assert.True(t, SuiteBProfile.AllowsPK(x509.ECDSA))
}

func TestNextProfileStricterThanDefault(t *testing.T) {
	assert.False(t, NextProfile.AllowsHash(crypto.SHA256))
	assert.True(t, NextProfile.AllowsHash(crypto.SHA384))
	assert.Equal(t, 3072, NextProfile.MinRSABits)
}
