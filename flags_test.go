// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyFlagsHas(t *testing.T) {
	f := BadCertExpired | BadCertRevoked
	assert.True(t, f.Has(BadCertExpired))
	assert.True(t, f.Has(BadCertRevoked))
	assert.False(t, f.Has(BadCertCNMismatch))
	assert.True(t, f.Has(BadCertExpired|BadCertRevoked))
}

func TestVerifyFlagsString(t *testing.T) {
	assert.Equal(t, "ok", VerifyFlags(0).String())
	assert.Equal(t, "fatal", AllFlags.String())
	assert.Equal(t, "expired", BadCertExpired.String())
	assert.Equal(t, "expired|revoked", (BadCertExpired | BadCertRevoked).String())
}

func TestSentinelErrors(t *testing.T) {
	assert.EqualError(t, ErrVerifyFailed, "x509chain: certificate verify failed")
	assert.EqualError(t, ErrFatal, "x509chain: fatal error building certificate chain")
}
