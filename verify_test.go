// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func certFromFixture(t *testing.T, f *certFixture) *Certificate {
	t.Helper()
	c, err := ParseCertificate(f.DER, ParseOptions{}, false)
	require.NoError(t, err)
	return c
}

func TestVerifyTrustedChainThroughIntermediate(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Verify Root"), nil)
	intermediate := makeCA(t, defaultCAOpts("Verify Intermediate"), root)
	leaf := makeEE(t, defaultEEOpts("verify.example.com", "verify.example.com"), intermediate)

	ee := certFromFixture(t, leaf)
	flags, chain, err := Verify(ee, VerifyOptions{
		Roots:         []*Certificate{certFromFixture(t, root)},
		Intermediates: []*Certificate{certFromFixture(t, intermediate)},
		Profile:       DefaultProfile,
		DNSName:       "verify.example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, VerifyFlags(0), flags)
	require.Len(t, chain, 3)
}

func TestVerifyExpiredEndEntity(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Expired Test Root"), nil)
	opts := defaultEEOpts("expired.example.com", "expired.example.com")
	opts.notBefore = time.Now().Add(-48 * time.Hour)
	opts.notAfter = time.Now().Add(-24 * time.Hour)
	leaf := makeEE(t, opts, root)

	ee := certFromFixture(t, leaf)
	flags, _, err := Verify(ee, VerifyOptions{
		Roots:   []*Certificate{certFromFixture(t, root)},
		Profile: DefaultProfile,
	})

	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.True(t, flags.Has(BadCertExpired))
}

func TestVerifyChainTooLongIsFatal(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Long Chain Root"), nil)
	prev := root
	intermediates := []*Certificate{}
	for i := 0; i < DefaultMaxIntermediateCA+3; i++ {
		ca := makeCA(t, defaultCAOpts(fmt.Sprintf("Long Chain Intermediate %d", i)), prev)
		intermediates = append(intermediates, certFromFixture(t, ca))
		prev = ca
	}
	leaf := makeEE(t, defaultEEOpts("toolong.example.com"), prev)

	ee := certFromFixture(t, leaf)
	flags, chain, err := Verify(ee, VerifyOptions{
		Roots:         []*Certificate{certFromFixture(t, root)},
		Intermediates: intermediates,
		Profile:       DefaultProfile,
	})

	require.ErrorIs(t, err, ErrFatal)
	assert.Equal(t, AllFlags, flags)
	assert.Nil(t, chain)
}

func TestVerifyIntermediateLackingCABitIsNotAcceptedAsParent(t *testing.T) {
	root := makeCA(t, defaultCAOpts("No CA Bit Root"), nil)
	nonCAOpts := defaultCAOpts("Not Really A CA")
	nonCAOpts.isCA = false
	notACA := makeCA(t, nonCAOpts, root)
	leaf := makeEE(t, defaultEEOpts("nonca.example.com"), notACA)

	ee := certFromFixture(t, leaf)
	flags, _, err := Verify(ee, VerifyOptions{
		Roots:         []*Certificate{certFromFixture(t, root)},
		Intermediates: []*Certificate{certFromFixture(t, notACA)},
		Profile:       DefaultProfile,
	})

	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.True(t, flags.Has(BadCertMissing))
}

func TestVerifyRevokedEndEntity(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Revoke Root"), nil)
	leaf := makeEE(t, defaultEEOpts("revoked.example.com"), root)
	crl := makeCRL(t, root, leaf.x509Cer.SerialNumber)

	ee := certFromFixture(t, leaf)
	flags, _, err := Verify(ee, VerifyOptions{
		Roots:   []*Certificate{certFromFixture(t, root)},
		CRLs:    []CRL{crl},
		Profile: DefaultProfile,
	})

	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.True(t, flags.Has(BadCertRevoked))
}

func TestVerifyWildcardSANMatches(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Wildcard Root"), nil)
	leaf := makeEE(t, defaultEEOpts("host.wild.example.com", "*.wild.example.com"), root)

	ee := certFromFixture(t, leaf)
	flags, _, err := Verify(ee, VerifyOptions{
		Roots:   []*Certificate{certFromFixture(t, root)},
		Profile: DefaultProfile,
		DNSName: "host.wild.example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, VerifyFlags(0), flags)
}

func TestVerifyHostNameMismatch(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Mismatch Root"), nil)
	leaf := makeEE(t, defaultEEOpts("correct.example.com", "correct.example.com"), root)

	ee := certFromFixture(t, leaf)
	flags, _, err := Verify(ee, VerifyOptions{
		Roots:   []*Certificate{certFromFixture(t, root)},
		Profile: DefaultProfile,
		DNSName: "wrong.example.com",
	})

	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.True(t, flags.Has(BadCertCNMismatch))
}

func TestVerifyNoCandidateParentsIsMissing(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Untrusted Root"), nil)
	leaf := makeEE(t, defaultEEOpts("untrusted.example.com"), root)

	ee := certFromFixture(t, leaf)
	flags, chain, err := Verify(ee, VerifyOptions{
		Profile: DefaultProfile,
	})

	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.True(t, flags.Has(BadCertMissing))
	require.Len(t, chain, 1)
}

func TestVerifyVerdictCallbackCanDowngradeDefect(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Verdict Root"), nil)
	opts := defaultEEOpts("verdict.example.com", "verdict.example.com")
	opts.notAfter = time.Now().Add(-time.Hour)
	leaf := makeEE(t, opts, root)

	ee := certFromFixture(t, leaf)
	flags, _, err := Verify(ee, VerifyOptions{
		Roots:   []*Certificate{certFromFixture(t, root)},
		Profile: DefaultProfile,
		Verdict: func(cert *Certificate, depth int, flags VerifyFlags) VerifyFlags {
			if depth == 0 {
				return flags &^ BadCertExpired
			}
			return flags
		},
	})

	require.NoError(t, err)
	assert.Equal(t, VerifyFlags(0), flags)
}
