// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
)

// HashSet, PKSet and CurveSet are small bitsets over crypto.Hash,
// x509.PublicKeyAlgorithm and elliptic.Curve values.
type HashSet uint32
type PKSet uint32
type CurveSet uint32

func hashBit(h crypto.Hash) HashSet {
	if h <= 0 || h >= 32 {
		return 0
	}
	return 1 << uint(h)
}

func pkBit(pk x509.PublicKeyAlgorithm) PKSet {
	if pk <= 0 || pk >= 32 {
		return 0
	}
	return 1 << uint(pk)
}

func curveBit(c elliptic.Curve) CurveSet {
	switch c {
	case elliptic.P224():
		return 1 << 0
	case elliptic.P256():
		return 1 << 1
	case elliptic.P384():
		return 1 << 2
	case elliptic.P521():
		return 1 << 3
	default:
		return 0
	}
}

// Profile is the cryptographic acceptability profile of spec.md §3: an
// allowed hash bitset, allowed PK-algorithm bitset, allowed curve bitset,
// and minimum RSA bit length.
type Profile struct {
	Hashes       HashSet
	PKAlgorithms PKSet
	Curves       CurveSet
	MinRSABits   int
}

// AllowsHash reports whether h is acceptable under the profile.
func (p Profile) AllowsHash(h crypto.Hash) bool {
	return p.Hashes&hashBit(h) != 0
}

// AllowsPK reports whether pk is acceptable under the profile.
func (p Profile) AllowsPK(pk x509.PublicKeyAlgorithm) bool {
	return p.PKAlgorithms&pkBit(pk) != 0
}

// AllowsKey reports whether pub meets the profile's curve and minimum
// RSA bit-length requirements (spec.md §4.E.2/§4.E.4's BAD_KEY checks).
// Ed25519 and any other key type carry no profile-governed strength knob
// here; they are accepted once AllowsPK has passed.
func (p Profile) AllowsKey(pub crypto.PublicKey) bool {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return k.Size()*8 >= p.MinRSABits
	case *ecdsa.PublicKey:
		return p.Curves&curveBit(k.Curve) != 0
	default:
		return true
	}
}

// DefaultProfile mirrors a common baseline verification profile: modern
// hashes, RSA/ECDSA/Ed25519, NIST curves, 2048-bit minimum RSA.
var DefaultProfile = Profile{
	Hashes:       hashBit(crypto.SHA256) | hashBit(crypto.SHA384) | hashBit(crypto.SHA512),
	PKAlgorithms: pkBit(x509.RSA) | pkBit(x509.ECDSA) | pkBit(x509.Ed25519),
	Curves:       curveBit(elliptic.P256()) | curveBit(elliptic.P384()) | curveBit(elliptic.P521()),
	MinRSABits:   2048,
}

// NextProfile is a stricter profile for certificates expected to remain
// valid well into the future: SHA-384/512 only, 3072-bit minimum RSA,
// P-384/P-521 only.
var NextProfile = Profile{
	Hashes:       hashBit(crypto.SHA384) | hashBit(crypto.SHA512),
	PKAlgorithms: pkBit(x509.RSA) | pkBit(x509.ECDSA) | pkBit(x509.Ed25519),
	Curves:       curveBit(elliptic.P384()) | curveBit(elliptic.P521()),
	MinRSABits:   3072,
}

// SuiteBProfile restricts to NSA Suite B: SHA-256/384, ECDSA only, P-256/P-384.
var SuiteBProfile = Profile{
	Hashes:       hashBit(crypto.SHA256) | hashBit(crypto.SHA384),
	PKAlgorithms: pkBit(x509.ECDSA),
	Curves:       curveBit(elliptic.P256()) | curveBit(elliptic.P384()),
	MinRSABits:   0,
}
