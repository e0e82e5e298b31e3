// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"

	"github.com/pkg/errors"
)

// checkSignature verifies that signed, hashed under sigAlgo's declared
// digest, was signed by parentKey. Hashing, RSA/ECDSA/Ed25519 verification
// themselves are external capabilities (crypto/rsa, crypto/ecdsa,
// crypto/ed25519), the same division of labor as the teacher's
// issuer.CheckSignature(resp.SignatureAlgorithm, resp.TBSResponseData,
// resp.Signature) call: this package never reimplements a signature
// primitive, only the dispatch from an AlgorithmIdentifier to one.
func checkSignature(parentKey crypto.PublicKey, sigAlgo x509.SignatureAlgorithm, md crypto.Hash, signed, signature []byte) error {
	var hashed []byte
	if md != 0 {
		if !md.Available() {
			return errors.Errorf("x509chain: requested hash algorithm %v not linked into binary", md)
		}
		h := md.New()
		h.Write(signed)
		hashed = h.Sum(nil)
	}

	switch pub := parentKey.(type) {
	case *rsa.PublicKey:
		if isRSAPSSAlgorithm(sigAlgo) {
			return rsa.VerifyPSS(pub, md, hashed, signature, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: md})
		}
		return rsa.VerifyPKCS1v15(pub, md, hashed, signature)
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(pub, hashed, signature) {
			return errors.New("x509chain: ECDSA signature verification failed")
		}
		return nil
	case ed25519.PublicKey:
		if !ed25519.Verify(pub, signed, signature) {
			return errors.New("x509chain: Ed25519 signature verification failed")
		}
		return nil
	default:
		return errors.Errorf("x509chain: unsupported public key type %T", parentKey)
	}
}

func isRSAPSSAlgorithm(algo x509.SignatureAlgorithm) bool {
	switch algo {
	case x509.SHA256WithRSAPSS, x509.SHA384WithRSAPSS, x509.SHA512WithRSAPSS:
		return true
	default:
		return false
	}
}
