// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

// Adapted from go.step.sm/ocsp's signature-algorithm classification table
// (itself lifted from crypto/x509): the set of OIDs this package needs to
// recognize is identical between an OCSP response's signature and a
// certificate's signature, since both are a SEQUENCE { tbs, AlgorithmIdentifier,
// BIT STRING } shape signed the same way.

import (
	"crypto"
	"crypto/x509"
	stdasn1 "encoding/asn1"
)

var (
	oidSignatureMD2WithRSA      = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 2}
	oidSignatureMD5WithRSA      = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 4}
	oidSignatureSHA1WithRSA     = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 5}
	oidSignatureSHA256WithRSA   = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	oidSignatureSHA384WithRSA   = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}
	oidSignatureSHA512WithRSA   = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}
	oidSignatureRSAPSS          = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 10}
	oidSignatureDSAWithSHA1     = stdasn1.ObjectIdentifier{1, 2, 840, 10040, 4, 3}
	oidSignatureDSAWithSHA256   = stdasn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 3, 2}
	oidSignatureECDSAWithSHA1   = stdasn1.ObjectIdentifier{1, 2, 840, 10045, 4, 1}
	oidSignatureECDSAWithSHA256 = stdasn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
	oidSignatureECDSAWithSHA384 = stdasn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 3}
	oidSignatureECDSAWithSHA512 = stdasn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 4}
	oidSignatureEd25519         = stdasn1.ObjectIdentifier{1, 3, 101, 112}
)

var signatureAlgorithmDetails = []struct {
	algo       x509.SignatureAlgorithm
	oid        stdasn1.ObjectIdentifier
	pubKeyAlgo x509.PublicKeyAlgorithm
	hash       crypto.Hash
	isRSAPSS   bool
}{
	{x509.MD2WithRSA, oidSignatureMD2WithRSA, x509.RSA, crypto.Hash(0), false},
	{x509.MD5WithRSA, oidSignatureMD5WithRSA, x509.RSA, crypto.MD5, false},
	{x509.SHA1WithRSA, oidSignatureSHA1WithRSA, x509.RSA, crypto.SHA1, false},
	{x509.SHA256WithRSA, oidSignatureSHA256WithRSA, x509.RSA, crypto.SHA256, false},
	{x509.SHA384WithRSA, oidSignatureSHA384WithRSA, x509.RSA, crypto.SHA384, false},
	{x509.SHA512WithRSA, oidSignatureSHA512WithRSA, x509.RSA, crypto.SHA512, false},
	{x509.SHA256WithRSAPSS, oidSignatureRSAPSS, x509.RSA, crypto.SHA256, true},
	{x509.SHA384WithRSAPSS, oidSignatureRSAPSS, x509.RSA, crypto.SHA384, true},
	{x509.SHA512WithRSAPSS, oidSignatureRSAPSS, x509.RSA, crypto.SHA512, true},
	{x509.DSAWithSHA1, oidSignatureDSAWithSHA1, x509.DSA, crypto.SHA1, false},
	{x509.DSAWithSHA256, oidSignatureDSAWithSHA256, x509.DSA, crypto.SHA256, false},
	{x509.ECDSAWithSHA1, oidSignatureECDSAWithSHA1, x509.ECDSA, crypto.SHA1, false},
	{x509.ECDSAWithSHA256, oidSignatureECDSAWithSHA256, x509.ECDSA, crypto.SHA256, false},
	{x509.ECDSAWithSHA384, oidSignatureECDSAWithSHA384, x509.ECDSA, crypto.SHA384, false},
	{x509.ECDSAWithSHA512, oidSignatureECDSAWithSHA512, x509.ECDSA, crypto.SHA512, false},
	{x509.PureEd25519, oidSignatureEd25519, x509.Ed25519, crypto.Hash(0), false},
}

var hashOIDs = map[crypto.Hash]stdasn1.ObjectIdentifier{
	crypto.SHA1:   {1, 3, 14, 3, 2, 26},
	crypto.SHA256: {2, 16, 840, 1, 101, 3, 4, 2, 1},
	crypto.SHA384: {2, 16, 840, 1, 101, 3, 4, 2, 2},
	crypto.SHA512: {2, 16, 840, 1, 101, 3, 4, 2, 3},
}

// classifyAlgorithmIdentifier maps a signatureAlgorithm AlgorithmIdentifier
// onto (sig_md, sig_pk, x509.SignatureAlgorithm, sig_opts), matching frame
// parser step 6 of spec.md §4.B. Unrecognized OIDs yield crypto.Hash(0),
// x509.UnknownPublicKeyAlgorithm and x509.UnknownSignatureAlgorithm; this
// is not itself a parse error; it is left to Profile checks (BadCertBadMD /
// BadCertBadPK) to reject at verify time.
func classifyAlgorithmIdentifier(oid stdasn1.ObjectIdentifier, params []byte) (md crypto.Hash, pk x509.PublicKeyAlgorithm, sigAlgo x509.SignatureAlgorithm, opts stdasn1.RawValue) {
	if oid.Equal(oidSignatureRSAPSS) {
		sigAlgo = getRSAPSSAlgorithmFromParams(params)
		for _, d := range signatureAlgorithmDetails {
			if d.algo == sigAlgo {
				return d.hash, d.pubKeyAlgo, d.algo, stdasn1.RawValue{FullBytes: params}
			}
		}
		return crypto.Hash(0), x509.RSA, x509.UnknownSignatureAlgorithm, stdasn1.RawValue{FullBytes: params}
	}
	for _, d := range signatureAlgorithmDetails {
		if oid.Equal(d.oid) {
			return d.hash, d.pubKeyAlgo, d.algo, stdasn1.RawValue{FullBytes: params}
		}
	}
	return crypto.Hash(0), x509.UnknownPublicKeyAlgorithm, x509.UnknownSignatureAlgorithm, stdasn1.RawValue{FullBytes: params}
}

// pssParameters reflects RSASSA-PSS-params (RFC 3447 Appendix A.2.3), used
// only to recover which hash an RSA-PSS AlgorithmIdentifier specifies.
type pssParameters struct {
	Hash         pssAlgorithmIdentifier `asn1:"explicit,tag:0"`
	MGF          pssAlgorithmIdentifier `asn1:"explicit,tag:1"`
	SaltLength   int                    `asn1:"explicit,tag:2"`
	TrailerField int                    `asn1:"optional,explicit,tag:3,default:1"`
}

type pssAlgorithmIdentifier struct {
	Algorithm  stdasn1.ObjectIdentifier
	Parameters stdasn1.RawValue `asn1:"optional"`
}

var oidMGF1 = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 8}

// getRSAPSSAlgorithmFromParams applies the same restriction the teacher's
// getSignatureAlgorithmFromAI used: only the three buckets where the MGF1
// hash matches the message hash and the salt length matches the hash size
// are recognized; anything more exotic classifies as unknown, to be
// rejected by the profile rather than silently misclassified.
func getRSAPSSAlgorithmFromParams(raw []byte) x509.SignatureAlgorithm {
	var params pssParameters
	if _, err := stdasn1.Unmarshal(raw, &params); err != nil {
		return x509.UnknownSignatureAlgorithm
	}
	var mgf1Hash pssAlgorithmIdentifier
	if _, err := stdasn1.Unmarshal(params.MGF.Parameters.FullBytes, &mgf1Hash); err != nil {
		return x509.UnknownSignatureAlgorithm
	}
	if !params.MGF.Algorithm.Equal(oidMGF1) || !mgf1Hash.Algorithm.Equal(params.Hash.Algorithm) || params.TrailerField != 1 {
		return x509.UnknownSignatureAlgorithm
	}
	switch {
	case params.Hash.Algorithm.Equal(hashOIDs[crypto.SHA256]) && params.SaltLength == 32:
		return x509.SHA256WithRSAPSS
	case params.Hash.Algorithm.Equal(hashOIDs[crypto.SHA384]) && params.SaltLength == 48:
		return x509.SHA384WithRSAPSS
	case params.Hash.Algorithm.Equal(hashOIDs[crypto.SHA512]) && params.SaltLength == 64:
		return x509.SHA512WithRSAPSS
	}
	return x509.UnknownSignatureAlgorithm
}
