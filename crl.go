// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"crypto"
	"crypto/x509"
	"math/big"
	"time"
)

// CRL is the parsed-CRL capability spec.md §6 describes as "opaque
// per-CRL capabilities": issuer_raw, this_update, next_update, tbs, sig,
// sig_md, sig_pk, sig_opts, revoked_entries. CRL parsing itself is an
// external collaborator (spec.md §1); *x509.RevocationList, produced by
// the stdlib's x509.ParseRevocationList, already carries every one of
// those fields, so it is used directly rather than reimplemented here.
type CRL = *x509.RevocationList

// crlSignatureAlgorithm classifies a CRL's reported x509.SignatureAlgorithm
// back into (sig_md, sig_pk), the same way frame parser step 6 classifies
// a certificate's.
func crlSignatureAlgorithm(sigAlgo x509.SignatureAlgorithm) (crypto.Hash, x509.PublicKeyAlgorithm) {
	for _, d := range signatureAlgorithmDetails {
		if d.algo == sigAlgo {
			return d.hash, d.pubKeyAlgo
		}
	}
	return crypto.Hash(0), x509.UnknownPublicKeyAlgorithm
}

// crlIssuerMatches reports whether crl was issued by a subject equal to
// parentSubject under the RDN comparator (spec.md §4.E.5: "For each CRL in
// the provided list whose issuer equals the signing parent's subject").
func crlIssuerMatches(crl CRL, parentSubject RDNSequence) (bool, error) {
	issuer, err := ParseRDNSequence(crl.RawIssuer)
	if err != nil {
		return false, err
	}
	return EqualRDNSequences(issuer, parentSubject), nil
}

// findRevocation scans crl's revoked-certificate list for serial with a
// revocation date at or before now, per spec.md §4.E.5.
func findRevocation(crl CRL, serial *big.Int, now time.Time) bool {
	if serial == nil {
		return false
	}
	for _, entry := range crl.RevokedCertificateEntries {
		if entry.SerialNumber == nil {
			continue
		}
		if entry.SerialNumber.Cmp(serial) != 0 {
			continue
		}
		if !entry.RevocationTime.After(now) {
			return true
		}
	}
	return false
}
