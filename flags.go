// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

// VerifyFlags is the 32-bit defect word returned by Verify (spec.md §6,
// canonical bit assignments). Unlike a parse error, a non-zero VerifyFlags
// does not mean verification failed to run to completion -- it means
// specific, enumerable defects were found along the path.
type VerifyFlags uint32

const (
	// BadCertExpired: valid_to is in the past.
	BadCertExpired VerifyFlags = 1 << iota
	// BadCertRevoked: child serial present in a matching CRL.
	BadCertRevoked
	// BadCertCNMismatch: no DNS name matched.
	BadCertCNMismatch
	// BadCertNotTrusted: no path to a trust anchor, or a signature failed
	// on a link in the path.
	BadCertNotTrusted
	// BadCRLNotTrusted: a required CRL did not verify.
	BadCRLNotTrusted
	// BadCRLExpired: next_update is past.
	BadCRLExpired
	// BadCertMissing: chain truncated.
	BadCertMissing
	// BadCertSkipVerify: verification was deliberately bypassed.
	BadCertSkipVerify
	// BadCertFuture: valid_from is in the future.
	BadCertFuture
	// BadCRLFuture: this_update is in the future.
	BadCRLFuture
	// BadCertKeyUsage: key-usage check failed.
	BadCertKeyUsage
	// BadCertExtKeyUsage: extended-key-usage check failed.
	BadCertExtKeyUsage
	// BadCertNSCertType: Netscape cert type mismatch.
	BadCertNSCertType
	// BadCertBadMD: hash not in profile.
	BadCertBadMD
	// BadCertBadPK: PK algorithm not in profile.
	BadCertBadPK
	// BadCertBadKey: key strength/curve not in profile.
	BadCertBadKey
	// BadCRLBadMD: same as BadCertBadMD, for the CRL's own signature.
	BadCRLBadMD
	// BadCRLBadPK: same as BadCertBadPK, for the CRL's own signature.
	BadCRLBadPK
	// BadCRLBadKey: same as BadCertBadKey, for the CRL issuer's key.
	BadCRLBadKey
	// BadCertOther is reserved for the verdict-adjustment callback.
	BadCertOther

	// AllFlags is set on a FATAL_ERROR return: the caller must not act on
	// partial chain state (spec.md §7 propagation policy).
	AllFlags VerifyFlags = 0xFFFFFFFF
)

// Has reports whether all bits in mask are set in f.
func (f VerifyFlags) Has(mask VerifyFlags) bool {
	return f&mask == mask
}

func (f VerifyFlags) String() string {
	if f == 0 {
		return "ok"
	}
	if f == AllFlags {
		return "fatal"
	}
	names := []struct {
		bit  VerifyFlags
		name string
	}{
		{BadCertExpired, "expired"},
		{BadCertRevoked, "revoked"},
		{BadCertCNMismatch, "cn-mismatch"},
		{BadCertNotTrusted, "not-trusted"},
		{BadCRLNotTrusted, "crl-not-trusted"},
		{BadCRLExpired, "crl-expired"},
		{BadCertMissing, "missing"},
		{BadCertSkipVerify, "skip-verify"},
		{BadCertFuture, "future"},
		{BadCRLFuture, "crl-future"},
		{BadCertKeyUsage, "key-usage"},
		{BadCertExtKeyUsage, "ext-key-usage"},
		{BadCertNSCertType, "ns-cert-type"},
		{BadCertBadMD, "bad-md"},
		{BadCertBadPK, "bad-pk"},
		{BadCertBadKey, "bad-key"},
		{BadCRLBadMD, "crl-bad-md"},
		{BadCRLBadPK, "crl-bad-pk"},
		{BadCRLBadKey, "crl-bad-key"},
		{BadCertOther, "other"},
	}
	out := ""
	for _, n := range names {
		if f.Has(n.bit) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "unknown"
	}
	return out
}

// ErrVerifyFailed is the sentinel status returned by Verify when the
// resulting VerifyFlags is non-zero. A caller inspects the flag word for
// specifics.
var ErrVerifyFailed = verifyFailedError{}

type verifyFailedError struct{}

func (verifyFailedError) Error() string { return "x509chain: certificate verify failed" }

// ErrFatal is returned when the search could not even complete -- e.g. the
// chain exceeded MaxIntermediateCA, or an internal error (hash failure,
// mutex failure, callback failure) occurred. Partial chain state must not
// be used.
var ErrFatal = fatalError{}

type fatalError struct{}

func (fatalError) Error() string { return "x509chain: fatal error building certificate chain" }
