// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	stdasn1 "encoding/asn1"
	"math/big"
	"time"
)

// DefaultMaxIntermediateCA bounds how many intermediate certificates a
// chain may contain before path construction gives up with ErrFatal,
// guarding against an unbounded or cyclic candidate pool.
const DefaultMaxIntermediateCA = 8

// VerdictFunc lets a caller adjust or annotate the flags computed for a
// single certificate in the chain before it is folded into the overall
// result, e.g. to downgrade a defect the caller has out-of-band reasons to
// accept. depth is 0 for the end-entity certificate and increases toward
// the root.
type VerdictFunc func(cert *Certificate, depth int, flags VerifyFlags) VerifyFlags

// VerifyOptions configures Verify. Roots and Intermediates are additional
// candidate parents beyond whatever explicit chain the end-entity
// certificate already carries via its Next pointers; a real caller
// typically supplies Roots only and lets Intermediates come from the
// peer-presented chain.
type VerifyOptions struct {
	Roots         []*Certificate
	Intermediates []*Certificate
	// RootLookup, when set, is consulted for additional trust-anchor
	// candidates matching issuer alongside Roots, for callers backed by a
	// system or on-disk trust store too large to preload into Roots
	// (spec.md §4.E, §6).
	RootLookup    func(issuer RDNSequence) []*Certificate
	CRLs          []CRL
	Profile       Profile
	DNSName       string
	Now           time.Time
	MaxIntermediateCA int

	// CheckKeyUsage, when set, requires a candidate parent's KeyUsage
	// extension (if it has one) to permit keyCertSign, per spec.md
	// §4.E.4's "when key-usage checking is enabled" clause.
	CheckKeyUsage bool
	// RequireExtKeyUsage, when non-empty, requires the end-entity
	// certificate's ExtendedKeyUsage extension (if present) to contain at
	// least one of these OIDs, or the anyExtendedKeyUsage OID.
	RequireExtKeyUsage []stdasn1.ObjectIdentifier
	// RequireNSCertType, when non-zero, requires at least one bit of this
	// mask to be set in the end-entity's NetscapeCertType extension, if
	// the certificate carries one.
	RequireNSCertType byte

	Verdict VerdictFunc
	Restart *RestartContext
	Logger  logFieldLogger
}

func (o VerifyOptions) maxIntermediateCA() int {
	if o.MaxIntermediateCA > 0 {
		return o.MaxIntermediateCA
	}
	return DefaultMaxIntermediateCA
}

func (o VerifyOptions) clock() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

func (o VerifyOptions) logger() logFieldLogger {
	if o.Logger == nil {
		return nopLogger{}
	}
	return o.Logger
}

// chainLink is one step of path construction: the certificate itself, plus
// whether it was matched against a caller-supplied trust root and whether
// its own signature verified under the key of the parent found above it.
type chainLink struct {
	cert            *Certificate
	trusted         bool
	sigGood         bool
	selfIssued      bool
	pathLenExceeded bool
}

// Verify builds and checks a certificate path from ee up to a trusted
// root, accumulating a VerifyFlags defect word rather than failing fast
// (spec.md §7: ParseError and FATAL_ERROR are reserved for structural
// failure; a bad chain is reported through flags). It returns the path it
// managed to build -- ee first, root (or last certificate reached) last --
// even when the returned flags are non-zero, except when err is ErrFatal,
// in which case the caller must not use the chain.
func Verify(ee *Certificate, opts VerifyOptions) (VerifyFlags, []*Certificate, error) {
	log := opts.logger().WithFields(nil)
	now := opts.clock()

	links, truncated, fatal := buildChain(ee, opts)
	if fatal {
		log.Warn("certificate chain exceeded MaxIntermediateCA")
		return AllFlags, nil, ErrFatal
	}

	var total VerifyFlags
	chain := make([]*Certificate, 0, len(links))
	for i, link := range links {
		chain = append(chain, link.cert)
		flags, err := checkNode(link, i, links, now, opts)
		if err != nil {
			return AllFlags, nil, ErrFatal
		}
		if opts.Verdict != nil {
			flags = opts.Verdict(link.cert, i, flags)
		}
		if flags != 0 {
			entry := opts.logger().WithFields(map[string]interface{}{
				"depth": i,
				"flags": flags.String(),
			})
			entry.Warn("certificate defect")
		}
		total |= flags
	}
	if truncated {
		total |= BadCertMissing | BadCertNotTrusted
	} else if !links[len(links)-1].trusted {
		total |= BadCertNotTrusted
	}

	if total != 0 {
		return total, chain, ErrVerifyFailed
	}
	return 0, chain, nil
}

// buildChain runs the iterative path construction of spec.md §4.E.3: start
// at ee, and at each hop look for a parent among the supplied trust roots,
// then the supplied intermediates, then the certificate's own explicit Next
// link, stopping once a trusted root is reached, the pool is
// exhausted, or the chain grows past MaxIntermediateCA.
func buildChain(ee *Certificate, opts VerifyOptions) (links []chainLink, truncated, fatal bool) {
	maxLen := opts.maxIntermediateCA() + 2
	pathCnt, selfCnt := 0, 0
	carryPathLenExceeded := false
	carriedTrusted := false

	child := ee
	for {
		if len(links) >= maxLen {
			return nil, false, true
		}
		_, issuer, selfIssued, err := childNames(child)
		if err != nil {
			return append(links, chainLink{cert: child}), false, false
		}

		// carriedTrusted is findParent's own verdict from the previous
		// hop: it must take priority over isTrustRoot's pointer lookup,
		// since a RootLookup-returned anchor is never pointer-equal to
		// anything in opts.Roots.
		trustedAlready := carriedTrusted || isTrustRoot(child, opts.Roots)
		// EE-locally-trusted shortcut (spec.md §4.E.3): a self-issued
		// first link whose DER byte-equals a trust anchor terminates the
		// chain immediately, independent of pointer identity.
		if len(links) == 0 && selfIssued && !trustedAlready {
			trustedAlready = derMatchesRoot(child, opts.Roots)
		}
		links = append(links, chainLink{
			cert:            child,
			trusted:         trustedAlready,
			selfIssued:      selfIssued,
			pathLenExceeded: carryPathLenExceeded,
		})
		if trustedAlready {
			return links, false, false
		}

		parent, foundTrusted, sigGood, found := findParent(child, issuer, pathCnt, selfCnt, opts)
		if !found {
			return links, true, false
		}
		carriedTrusted = foundTrusted
		links[len(links)-1].sigGood = sigGood
		if !selfIssued {
			pathCnt++
			selfCnt = 0
		} else {
			selfCnt++
		}

		carryPathLenExceeded = false
		if pf, err := parent.AcquireFrame(); err == nil {
			if n, ok := pf.PathLen(); ok && pathCnt > n+1 {
				carryPathLenExceeded = true
			}
			parent.ReleaseFrame()
		}
		_ = selfCnt

		child = parent
	}
}

// childNames returns child's subject and issuer RDN sequences and whether
// it is self-issued (subject == issuer under the name comparator, spec.md
// §4.D), used both for the self-issued path-length exemption and for
// find-parent's subject match.
func childNames(child *Certificate) (subject, issuer RDNSequence, selfIssued bool, err error) {
	subject, err = child.Subject()
	if err != nil {
		return nil, nil, false, err
	}
	issuer, err = child.Issuer()
	if err != nil {
		return nil, nil, false, err
	}
	return subject, issuer, EqualRDNSequences(subject, issuer), nil
}

// isTrustRoot reports whether cert is one of the caller's trust anchors,
// identified by pointer identity: a caller builds opts.Roots from its own
// trust store, so the anchor objects are the same ones returned in the
// verified chain.
func isTrustRoot(cert *Certificate, roots []*Certificate) bool {
	for _, r := range roots {
		if r == cert {
			return true
		}
	}
	return false
}

// derMatchesRoot reports whether cert's DER is byte-identical to one of
// roots, regardless of pointer identity (spec.md §4.E.3's EE-locally-
// trusted shortcut).
func derMatchesRoot(cert *Certificate, roots []*Certificate) bool {
	for _, r := range roots {
		if len(r.DER) == len(cert.DER) && string(r.DER) == string(cert.DER) {
			return true
		}
	}
	return false
}

// findParent implements the two-pass search of spec.md §4.E.4: first the
// trusted roots, then the supplied intermediates, then finally whatever the
// end-entity's own Next chain already points at, preferring a candidate
// that is both structurally eligible (subject match, CA bit, key-usage,
// pathlen budget) and time-valid, but remembering the first structurally
// eligible match as a fallback so the chain can still be built (and its
// defects reported) when no time-valid candidate exists. Roots come first
// so a trusted anchor is chosen over an untrusted peer-presented candidate
// that happens to share its subject.
func findParent(child *Certificate, issuer RDNSequence, pathCnt, selfCnt int, opts VerifyOptions) (parent *Certificate, trusted bool, sigGood bool, found bool) {
	type pool struct {
		certs   []*Certificate
		top     bool
	}
	rootCandidates := opts.Roots
	if opts.RootLookup != nil {
		rootCandidates = append(append([]*Certificate(nil), rootCandidates...), opts.RootLookup(issuer)...)
	}
	pools := []pool{{rootCandidates, true}, {opts.Intermediates, false}}
	if child.Next != nil {
		pools = append(pools, pool{[]*Certificate{child.Next}, false})
	}

	now := opts.clock()
	var fallback *Certificate
	var fallbackTrusted bool

	for _, p := range pools {
		for _, cand := range p.certs {
			if cand == child {
				continue
			}
			candSubject, err := cand.Subject()
			if err != nil {
				continue
			}
			if !EqualRDNSequences(candSubject, issuer) {
				continue
			}
			f, err := cand.AcquireFrame()
			if err != nil {
				continue
			}
			legacyRoot := p.top && f.Version < 3
			caOK := legacyRoot || f.CAIsTrue
			keyUsageOK := !opts.CheckKeyUsage || f.KeyUsage == 0 || f.KeyUsage.Has(KeyUsageKeyCertSign)
			pathLenOK := !(f.maxPathLen > 0 && f.maxPathLen < 1+pathCnt-selfCnt)
			timeValid := !now.Before(f.ValidFrom) && !now.After(f.ValidTo)
			cand.ReleaseFrame()

			if !caOK || !keyUsageOK || !pathLenOK {
				continue
			}

			good := signatureGood(child, cand)
			if p.top && !good {
				// Distinct roots may share a subject; only the one
				// whose key actually signed child is a match.
				continue
			}
			if fallback == nil {
				fallback, fallbackTrusted = cand, p.top
			}
			if timeValid {
				return cand, p.top, good, true
			}
		}
	}
	if fallback != nil {
		return fallback, fallbackTrusted, signatureGood(child, fallback), true
	}
	return nil, false, false, false
}

// signatureGood reports whether parent's public key verifies child's
// signature over its TBSCertificate, acquiring and releasing both
// certificates' cached state without holding either lock across the
// verification call itself (spec.md §5's forest-shaped lock graph).
func signatureGood(child, parent *Certificate) bool {
	childFrame, err := child.AcquireFrame()
	if err != nil {
		return false
	}
	tbs := childFrame.TBS.Bytes(child.DER)
	sigAlgo := childFrame.SigAlgorithm
	md := childFrame.SigMD
	sigBytes := childFrame.Sig.Bytes(child.DER)
	sig := append([]byte(nil), sigBytes...)
	child.ReleaseFrame()

	pub, err := parent.AcquirePublicKey()
	if err != nil {
		return false
	}
	defer parent.ReleasePublicKey()

	return checkSignature(pub, sigAlgo, md, tbs, sig) == nil
}

// checkNode computes the per-certificate defect flags of spec.md §4.E.1,
// §4.E.2, §4.E.4 and §4.E.5 for links[i]: time validity, cryptographic
// profile conformance, the host-name check (end-entity only), and
// revocation (every non-root link, against CRLs whose issuer matches the
// signing parent).
func checkNode(link chainLink, i int, links []chainLink, now time.Time, opts VerifyOptions) (VerifyFlags, error) {
	var flags VerifyFlags
	if link.pathLenExceeded {
		flags |= BadCertNotTrusted
	}
	f, err := link.cert.AcquireFrame()
	if err != nil {
		return 0, err
	}
	if now.Before(f.ValidFrom) {
		flags |= BadCertFuture
	}
	if now.After(f.ValidTo) {
		flags |= BadCertExpired
	}
	serial := f.SerialNumber
	link.cert.ReleaseFrame()

	pub, err := link.cert.AcquirePublicKey()
	if err == nil {
		if !opts.Profile.AllowsPK(f.SigPK) {
			flags |= BadCertBadPK
		}
		if !opts.Profile.AllowsKey(pub) {
			flags |= BadCertBadKey
		}
		link.cert.ReleasePublicKey()
	}
	if f.SigMD != 0 && !opts.Profile.AllowsHash(f.SigMD) {
		flags |= BadCertBadMD
	}

	if i == 0 {
		if opts.DNSName != "" {
			ok, err := checkHostName(link.cert, opts.DNSName)
			if err != nil {
				return 0, err
			}
			if !ok {
				flags |= BadCertCNMismatch
			}
		}
		if len(opts.RequireExtKeyUsage) > 0 && f.ExtTypes&ExtExtendedKeyUsage != 0 {
			ekus, err := link.cert.ExtendedKeyUsages()
			if err != nil {
				return 0, err
			}
			if !anyExtKeyUsageMatches(ekus, opts.RequireExtKeyUsage) {
				flags |= BadCertExtKeyUsage
			}
		}
		if opts.RequireNSCertType != 0 && f.ExtTypes&ExtNetscapeCertType != 0 && f.NSCertType&opts.RequireNSCertType == 0 {
			flags |= BadCertNSCertType
		}
	}

	if i+1 < len(links) {
		if !link.sigGood {
			flags |= BadCertNotTrusted
		}
		parentFrame, err := links[i+1].cert.AcquireFrame()
		if err == nil {
			if !parentFrame.CAIsTrue {
				flags |= BadCertNotTrusted
			}
			links[i+1].cert.ReleaseFrame()
		}
		// RootLookup implies a trust store too large to enumerate for CRL
		// issuer matching, so revocation checking is disabled by contract
		// (spec.md §6) whenever it is set.
		if opts.RootLookup == nil {
			crlFlags, revoked, err := checkRevocation(links[i+1].cert, serial, now, opts.Profile, opts.CRLs)
			if err != nil {
				return 0, err
			}
			flags |= crlFlags
			if revoked {
				flags |= BadCertRevoked
			}
		}
	}

	return flags, nil
}

// oidAnyExtendedKeyUsage is RFC 5280 §4.2.1.12's anyExtendedKeyUsage,
// which satisfies any RequireExtKeyUsage list.
var oidAnyExtendedKeyUsage = stdasn1.ObjectIdentifier{2, 5, 29, 37, 0}

func anyExtKeyUsageMatches(have, want []stdasn1.ObjectIdentifier) bool {
	for _, h := range have {
		if h.Equal(oidAnyExtendedKeyUsage) {
			return true
		}
		for _, w := range want {
			if h.Equal(w) {
				return true
			}
		}
	}
	return false
}

// checkHostName implements spec.md §4.E.1: prefer a dNSName match among
// SubjectAltName entries; only when the certificate has no SAN extension
// at all does the subject DN's Common Name serve as a fallback, and a
// SAN-bearing certificate with no matching dNSName is a mismatch even if
// its CN would otherwise match.
func checkHostName(cert *Certificate, name string) (bool, error) {
	f, err := cert.AcquireFrame()
	if err != nil {
		return false, err
	}
	hasSAN := f.ExtensionPresent(ExtSubjectAltName)
	cert.ReleaseFrame()
	sans, err := cert.SubjectAltNames()
	if err != nil {
		return false, err
	}
	dnsNames := DNSNames(sans)
	if hasSAN {
		for _, d := range dnsNames {
			if MatchDNSName(d, name) {
				return true, nil
			}
		}
		return false, nil
	}
	subject, err := cert.Subject()
	if err != nil {
		return false, err
	}
	for _, cn := range CommonNames(subject) {
		if MatchDNSName(cn, name) {
			return true, nil
		}
	}
	return false, nil
}

// checkRevocation implements spec.md §4.E.5: scan crls for one whose
// issuer equals parent's subject, check that CRL's own signature, hash
// and issuer-key strength against profile, check its validity window
// against now, and report whether serial appears among its revoked
// entries. A certificate with no matching CRL in the supplied list is
// treated as not revoked; CRL distribution-point discovery and fetching
// are external collaborators (spec.md §1), so this package only consults
// whatever CRLs the caller already supplied.
func checkRevocation(parent *Certificate, serial *big.Int, now time.Time, profile Profile, crls []CRL) (flags VerifyFlags, revoked bool, err error) {
	if len(crls) == 0 || serial == nil {
		return 0, false, nil
	}
	parentSubject, err := parent.Subject()
	if err != nil {
		return 0, false, err
	}
	for _, crl := range crls {
		matches, err := crlIssuerMatches(crl, parentSubject)
		if err != nil || !matches {
			continue
		}

		if now.Before(crl.ThisUpdate) {
			flags |= BadCRLFuture
		}
		if !crl.NextUpdate.IsZero() && now.After(crl.NextUpdate) {
			flags |= BadCRLExpired
		}

		md, pk := crlSignatureAlgorithm(crl.SignatureAlgorithm)
		if md != 0 && !profile.AllowsHash(md) {
			flags |= BadCRLBadMD
		}
		if pk != 0 && !profile.AllowsPK(pk) {
			flags |= BadCRLBadPK
		}

		pub, err := parent.AcquirePublicKey()
		if err == nil {
			if !profile.AllowsKey(pub) {
				flags |= BadCRLBadKey
			}
			if checkSignature(pub, crl.SignatureAlgorithm, md, crl.RawTBSRevocationList, crl.Signature) != nil {
				flags |= BadCRLNotTrusted
			}
			parent.ReleasePublicKey()
		}

		if findRevocation(crl, serial, now) {
			revoked = true
		}
	}
	return flags, revoked, nil
}
