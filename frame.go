// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"bytes"
	"crypto"
	"crypto/x509"
	stdasn1 "encoding/asn1"
	"math/big"
	"time"

	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	tagExplicit0 = cbasn1.Tag(0).ContextSpecific().Constructed()
	tagExplicit1 = cbasn1.Tag(1).ContextSpecific().Constructed()
	tagExplicit2 = cbasn1.Tag(2).ContextSpecific().Constructed()
	tagExplicit3 = cbasn1.Tag(3).ContextSpecific().Constructed()

	tagImplicit1 = cbasn1.Tag(1).ContextSpecific()
	tagImplicit2 = cbasn1.Tag(2).ContextSpecific()
)

// Frame is the flat record of spans and scalars the frame parser (4.B) and
// extension walker (4.C) populate, all pointing into the certificate's own
// DER (spec.md §3).
type Frame struct {
	Raw           RawSpan
	TBS           RawSpan
	Serial        RawSpan
	SerialNumber  *big.Int
	PubkeyRaw     RawSpan
	IssuerRaw     RawSpan
	SubjectRaw    RawSpan
	Sig           RawSpan
	SigAlg        RawSpan
	V3Ext         RawSpan
	SubjectAltRaw RawSpan
	EKURaw        RawSpan
	PoliciesRaw   RawSpan
	IssuerID      RawSpan
	SubjectID     RawSpan

	Version      int
	SigMD        crypto.Hash
	SigPK        x509.PublicKeyAlgorithm
	SigAlgorithm x509.SignatureAlgorithm
	SigOpts      stdasn1.RawValue

	ValidFrom time.Time
	ValidTo   time.Time

	CAIsTrue bool
	// maxPathLen is stored with a +1 bias: 0 means "no constraint
	// present". Use PathLen to read the user-visible value.
	maxPathLen int

	ExtTypes   ExtKind
	KeyUsage   KeyUsage
	NSCertType byte
}

// ExtensionPresent reports whether the certificate carried the given
// extension kind, a direct query over ext_types (spec.md §3).
func (f *Frame) ExtensionPresent(kind ExtKind) bool {
	return f.ExtTypes&kind != 0
}

// PathLen returns the BasicConstraints pathLenConstraint, and whether one
// was present at all (spec.md §3 max_pathlen invariant).
func (f *Frame) PathLen() (n int, ok bool) {
	if f.maxPathLen == 0 {
		return 0, false
	}
	return f.maxPathLen - 1, true
}

func (f *Frame) setPathLen(n int) {
	f.maxPathLen = n + 1
}

// AllowNonV3Extensions, when passed to parseFrame, makes it read a [3]
// Extensions block on version-1/2 certificates that nonetheless carry one
// (spec.md §6 "accept extensions in non-v3 certificates (lenient)").
// StrictCriticalExtensions makes an unrecognized critical extension a hard
// parse failure rather than a skip (spec.md §4.C).
type ParseOptions struct {
	AllowNonV3Extensions     bool
	StrictCriticalExtensions bool
}

// parseFrame runs the frame parser (4.B) followed by the extension walker
// (4.C) over a single DER certificate. It never allocates beyond the
// returned Frame and sub-structures, and never copies the certificate
// payload.
func parseFrame(der []byte, opts ParseOptions) (*Frame, error) {
	if len(der) == 0 {
		return nil, newParseError(OutOfData, "empty certificate")
	}
	top := newReader(der)

	// 1. Peel outer SEQUENCE { tbsCertificate, signatureAlgorithm, signatureValue }.
	outerStart := top.pos()
	outer, _, err := top.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, err
	}

	// 2. Record tbs span; skip over its body (we re-enter it below); read
	// outer signatureAlgorithm span; read signatureValue as BIT STRING.
	tbsStart := outer.pos()
	tbsBody, tbsWhole, err := outer.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, err
	}
	_ = tbsStart

	outerSigAlgBody, outerSigAlgWhole, err := outer.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, err
	}
	outerSigAlgOID, outerSigAlgParams, err := readAlgorithmIdentifierBody(outerSigAlgBody)
	if err != nil {
		return nil, err
	}

	sig, sigSpan, err := outer.getBitString()
	if err != nil {
		return nil, err
	}

	// 3. Assert the outer sequence has been exactly consumed.
	if !outer.empty() {
		return nil, newParseError(InvalidFormat, "trailing data inside certificate SEQUENCE")
	}

	f := &Frame{
		Raw:    RawSpan{offset: outerStart, length: top.pos() - outerStart},
		TBS:    tbsWhole,
		SigAlg: outerSigAlgWhole,
		Sig:    sigSpan,
	}
	_ = sig

	// 4. Read optional explicit [0] Version (default 1). Accept 1,2,3.
	f.Version = 1
	present, err := func() (bool, error) {
		if !tbsBody.peekTag(tagExplicit0) {
			return false, nil
		}
		vBody, _, err := tbsBody.getTag(tagExplicit0)
		if err != nil {
			return false, err
		}
		v, err := vBody.getSmallInt()
		if err != nil {
			return false, err
		}
		if !vBody.empty() {
			return false, newParseError(InvalidVersion, "trailing data in Version")
		}
		f.Version = v + 1
		return true, nil
	}()
	if err != nil {
		return nil, err
	}
	_ = present
	if f.Version < 1 || f.Version > 3 {
		return nil, newParseError(UnknownVersion, "version %d not in {1,2,3}", f.Version)
	}

	// 5. Read serialNumber INTEGER; record span and decoded value.
	serialNum, serialSpan, err := tbsBody.getInt()
	if err != nil {
		return nil, err
	}
	f.Serial = serialSpan
	f.SerialNumber = serialNum

	// 6. Read inner signatureAlgorithm; record span and classified values.
	// Verify byte-equality with outer sig_alg.
	innerSigAlgBody, innerSigAlgWhole, err := tbsBody.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, err
	}
	innerSigAlgOID, innerSigAlgParams, err := readAlgorithmIdentifierBody(innerSigAlgBody)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(innerSigAlgWhole.Bytes(der), outerSigAlgWhole.Bytes(der)) {
		return nil, newParseError(SigMismatch, "inner/outer signatureAlgorithm differ")
	}
	md, pk, sigAlgo, sigOpts := classifyAlgorithmIdentifier(innerSigAlgOID, innerSigAlgParams)
	_ = outerSigAlgOID
	_ = outerSigAlgParams
	f.SigMD, f.SigPK, f.SigAlgorithm, f.SigOpts = md, pk, sigAlgo, sigOpts

	// 7. Read issuer SEQUENCE; record span; parse it as an RDN sequence for
	// structural sanity.
	_, issuerWhole, err := tbsBody.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, err
	}
	f.IssuerRaw = issuerWhole
	if _, err := ParseRDNSequence(issuerWhole.Bytes(der)); err != nil {
		return nil, newParseError(InvalidFormat, "malformed issuer name: %v", err)
	}

	// 8. Read validity SEQUENCE as two times.
	validity, _, err := tbsBody.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, err
	}
	from, err := validity.getTime()
	if err != nil {
		return nil, err
	}
	to, err := validity.getTime()
	if err != nil {
		return nil, err
	}
	if !validity.empty() {
		return nil, newParseError(InvalidDate, "trailing data in Validity")
	}
	f.ValidFrom, f.ValidTo = from, to

	// 9. Read subject SEQUENCE.
	_, subjectWhole, err := tbsBody.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, err
	}
	f.SubjectRaw = subjectWhole
	if _, err := ParseRDNSequence(subjectWhole.Bytes(der)); err != nil {
		return nil, newParseError(InvalidFormat, "malformed subject name: %v", err)
	}

	// 10. Read subjectPublicKeyInfo SEQUENCE; record span only.
	_, spkiWhole, err := tbsBody.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, err
	}
	f.PubkeyRaw = spkiWhole

	// 11. If version >= 2, optionally read implicit [1] issuerUniqueID,
	// [2] subjectUniqueID.
	if f.Version >= 2 {
		if tbsBody.peekTag(tagImplicit1) {
			_, span, err := tbsBody.getTag(tagImplicit1)
			if err != nil {
				return nil, err
			}
			f.IssuerID = span
		}
		if tbsBody.peekTag(tagImplicit2) {
			_, span, err := tbsBody.getTag(tagImplicit2)
			if err != nil {
				return nil, err
			}
			f.SubjectID = span
		}
	}

	// 12. If version == 3 (or lenient), optionally read explicit [3]
	// Extensions sub-span and hand to the extension walker.
	if (f.Version == 3 || opts.AllowNonV3Extensions) && tbsBody.peekTag(tagExplicit3) {
		extBody, extWhole, err := tbsBody.getTag(tagExplicit3)
		if err != nil {
			return nil, err
		}
		extSeqBody, _, err := extBody.getTag(cbasn1.SEQUENCE)
		if err != nil {
			return nil, err
		}
		if !extBody.empty() {
			return nil, newParseError(InvalidExtensions, "trailing data after Extensions")
		}
		f.V3Ext = extWhole
		if err := walkExtensions(der, extSeqBody, f, opts); err != nil {
			return nil, err
		}
	}

	// 13. Assert tbs is exactly consumed.
	if !tbsBody.empty() {
		return nil, newParseError(InvalidFormat, "trailing data inside tbsCertificate")
	}

	return f, nil
}

// readAlgorithmIdentifierBody reads the OID and raw parameter bytes from an
// AlgorithmIdentifier's already-opened SEQUENCE body.
func readAlgorithmIdentifierBody(body *reader) (stdasn1.ObjectIdentifier, []byte, error) {
	oid, err := body.getOID()
	if err != nil {
		return nil, nil, newParseError(InvalidAlgorithm, "malformed AlgorithmIdentifier: %v", err)
	}
	params := []byte(body.s)
	return oid, params, nil
}
