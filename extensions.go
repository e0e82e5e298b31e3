// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	stdasn1 "encoding/asn1"

	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// ExtKind is the single enumeration spec.md §9's open question asks for:
// one bitset for every recognized extension, never reused to also carry an
// OID constant (the source's info-printer compared frame.ext_types against
// an OID value, which this rewrite treats as the bug it is and does not
// reproduce).
type ExtKind uint16

const (
	ExtBasicConstraints ExtKind = 1 << iota
	ExtKeyUsage
	ExtSubjectAltName
	ExtExtendedKeyUsage
	ExtCertificatePolicies
	ExtNetscapeCertType
)

// KeyUsage is the packed little-endian KeyUsage bitset (spec.md §3), using
// RFC 5280 §4.2.1.3's bit order.
type KeyUsage uint16

const (
	KeyUsageDigitalSignature KeyUsage = 1 << iota
	KeyUsageNonRepudiation
	KeyUsageKeyEncipherment
	KeyUsageDataEncipherment
	KeyUsageKeyAgreement
	KeyUsageKeyCertSign
	KeyUsageCRLSign
	KeyUsageEncipherOnly
	KeyUsageDecipherOnly
)

// Has reports whether all bits in mask are set.
func (k KeyUsage) Has(mask KeyUsage) bool { return k&mask == mask }

var (
	oidExtBasicConstraints  = stdasn1.ObjectIdentifier{2, 5, 29, 19}
	oidExtKeyUsage          = stdasn1.ObjectIdentifier{2, 5, 29, 15}
	oidExtSubjectAltName    = stdasn1.ObjectIdentifier{2, 5, 29, 17}
	oidExtExtendedKeyUsage  = stdasn1.ObjectIdentifier{2, 5, 29, 37}
	oidExtCertificatePolicy = stdasn1.ObjectIdentifier{2, 5, 29, 32}
	oidExtNetscapeCertType  = stdasn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 1}
)

// extensionTable is the static (OID, kind, decoder) dispatch table spec.md
// §9 asks for in place of a branching statement, mirroring zcrypto's own
// extension-kind dispatch.
var extensionTable = []struct {
	oid     stdasn1.ObjectIdentifier
	kind    ExtKind
	decoder func(f *Frame, raw RawSpan, body *reader, der []byte) error
}{
	{oidExtBasicConstraints, ExtBasicConstraints, decodeBasicConstraints},
	{oidExtKeyUsage, ExtKeyUsage, decodeKeyUsage},
	{oidExtSubjectAltName, ExtSubjectAltName, decodeSubjectAltName},
	{oidExtExtendedKeyUsage, ExtExtendedKeyUsage, decodeExtendedKeyUsage},
	{oidExtCertificatePolicy, ExtCertificatePolicies, decodeCertificatePolicies},
	{oidExtNetscapeCertType, ExtNetscapeCertType, decodeNetscapeCertType},
}

// walkExtensions traverses the Extensions SEQUENCE OF Extension, dispatches
// by OID, and populates f (4.C).
func walkExtensions(der []byte, body *reader, f *Frame, opts ParseOptions) error {
	return sequenceOfTraverse(body, TagFilter{ClassMask: 0xFF, ClassValue: byte(cbasn1.SEQUENCE)}, func(_ cbasn1.Tag, elem *reader) error {
		extBody, whole, err := elem.getTag(cbasn1.SEQUENCE)
		if err != nil {
			return err
		}
		oid, err := extBody.getOID()
		if err != nil {
			return newParseError(InvalidExtensions, "malformed extnID: %v", err)
		}
		critical := false
		if extBody.peekTag(cbasn1.BOOLEAN) {
			critical, err = extBody.getBool()
			if err != nil {
				return newParseError(InvalidExtensions, "malformed critical flag: %v", err)
			}
		}
		valueBody, _, err := extBody.getTag(cbasn1.OCTET_STRING)
		if err != nil {
			return newParseError(InvalidExtensions, "malformed extnValue: %v", err)
		}
		if !extBody.empty() {
			return newParseError(InvalidExtensions, "trailing data in Extension")
		}

		entry, known := lookupExtension(oid)
		if !known {
			if critical && opts.StrictCriticalExtensions {
				return newParseError(FeatureUnavailable, "unrecognized critical extension %v", oid)
			}
			return nil
		}
		if f.ExtTypes&entry.kind != 0 {
			return newParseError(InvalidExtensions, "duplicate extension %v", oid)
		}
		f.ExtTypes |= entry.kind

		innerBody := &reader{buf: valueBody.buf, s: valueBody.s}
		if err := entry.decoder(f, whole, innerBody, der); err != nil {
			return err
		}
		return nil
	})
}

func lookupExtension(oid stdasn1.ObjectIdentifier) (struct {
	oid     stdasn1.ObjectIdentifier
	kind    ExtKind
	decoder func(f *Frame, raw RawSpan, body *reader, der []byte) error
}, bool) {
	for _, e := range extensionTable {
		if oid.Equal(e.oid) {
			return e, true
		}
	}
	var zero struct {
		oid     stdasn1.ObjectIdentifier
		kind    ExtKind
		decoder func(f *Frame, raw RawSpan, body *reader, der []byte) error
	}
	return zero, false
}

// decodeBasicConstraints parses optional cA BOOLEAN and optional
// pathLenConstraint INTEGER, storing (ca_istrue, max_pathlen+1).
func decodeBasicConstraints(f *Frame, _ RawSpan, body *reader, _ []byte) error {
	seq, _, err := body.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return newParseError(InvalidExtensions, "malformed BasicConstraints: %v", err)
	}
	ca := false
	if seq.peekTag(cbasn1.BOOLEAN) {
		ca, err = seq.getBool()
		if err != nil {
			return newParseError(InvalidExtensions, "malformed cA: %v", err)
		}
	}
	f.CAIsTrue = ca
	if seq.peekTag(cbasn1.INTEGER) {
		n, err := seq.getSmallInt()
		if err != nil {
			return newParseError(InvalidExtensions, "malformed pathLenConstraint: %v", err)
		}
		if n < 0 {
			return newParseError(InvalidExtensions, "negative pathLenConstraint")
		}
		f.setPathLen(n)
	}
	if !seq.empty() {
		return newParseError(InvalidExtensions, "trailing data in BasicConstraints")
	}
	return nil
}

// decodeKeyUsage decodes the KeyUsage BIT STRING into a packed
// little-endian integer.
func decodeKeyUsage(f *Frame, _ RawSpan, body *reader, _ []byte) error {
	bs, _, err := body.getBitString()
	if err != nil {
		return newParseError(InvalidExtensions, "malformed KeyUsage: %v", err)
	}
	var ku KeyUsage
	for i := 0; i < bs.BitLength && i < 16; i++ {
		byteIdx, bitIdx := i/8, 7-(i%8)
		if byteIdx < len(bs.Bytes) && bs.Bytes[byteIdx]&(1<<uint(bitIdx)) != 0 {
			ku |= 1 << uint(i)
		}
	}
	f.KeyUsage = ku
	return nil
}

// decodeSubjectAltName records the raw span and structurally validates it
// is a SEQUENCE OF [CONTEXT n].
func decodeSubjectAltName(f *Frame, raw RawSpan, body *reader, _ []byte) error {
	f.SubjectAltRaw = innerValueSpan(raw, body)
	seq, _, err := body.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return newParseError(InvalidExtensions, "malformed SubjectAltName: %v", err)
	}
	return sequenceOfTraverse(seq, TagFilter{ClassMask: 0x80, ClassValue: 0x80}, func(_ cbasn1.Tag, _ *reader) error {
		return nil
	})
}

// decodeExtendedKeyUsage records the raw span and structurally validates
// SEQUENCE OF OID; an empty sequence is rejected.
func decodeExtendedKeyUsage(f *Frame, raw RawSpan, body *reader, _ []byte) error {
	f.EKURaw = innerValueSpan(raw, body)
	seq, _, err := body.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return newParseError(InvalidExtensions, "malformed ExtendedKeyUsage: %v", err)
	}
	if seq.empty() {
		return newParseError(InvalidLength, "empty ExtendedKeyUsage")
	}
	return sequenceOfTraverse(seq, TagFilter{ClassMask: 0xFF, ClassValue: byte(cbasn1.OBJECT_IDENTIFIER)}, func(_ cbasn1.Tag, _ *reader) error {
		return nil
	})
}

// decodeCertificatePolicies records the raw span and structurally
// validates SEQUENCE OF SEQUENCE { OID, ... }.
func decodeCertificatePolicies(f *Frame, raw RawSpan, body *reader, _ []byte) error {
	f.PoliciesRaw = innerValueSpan(raw, body)
	seq, _, err := body.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return newParseError(InvalidExtensions, "malformed CertificatePolicies: %v", err)
	}
	return sequenceOfTraverse(seq, TagFilter{ClassMask: 0xFF, ClassValue: byte(cbasn1.SEQUENCE)}, func(_ cbasn1.Tag, policyInfo *reader) error {
		inner, _, err := policyInfo.getTag(cbasn1.SEQUENCE)
		if err != nil {
			return newParseError(InvalidExtensions, "malformed PolicyInformation: %v", err)
		}
		if _, err := inner.getOID(); err != nil {
			return newParseError(InvalidExtensions, "malformed policyIdentifier: %v", err)
		}
		return nil
	})
}

// decodeNetscapeCertType decodes the BIT STRING into ns_cert_type.
func decodeNetscapeCertType(f *Frame, _ RawSpan, body *reader, _ []byte) error {
	bs, _, err := body.getBitString()
	if err != nil {
		return newParseError(InvalidExtensions, "malformed NetscapeCertType: %v", err)
	}
	if len(bs.Bytes) > 0 {
		f.NSCertType = bs.Bytes[0]
	}
	return nil
}

// innerValueSpan returns the span of bytes still remaining in body, i.e.
// the extnValue's inner content past the OCTET STRING header, used for
// extensions whose raw span the caller wants without the wrapping OCTET
// STRING tag/length.
func innerValueSpan(_ RawSpan, body *reader) RawSpan {
	return RawSpan{offset: body.pos(), length: len(body.s)}
}
