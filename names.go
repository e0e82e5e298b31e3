// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	stdasn1 "encoding/asn1"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// NameAtom is one (OID, tag, value) entry of an RDN sequence. SameRDN
// marks that this atom is part of the same multi-valued RDN as the entry
// before it (spec.md §3's merged_flag), which ParseRDNSequence sets for
// every atom after the first in a RelativeDistinguishedName SET.
type NameAtom struct {
	OID     stdasn1.ObjectIdentifier
	Tag     cbasn1.Tag
	Value   []byte
	SameRDN bool
}

// RDNSequence is the ordered chain component D walks lazily from
// subject_raw/issuer_raw.
type RDNSequence []NameAtom

// ParseRDNSequence parses a Name (RFC 5280 §4.1.2.4): SEQUENCE OF
// RelativeDistinguishedName, each a SET OF AttributeTypeAndValue. An empty
// Name parses to an empty, non-nil RDNSequence rather than an error
// (spec.md §4.D: "Empty raw span => empty chain, not failure").
func ParseRDNSequence(raw []byte) (RDNSequence, error) {
	top := newReader(raw)
	body, _, err := top.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, newParseError(InvalidFormat, "malformed Name: %v", err)
	}
	if !top.empty() {
		return nil, newParseError(InvalidFormat, "trailing data after Name")
	}
	out := RDNSequence{}
	err = sequenceOfTraverse(body, TagFilter{ClassMask: 0xFF, ClassValue: byte(cbasn1.SET)}, func(_ cbasn1.Tag, rdnSet *reader) error {
		setBody, _, err := rdnSet.getTag(cbasn1.SET)
		if err != nil {
			return newParseError(InvalidFormat, "malformed RelativeDistinguishedName: %v", err)
		}
		first := true
		return sequenceOfTraverse(setBody, TagFilter{ClassMask: 0xFF, ClassValue: byte(cbasn1.SEQUENCE)}, func(_ cbasn1.Tag, atv *reader) error {
			atvBody, _, err := atv.getTag(cbasn1.SEQUENCE)
			if err != nil {
				return newParseError(InvalidFormat, "malformed AttributeTypeAndValue: %v", err)
			}
			oid, err := atvBody.getOID()
			if err != nil {
				return newParseError(InvalidFormat, "malformed attribute OID: %v", err)
			}
			var tag cbasn1.Tag
			var value cryptobyte.String
			if !atvBody.s.ReadAnyASN1(&value, &tag) {
				return newParseError(InvalidFormat, "malformed attribute value")
			}
			out = append(out, NameAtom{OID: oid, Tag: tag, Value: []byte(value), SameRDN: !first})
			first = false
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// rdnFold normalizes a name atom's value for comparison, per spec.md
// §4.D: case-insensitive, whitespace-folding for string types, and
// byte-equality otherwise.
func rdnFold(tag cbasn1.Tag, value []byte) string {
	switch tag {
	case cbasn1.PrintableString, cbasn1.UTF8String, cbasn1.IA5String, cbasn1.T61String, cbasn1.GeneralString:
		s := strings.ToLower(string(value))
		s = strings.Join(strings.Fields(s), " ")
		return s
	default:
		return string(value)
	}
}

// EqualRDNSequences implements the name comparator of spec.md §4.D, also
// used as the self-compare structural check on issuer/subject: equal
// number of top-level RDNs, same number of atoms per position, and
// byte-equal OIDs with folded-equal values per atom.
func EqualRDNSequences(a, b RDNSequence) bool {
	groupsA := splitRDNGroups(a)
	groupsB := splitRDNGroups(b)
	if len(groupsA) != len(groupsB) {
		return false
	}
	for i := range groupsA {
		if len(groupsA[i]) != len(groupsB[i]) {
			return false
		}
		for j := range groupsA[i] {
			x, y := groupsA[i][j], groupsB[i][j]
			if !x.OID.Equal(y.OID) {
				return false
			}
			if rdnFold(x.Tag, x.Value) != rdnFold(y.Tag, y.Value) {
				return false
			}
		}
	}
	return true
}

func splitRDNGroups(seq RDNSequence) [][]NameAtom {
	var groups [][]NameAtom
	for _, atom := range seq {
		if !atom.SameRDN || len(groups) == 0 {
			groups = append(groups, []NameAtom{atom})
		} else {
			groups[len(groups)-1] = append(groups[len(groups)-1], atom)
		}
	}
	return groups
}

// CommonNames returns the values of every CN (2.5.4.3) atom in seq, in
// order, used for the subject-DN fallback in the host-name check
// (spec.md §4.E.1).
func CommonNames(seq RDNSequence) []string {
	var oidCN = stdasn1.ObjectIdentifier{2, 5, 4, 3}
	var out []string
	for _, atom := range seq {
		if atom.OID.Equal(oidCN) {
			out = append(out, string(atom.Value))
		}
	}
	return out
}

// MatchDNSName implements the wildcard matcher of spec.md §4.D: exact
// case-insensitive match, or a leading "*." pattern whose tail matches the
// candidate's tail starting at its first label boundary.
func MatchDNSName(pattern, candidate string) bool {
	pattern = strings.TrimSuffix(pattern, ".")
	candidate = strings.TrimSuffix(candidate, ".")
	if strings.EqualFold(pattern, candidate) {
		return true
	}
	if !strings.HasPrefix(pattern, "*.") {
		return false
	}
	k := strings.IndexByte(candidate, '.')
	if k <= 0 {
		return false
	}
	return strings.EqualFold(pattern[1:], candidate[k:])
}

// GeneralName is one entry of a SubjectAltName/IssuerAltName GeneralNames
// SEQUENCE: a context-specific CHOICE tag (RFC 5280 §4.2.1.6) plus its raw
// value bytes.
type GeneralName struct {
	Tag   cbasn1.Tag
	Value []byte
}

const dnsNameTag = cbasn1.Tag(2).ContextSpecific()

// ParseGeneralNames parses a GeneralNames SEQUENCE OF GeneralName from raw
// SubjectAltName/IssuerAltName extension bytes (component D's lazy SAN
// walk). An empty raw span yields an empty, non-nil slice.
func ParseGeneralNames(raw []byte) ([]GeneralName, error) {
	if len(raw) == 0 {
		return []GeneralName{}, nil
	}
	top := newReader(raw)
	body, _, err := top.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, newParseError(InvalidFormat, "malformed GeneralNames: %v", err)
	}
	if !top.empty() {
		return nil, newParseError(InvalidFormat, "trailing data after GeneralNames")
	}
	out := []GeneralName{}
	err = sequenceOfTraverse(body, TagFilter{ClassMask: 0x80, ClassValue: 0x80}, func(tag cbasn1.Tag, elem *reader) error {
		var value cryptobyte.String
		var gotTag cbasn1.Tag
		if !elem.s.ReadAnyASN1(&value, &gotTag) {
			return newParseError(InvalidFormat, "malformed GeneralName")
		}
		out = append(out, GeneralName{Tag: gotTag, Value: []byte(value)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DNSNames filters names down to the dNSName ([2] IA5String) entries.
func DNSNames(names []GeneralName) []string {
	var out []string
	for _, n := range names {
		if n.Tag == dnsNameTag {
			out = append(out, string(n.Value))
		}
	}
	return out
}
