// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	stdasn1 "encoding/asn1"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// reader is the tag reader (component A). It wraps a cryptobyte.String
// positioned somewhere inside buf and offers primitive DER readers; getTag,
// getInt and getBitString also hand back the RawSpan the value occupied, so
// the frame parser can record spans into the certificate's own buffer
// without copying.
//
// cryptobyte never copies on read: every ReadASN1* call reslices the same
// backing array and keeps its capacity running to the end of it. That means
// pos(), computed as cap(buf)-cap(s), always gives the reader's absolute
// offset into buf, even for a reader handed a sub-slice produced by an
// earlier read.
type reader struct {
	buf []byte
	s   cryptobyte.String
}

func newReader(der []byte) *reader {
	return &reader{buf: der, s: cryptobyte.String(der)}
}

func (r *reader) pos() int {
	return cap(r.buf) - cap(r.s)
}

func (r *reader) span(start int) RawSpan {
	return RawSpan{offset: start, length: r.pos() - start}
}

func (r *reader) empty() bool {
	return len(r.s) == 0
}

// getTag reads the tag/length header for expected and returns a reader
// scoped to the value bytes plus the span the whole TLV (header included)
// occupied in buf.
func (r *reader) getTag(expected cbasn1.Tag) (body *reader, whole RawSpan, err error) {
	start := r.pos()
	var value cryptobyte.String
	if !r.s.ReadASN1(&value, expected) {
		if r.empty() {
			return nil, RawSpan{}, newParseError(OutOfData, "expected tag %#x, no data remains", expected)
		}
		return nil, RawSpan{}, newParseError(UnexpectedTag, "expected tag %#x", expected)
	}
	return &reader{buf: r.buf, s: value}, r.span(start), nil
}

// peekTag reports whether the next element carries the given tag, without
// consuming it.
func (r *reader) peekTag(tag cbasn1.Tag) bool {
	return r.s.PeekASN1Tag(tag)
}

// skipOptional consumes an optional element of the given tag if present.
func (r *reader) skipOptional(tag cbasn1.Tag) (present bool, err error) {
	if !r.peekTag(tag) {
		return false, nil
	}
	if !r.s.SkipOptionalASN1(tag) {
		return false, newParseError(InvalidLength, "malformed optional element, tag %#x", tag)
	}
	return true, nil
}

// getInt reads an ASN.1 INTEGER as a *big.Int, along with its span
// (header included, matching the certificate's serialNumber span
// semantics in spec.md §3).
func (r *reader) getInt() (*big.Int, RawSpan, error) {
	start := r.pos()
	out := new(big.Int)
	if !r.s.ReadASN1Integer(out) {
		return nil, RawSpan{}, newParseError(InvalidFormat, "malformed INTEGER")
	}
	return out, r.span(start), nil
}

// getSmallInt reads an ASN.1 INTEGER expected to fit in an int, used for
// Version and pathLenConstraint.
func (r *reader) getSmallInt() (int, error) {
	var v int
	if !r.s.ReadASN1Integer(&v) {
		return 0, newParseError(InvalidFormat, "malformed small INTEGER")
	}
	return v, nil
}

// getBool reads an ASN.1 BOOLEAN.
func (r *reader) getBool() (bool, error) {
	var v bool
	if !r.s.ReadASN1Boolean(&v) {
		return false, newParseError(InvalidFormat, "malformed BOOLEAN")
	}
	return v, nil
}

// getBitString reads an ASN.1 BIT STRING.
func (r *reader) getBitString() (stdasn1.BitString, RawSpan, error) {
	start := r.pos()
	var bs stdasn1.BitString
	if !r.s.ReadASN1BitString(&bs) {
		return stdasn1.BitString{}, RawSpan{}, newParseError(InvalidFormat, "malformed BIT STRING")
	}
	return bs, r.span(start), nil
}

// getOID reads an ASN.1 OBJECT IDENTIFIER.
func (r *reader) getOID() (stdasn1.ObjectIdentifier, error) {
	var oid stdasn1.ObjectIdentifier
	if !r.s.ReadASN1ObjectIdentifier(&oid) {
		return nil, newParseError(InvalidFormat, "malformed OBJECT IDENTIFIER")
	}
	return oid, nil
}

// getTime reads a certificate Time, which RFC 5280 §4.1.2.5 specifies as a
// CHOICE of UTCTime (years before 2050) or GeneralizedTime.
func (r *reader) getTime() (time.Time, error) {
	switch {
	case r.peekTag(cbasn1.UTCTime):
		var t time.Time
		if !r.s.ReadASN1UTCTime(&t) {
			return time.Time{}, newParseError(InvalidDate, "malformed UTCTime")
		}
		return t, nil
	case r.peekTag(cbasn1.GeneralizedTime):
		var t time.Time
		if !r.s.ReadASN1GeneralizedTime(&t) {
			return time.Time{}, newParseError(InvalidDate, "malformed GeneralizedTime")
		}
		return t, nil
	default:
		return time.Time{}, newParseError(InvalidDate, "expected UTCTime or GeneralizedTime")
	}
}

// TagFilter restricts which element tags a sequence-of traversal accepts.
// Matching is bitwise: an element's raw tag octet t is accepted iff
// t&ClassMask == ClassValue and t&ValueMask == ValueValue. Pass a zero
// TagFilter to accept any tag.
type TagFilter struct {
	ClassMask, ClassValue byte
	ValueMask, ValueValue byte
}

func (f TagFilter) match(tag cbasn1.Tag) bool {
	t := byte(tag)
	return t&f.ClassMask == f.ClassValue && t&f.ValueMask == f.ValueValue
}

// anyTag accepts every element tag.
var anyTag = TagFilter{}

// sequenceOfTraverse iterates the elements of body (already positioned
// inside a SEQUENCE OF's value bytes) until exhausted, calling fn with a
// reader scoped to each element's full TLV bytes. It rejects an element
// whose tag does not satisfy filter.
func sequenceOfTraverse(body *reader, filter TagFilter, fn func(tag cbasn1.Tag, elem *reader) error) error {
	for !body.empty() {
		start := body.pos()
		var elem cryptobyte.String
		var tag cbasn1.Tag
		if !body.s.ReadAnyASN1Element(&elem, &tag) {
			return newParseError(InvalidFormat, "malformed element in SEQUENCE OF")
		}
		if !filter.match(tag) {
			return newParseError(UnexpectedTag, "unexpected tag %#x in SEQUENCE OF", tag)
		}
		_ = body.span(start) // the element's span within buf; unused here
		elemReader := &reader{buf: body.buf, s: elem}
		if err := fn(tag, elemReader); err != nil {
			return err
		}
	}
	return nil
}
