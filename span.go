// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

// RawSpan is a byte range inside a certificate's owned or borrowed DER
// buffer. Spans never own memory; a span is only valid for the lifetime of
// the Certificate that produced it.
type RawSpan struct {
	offset int
	length int
}

// Bytes returns the span's bytes from buf. It panics if the span does not
// fit inside buf, which would indicate a bug in the parser that produced
// it rather than a caller error.
func (s RawSpan) Bytes(buf []byte) []byte {
	return buf[s.offset : s.offset+s.length]
}

// Len reports the span's length in bytes.
func (s RawSpan) Len() int {
	return s.length
}

// Empty reports whether the span has zero length, i.e. was never set.
func (s RawSpan) Empty() bool {
	return s.length == 0
}

// within reports whether s lies entirely inside outer, both measured from
// the same buffer origin. Used to check the Frame invariant that every
// span lies within the certificate's raw span.
func (s RawSpan) within(outer RawSpan) bool {
	return s.offset >= outer.offset && s.offset+s.length <= outer.offset+outer.length
}

// disjoint reports whether s and other do not overlap.
func (s RawSpan) disjoint(other RawSpan) bool {
	return s.offset+s.length <= other.offset || other.offset+other.length <= s.offset
}
