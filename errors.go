// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies a structural parse failure (spec.md §7, stratum 1). None
// of these are ever recovered internally; every parse-layer function
// threads them upward unchanged, optionally wrapped with github.com/pkg/errors
// to preserve the call path that produced them.
type Code int

const (
	// InvalidFormat covers a malformed ASN.1 structure that does not fit
	// any more specific code below.
	InvalidFormat Code = iota + 1
	InvalidLength
	UnexpectedTag
	OutOfData
	InvalidVersion
	UnknownVersion
	InvalidDate
	InvalidExtensions
	InvalidAlgorithm
	SigMismatch
	FeatureUnavailable
	AllocFailed
)

func (c Code) String() string {
	switch c {
	case InvalidFormat:
		return "invalid format"
	case InvalidLength:
		return "invalid length"
	case UnexpectedTag:
		return "unexpected tag"
	case OutOfData:
		return "out of data"
	case InvalidVersion:
		return "invalid version"
	case UnknownVersion:
		return "unknown version"
	case InvalidDate:
		return "invalid date"
	case InvalidExtensions:
		return "invalid extensions"
	case InvalidAlgorithm:
		return "invalid algorithm identifier"
	case SigMismatch:
		return "inner/outer signature algorithm mismatch"
	case FeatureUnavailable:
		return "unsupported critical extension"
	case AllocFailed:
		return "allocation failed"
	default:
		return fmt.Sprintf("x509chain: unknown error code %d", int(c))
	}
}

// ParseError is a structural parse failure from the tag reader, frame
// parser or extension walker. It always carries a Code a caller can switch
// on, plus a human-readable message for logs.
type ParseError struct {
	Code Code
	msg  string
}

func (e *ParseError) Error() string {
	if e.msg == "" {
		return "x509chain: " + e.Code.String()
	}
	return "x509chain: " + e.Code.String() + ": " + e.msg
}

// newParseError builds a ParseError and wraps it with errors.WithStack so
// that errors.Cause(err) still yields a *ParseError while the wrapped
// error's stack trace points at the call site, the way cfssl's numbered
// error codes are wrapped throughout the pack this was grounded on.
func newParseError(code Code, format string, args ...interface{}) error {
	return errors.WithStack(&ParseError{Code: code, msg: fmt.Sprintf(format, args...)})
}

// AsParseError unwraps err (however deeply errors.Wrap-ed) to its
// underlying *ParseError, if any.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	for err != nil {
		if p, ok := err.(*ParseError); ok {
			pe = p
			break
		}
		cause := errors.Unwrap(err)
		if cause == nil {
			break
		}
		err = cause
	}
	if pe == nil {
		return nil, false
	}
	return pe, true
}
