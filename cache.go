// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"crypto"
	"crypto/x509"
	stdasn1 "encoding/asn1"
	"sync"

	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Cache holds at most one materialized Frame and at most one materialized
// public-key context for a Certificate, each protected by an independent
// mutex (spec.md §3/§5). A certificate owns exactly one Cache; the Cache
// never outlives it and holds no reference back to it.
type Cache struct {
	frameMu sync.Mutex
	frame   *Frame
	frameErr error

	pkMu  sync.Mutex
	pk    crypto.PublicKey
	pkErr error
}

// Flush drops both cached entries, forcing the next Acquire to reparse.
// Safe to call concurrently with in-flight acquisitions; it simply takes
// both locks in the same child-then-parent-free order Acquire uses.
func (c *Cache) Flush() {
	c.frameMu.Lock()
	c.frame, c.frameErr = nil, nil
	c.frameMu.Unlock()

	c.pkMu.Lock()
	c.pk, c.pkErr = nil, nil
	c.pkMu.Unlock()
}

// AcquireFrame ensures the certificate's Frame is materialized and returns
// a borrow of it, locked until ReleaseFrame is called. Parses from DER on
// first access (spec.md §4.D).
func (c *Certificate) AcquireFrame() (*Frame, error) {
	c.cache.frameMu.Lock()
	if c.cache.frame == nil && c.cache.frameErr == nil {
		c.cache.frame, c.cache.frameErr = parseFrame(c.DER, c.ParseOptions)
	}
	if c.cache.frameErr != nil {
		err := c.cache.frameErr
		c.cache.frameMu.Unlock()
		return nil, err
	}
	return c.cache.frame, nil
}

// ReleaseFrame releases the borrow taken by AcquireFrame. Every successful
// AcquireFrame must be paired with exactly one ReleaseFrame, typically via
// defer.
func (c *Certificate) ReleaseFrame() {
	c.cache.frameMu.Unlock()
}

// AcquirePublicKey ensures the certificate's SubjectPublicKeyInfo has been
// decoded into a public-key context and returns a borrow of it, locked
// until ReleasePublicKey is called. Decoding is an external collaborator
// capability (crypto/x509.ParsePKIXPublicKey); this package never parses
// RSA/ECDSA/Ed25519 key material itself.
func (c *Certificate) AcquirePublicKey() (crypto.PublicKey, error) {
	c.cache.pkMu.Lock()
	if c.cache.pk == nil && c.cache.pkErr == nil {
		f, err := c.AcquireFrame()
		if err != nil {
			c.cache.pkErr = err
		} else {
			spki := f.PubkeyRaw.Bytes(c.DER)
			c.ReleaseFrame()
			c.cache.pk, c.cache.pkErr = x509.ParsePKIXPublicKey(spki)
		}
	}
	if c.cache.pkErr != nil {
		err := c.cache.pkErr
		c.cache.pkMu.Unlock()
		return nil, err
	}
	return c.cache.pk, nil
}

// ReleasePublicKey releases the borrow taken by AcquirePublicKey.
func (c *Certificate) ReleasePublicKey() {
	c.cache.pkMu.Unlock()
}

// Subject returns a freshly parsed RDN sequence for the certificate's
// subject name. Unlike AcquireFrame/AcquirePublicKey this is not cached:
// spec.md §4.D materializes RDN/SAN/EKU/policy chains fresh on every call.
func (c *Certificate) Subject() (RDNSequence, error) {
	f, err := c.AcquireFrame()
	if err != nil {
		return nil, err
	}
	defer c.ReleaseFrame()
	if f.SubjectRaw.Empty() {
		return RDNSequence{}, nil
	}
	return ParseRDNSequence(f.SubjectRaw.Bytes(c.DER))
}

// Issuer returns a freshly parsed RDN sequence for the certificate's
// issuer name.
func (c *Certificate) Issuer() (RDNSequence, error) {
	f, err := c.AcquireFrame()
	if err != nil {
		return nil, err
	}
	defer c.ReleaseFrame()
	if f.IssuerRaw.Empty() {
		return RDNSequence{}, nil
	}
	return ParseRDNSequence(f.IssuerRaw.Bytes(c.DER))
}

// SubjectAltNames returns a freshly parsed GeneralNames list from the
// SubjectAltName extension, or an empty slice if the certificate carries
// none.
func (c *Certificate) SubjectAltNames() ([]GeneralName, error) {
	f, err := c.AcquireFrame()
	if err != nil {
		return nil, err
	}
	defer c.ReleaseFrame()
	if f.SubjectAltRaw.Empty() {
		return []GeneralName{}, nil
	}
	return ParseGeneralNames(f.SubjectAltRaw.Bytes(c.DER))
}

// ExtendedKeyUsages returns a freshly parsed OID list from the
// ExtendedKeyUsage extension, or an empty slice if the certificate carries
// none.
func (c *Certificate) ExtendedKeyUsages() ([]stdasn1.ObjectIdentifier, error) {
	f, err := c.AcquireFrame()
	if err != nil {
		return nil, err
	}
	defer c.ReleaseFrame()
	if f.EKURaw.Empty() {
		return nil, nil
	}
	raw := f.EKURaw.Bytes(c.DER)
	r := &reader{buf: c.DER, s: raw}
	seq, _, err := r.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, newParseError(InvalidFormat, "malformed ExtendedKeyUsage: %v", err)
	}
	var out []stdasn1.ObjectIdentifier
	err = sequenceOfTraverse(seq, TagFilter{ClassMask: 0xFF, ClassValue: byte(cbasn1.OBJECT_IDENTIFIER)}, func(_ cbasn1.Tag, elem *reader) error {
		var oid stdasn1.ObjectIdentifier
		if !elem.s.ReadASN1ObjectIdentifier(&oid) {
			return newParseError(InvalidFormat, "malformed EKU OID")
		}
		out = append(out, oid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CertificatePolicies returns the policyIdentifier OIDs declared by the
// CertificatePolicies extension, dropping policy qualifiers, or an empty
// slice if the certificate carries none.
func (c *Certificate) CertificatePolicies() ([]stdasn1.ObjectIdentifier, error) {
	f, err := c.AcquireFrame()
	if err != nil {
		return nil, err
	}
	defer c.ReleaseFrame()
	if f.PoliciesRaw.Empty() {
		return nil, nil
	}
	raw := f.PoliciesRaw.Bytes(c.DER)
	r := &reader{buf: c.DER, s: raw}
	seq, _, err := r.getTag(cbasn1.SEQUENCE)
	if err != nil {
		return nil, newParseError(InvalidFormat, "malformed CertificatePolicies: %v", err)
	}
	var out []stdasn1.ObjectIdentifier
	err = sequenceOfTraverse(seq, TagFilter{ClassMask: 0xFF, ClassValue: byte(cbasn1.SEQUENCE)}, func(_ cbasn1.Tag, elem *reader) error {
		inner, _, err := elem.getTag(cbasn1.SEQUENCE)
		if err != nil {
			return newParseError(InvalidFormat, "malformed PolicyInformation: %v", err)
		}
		var oid stdasn1.ObjectIdentifier
		if !inner.s.ReadASN1ObjectIdentifier(&oid) {
			return newParseError(InvalidFormat, "malformed policyIdentifier")
		}
		out = append(out, oid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
