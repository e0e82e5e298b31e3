// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"encoding/pem"
)

// Certificate owns a DER buffer (or references an external one) and a
// Cache of lazily materialized frame/public-key contexts. Certificates in
// a chain are linked forward through Next, matching the "EE.next -> C1 ->
// ... -> Cn" shape spec.md §4.E assumes for the supplied intermediates.
type Certificate struct {
	DER          []byte
	owned        bool
	ParseOptions ParseOptions

	Next *Certificate

	cache Cache
}

// NewCertificate wraps der (which the caller continues to own) in a
// Certificate with no cached state yet materialized. It never parses; the
// frame is parsed on first AcquireFrame. Use ParseCertificate with eager set
// to materialize state at construction time instead.
func NewCertificate(der []byte, opts ParseOptions) *Certificate {
	return &Certificate{DER: der, ParseOptions: opts}
}

// ParseCertificate parses a single DER certificate. If eager is true, the
// frame and the public key are materialized immediately (spec.md §6: "if
// disabled, [frame and pk] are materialized at parse time for constant-time
// later access"); otherwise materialization is deferred to the first
// AcquireFrame/AcquirePublicKey call.
func ParseCertificate(der []byte, opts ParseOptions, eager bool) (*Certificate, error) {
	cloned := make([]byte, len(der))
	copy(cloned, der)
	c := &Certificate{DER: cloned, owned: true, ParseOptions: opts}
	if eager {
		if _, err := c.AcquireFrame(); err != nil {
			return nil, err
		}
		c.ReleaseFrame()
		if _, err := c.AcquirePublicKey(); err != nil {
			return nil, err
		}
		c.ReleasePublicKey()
	}
	return c, nil
}

// ParseCertificates parses a list of DER certificates, one per element of
// ders (a concatenated DER buffer is not split), and links them
// head-to-tail via Next, the first element becoming the end-entity
// certificate.
func ParseCertificates(ders [][]byte, opts ParseOptions, eager bool) (*Certificate, error) {
	if len(ders) == 0 {
		return nil, newParseError(OutOfData, "no certificates supplied")
	}
	var head, tail *Certificate
	for _, der := range ders {
		c, err := ParseCertificate(der, opts, eager)
		if err != nil {
			return nil, err
		}
		if head == nil {
			head = c
		} else {
			tail.Next = c
		}
		tail = c
	}
	return head, nil
}

// ParseCertificatesPEM is a convenience wrapper around ParseCertificates
// that accepts a PEM-framed bundle of "CERTIFICATE" blocks. PEM framing
// itself is an external collaborator (spec.md §6); this helper exists
// outside the core parse path the way cfssl's helpers package wraps
// encoding/pem around cfssl's own core.
func ParseCertificatesPEM(data []byte, opts ParseOptions, eager bool) (*Certificate, error) {
	var ders [][]byte
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		ders = append(ders, block.Bytes)
	}
	return ParseCertificates(ders, opts, eager)
}

// Zeroize overwrites an owned DER buffer with zeroes. It is a no-op for a
// Certificate built from a caller-supplied (borrowed) buffer, matching
// spec.md §3's lifecycle note that "each node zeroizes its DER when it
// owned the buffer."
func (c *Certificate) Zeroize() {
	if !c.owned {
		return
	}
	for i := range c.DER {
		c.DER[i] = 0
	}
}

// Chain returns the certificates reachable from c via Next, c included,
// in order.
func (c *Certificate) Chain() []*Certificate {
	var out []*Certificate
	for n := c; n != nil; n = n.Next {
		out = append(out, n)
	}
	return out
}
