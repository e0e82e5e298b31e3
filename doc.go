// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package x509chain parses DER-encoded X.509 version 1-3 certificates (RFC
// 5280) without copying their payloads, and builds and verifies trust paths
// from a peer-presented chain up to a set of locally trusted roots.
//
// Parsing splits into two passes. parseFrame (frame.go) walks the top-level
// TBSCertificate structure breadth-first and records a Frame of byte spans
// into the original DER buffer without copying payloads; it only captures
// the v3 extensions sequence and hands it to walkExtensions (extensions.go),
// which makes the second pass, dispatching on extension OID to populate
// BasicConstraints, KeyUsage, SubjectAltName and friends. Both passes are
// built on the no-copy tag reader in reader.go.
//
// Verification (verify.go) walks a certificate chain iteratively from the
// end-entity certificate upward, looking for a parent among supplied
// intermediates or trusted roots at each hop, and accumulates a 32-bit
// defect flag word rather than failing fast: a caller can distinguish "not
// trusted" from "trusted but expired" from "trusted but revoked".
//
// Hashing, signature verification and public key parsing are treated as
// external capabilities supplied by the standard library (crypto for
// hashing, crypto/x509 for public key parsing, crypto/rsa, crypto/ecdsa and
// crypto/ed25519 for verification); this package never reimplements RSA,
// ECDSA or Ed25519 verification.
package x509chain
