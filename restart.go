// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import "sync"

// restartTag discriminates the RestartContext tagged union of spec.md
// §4.E.7/§9: None, InFindParent, or InSignatureVerify.
type restartTag int

const (
	restartNone restartTag = iota
	restartInFindParent
	restartInSignatureVerify
)

// findParentSnapshot is the state find-parent needs to resume its scan: the
// candidate list, how far into it the scan had gotten, and any fallback
// (expired/not-yet-valid) match found so far.
type findParentSnapshot struct {
	list            []*Certificate
	pos             int
	top             bool
	pathCnt         int
	selfCnt         int
	fallback        *Certificate
	fallbackSigGood bool
}

// RestartContext is caller-owned state that captures a suspended
// verification so it can resume later without redoing work (spec.md §4.E.7,
// §9). Only one suspension kind exists in this port: the cryptographic
// backend (crypto/rsa, crypto/ecdsa, crypto/ed25519) verifies signatures
// synchronously and never itself reports "in progress", so
// Verify never suspends: neither Verify nor findParent reads or saves a
// RestartContext, so VerifyOptions.Restart has no effect on a verification
// and neither restartInFindParent nor restartInSignatureVerify is ever
// entered by Verify in this package. The fields and tags hold the
// snapshot/save/clear/Discard state machine on its own.
type RestartContext struct {
	mu        sync.Mutex
	tag       restartTag
	findParent findParentSnapshot
	sigToken  interface{}
}

// NewRestartContext returns a fresh, non-suspended restart context.
func NewRestartContext() *RestartContext {
	return &RestartContext{}
}

// Discard abandons a suspended verification, freeing any partial
// incremental-operation state (spec.md §5 "Cancellation and timeouts").
func (r *RestartContext) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tag = restartNone
	r.findParent = findParentSnapshot{}
	r.sigToken = nil
}

func (r *RestartContext) snapshot() (restartTag, findParentSnapshot) {
	if r == nil {
		return restartNone, findParentSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tag, r.findParent
}

func (r *RestartContext) save(snap findParentSnapshot) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tag = restartInFindParent
	r.findParent = snap
}

func (r *RestartContext) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tag = restartNone
	r.findParent = findParentSnapshot{}
}
