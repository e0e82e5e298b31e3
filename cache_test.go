// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireFrameMaterializesOnce(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Cache Root"), nil)
	c := NewCertificate(root.DER, ParseOptions{})

	f1, err := c.AcquireFrame()
	require.NoError(t, err)
	c.ReleaseFrame()

	f2, err := c.AcquireFrame()
	require.NoError(t, err)
	c.ReleaseFrame()

	assert.Same(t, f1, f2)
}

func TestAcquireFrameErrorCached(t *testing.T) {
	c := NewCertificate([]byte{0x00}, ParseOptions{})
	_, err1 := c.AcquireFrame()
	require.Error(t, err1)
	_, err2 := c.AcquireFrame()
	require.Error(t, err2)
	assert.True(t, err1 == err2)
}

func TestAcquirePublicKey(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Cache Root PK"), nil)
	c := NewCertificate(root.DER, ParseOptions{})

	pub, err := c.AcquirePublicKey()
	require.NoError(t, err)
	c.ReleasePublicKey()
	assert.Equal(t, root.x509Cer.PublicKey, pub)
}

func TestCacheFlushForcesReparse(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Cache Flush Root"), nil)
	c := NewCertificate(root.DER, ParseOptions{})

	f1, err := c.AcquireFrame()
	require.NoError(t, err)
	c.ReleaseFrame()

	c.cache.Flush()

	f2, err := c.AcquireFrame()
	require.NoError(t, err)
	c.ReleaseFrame()

	assert.NotSame(t, f1, f2)
}

func TestAcquireFrameConcurrentAccessIsSafe(t *testing.T) {
	root := makeCA(t, defaultCAOpts("Cache Concurrent Root"), nil)
	c := NewCertificate(root.DER, ParseOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := c.AcquireFrame()
			if err == nil {
				c.ReleaseFrame()
			}
			assert.NotNil(t, f)
		}()
	}
	wg.Wait()
}
