// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x509chain

import "github.com/sirupsen/logrus"

// logFieldLogger is the subset of *logrus.Entry / *logrus.Logger that
// Verify needs. Accepting the interface rather than a concrete type lets a
// caller pass either, matching the sirupsen/logrus convention of threading
// a *logrus.Entry through a call chain once a few fields (depth, subject)
// are already attached.
type logFieldLogger interface {
	WithFields(fields logrus.Fields) *logrus.Entry
}

// nopLogger discards every field and never writes, used when
// VerifyOptions.Logger is left nil so call sites never need a nil check.
type nopLogger struct{}

func (nopLogger) WithFields(logrus.Fields) *logrus.Entry {
	return logrus.NewEntry(discardLogger)
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.Out = discardWriter{}
	return l
}()

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
