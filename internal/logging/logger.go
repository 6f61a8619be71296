// Package logging constructs the process-wide zap logger used by the
// cmd/server front end. The core cache library never imports this
// package: it accepts an optional *zap.Logger through its own config and
// defaults to zap.NewNop() so embedding the library has no forced
// logging side effect.
package logging

import "go.uber.org/zap"

// New builds a production or development zap logger depending on dev.
// Development mode uses a human-readable console encoder and logs at
// Debug; production mode uses JSON and logs at Info.
func New(dev bool) *zap.Logger {
	var l *zap.Logger
	var err error
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		// Config-less fallback: this only fails on an unwritable output
		// path, which the default configs above don't set.
		l = zap.NewNop()
	}
	return l
}
