package ledger

import (
	"time"

	"github.com/rs/zerolog"
)

type options struct {
	latency      time.Duration
	snapshotPath string
	demoData     bool
	now          func() time.Time
	log          zerolog.Logger
}

// Option configures a Store.
type Option func(*options)

// WithLatency delays every store call by d, as a remote backend would.
func WithLatency(d time.Duration) Option {
	return func(o *options) {
		o.latency = d
	}
}

// WithSnapshot mirrors every mutation to a BoltDB file at path and loads the
// store from it on start.
func WithSnapshot(path string) Option {
	return func(o *options) {
		o.snapshotPath = path
	}
}

// WithDemoData seeds an empty store with sample records.
func WithDemoData() Option {
	return func(o *options) {
		o.demoData = true
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}
