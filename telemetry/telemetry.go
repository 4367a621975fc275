// Package telemetry provides hierarchical timing collection for processing
// passes. Collectors travel through the context so instrumentation never
// changes function signatures; without a collector in the context every
// operation is a no-op.
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/cointax/output"
)

type contextKey int

const (
	collectorKey contextKey = iota
	rootTimerKey
)

// Collector collects timing data for a run.
type Collector interface {
	// Start begins timing an operation. End the returned Timer when the
	// operation completes.
	Start(name string) Timer

	// Report writes the collected timings to w, styled when styles is
	// non-nil.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation. Timers nest via Child.
type Timer interface {
	End()
	Child(name string) Timer
}

// WithCollector returns a context carrying the collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector, or a no-op one if none is present.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithRootTimer returns a context whose StartTimer calls nest under t.
func WithRootTimer(ctx context.Context, t Timer) context.Context {
	return context.WithValue(ctx, rootTimerKey, t)
}

// StartTimer starts a timer nested under the context's root timer, falling
// back to the collector itself when no root timer is set.
func StartTimer(ctx context.Context, name string) Timer {
	if root, ok := ctx.Value(rootTimerKey).(Timer); ok {
		return root.Child(name)
	}
	return FromContext(ctx).Start(name)
}
