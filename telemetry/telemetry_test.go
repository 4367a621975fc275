package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/cointax/output"
)

func TestTimingCollector_Report(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("process portfolio")
	child := root.Child("prepare")
	child.End()
	grandchild := root.Child("walk").Child("year 2021")
	grandchild.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 4, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "process portfolio:"))
	assert.True(t, strings.HasPrefix(lines[1], "├─ prepare:"))
	assert.True(t, strings.HasPrefix(lines[2], "└─ walk:"))
	assert.True(t, strings.HasPrefix(lines[3], "   └─ year 2021:"))
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, "ms"), "got %q", line)
	}
}

func TestTimingCollector_ReportStyled(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("process portfolio")
	root.Child("prepare").End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, output.NewStyles(&buf))

	report := buf.String()
	assert.Contains(t, report, "process portfolio")
	assert.Contains(t, report, "prepare")
}

func TestFromContext_Default(t *testing.T) {
	collector := FromContext(context.Background())

	// Without a collector everything is a no-op; nothing is recorded.
	timer := collector.Start("noop")
	timer.Child("child").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestStartTimer_NestsUnderRoot(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	root := collector.Start("root")
	ctx = WithRootTimer(ctx, root)

	StartTimer(ctx, "nested").End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 2, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "└─ nested:"))
}

func TestStartTimer_FallsBackToCollector(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	StartTimer(ctx, "top-level").End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.True(t, strings.HasPrefix(buf.String(), "top-level:"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0ms", formatDuration(0))
	assert.Equal(t, "85ms", formatDuration(85*time.Millisecond))
	assert.Equal(t, "2.50s", formatDuration(2500*time.Millisecond))
}
