package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/cointax/output"
)

// TimingCollector collects a tree of operation timings.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*timerNode
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode

	collector *TimingCollector
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start begins timing a top-level operation.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: time.Now(), collector: c}
	c.roots = append(c.roots, node)
	return node
}

// Report writes the timing tree, one line per operation, children drawn
// with tree characters under their parent.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTimingTree(w, root, styles)
	}
}

func (n *timerNode) End() {
	n.collector.mu.Lock()
	defer n.collector.mu.Unlock()

	if n.end.IsZero() {
		n.end = time.Now()
	}
}

func (n *timerNode) Child(name string) Timer {
	n.collector.mu.Lock()
	defer n.collector.mu.Unlock()

	child := &timerNode{name: name, start: time.Now(), collector: n.collector}
	n.children = append(n.children, child)
	return child
}

func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return time.Since(n.start)
	}
	return n.end.Sub(n.start)
}
