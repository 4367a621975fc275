package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/cointax/output"
)

// formatTimingTree writes one root's timing tree. Example output:
//
//	check portfolio.json: 125ms
//	├─ prepare: 85ms
//	│  └─ match transfers: 5ms
//	└─ walk years: 40ms
//
// A nil styles renders plain text.
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.duration()))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	duration := node.duration()
	slow := duration >= 100*time.Millisecond

	chars := prefix + branch
	timing := formatDuration(duration)
	if styles != nil {
		chars = styles.Dim(chars)
		timing = styles.Timing(timing, slow)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", chars, node.name, timing)

	childPrefix := prefix + extension
	for i, child := range node.children {
		formatNode(w, child, childPrefix, i == len(node.children)-1, styles)
	}
}

// formatDuration shows milliseconds below a second, seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
