// Package warn collects the notices a conversion produces when a construct
// cannot be expressed exactly in the target dialect.
package warn

import "fmt"

// Collector accumulates warnings in first-seen order and a debug trace.
// A Collector belongs to a single conversion call; it is not safe for
// concurrent use.
type Collector struct {
	warnings []string
	seen     map[string]struct{}
	trace    []string
}

// New returns an empty collector.
func New() *Collector {
	return &Collector{seen: make(map[string]struct{})}
}

// Add records a warning. Identical messages are kept once.
func (c *Collector) Add(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if _, ok := c.seen[msg]; ok {
		return
	}
	c.seen[msg] = struct{}{}
	c.warnings = append(c.warnings, msg)
}

// Merge appends warnings produced elsewhere, keeping de-duplication.
func (c *Collector) Merge(msgs []string) {
	for _, m := range msgs {
		c.Add("%s", m)
	}
}

// Tracef records an intermediate conversion state for --verbose output.
func (c *Collector) Tracef(format string, args ...any) {
	c.trace = append(c.trace, fmt.Sprintf(format, args...))
}

// Warnings returns a copy of the collected warnings. The result is never nil.
func (c *Collector) Warnings() []string {
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Trace returns a copy of the trace lines.
func (c *Collector) Trace() []string {
	out := make([]string, len(c.trace))
	copy(out, c.trace)
	return out
}

// Len reports how many distinct warnings were collected.
func (c *Collector) Len() int { return len(c.warnings) }
