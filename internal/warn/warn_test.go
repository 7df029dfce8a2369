package warn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_DeduplicatesInOrder(t *testing.T) {
	c := New()
	c.Add("unsupported field %q", "kw")
	c.Add("wildcard")
	c.Add("unsupported field %q", "kw")

	assert.Equal(t, []string{`unsupported field "kw"`, "wildcard"}, c.Warnings())
	assert.Equal(t, 2, c.Len())
}

func TestCollector_EmptyIsNotNil(t *testing.T) {
	c := New()
	assert.NotNil(t, c.Warnings())
	assert.Empty(t, c.Warnings())
	assert.Empty(t, c.Trace())
}

func TestCollector_Merge(t *testing.T) {
	c := New()
	c.Add("a")
	c.Merge([]string{"b", "a", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, c.Warnings())
}

func TestCollector_Trace(t *testing.T) {
	c := New()
	c.Tracef("stage %s: %d", "parse", 3)
	assert.Equal(t, []string{"stage parse: 3"}, c.Trace())
}
