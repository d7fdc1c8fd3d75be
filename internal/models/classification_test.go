package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	c := Classification{NeedsSummary: 0.5, NeedsDraft: 0.49, NeedsSchedule: 0.51}

	d := c.Decide(0.5)
	assert.True(t, d.NeedsSummary, "probability equal to the cutoff is a yes")
	assert.False(t, d.NeedsDraft)
	assert.True(t, d.NeedsSchedule)
}

func TestDecideExtremes(t *testing.T) {
	c := Classification{NeedsSummary: 0, NeedsDraft: 1, NeedsSchedule: 0.7}

	d := c.Decide(0)
	assert.True(t, d.NeedsSummary)
	assert.True(t, d.NeedsDraft)
	assert.True(t, d.NeedsSchedule)

	d = c.Decide(1)
	assert.False(t, d.NeedsSummary)
	assert.True(t, d.NeedsDraft)
	assert.False(t, d.NeedsSchedule)
}
