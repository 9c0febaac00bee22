package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewerTicketSupersedesOlder(t *testing.T) {
	var g Guard
	first := g.Begin()
	second := g.Begin()

	applied := ""
	assert.False(t, g.Apply(first, func() { applied = "first" }))
	assert.True(t, g.Apply(second, func() { applied = "second" }))
	assert.Equal(t, "second", applied)
	assert.True(t, g.Valid(second))
	assert.False(t, g.Valid(first))
}

func TestUnmountDropsEverything(t *testing.T) {
	var g Guard
	ticket := g.Begin()
	assert.True(t, g.Mounted())

	g.Unmount()

	assert.False(t, g.Mounted())
	assert.False(t, g.Valid(ticket))
	assert.False(t, g.Apply(ticket, func() { t.Fatal("applied after unmount") }))
}
