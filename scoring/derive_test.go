package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		side     TeamSide
		wantA    int
		wantB    int
	}{
		{"earned by A", CategoryEarned, SideA, 1, 0},
		{"earned by B", CategoryEarned, SideB, 0, 1},
		{"fault by A gives B the point", CategoryFault, SideA, 0, 1},
		{"fault by B gives A the point", CategoryFault, SideB, 1, 0},
		{"neutral by A", CategoryNeutral, SideA, 0, 0},
		{"neutral by B", CategoryNeutral, SideB, 0, 0},
		{"unknown side earned", CategoryEarned, SideUnknown, 0, 0},
		{"unknown side fault", CategoryFault, SideUnknown, 0, 0},
		{"unknown side neutral", CategoryNeutral, SideUnknown, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dA, dB := Derive(tt.category, tt.side)
			assert.Equal(t, tt.wantA, dA)
			assert.Equal(t, tt.wantB, dB)
		})
	}
}

func TestSideOf(t *testing.T) {
	assert.Equal(t, SideA, SideOf(7, 7, 9))
	assert.Equal(t, SideB, SideOf(9, 7, 9))
	assert.Equal(t, SideUnknown, SideOf(11, 7, 9))
}

func TestCatalog(t *testing.T) {
	earned := []string{"aces", "spikes", "blocks", "tips", "dumps", "digs", "points"}
	for _, name := range earned {
		c, ok := CategoryOf(name)
		assert.True(t, ok, name)
		assert.Equal(t, CategoryEarned, c, name)
	}

	faults := []string{"serveErrors", "spikeErrors", "netTouches", "footFaults", "carries", "reaches", "outOfBounds", "faults"}
	for _, name := range faults {
		c, ok := CategoryOf(name)
		assert.True(t, ok, name)
		assert.Equal(t, CategoryFault, c, name)
	}

	c, ok := CategoryOf("neutralBlocks")
	assert.True(t, ok)
	assert.Equal(t, CategoryNeutral, c)

	_, ok = CategoryOf("highFives")
	assert.False(t, ok)
}

func TestNormalizeStat(t *testing.T) {
	assert.Equal(t, "neutralBlocks", NormalizeStat("blocks", BlockTypeTouch))
	assert.Equal(t, "blocks", NormalizeStat("blocks", BlockTypePoint))
	assert.Equal(t, "blocks", NormalizeStat("blocks", ""))
	assert.Equal(t, "aces", NormalizeStat("aces", BlockTypeTouch))
}
