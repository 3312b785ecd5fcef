package zones

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_ContiguousAndAscending(t *testing.T) {
	assert.Equal(t, 0.0, Table[0].MinPercent)
	for i := 1; i < Count; i++ {
		assert.Equal(t, Table[i-1].MaxPercent, Table[i].MinPercent, "zone %d must start where zone %d ends", i, i-1)
		assert.Less(t, Table[i].MinPercent, Table[i].MaxPercent)
	}
}

func TestIndexOf_Boundaries(t *testing.T) {
	tests := []struct {
		power float64
		want  int
	}{
		{0, 0},
		{54.9, 0},
		{55, 1},
		{74.99, 1},
		{75, 2},
		{90, 3},
		{104, 3},
		{105, 4},
		{120, 5},
		{149.9, 5},
		{150, 5},
		{300, 5},
		{-5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IndexOf(tt.power), "power %v", tt.power)
	}
}

func TestIndexOf_ExactlyOneZoneContainsEachValue(t *testing.T) {
	for p := 0.0; p <= 200; p += 0.5 {
		matches := 0
		for i, zone := range Table {
			inside := p >= zone.MinPercent && p < zone.MaxPercent
			if i == Count-1 {
				inside = p >= zone.MinPercent
			}
			if inside {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "power %v", p)
		zone := For(p)
		assert.GreaterOrEqual(t, p, zone.MinPercent)
	}
}

func TestPowerZone_DisplayName(t *testing.T) {
	assert.Equal(t, "Z4 (Threshold)", Table[3].DisplayName())
}
