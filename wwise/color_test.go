package wwise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParentDataEqualIsCaseInsensitiveOnName(t *testing.T) {
	a := ParentData{Name: "Weapons", Color: ColorFromIndex(3)}
	b := ParentData{Name: "WEAPONS", Color: ColorFromIndex(3)}
	assert.True(t, a.Equal(b))
}

func TestParentDataEqualRequiresExactColorMatch(t *testing.T) {
	a := ParentData{Name: "Weapons", Color: Color{255, 10, 20, 30}}
	b := ParentData{Name: "Weapons", Color: Color{255, 10, 20, 31}}
	assert.False(t, a.Equal(b))
}

func TestColorFromIndexOutOfRangeFallsBackToGray(t *testing.T) {
	assert.Equal(t, NeutralGray, ColorFromIndex(-1))
	assert.Equal(t, NeutralGray, ColorFromIndex(999))
	assert.NotEqual(t, NeutralGray, ColorFromIndex(3))
}

func TestDefaultParentUsesSentinelNameAndGray(t *testing.T) {
	p := DefaultParent()
	assert.Equal(t, NoExplicitOwner, p.Name)
	assert.Equal(t, NeutralGray, p.Color)
}
