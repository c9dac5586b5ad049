package wwise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHDRBusIsNeverAlsoHDRChild(t *testing.T) {
	buses := []*Bus{
		TestBus("Master", `\Master`, true),
		TestBus("Sub", `\Master\Sub`, false),
		TestBus("SubHDR", `\Master\SubHDR`, true),
	}
	DeriveHDRChildren(buses)

	for _, b := range buses {
		if b.HDR {
			assert.False(t, b.HDRChild, "bus %s is HDR and must not be HDRChild", b.Name)
		}
	}
}

func TestDeriveHDRChildrenMarksDescendants(t *testing.T) {
	buses := []*Bus{
		TestBus("B1", `\Master`, true),
		TestBus("B2", `\Master\Sub`, false),
	}
	DeriveHDRChildren(buses)

	assert.True(t, buses[0].HDR)
	assert.False(t, buses[0].HDRChild)
	assert.False(t, buses[1].HDR)
	assert.True(t, buses[1].HDRChild)
}

func TestDeriveHDRChildrenDeepHierarchy(t *testing.T) {
	buses := []*Bus{
		TestBus("Root", `\Root`, false),
		TestBus("HDR", `\Root\HDR`, true),
		TestBus("Mid", `\Root\HDR\Mid`, false),
		TestBus("Leaf", `\Root\HDR\Mid\Leaf`, false),
		TestBus("Other", `\Root\Other`, false),
	}
	DeriveHDRChildren(buses)

	assert.False(t, buses[0].HDRChild, "ancestor of an HDR bus is not a child")
	assert.True(t, buses[2].HDRChild)
	assert.True(t, buses[3].HDRChild, "HDRChild must propagate through non-HDR ancestors")
	assert.False(t, buses[4].HDRChild)
}

func TestHDRBusIDsIncludesHDRAndChildren(t *testing.T) {
	buses := []*Bus{
		TestBus("B1", `\Master`, true),
		TestBus("B2", `\Master\Sub`, false),
		TestBus("B3", `\Aux`, false),
	}
	DeriveHDRChildren(buses)
	ids := HDRBusIDs(buses)

	assert.True(t, ids[buses[0].ID])
	assert.True(t, ids[buses[1].ID])
	assert.False(t, ids[buses[2].ID])
}
