package bitfield_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devraj-singh/gobit/internal/bitfield"
)

func TestHasSetClear(t *testing.T) {
	b := bitfield.New([]byte{0b01010100, 0b01010100})

	assert.False(t, b.Has(0))
	assert.True(t, b.Has(1))
	assert.False(t, b.Has(2))
	assert.True(t, b.Has(3))
	assert.True(t, b.Has(9))

	b.Set(0)
	assert.True(t, b.Has(0))

	b.Clear(1)
	assert.False(t, b.Has(1))
}

func TestOutOfRangeIsNoop(t *testing.T) {
	b := bitfield.New([]byte{0})
	assert.False(t, b.Has(100))
	b.Set(100) // must not panic
	assert.False(t, b.Has(100))
}

func TestEmptySizing(t *testing.T) {
	b := bitfield.Empty(9)
	assert.True(t, b.TrailingPaddingClear(9))
	b.Set(8)
	assert.True(t, b.Has(8))
	assert.True(t, b.TrailingPaddingClear(9))
}
