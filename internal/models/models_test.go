package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTick_PriceFor(t *testing.T) {
	tk := Tick{Symbol: "EURUSD", Bid: 1.1999, Ask: 1.2001}

	// long ведётся от ask, short от bid
	assert.Equal(t, 1.2001, tk.PriceFor(SideLong))
	assert.Equal(t, 1.1999, tk.PriceFor(SideShort))
}

func TestSide_Valid(t *testing.T) {
	assert.True(t, SideLong.Valid())
	assert.True(t, SideShort.Valid())
	assert.False(t, Side("").Valid())
	assert.False(t, Side("buy").Valid())
}

func TestPositionFilter_Match(t *testing.T) {
	p := Position{Ticket: 1, Symbol: "EURUSD", Side: SideLong, Comment: "bot", Magic: 7}

	assert.True(t, PositionFilter{}.Match(p))
	assert.True(t, PositionFilter{Symbol: "EURUSD", Side: SideLong}.Match(p))
	assert.False(t, PositionFilter{Symbol: "XAUUSD"}.Match(p))
	assert.False(t, PositionFilter{Side: SideShort}.Match(p))
	assert.False(t, PositionFilter{Comment: "manual"}.Match(p))

	// magic=0 без MagicSet — это "не фильтровать", а не "magic равен нулю"
	assert.True(t, PositionFilter{Magic: 0}.Match(p))
	assert.False(t, PositionFilter{Magic: 0, MagicSet: true}.Match(p))
	assert.True(t, PositionFilter{Magic: 7, MagicSet: true}.Match(p))
}
