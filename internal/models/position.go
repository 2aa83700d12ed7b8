package models

// Side — направление позиции в терминале.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// Position — открытая позиция, read-only снимок из терминала.
// Ядро её не мутирует, только читает и шлёт команды модификации.
type Position struct {
	Ticket    int64
	Symbol    string
	Side      Side
	Volume    float64
	OpenPrice float64
	SL        float64 // 0 = стоп не выставлен
	TP        float64 // 0 = тейк не выставлен
	Profit    float64
	Comment   string
	Magic     int64
}

// PositionFilter — фильтры для списка/массового закрытия позиций.
type PositionFilter struct {
	Symbol   string
	Comment  string
	Side     Side  // пусто = обе стороны
	Magic    int64 // MagicSet=false => не фильтруем
	MagicSet bool
}

func (f PositionFilter) Match(p Position) bool {
	if f.Symbol != "" && p.Symbol != f.Symbol {
		return false
	}
	if f.Comment != "" && p.Comment != f.Comment {
		return false
	}
	if f.Side != "" && p.Side != f.Side {
		return false
	}
	if f.MagicSet && p.Magic != f.Magic {
		return false
	}
	return true
}
