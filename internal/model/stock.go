package model

// Stock is the per-character count of one item.
type Stock struct {
	Owned     int  `json:"own"`
	Tradeable int  `json:"trade"`
	Infinite  bool `json:"infinite"`
}

// Stock fields that can be changed by quantity commands.
const (
	FieldOwned     = "own"
	FieldTradeable = "trade"
)

// Normalize clamps negative counts to zero.
func (s Stock) Normalize() Stock {
	if s.Owned < 0 {
		s.Owned = 0
	}
	if s.Tradeable < 0 {
		s.Tradeable = 0
	}
	return s
}

// Missing reports whether no unit is held in either pool.
func (s Stock) Missing() bool {
	return s.Owned == 0 && s.Tradeable == 0
}

// Collected reports whether the character counts as held for completion.
// Infinite supply never counts.
func (s Stock) Collected() bool {
	return !s.Infinite && s.Owned+s.Tradeable >= 1
}

// Get returns the count for a quantity field.
func (s Stock) Get(field string) (int, bool) {
	switch field {
	case FieldOwned:
		return s.Owned, true
	case FieldTradeable:
		return s.Tradeable, true
	}
	return 0, false
}

// With returns a copy with the given quantity field set to n (floored at 0).
func (s Stock) With(field string, n int) (Stock, bool) {
	if n < 0 {
		n = 0
	}
	switch field {
	case FieldOwned:
		s.Owned = n
	case FieldTradeable:
		s.Tradeable = n
	default:
		return s, false
	}
	return s, true
}
