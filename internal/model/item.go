package model

import (
	"maps"
	"slices"
)

// Item is a product type tracked inside a series.
type Item struct {
	Name    string           `json:"type"`
	Roster  string           `json:"charSetName,omitempty"`
	Targets []string         `json:"targets"`
	Stocks  map[string]Stock `json:"stocks"`
	Status  Status           `json:"status"`
}

// NewItem returns an empty incomplete item.
func NewItem(name, roster string, targets []string) Item {
	return Item{
		Name:    name,
		Roster:  roster,
		Targets: slices.Clone(targets),
		Stocks:  map[string]Stock{},
		Status:  StatusIncomplete,
	}
}

// Clone returns a deep copy.
func (it Item) Clone() Item {
	out := it
	out.Targets = slices.Clone(it.Targets)
	out.Stocks = maps.Clone(it.Stocks)
	if out.Stocks == nil {
		out.Stocks = map[string]Stock{}
	}
	return out
}

// SetStock stores the stock for a character.
func (it *Item) SetStock(character string, s Stock) {
	if it.Stocks == nil {
		it.Stocks = map[string]Stock{}
	}
	it.Stocks[character] = s
}
