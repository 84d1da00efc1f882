// Package engine derives completion status, missing reports and trade text
// from collection state. Every function is pure: it reads the values it is
// given and returns new values without touching storage.
package engine

import (
	"slices"

	"github.com/erazemk/zbirka/internal/model"
)

// StockOf returns the stock for a character, or a zero stock when the item
// has none recorded.
func StockOf(item *model.Item, character string) model.Stock {
	if item == nil || item.Stocks == nil {
		return model.Stock{}
	}
	return item.Stocks[character].Normalize()
}

// ResolveTargets returns the characters that must be collected for the item:
// its explicit targets in their stored order, or the whole roster when none
// are set.
func ResolveTargets(item *model.Item, roster []string) []string {
	if len(item.Targets) > 0 {
		return item.Targets
	}
	return roster
}

// DeriveStatus recomputes the item's status. An excluded item stays excluded,
// and an item without any targets keeps its current status.
func DeriveStatus(item *model.Item, roster []string) model.Status {
	if item.Status.Overridden() {
		return item.Status
	}
	targets := ResolveTargets(item, roster)
	if len(targets) == 0 {
		return item.Status
	}
	for _, c := range targets {
		if !StockOf(item, c).Collected() {
			return model.StatusIncomplete
		}
	}
	return model.StatusComplete
}

// SeriesComplete reports whether a series has items and every one of them is
// complete or excluded.
func SeriesComplete(s *model.Series) bool {
	if len(s.Items) == 0 {
		return false
	}
	for _, it := range s.Items {
		if it.Status == model.StatusIncomplete {
			return false
		}
	}
	return true
}

// isTarget reports whether c is in the resolved target set.
func isTarget(targets []string, c string) bool {
	return slices.Contains(targets, c)
}
