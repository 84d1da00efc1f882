package engine

import (
	"strconv"

	"github.com/erazemk/zbirka/internal/model"
)

// MissingChip is a character shown as outstanding on an item card.
type MissingChip struct {
	Character      string `json:"character"`
	PartiallyOwned bool   `json:"partially_owned"`
}

// InfiniteChip is a character flagged infinite, with the units held.
type InfiniteChip struct {
	Character string `json:"character"`
	Owned     int    `json:"owned"`
}

// ItemSummary is the derived card view of one item.
type ItemSummary struct {
	Name           string         `json:"name"`
	Status         model.Status   `json:"status"`
	StatusLabel    string         `json:"status_label"`
	Targets        []string       `json:"targets"`
	Owned          []string       `json:"owned"`
	Offered        []string       `json:"offered"`
	Missing        []MissingChip  `json:"missing"`
	Infinite       []InfiniteChip `json:"infinite"`
	TotalOwned     int            `json:"total_owned"`
	TotalTradeable int            `json:"total_tradeable"`
	Total          int            `json:"total"`
}

// Summarize builds the card view of an item against its roster.
func Summarize(item *model.Item, roster []string) ItemSummary {
	targets := ResolveTargets(item, roster)
	sum := ItemSummary{
		Name:        item.Name,
		Status:      item.Status,
		StatusLabel: item.Status.Label(),
		Targets:     targets,
		Owned:       []string{},
		Offered:     []string{},
		Missing:     []MissingChip{},
		Infinite:    []InfiniteChip{},
	}

	for _, c := range roster {
		st := StockOf(item, c)
		sum.TotalOwned += st.Owned
		sum.TotalTradeable += st.Tradeable

		if st.Owned > 0 {
			sum.Owned = append(sum.Owned, c)
		}
		if st.Tradeable > 0 {
			sum.Offered = append(sum.Offered, c+strconv.Itoa(st.Tradeable))
		}
		if st.Infinite {
			sum.Infinite = append(sum.Infinite, InfiniteChip{Character: c, Owned: st.Owned})
		}
		if isTarget(targets, c) && (st.Missing() || st.Infinite) {
			sum.Missing = append(sum.Missing, MissingChip{Character: c, PartiallyOwned: !st.Missing()})
		}
	}
	sum.Total = sum.TotalOwned + sum.TotalTradeable
	return sum
}
