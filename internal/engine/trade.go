package engine

import (
	"strconv"
	"strings"

	"github.com/erazemk/zbirka/internal/model"
)

// Fixed tokens of the trade offer text.
const (
	OfferedLabel    = "譲"
	WantedLabel     = "求"
	LabelSeparator  = "："
	ListDelimiter   = "、"
	NoneOffered     = "なし"
	NothingWanted   = "完遂"
	InfiniteMarker  = "(∞)"
	headerSeparator = " "
	lineSeparator   = "\n"
)

// OfferedList returns the tradeable characters in roster order, each followed
// by its count when more than one is available.
func OfferedList(item *model.Item, roster []string) []string {
	var offered []string
	for _, c := range roster {
		st := StockOf(item, c)
		if st.Tradeable <= 0 {
			continue
		}
		entry := c
		if st.Tradeable > 1 {
			entry += strconv.Itoa(st.Tradeable)
		}
		offered = append(offered, entry)
	}
	return offered
}

// WantedList returns the target characters in roster order that are missing
// or flagged infinite. The infinite marker is appended when showInfinite is set.
func WantedList(item *model.Item, roster []string, showInfinite bool) []string {
	targets := ResolveTargets(item, roster)
	var wanted []string
	for _, c := range roster {
		if !isTarget(targets, c) {
			continue
		}
		st := StockOf(item, c)
		if !st.Missing() && !st.Infinite {
			continue
		}
		entry := c
		if st.Infinite && showInfinite {
			entry += InfiniteMarker
		}
		wanted = append(wanted, entry)
	}
	return wanted
}

// ComposeTradeText renders the shareable trade offer for an item. The output
// is byte-stable for equal inputs.
func ComposeTradeText(item *model.Item, roster []string, cfg model.TradeConfig, seriesTitle string) string {
	offered := strings.Join(OfferedList(item, roster), ListDelimiter)
	if offered == "" {
		offered = NoneOffered
	}
	wanted := strings.Join(WantedList(item, roster, cfg.ShowInfinite), ListDelimiter)
	if wanted == "" {
		wanted = NothingWanted
	}

	lines := make([]string, 0, 5)
	if cfg.Prefix != "" {
		lines = append(lines, cfg.Prefix)
	}
	lines = append(lines,
		seriesTitle+headerSeparator+item.Name,
		OfferedLabel+LabelSeparator+offered,
		WantedLabel+LabelSeparator+wanted,
	)
	if cfg.Suffix != "" {
		lines = append(lines, cfg.Suffix)
	}
	return strings.Join(lines, lineSeparator)
}
