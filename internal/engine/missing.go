package engine

import (
	"slices"

	"github.com/erazemk/zbirka/internal/model"
)

// MissingEntry is one item where a character is still outstanding.
type MissingEntry struct {
	SeriesID    string `json:"series_id"`
	SeriesTitle string `json:"series"`
	ItemIndex   int    `json:"item_index"`
	ItemName    string `json:"item"`
	Infinite    bool   `json:"infinite"`

	// PartiallyOwned is set when units are held but the character is still
	// listed because it is flagged infinite. Presentation dims these entries;
	// they still count.
	PartiallyOwned bool `json:"partially_owned"`
}

// MissingGroup lists every outstanding occurrence of one character.
type MissingGroup struct {
	Character string         `json:"character"`
	Entries   []MissingEntry `json:"entries"`
}

// MissingReport groups outstanding characters in roster order. Characters
// with no outstanding items are not included.
type MissingReport []MissingGroup

// For returns the entries for a character, or nil.
func (r MissingReport) For(character string) []MissingEntry {
	for _, g := range r {
		if g.Character == character {
			return g.Entries
		}
	}
	return nil
}

// BuildMissingReport walks every series in stored order and every item in
// stored order, collecting the target characters that are missing or flagged
// infinite on incomplete items.
func BuildMissingReport(a *model.Archive) MissingReport {
	series := a.Ordered()
	report := MissingReport{}

	for _, char := range a.Rosters.Characters() {
		var entries []MissingEntry
		for _, s := range series {
			for idx := range s.Items {
				item := &s.Items[idx]
				if item.Status != model.StatusIncomplete {
					continue
				}
				roster := a.Rosters.Lookup(item.Roster)
				if !slices.Contains(roster, char) {
					continue
				}
				if !isTarget(ResolveTargets(item, roster), char) {
					continue
				}
				st := StockOf(item, char)
				missing := st.Missing()
				if !missing && !st.Infinite {
					continue
				}
				entries = append(entries, MissingEntry{
					SeriesID:       s.ID,
					SeriesTitle:    s.Title,
					ItemIndex:      idx,
					ItemName:       item.Name,
					Infinite:       st.Infinite,
					PartiallyOwned: !missing,
				})
			}
		}
		if len(entries) > 0 {
			report = append(report, MissingGroup{Character: char, Entries: entries})
		}
	}
	return report
}
