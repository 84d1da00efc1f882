package engine

import (
	"cmp"
	"slices"
	"strings"

	"github.com/erazemk/zbirka/internal/model"
)

// Filter narrows the series list. Empty fields do not filter.
type Filter struct {
	Term string // matched against title and tags, case-insensitive
	From string // inclusive, YYYY-MM-DD
	To   string // inclusive, YYYY-MM-DD
}

// SeriesView is one row of the series list.
type SeriesView struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Date      string   `json:"date,omitempty"`
	Tags      []string `json:"tags"`
	Favorite  bool     `json:"favorite"`
	Complete  bool     `json:"complete"`
	ItemCount int      `json:"item_count"`
}

// ListSeries returns the visible series ordered by the archive's sort mode,
// favorites first.
func ListSeries(a *model.Archive, f Filter) []SeriesView {
	series := a.Ordered()
	if a.Sort == model.SortDate {
		slices.SortStableFunc(series, func(x, y *model.Series) int {
			return cmp.Compare(y.Date, x.Date)
		})
	}
	slices.SortStableFunc(series, func(x, y *model.Series) int {
		return cmp.Compare(favRank(x), favRank(y))
	})

	term := strings.ToLower(f.Term)
	views := []SeriesView{}
	for _, s := range series {
		if !matchesTerm(s, term) || !inRange(s.Date, f.From, f.To) {
			continue
		}
		views = append(views, SeriesView{
			ID:        s.ID,
			Title:     s.Title,
			Date:      s.Date,
			Tags:      s.TagList(),
			Favorite:  s.Favorite,
			Complete:  SeriesComplete(s),
			ItemCount: len(s.Items),
		})
	}
	return views
}

func favRank(s *model.Series) int {
	if s.Favorite {
		return 0
	}
	return 1
}

func matchesTerm(s *model.Series, term string) bool {
	if strings.Contains(strings.ToLower(s.Title), term) {
		return true
	}
	return s.Tags != "" && strings.Contains(strings.ToLower(s.Tags), term)
}

func inRange(date, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	if date == "" {
		return false
	}
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}
