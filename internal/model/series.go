package model

import "strings"

// Series is a named collection of items.
type Series struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Tags     string `json:"tags"`
	Items    []Item `json:"items"`
	Favorite bool   `json:"fav"`
}

// Clone returns a deep copy.
func (s *Series) Clone() *Series {
	out := *s
	out.Items = make([]Item, len(s.Items))
	for i, it := range s.Items {
		out.Items[i] = it.Clone()
	}
	return &out
}

// TagList splits the free-text tags into individual tags.
func (s *Series) TagList() []string {
	fields := strings.FieldsFunc(s.Tags, func(r rune) bool {
		return r == '、' || r == ',' || r == ' '
	})
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
