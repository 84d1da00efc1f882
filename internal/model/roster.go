package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// DefaultRosterName is the roster used by items that name no roster.
const DefaultRosterName = "デフォルト"

// DefaultCharacters is the built-in roster, also the fallback for items whose
// roster no longer exists.
var DefaultCharacters = []string{
	"北門", "是国", "金城", "阿修", "愛染", "増長", "音済",
	"王茶利", "野目", "釈村", "唯月", "遙日", "不動", "殿",
}

// DefaultTemplates are the item names added to a series created from templates.
var DefaultTemplates = []string{"缶バッジ", "アクスタ", "ブロマイド"}

// Roster is a named, ordered list of characters.
type Roster struct {
	Name       string   `json:"name"`
	Characters []string `json:"characters"`
}

// Rosters is an ordered set of rosters. It is encoded as a JSON object whose
// key order is preserved.
type Rosters []Roster

// DefaultRosters returns a set holding only the built-in roster.
func DefaultRosters() Rosters {
	return Rosters{{Name: DefaultRosterName, Characters: slices.Clone(DefaultCharacters)}}
}

// Get returns the roster with the given name.
func (rs Rosters) Get(name string) ([]string, bool) {
	for _, r := range rs {
		if r.Name == name {
			return r.Characters, true
		}
	}
	return nil, false
}

// Lookup resolves the roster an item refers to. An empty name means the
// default roster; an unknown name falls back to the built-in characters.
func (rs Rosters) Lookup(name string) []string {
	if name == "" {
		name = DefaultRosterName
	}
	if chars, ok := rs.Get(name); ok {
		return chars
	}
	return DefaultCharacters
}

// Names returns roster names in order.
func (rs Rosters) Names() []string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name)
	}
	return names
}

// Characters returns the ordered union of characters across all rosters.
func (rs Rosters) Characters() []string {
	seen := make(map[string]bool)
	var all []string
	for _, r := range rs {
		for _, c := range r.Characters {
			if !seen[c] {
				seen[c] = true
				all = append(all, c)
			}
		}
	}
	return all
}

// Clone returns a deep copy.
func (rs Rosters) Clone() Rosters {
	if rs == nil {
		return nil
	}
	out := make(Rosters, len(rs))
	for i, r := range rs {
		out[i] = Roster{Name: r.Name, Characters: slices.Clone(r.Characters)}
	}
	return out
}

// MarshalJSON encodes the rosters as an object keyed by name.
func (rs Rosters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range rs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Name)
		if err != nil {
			return nil, err
		}
		chars := r.Characters
		if chars == nil {
			chars = []string{}
		}
		val, err := json.Marshal(chars)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by roster name, keeping key order.
// A repeated key replaces the earlier roster in place.
func (rs *Rosters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading rosters: %w", err)
	}
	if tok == nil {
		*rs = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("rosters must be an object")
	}

	out := Rosters{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading roster name: %w", err)
		}
		name, _ := tok.(string)
		var chars []string
		if err := dec.Decode(&chars); err != nil {
			return fmt.Errorf("reading roster %q: %w", name, err)
		}
		if i := slices.IndexFunc(out, func(r Roster) bool { return r.Name == name }); i >= 0 {
			out[i].Characters = chars
			continue
		}
		out = append(out, Roster{Name: name, Characters: chars})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading rosters: %w", err)
	}
	*rs = out
	return nil
}
