package span

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MinTableSize is the smallest table the builder produces and the smallest
// restored table the agent will trust
const MinTableSize = 3

// Span is a point in the day at which the target brightness changes
type Span struct {
	At         ClockTime `json:"at"`
	Brightness int       `json:"brightness"`
}

// Table maps times of day to brightness levels. Entries are kept sorted by
// time of day and keys are unique. A Table is never modified after creation;
// a new day gets a new Table.
type Table struct {
	spans []Span
}

// NewTable builds a table from arbitrary entries. When two entries share a
// time of day the later one wins.
func NewTable(spans []Span) *Table {
	byTime := make(map[ClockTime]int, len(spans))
	for _, s := range spans {
		byTime[s.At.normalize()] = s.Brightness
	}
	return fromMap(byTime)
}

func fromMap(byTime map[ClockTime]int) *Table {
	sorted := make([]Span, 0, len(byTime))
	for at, level := range byTime {
		sorted = append(sorted, Span{At: at, Brightness: level})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Table{spans: sorted}
}

// Len returns the number of entries
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.spans)
}

// Spans returns a copy of the entries in time-of-day order
func (t *Table) Spans() []Span {
	if t == nil {
		return nil
	}
	out := make([]Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// Brightness returns the level stored at exactly at
func (t *Table) Brightness(at ClockTime) (int, bool) {
	if t == nil {
		return 0, false
	}
	i := sort.Search(len(t.spans), func(i int) bool { return t.spans[i].At >= at })
	if i < len(t.spans) && t.spans[i].At == at {
		return t.spans[i].Brightness, true
	}
	return 0, false
}

// First returns the earliest entry of the day
func (t *Table) First() (Span, bool) {
	if t.Len() == 0 {
		return Span{}, false
	}
	return t.spans[0], true
}

// Last returns the latest entry of the day
func (t *Table) Last() (Span, bool) {
	if t.Len() == 0 {
		return Span{}, false
	}
	return t.spans[len(t.spans)-1], true
}

// Lookup resolves now against the table and returns the entry that applies
func (t *Table) Lookup(now ClockTime) (Span, error) {
	at, err := Resolve(t, now)
	if err != nil {
		return Span{}, err
	}
	level, _ := t.Brightness(at)
	return Span{At: at, Brightness: level}, nil
}

// Equal reports whether both tables hold the same key/level content
func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}
	if t.Len() == 0 {
		return true
	}
	for i := range t.spans {
		if t.spans[i] != o.spans[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the table as {"HH:MM": level}
func (t *Table) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, t.Len())
	if t != nil {
		for _, s := range t.spans {
			out[s.At.String()] = s.Brightness
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the {"HH:MM": level} form
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode span table: %w", err)
	}

	byTime := make(map[ClockTime]int, len(raw))
	for key, level := range raw {
		at, err := ParseClockTime(key)
		if err != nil {
			return fmt.Errorf("failed to decode span table: %w", err)
		}
		byTime[at] = level
	}

	*t = *fromMap(byTime)
	return nil
}
