package model

// DayEntry is the record kept in the entry store for one calendar day.
// A fixed day carries its total directly; a flexible day carries the punch
// list the total is derived from.
type DayEntry struct {
	DayTotal string   `json:"day-total,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// AddPunch inserts v into Values before the first value that is not less
// than it. HH:MM strings of equal width order like the times they encode.
func (e *DayEntry) AddPunch(v string) {
	i := 0
	for _, x := range e.Values {
		if v > x {
			i++
		}
	}
	values := make([]string, 0, len(e.Values)+1)
	values = append(values, e.Values[:i]...)
	values = append(values, v)
	e.Values = append(values, e.Values[i:]...)
}

// WaivedDay credits a fixed duration to one calendar day (holiday, leave).
// It takes precedence over any DayEntry for the same day.
type WaivedDay struct {
	Reason string `json:"reason"`
	Hours  string `json:"hours"`
}

// Record types of the import/export file.
const (
	RecordFlexible = "flexible"
	RecordWaived   = "waived"
	// RecordRegular is the legacy fixed-calendar record, accepted on import only.
	RecordRegular = "regular"
)

// Record is one element of the import/export JSON array. Dates are
// YYYY-MM-DD with one-based months for every record type. Values is always
// written so an empty punch list survives a round trip.
type Record struct {
	Type   string   `json:"type" validate:"oneof=flexible waived regular"`
	Date   string   `json:"date" validate:"isodate"`
	Values []string `json:"values"`
	Data   string   `json:"data,omitempty"`
	Hours  string   `json:"hours,omitempty"`
}
