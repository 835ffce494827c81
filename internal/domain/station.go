package domain

import "strings"

// StationID is a five-character zero-padded DWD station code, e.g. "00091".
type StationID string

// NormalizeStationID trims the raw id and left-pads numeric ids to five digits.
// Non-numeric ids are returned trimmed but otherwise unchanged.
func NormalizeStationID(raw string) StationID {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) >= 5 || !isDigits(id) {
		return StationID(id)
	}
	return StationID(strings.Repeat("0", 5-len(id)) + id)
}

func (id StationID) String() string { return string(id) }

// Station is a configured monitoring station. Name may be empty.
type Station struct {
	ID   StationID
	Name string
}

// Roster is the ordered list of stations a run ingests. It doubles as the
// station metadata lookup used when building points.
type Roster []Station

// IDs returns the station ids in roster order.
func (r Roster) IDs() []StationID {
	ids := make([]StationID, len(r))
	for i, s := range r {
		ids[i] = s.ID
	}
	return ids
}

// Contains reports whether id is part of the roster.
func (r Roster) Contains(id StationID) bool {
	for _, s := range r {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Name returns the configured display name for id, or "" if unknown or unnamed.
func (r Roster) Name(id StationID) string {
	for _, s := range r {
		if s.ID == id {
			return s.Name
		}
	}
	return ""
}

// Names maps each station id to its display name.
func (r Roster) Names() map[StationID]string {
	m := make(map[StationID]string, len(r))
	for _, s := range r {
		m[s.ID] = s.Name
	}
	return m
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
