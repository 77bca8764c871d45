package game

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Metadata is the descriptive part of a game record. Every field is optional
// except Date, which New fills from the clock.
type Metadata struct {
	Event       string
	Site        string
	Round       string
	White       string
	Black       string
	TimeControl string // opaque, passed through to the export
	Date        time.Time
}

// Maximum lengths in runes.
const (
	MaxEventLen       = 64
	MaxSiteLen        = 64
	MaxRoundLen       = 32
	MaxPlayerLen      = 64
	MaxTimeControlLen = 32
)

// Validate checks the field lengths.
func (m Metadata) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"event", m.Event, MaxEventLen},
		{"site", m.Site, MaxSiteLen},
		{"round", m.Round, MaxRoundLen},
		{"white", m.White, MaxPlayerLen},
		{"black", m.Black, MaxPlayerLen},
		{"time control", m.TimeControl, MaxTimeControlLen},
	}
	for _, f := range fields {
		if n := utf8.RuneCountInString(f.value); n > f.max {
			return fmt.Errorf("%w: %s has %d characters, limit %d", ErrMetadataTooLong, f.name, n, f.max)
		}
	}
	return nil
}

// Set assigns a field by its PGN tag or console name.
func (m *Metadata) Set(key, value string) error {
	switch key {
	case "event", "Event":
		m.Event = value
	case "site", "Site":
		m.Site = value
	case "round", "Round":
		m.Round = value
	case "white", "White":
		m.White = value
	case "black", "Black":
		m.Black = value
	case "timecontrol", "TimeControl":
		m.TimeControl = value
	case "date", "Date":
		d, err := time.Parse("2006.01.02", value)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", value, err)
		}
		m.Date = d
	default:
		return fmt.Errorf("unknown metadata field %q", key)
	}
	return nil
}
