package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
)

// Preferences holds the defaults offered when a new game is set up.
type Preferences struct {
	White      string    `json:"white"`
	Black      string    `json:"black"`
	Event      string    `json:"event"`
	Site       string    `json:"site"`
	Notation   string    `json:"notation"`
	LastPlayed time.Time `json:"last_played"`
}

// DefaultPreferences returns the preferences used before any are saved.
func DefaultPreferences() *Preferences {
	return &Preferences{
		White:    "White",
		Black:    "Black",
		Event:    "Casual game",
		Notation: board.Standard.String(),
	}
}

// NotationMode returns the stored notation, falling back to standard.
func (p *Preferences) NotationMode() board.Notation {
	mode, err := board.ParseNotation(p.Notation)
	if err != nil {
		return board.Standard
	}
	return mode
}

// Stats counts finished games by outcome.
type Stats struct {
	GamesPlayed int            `json:"games_played"`
	WhiteWins   int            `json:"white_wins"`
	BlackWins   int            `json:"black_wins"`
	Draws       int            `json:"draws"`
	ByReason    map[string]int `json:"by_reason"`
}

// NewStats returns empty statistics.
func NewStats() *Stats {
	return &Stats{ByReason: make(map[string]int)}
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens (or creates) the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}

	return &Storage{db: db, now: time.Now}, nil
}

// OpenDefault opens the database in the platform data directory.
func OpenDefault() (*Storage, error) {
	dirs, err := DefaultDirs()
	if err != nil {
		return nil, err
	}
	if err := dirs.Ensure(); err != nil {
		return nil, err
	}
	return Open(dirs.DB)
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true until MarkFirstLaunchComplete is called.
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = s.now()
	return s.putJSON(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	_, err := s.getJSON(keyPreferences, prefs)
	return prefs, err
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := NewStats()
	_, err := s.getJSON(keyStats, stats)
	if stats.ByReason == nil {
		stats.ByReason = make(map[string]int)
	}
	return stats, err
}

// RecordResult adds a finished game to the statistics. Unfinished games are
// ignored.
func (s *Storage) RecordResult(st game.Status) error {
	if !st.Over() {
		return nil
	}
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	switch st.Result() {
	case "1-0":
		stats.WhiteWins++
	case "0-1":
		stats.BlackWins++
	default:
		stats.Draws++
	}
	stats.ByReason[reasonKey(st)]++

	return s.putJSON(keyStats, stats)
}

func reasonKey(st game.Status) string {
	if st.State == game.Drawn {
		return st.Reason.String()
	}
	return st.State.String()
}

func (s *Storage) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON decodes the value at key into v and reports whether it existed.
func (s *Storage) getJSON(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}
