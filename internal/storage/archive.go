package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/pgn"
)

const gamePrefix = "game/"

// ErrGameNotFound is returned when no archived game has the given ID.
var ErrGameNotFound = errors.New("game not found")

// ArchivedGame is a stored game: its PGN plus the fields needed to list it
// without replaying.
type ArchivedGame struct {
	ID       uuid.UUID `json:"id"`
	PGN      string    `json:"pgn"`
	Result   string    `json:"result"`
	Reason   string    `json:"reason"`
	White    string    `json:"white"`
	Black    string    `json:"black"`
	Event    string    `json:"event"`
	Date     time.Time `json:"date"`
	Plies    int       `json:"plies"`
	FinalFEN string    `json:"final_fen"`
	SavedAt  time.Time `json:"saved_at"`
}

func gameKey(id uuid.UUID) []byte {
	return []byte(gamePrefix + id.String())
}

// SaveGame archives rec under a fresh ID.
func (s *Storage) SaveGame(rec game.Record, mode board.Notation) (uuid.UUID, error) {
	ag := ArchivedGame{
		ID:       uuid.New(),
		PGN:      pgn.Encode(rec, mode),
		Result:   rec.Status.Result(),
		Reason:   rec.Status.String(),
		White:    rec.Meta.White,
		Black:    rec.Meta.Black,
		Event:    rec.Meta.Event,
		Date:     rec.Meta.Date,
		Plies:    len(rec.Plies),
		FinalFEN: rec.Final().FEN(),
		SavedAt:  s.now(),
	}
	data, err := json.Marshal(ag)
	if err != nil {
		return uuid.Nil, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(ag.ID), data)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("save game: %w", err)
	}
	return ag.ID, nil
}

// LoadGame returns the archived game with the given ID.
func (s *Storage) LoadGame(id uuid.UUID) (*ArchivedGame, error) {
	var ag ArchivedGame
	found, err := s.getJSON(string(gameKey(id)), &ag)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return &ag, nil
}

// ListGames returns every archived game, most recently saved first.
func (s *Storage) ListGames() ([]ArchivedGame, error) {
	var games []ArchivedGame
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var ag ArchivedGame
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ag)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			games = append(games, ag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(games, func(a, b ArchivedGame) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
	return games, nil
}

// DeleteGame removes an archived game.
func (s *Storage) DeleteGame(id uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(gameKey(id)); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		} else if err != nil {
			return err
		}
		return txn.Delete(gameKey(id))
	})
}
