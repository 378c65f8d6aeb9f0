package persist

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/storage"
	bbolt "go.etcd.io/bbolt"
)

var (
	bucketPlayers = []byte("players")
	bucketRooms   = []byte("rooms")
)

// Store keeps players and room floor contents in a bbolt file. It satisfies
// game.PlayerSaver and game.RoomSaver.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates the database file at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketPlayers, bucketRooms} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{bolt: db}, nil
}

func (s *Store) Close() error {
	return s.bolt.Close()
}

func (s *Store) SavePlayer(rec *game.PlayerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding player %s: %w", rec.Id, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPlayers).Put([]byte(rec.Id), data)
	})
}

// SaveRooms writes every room state in one transaction.
func (s *Store) SaveRooms(states map[storage.Identifier]game.RoomState) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRooms)
		for id, st := range states {
			data, err := json.Marshal(st)
			if err != nil {
				return fmt.Errorf("encoding room %s: %w", id, err)
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Players returns every saved player record.
func (s *Store) Players() ([]*game.PlayerRecord, error) {
	var recs []*game.PlayerRecord
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPlayers).ForEach(func(k, v []byte) error {
			rec := &game.PlayerRecord{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("decoding player %s: %w", k, err)
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Rooms returns the saved floor contents keyed by room id.
func (s *Store) Rooms() (map[storage.Identifier]game.RoomState, error) {
	states := map[storage.Identifier]game.RoomState{}
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRooms).ForEach(func(k, v []byte) error {
			var st game.RoomState
			if err := json.Unmarshal(v, &st); err != nil {
				return fmt.Errorf("decoding room %s: %w", k, err)
			}
			states[storage.Identifier(k)] = st
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return states, nil
}

// Restore fills w with the saved players and room contents. The world's
// catalogs must already be loaded.
func (s *Store) Restore(w *game.World) error {
	recs, err := s.Players()
	if err != nil {
		return fmt.Errorf("loading players: %w", err)
	}
	for _, rec := range recs {
		if err := w.Players.Add(game.PlayerFromRecord(rec, w.Items.Get)); err != nil {
			return fmt.Errorf("restoring player %s: %w", rec.Id, err)
		}
	}

	states, err := s.Rooms()
	if err != nil {
		return fmt.Errorf("loading rooms: %w", err)
	}
	w.Rooms.Restore(states, w.Items.Get)
	return nil
}
