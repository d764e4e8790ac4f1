package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/yuemei/linebot/internal/booking"
)

var bookingsBucket = []byte("bookings")

// BoltStore persists bookings in a bbolt file, one JSON value per record
// keyed by a big-endian sequence id so numeric ids stay compact and
// store-assigned.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bookingsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bookings bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Insert(b booking.Booking) (booking.Booking, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bookingsBucket)
		id, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		b.ID = id
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now()
		}
		data, err := json.Marshal(b)
		if err != nil {
			return err
		}
		return bucket.Put(idKey(id), data)
	})
	if err != nil {
		return booking.Booking{}, fmt.Errorf("inserting booking: %w", err)
	}
	return b, nil
}

func (s *BoltStore) GetByID(id uint64) (*booking.Booking, error) {
	var b booking.Booking
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bookingsBucket).Get(idKey(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &b)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &b, nil
}

// ListByUser returns the user's bookings, most recent first, capped at limit.
// A full-bucket scan is fine at clinic scale; an indexed store can replace
// this behind the Repository interface.
func (s *BoltStore) ListByUser(userID string, limit int) ([]booking.Booking, error) {
	var out []booking.Booking
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bookingsBucket).ForEach(func(_, v []byte) error {
			var b booking.Booking
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			if b.UserID == userID {
				out = append(out, b)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *BoltStore) UpdateStatus(id uint64, status booking.Status) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bookingsBucket)
		v := bucket.Get(idKey(id))
		if v == nil {
			return fmt.Errorf("booking %d not found", id)
		}
		var b booking.Booking
		if err := json.Unmarshal(v, &b); err != nil {
			return err
		}
		b.Status = status
		data, err := json.Marshal(b)
		if err != nil {
			return err
		}
		return bucket.Put(idKey(id), data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func idKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}
