package checkpointer

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// HistoryFilename is the default filename of a History database in
// a checkpoint directory
const HistoryFilename = "history.db"

var historyBucket = []byte("checkpoints")

// Entry records a single checkpoint file written by a Tracker
type Entry struct {
	Step  int
	Score float64
	Kind  Kind
	Path  string
	Time  time.Time
}

// History is an append-only ledger of the checkpoint files written
// during an experiment, stored in a bbolt database as gob encoded
// entries so that non-finite scores are kept as is. Entries survive
// process restarts, so a resumed experiment keeps appending to the
// same History.
type History struct {
	db *bolt.DB
}

// OpenHistory opens the History stored at filename, creating it if
// it does not exist.
func OpenHistory(filename string) (*History, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "openhistory: could not open %v",
			filename)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(historyBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "openhistory: could not create bucket")
	}

	return &History{db: db}, nil
}

// Append adds an entry to the end of the History
func (h *History) Append(e Entry) error {
	return h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(historyBucket)

		seq, err := b.NextSequence()
		if err != nil {
			return errors.Wrap(err, "append")
		}
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(e); err != nil {
			return errors.Wrap(err, "append: could not encode entry")
		}
		return b.Put(itob(seq), buf.Bytes())
	})
}

// Entries returns all entries in the History in the order they were
// appended.
func (h *History) Entries() ([]Entry, error) {
	var entries []Entry
	err := h.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(historyBucket).ForEach(func(_, v []byte) error {
			var e Entry
			if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&e); err != nil {
				return errors.Wrap(err, "entries: could not decode entry")
			}
			entries = append(entries, e)
			return nil
		})
	})
	return entries, err
}

// Close closes the History database
func (h *History) Close() error {
	return h.db.Close()
}

// itob returns the big endian encoding of v, which keeps keys sorted
// in insertion order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
