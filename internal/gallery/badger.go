package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// badgerKeyPrefix namespaces gallery records inside a shared database.
const badgerKeyPrefix = "gallery:"

// BadgerRepository stores gallery documents in an embedded BadgerDB.
type BadgerRepository struct {
	db *badger.DB
}

// Compile-time interface check.
var _ Repository = (*BadgerRepository)(nil)

// OpenBadger opens (or creates) a database at dir.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger logs are noisy at info level

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", dir, err)
	}
	return db, nil
}

// NewBadgerRepository wraps an open database. The caller owns db.
func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func badgerKey(id string) []byte {
	return []byte(badgerKeyPrefix + id)
}

func (r *BadgerRepository) Get(_ context.Context, id string) (*Gallery, error) {
	var g *Gallery
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get gallery %s: %w", id, err)
		}
		return item.Value(func(val []byte) error {
			decoded, err := Decode(id, val)
			if err != nil {
				return err
			}
			g = decoded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *BadgerRepository) List(_ context.Context) ([]*Gallery, error) {
	var out []*Gallery
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), badgerKeyPrefix)
			err := item.Value(func(val []byte) error {
				g, err := Decode(id, val)
				if err != nil {
					log.Warn().Err(err).Str("gallery", id).Msg("Skipping unparsable gallery record")
					return nil
				}
				out = append(out, g)
				return nil
			})
			if err != nil {
				return fmt.Errorf("read gallery %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BadgerRepository) Put(_ context.Context, g *Gallery) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(badgerKey(g.ID), data); err != nil {
			return fmt.Errorf("set gallery %s: %w", g.ID, err)
		}
		return nil
	})
}

func (r *BadgerRepository) Delete(_ context.Context, id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(badgerKey(id))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete gallery %s: %w", id, err)
		}
		return nil
	})
}
