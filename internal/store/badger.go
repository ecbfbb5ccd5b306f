// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfsense/internal/metrics"
)

// Key layout (fields separated by NUL so customer ids may contain any
// printable character):
//
//	d\x00<table>\x00<key>                          -> JSON(Item)
//	i\x00<table>\x00<index>\x00<value>\x00<key>    -> empty
const sep = "\x00"

// BadgerConfig configures the embedded BadgerDB backend.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in RAM (tests, ephemeral deployments).
	InMemory bool
}

// BadgerStore is a Store backed by an embedded BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerStore opens a BadgerDB according to cfg.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

// NewBadgerStoreFromDB wraps an already opened database. Close does not
// close db.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Name implements Store.
func (b *BadgerStore) Name() string { return "badger" }

func dataKey(table, key string) []byte {
	return []byte("d" + sep + table + sep + key)
}

func dataPrefix(table string) []byte {
	return []byte("d" + sep + table + sep)
}

func indexPrefix(table, index, value string) []byte {
	return []byte("i" + sep + table + sep + index + sep + value + sep)
}

func indexKey(table, index, value, key string) []byte {
	return append(indexPrefix(table, index, value), key...)
}

// Get implements Store.
func (b *BadgerStore) Get(ctx context.Context, table, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer observe(b.Name(), "get", time.Now())

	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := readItem(txn, table, key)
		if err != nil {
			return err
		}
		out = item.Value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put implements Store.
//
//nolint:gocritic // Item is passed by value to match the Store interface
func (b *BadgerStore) Put(ctx context.Context, table string, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer observe(b.Name(), "put", time.Now())

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		// Drop index entries that no longer apply to the overwritten record.
		old, err := readItem(txn, table, item.Key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err == nil {
			for name, value := range old.Indexes {
				if item.Indexes[name] == value {
					continue
				}
				if err := txn.Delete(indexKey(table, name, value, item.Key)); err != nil {
					return fmt.Errorf("delete stale index: %w", err)
				}
			}
		}

		if err := txn.Set(dataKey(table, item.Key), data); err != nil {
			return fmt.Errorf("set item: %w", err)
		}
		for name, value := range item.Indexes {
			if err := txn.Set(indexKey(table, name, value, item.Key), nil); err != nil {
				return fmt.Errorf("set index %s: %w", name, err)
			}
		}
		return nil
	})
}

// Query implements Store.
func (b *BadgerStore) Query(ctx context.Context, table string, cond Condition) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer observe(b.Name(), "query", time.Now())

	var out []Item
	err := b.db.View(func(txn *badger.Txn) error {
		if cond.Index == "" {
			return scanTable(txn, table, func(item Item) {
				out = append(out, item)
			})
		}

		keys, err := scanIndex(txn, indexPrefix(table, cond.Index, cond.Value))
		if err != nil {
			return err
		}
		for _, key := range keys {
			item, err := readItem(txn, table, key)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if cond.Matches(&item) {
				out = append(out, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete implements Store.
func (b *BadgerStore) Delete(ctx context.Context, table, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer observe(b.Name(), "delete", time.Now())

	return b.db.Update(func(txn *badger.Txn) error {
		old, err := readItem(txn, table, key)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		for name, value := range old.Indexes {
			if err := txn.Delete(indexKey(table, name, value, key)); err != nil {
				return fmt.Errorf("delete index %s: %w", name, err)
			}
		}
		if err := txn.Delete(dataKey(table, key)); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return nil
	})
}

// Close implements Store.
func (b *BadgerStore) Close() error {
	if !b.ownsDB {
		return nil
	}
	return b.db.Close()
}

func readItem(txn *badger.Txn, table, key string) (Item, error) {
	var item Item
	entry, err := txn.Get(dataKey(table, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("get item: %w", err)
	}
	err = entry.Value(func(val []byte) error {
		return json.Unmarshal(val, &item)
	})
	if err != nil {
		return item, fmt.Errorf("decode item: %w", err)
	}
	return item, nil
}

func scanTable(txn *badger.Txn, table string, fn func(Item)) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := dataPrefix(table)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var item Item
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		})
		if err != nil {
			return fmt.Errorf("decode item: %w", err)
		}
		fn(item)
	}
	return nil
}

func scanIndex(txn *badger.Txn, prefix []byte) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, string(it.Item().Key()[len(prefix):]))
	}
	return keys, nil
}

func observe(backend, operation string, start time.Time) {
	metrics.RecordStoreOperation(backend, operation, time.Since(start))
}

var _ Store = (*BadgerStore)(nil)
