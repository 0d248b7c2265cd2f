package kv

import (
	"context"
	"fmt"
	"time"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	entriesTable = "entries"
	idIndex      = "id"
)

type entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

var entriesSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		entriesTable: {
			Name: entriesTable,
			Indexes: map[string]*memdb.IndexSchema{
				idIndex: {
					Name:    idIndex,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Key"},
				},
			},
		},
	},
}

// MemDB is an in-process Backend on top of go-memdb. Readers see a consistent
// snapshot while a write transaction is open.
type MemDB struct {
	db *memdb.MemDB
}

func NewMemDB() (*MemDB, error) {
	db, err := memdb.NewMemDB(entriesSchema)
	if err != nil {
		return nil, fmt.Errorf("kv: memdb schema: %w", err)
	}
	return &MemDB{db: db}, nil
}

func (m *MemDB) Get(_ context.Context, key string) ([]byte, bool, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(entriesTable, idIndex, key)
	if err != nil || raw == nil {
		return nil, false, err
	}
	return clone(raw.(*entry).Value), true, nil
}

func (m *MemDB) Set(_ context.Context, key string, value []byte) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(entriesTable, &entry{
		Key:       key,
		Value:     clone(value),
		UpdatedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("kv: memdb insert %q: %w", key, err)
	}
	txn.Commit()
	return nil
}

// Keys lists every stored key in index order.
func (m *MemDB) Keys() ([]string, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(entriesTable, idIndex)
	if err != nil {
		return nil, err
	}
	var keys []string
	for raw := it.Next(); raw != nil; raw = it.Next() {
		keys = append(keys, raw.(*entry).Key)
	}
	return keys, nil
}
