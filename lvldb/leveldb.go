// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/vechain/mtstake/kv"
)

// minimum for both the cache size in MB and the open files capacity
const minCapacity = 16

var _ kv.Store = (*LevelDB)(nil)

// Options tunes a disk-backed store.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

func (o Options) leveldb() *opt.Options {
	cacheMB := max(o.CacheSize, minCapacity)
	return &opt.Options{
		OpenFilesCacheCapacity: max(o.OpenFilesCacheCapacity, minCapacity),
		BlockCacheCapacity:     cacheMB / 2 * opt.MiB,
		WriteBuffer:            cacheMB / 4 * opt.MiB, // two are kept alive
		Filter:                 filter.NewBloomFilter(10),
	}
}

// LevelDB holds the ledger's storage slots.
type LevelDB struct {
	db *leveldb.DB
}

// New opens the store at path, creating it when absent.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open storage %s", path)
	}
	return open(stg, opts)
}

// NewMem opens a store that lives only in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	db, err := leveldb.Open(stg, opts.leveldb())
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db}, nil
}

func (l *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get fails with an error satisfying IsNotFound when key is absent.
func (l *LevelDB) Get(key []byte) ([]byte, error) { return l.db.Get(key, nil) }
func (l *LevelDB) Has(key []byte) (bool, error)   { return l.db.Has(key, nil) }
func (l *LevelDB) Put(key, val []byte) error      { return l.db.Put(key, val, nil) }
func (l *LevelDB) Delete(key []byte) error        { return l.db.Delete(key, nil) }

// Close releases the store. Later calls fail.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Bulk collects writes into a batch that is flushed with fsync.
func (l *LevelDB) Bulk() kv.Bulk {
	batch := new(leveldb.Batch)
	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.LenFunc
		kv.WriteFunc
	}{
		func(key, val []byte) error {
			batch.Put(key, val)
			return nil
		},
		func(key []byte) error {
			batch.Delete(key)
			return nil
		},
		batch.Len,
		func() error {
			if err := l.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
				return err
			}
			batch.Reset()
			return nil
		},
	}
}
