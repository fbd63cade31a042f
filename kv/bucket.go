// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Bucket namespaces keys of a shared store by prefixing them.
type Bucket string

func (b Bucket) key(k []byte) []byte {
	out := make([]byte, 0, len(b)+len(k))
	return append(append(out, b...), k...)
}

// NewGetter reads src through the bucket prefix.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(k []byte) ([]byte, error) { return src.Get(b.key(k)) },
		func(k []byte) (bool, error) { return src.Has(b.key(k)) },
		src.IsNotFound,
	}
}

// NewPutter writes to dst through the bucket prefix.
func (b Bucket) NewPutter(dst Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(k, v []byte) error { return dst.Put(b.key(k), v) },
		func(k []byte) error { return dst.Delete(b.key(k)) },
	}
}

// NewStore confines src to the bucket. Bulks taken from it are confined too.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		BulkFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Bulk {
			bulk := src.Bulk()
			return &struct {
				Putter
				LenFunc
				WriteFunc
			}{b.NewPutter(bulk), bulk.Len, bulk.Write}
		},
	}
}
