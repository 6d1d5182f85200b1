package keyval

import (
	"context"
	"fmt"
	"io"

	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/storage/encode"
	"github.com/kivisql/kivi/store"
)

var (
	tableIDKey = []byte{'t', 'a', 'b', 'l', 'e', 'i', 'd'}
)

// KV is a sorted key value store. Get and Updater.Get call fn with the value
// or return io.EOF if the key is not present. Iterate must not observe
// updates made after it started.
type KV interface {
	Iterate(minKey, maxKey []byte) (Iterator, error)
	Get(key []byte, fn func(val []byte) error) error
	Update() (Updater, error)
}

// Updater is a set of updates applied atomically; only one updater may be
// active at a time.
type Updater interface {
	Get(key []byte, fn func(val []byte) error) error
	Set(key, val []byte) error
	Delete(key []byte) error
	Commit() error
	Rollback()
}

type Iterator interface {
	Item(fn func(key, val []byte) error) error
	Close()
}

type kvStore struct {
	kv KV
}

// NewStore returns a row store layered on a sorted key value store. Row keys
// are the table id in the high 32 bits and a per table row number in the low
// 32 bits.
func NewStore(kv KV) store.Store[uint64] {
	return &kvStore{kv: kv}
}

func (st *kvStore) getSchema(get func(key []byte, fn func(val []byte) error) error,
	tn sql.Identifier) (uint32, *sql.Schema, error) {

	var tid uint32
	var sc *sql.Schema
	err := get(encode.MakeSchemaKey(tn),
		func(val []byte) error {
			var ok bool
			tid, sc, ok = encode.DecodeSchemaValue(val)
			if !ok {
				return fmt.Errorf("keyval: table %s: unable to decode schema: %v", tn, val)
			}
			return nil
		})
	if err == io.EOF {
		return 0, nil, fmt.Errorf("keyval: table %s not found", tn)
	} else if err != nil {
		return 0, nil, err
	}
	return tid, sc, nil
}

func getUint64(get func(key []byte, fn func(val []byte) error) error, key []byte) (uint64, error) {
	var u64 uint64
	err := get(key,
		func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("keyval: key %v: len(val) != 8: %d", key, len(val))
			}
			u64 = encode.DecodeUint64(val)
			return nil
		})
	if err == io.EOF {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return u64, nil
}

func (st *kvStore) deleteTable(upd Updater, tid uint32) error {
	minKey, maxKey := encode.MakeRowKeyRange(tid)
	it, err := st.kv.Iterate(minKey, maxKey)
	if err != nil {
		return err
	}
	defer it.Close()

	var keys [][]byte
	for {
		err = it.Item(
			func(key, val []byte) error {
				keys = append(keys, append(make([]byte, 0, len(key)), key...))
				return nil
			})
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
	}

	for _, key := range keys {
		err = upd.Delete(key)
		if err != nil {
			return err
		}
	}
	return upd.Delete(encode.MakeSequenceKey(tid))
}

func (st *kvStore) SetSchema(ctx context.Context, sc *sql.Schema) error {
	upd, err := st.kv.Update()
	if err != nil {
		return err
	}

	var tid uint32
	err = upd.Get(encode.MakeSchemaKey(sc.Table),
		func(val []byte) error {
			var ok bool
			tid, _, ok = encode.DecodeSchemaValue(val)
			if !ok {
				return fmt.Errorf("keyval: table %s: unable to decode schema: %v", sc.Table,
					val)
			}
			return nil
		})
	if err == io.EOF {
		// A new table; allocate a table id for it.
		u64, err := getUint64(upd.Get, tableIDKey)
		if err != nil {
			upd.Rollback()
			return err
		}
		tid = uint32(u64) + 1
		err = upd.Set(tableIDKey, encode.EncodeUint64(nil, uint64(tid)))
		if err != nil {
			upd.Rollback()
			return err
		}
	} else if err != nil {
		upd.Rollback()
		return err
	} else {
		// Replacing the table; its rows go away, but the row numbers keep
		// counting up so that old keys are never reused.
		err = st.deleteTable(upd, tid)
		if err != nil {
			upd.Rollback()
			return err
		}
	}

	err = upd.Set(encode.MakeSchemaKey(sc.Table), encode.EncodeSchemaValue(tid, sc))
	if err != nil {
		upd.Rollback()
		return err
	}
	return upd.Commit()
}

func (st *kvStore) GetSchema(ctx context.Context, tn sql.Identifier) (*sql.Schema, error) {
	_, sc, err := st.getSchema(st.kv.Get, tn)
	return sc, err
}

func (st *kvStore) DelSchema(ctx context.Context, tn sql.Identifier) error {
	upd, err := st.kv.Update()
	if err != nil {
		return err
	}

	tid, _, err := st.getSchema(upd.Get, tn)
	if err != nil {
		upd.Rollback()
		return err
	}

	err = st.deleteTable(upd, tid)
	if err != nil {
		upd.Rollback()
		return err
	}
	err = upd.Delete(encode.MakeSchemaKey(tn))
	if err != nil {
		upd.Rollback()
		return err
	}
	return upd.Commit()
}

func (st *kvStore) GenID(ctx context.Context, tn sql.Identifier) (uint64, error) {
	upd, err := st.kv.Update()
	if err != nil {
		return 0, err
	}

	tid, _, err := st.getSchema(upd.Get, tn)
	if err != nil {
		upd.Rollback()
		return 0, err
	}

	seqKey := encode.MakeSequenceKey(tid)
	num, err := getUint64(upd.Get, seqKey)
	if err != nil {
		upd.Rollback()
		return 0, err
	}
	num += 1
	if num > 0xFFFFFFFF {
		upd.Rollback()
		return 0, fmt.Errorf("keyval: table %s: out of row numbers", tn)
	}

	err = upd.Set(seqKey, encode.EncodeUint64(nil, num))
	if err != nil {
		upd.Rollback()
		return 0, err
	}
	err = upd.Commit()
	if err != nil {
		return 0, err
	}
	return uint64(tid)<<32 | num, nil
}

func (st *kvStore) SetData(ctx context.Context, key uint64, row sql.Row) (sql.Row, error) {
	upd, err := st.kv.Update()
	if err != nil {
		return nil, err
	}

	err = upd.Set(encode.MakeRowKey(key), encode.EncodeRowValue(row))
	if err != nil {
		upd.Rollback()
		return nil, err
	}
	err = upd.Commit()
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (st *kvStore) DelData(ctx context.Context, key uint64) error {
	upd, err := st.kv.Update()
	if err != nil {
		return err
	}

	err = upd.Delete(encode.MakeRowKey(key))
	if err != nil {
		upd.Rollback()
		return err
	}
	return upd.Commit()
}

type rowIter struct {
	it Iterator
}

func (st *kvStore) ScanData(ctx context.Context, tn sql.Identifier) (store.RowIter[uint64],
	error) {

	tid, _, err := st.getSchema(st.kv.Get, tn)
	if err != nil {
		return nil, err
	}

	minKey, maxKey := encode.MakeRowKeyRange(tid)
	it, err := st.kv.Iterate(minKey, maxKey)
	if err != nil {
		return nil, err
	}
	return &rowIter{it: it}, nil
}

func (ri *rowIter) Next(ctx context.Context) (uint64, sql.Row, error) {
	var key uint64
	var row sql.Row
	err := ri.it.Item(
		func(kbuf, val []byte) error {
			var ok bool
			key, ok = encode.ParseRowKey(kbuf)
			if !ok {
				return fmt.Errorf("keyval: unable to parse row key: %v", kbuf)
			}
			row = encode.DecodeRowValue(val)
			if row == nil {
				return fmt.Errorf("keyval: key %v: unable to decode row: %v", kbuf, val)
			}
			return nil
		})
	if err != nil {
		return 0, nil, err
	}
	return key, row, nil
}

func (ri *rowIter) Close() error {
	ri.it.Close()
	return nil
}
