package keyval

import (
	log "github.com/sirupsen/logrus"

	"github.com/kivisql/kivi/store"
)

func NewBTreeStore() (store.Store[uint64], error) {
	kv, err := MakeBTreeKV()
	if err != nil {
		return nil, err
	}
	return NewStore(kv), nil
}

func NewBBoltStore(dataDir string) (store.Store[uint64], error) {
	kv, err := MakeBBoltKV(dataDir)
	if err != nil {
		return nil, err
	}
	return NewStore(kv), nil
}

func NewBadgerStore(dataDir string, logger *log.Logger) (store.Store[uint64], error) {
	kv, err := MakeBadgerKV(dataDir, logger)
	if err != nil {
		return nil, err
	}
	return NewStore(kv), nil
}

func NewPebbleStore(dataDir string, logger *log.Logger) (store.Store[uint64], error) {
	kv, err := MakePebbleKV(dataDir, logger)
	if err != nil {
		return nil, err
	}
	return NewStore(kv), nil
}
