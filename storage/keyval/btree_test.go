package keyval_test

import (
	"testing"

	"github.com/kivisql/kivi/storage/keyval"
	"github.com/kivisql/kivi/store/test"
)

func TestBTreeKV(t *testing.T) {
	kv, err := keyval.MakeBTreeKV()
	if err != nil {
		t.Fatal(err)
	}

	testKV(t, kv)
}

func TestBTreeStore(t *testing.T) {
	st, err := keyval.NewBTreeStore()
	if err != nil {
		t.Fatal(err)
	}

	test.RunStoreTests(t, st)
}
