package keyval_test

import (
	"path/filepath"
	"testing"

	"github.com/kivisql/kivi/storage/keyval"
	"github.com/kivisql/kivi/store/test"
	"github.com/kivisql/kivi/testutil"
)

func TestBBoltKV(t *testing.T) {
	dataDir := filepath.Join("testdata", "bbolt_kv")
	if err := testutil.MakeCleanDir(dataDir); err != nil {
		t.Fatal(err)
	}

	kv, err := keyval.MakeBBoltKV(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	testKV(t, kv)
}

func TestBBoltStore(t *testing.T) {
	dataDir := filepath.Join("testdata", "bbolt_store")
	if err := testutil.MakeCleanDir(dataDir); err != nil {
		t.Fatal(err)
	}

	st, err := keyval.NewBBoltStore(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	test.RunStoreTests(t, st)
}
