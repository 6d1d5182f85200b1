package keyval_test

import (
	"path/filepath"
	"testing"

	"github.com/kivisql/kivi/storage/keyval"
	"github.com/kivisql/kivi/store/test"
	"github.com/kivisql/kivi/testutil"
)

func TestBadgerKV(t *testing.T) {
	dataDir := filepath.Join("testdata", "badger_kv")
	if err := testutil.MakeCleanDir(dataDir); err != nil {
		t.Fatal(err)
	}

	kv, err := keyval.MakeBadgerKV(dataDir,
		testutil.SetupLogger(filepath.Join("testdata", "badger_kv.log")))
	if err != nil {
		t.Fatal(err)
	}

	testKV(t, kv)
}

func TestBadgerStore(t *testing.T) {
	dataDir := filepath.Join("testdata", "badger_store")
	if err := testutil.MakeCleanDir(dataDir); err != nil {
		t.Fatal(err)
	}

	st, err := keyval.NewBadgerStore(dataDir,
		testutil.SetupLogger(filepath.Join("testdata", "badger_store.log")))
	if err != nil {
		t.Fatal(err)
	}

	test.RunStoreTests(t, st)
}
