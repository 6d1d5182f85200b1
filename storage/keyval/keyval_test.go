package keyval_test

import (
	"io"
	"testing"

	"github.com/kivisql/kivi/storage/keyval"
)

func get(t *testing.T, kv keyval.KV, key string) (string, bool) {
	t.Helper()

	var val string
	err := kv.Get([]byte(key),
		func(buf []byte) error {
			val = string(buf)
			return nil
		})
	if err == io.EOF {
		return "", false
	} else if err != nil {
		t.Fatalf("Get(%s) failed with %s", key, err)
	}
	return val, true
}

func set(t *testing.T, kv keyval.KV, keyVals ...string) {
	t.Helper()

	upd, err := kv.Update()
	if err != nil {
		t.Fatalf("Update() failed with %s", err)
	}
	for i := 0; i < len(keyVals); i += 2 {
		err = upd.Set([]byte(keyVals[i]), []byte(keyVals[i+1]))
		if err != nil {
			upd.Rollback()
			t.Fatalf("Set(%s) failed with %s", keyVals[i], err)
		}
	}
	err = upd.Commit()
	if err != nil {
		t.Fatalf("Commit() failed with %s", err)
	}
}

func iterate(t *testing.T, kv keyval.KV, minKey, maxKey string) []string {
	t.Helper()

	it, err := kv.Iterate([]byte(minKey), []byte(maxKey))
	if err != nil {
		t.Fatalf("Iterate(%s, %s) failed with %s", minKey, maxKey, err)
	}
	defer it.Close()

	var keyVals []string
	for {
		err = it.Item(
			func(key, val []byte) error {
				keyVals = append(keyVals, string(key), string(val))
				return nil
			})
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Item() failed with %s", err)
		}
	}
	return keyVals
}

func equal(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// testKV checks the KV contract: sorted iteration over a range, atomic
// updates, and iterators that do not observe later updates.
func testKV(t *testing.T, kv keyval.KV) {
	t.Helper()

	if _, ok := get(t, kv, "missing"); ok {
		t.Error("Get(missing): got a value want io.EOF")
	}

	set(t, kv, "a@1", "one", "a@3", "three", "a@2", "two", "b@1", "other")

	val, ok := get(t, kv, "a@2")
	if !ok {
		t.Error("Get(a@2) failed")
	} else if val != "two" {
		t.Errorf("Get(a@2) got %s want two", val)
	}

	keyVals := iterate(t, kv, "a@", "a@\xFF")
	want := []string{"a@1", "one", "a@2", "two", "a@3", "three"}
	if !equal(keyVals, want) {
		t.Errorf("Iterate(a@) got %v want %v", keyVals, want)
	}

	// Rollback must discard updates.
	upd, err := kv.Update()
	if err != nil {
		t.Fatalf("Update() failed with %s", err)
	}
	err = upd.Set([]byte("a@4"), []byte("four"))
	if err != nil {
		t.Fatalf("Set(a@4) failed with %s", err)
	}
	err = upd.Delete([]byte("a@1"))
	if err != nil {
		t.Fatalf("Delete(a@1) failed with %s", err)
	}
	upd.Rollback()

	if _, ok := get(t, kv, "a@4"); ok {
		t.Error("Get(a@4): got a value after rollback")
	}
	if _, ok := get(t, kv, "a@1"); !ok {
		t.Error("Get(a@1) failed after rollback")
	}

	// An updater must see its own updates.
	upd, err = kv.Update()
	if err != nil {
		t.Fatalf("Update() failed with %s", err)
	}
	err = upd.Set([]byte("a@4"), []byte("four"))
	if err != nil {
		t.Fatalf("Set(a@4) failed with %s", err)
	}
	err = upd.Get([]byte("a@4"),
		func(buf []byte) error {
			if string(buf) != "four" {
				t.Errorf("Get(a@4) got %s want four", buf)
			}
			return nil
		})
	if err != nil {
		t.Errorf("Get(a@4) failed with %s", err)
	}
	err = upd.Delete([]byte("a@1"))
	if err != nil {
		t.Fatalf("Delete(a@1) failed with %s", err)
	}
	if err := upd.Get([]byte("a@1"), func([]byte) error { return nil }); err != io.EOF {
		t.Errorf("Get(a@1) got %v want io.EOF", err)
	}
	err = upd.Commit()
	if err != nil {
		t.Fatalf("Commit() failed with %s", err)
	}

	// An iterator must not observe updates made after it started.
	it, err := kv.Iterate([]byte("a@"), []byte("a@\xFF"))
	if err != nil {
		t.Fatalf("Iterate(a@) failed with %s", err)
	}
	set(t, kv, "a@0", "zero")

	keyVals = nil
	for {
		err = it.Item(
			func(key, val []byte) error {
				keyVals = append(keyVals, string(key), string(val))
				return nil
			})
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Item() failed with %s", err)
		}
	}
	it.Close()

	want = []string{"a@2", "two", "a@3", "three", "a@4", "four"}
	if !equal(keyVals, want) {
		t.Errorf("Iterate(a@) got %v want %v", keyVals, want)
	}
}
