package basic_test

import (
	"testing"

	"github.com/kivisql/kivi/store/basic"
	"github.com/kivisql/kivi/store/test"
)

func TestBasicStore(t *testing.T) {
	test.RunStoreTests(t, basic.NewStore())
}
