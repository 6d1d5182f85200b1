package server_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/leftmike/sqltest/sqltestdb"
	_ "github.com/lib/pq"

	"github.com/kivisql/kivi/server"
	"github.com/kivisql/kivi/store/basic"
	"github.com/kivisql/kivi/testutil"
)

var (
	update      = flag.Bool("update", false, "update expected test output")
	sqltestData = flag.String("sqltestdata", "", "directory of sqltest testdata")
)

func TestMain(m *testing.M) {
	flag.Parse()
	testutil.SetupLogger("server_test.log")
	os.Exit(m.Run())
}

type report struct {
	test string
	err  error
}

type reporter []report

func (r *reporter) Report(test string, err error) error {
	if err == nil {
		fmt.Printf("%s: passed\n", test)
	} else if err == sqltestdb.Skipped {
		fmt.Printf("%s: skipped\n", test)
	} else {
		fmt.Printf("%s: failed: %s\n", test, err)
	}

	*r = append(*r, report{test, err})
	return nil
}

type kiviDialect struct {
	sqltestdb.DefaultDialect
}

func (kiviDialect) DriverName() string {
	return "kivi"
}

func TestSQLTest(t *testing.T) {
	if *sqltestData == "" {
		t.Skip("no -sqltestdata directory specified")
	}
	if _, err := os.Stat(*sqltestData); err != nil {
		t.Skipf("-sqltestdata: %s", err)
	}

	svr := &server.Server[int]{
		Store: basic.NewStore(),
	}
	go func() {
		svr.ListenAndServeProto3(server.Proto3Config{Address: "localhost:35988"})
	}()

	var run sqltestdb.DBRunner
	var retries int
	for {
		err := run.Connect("postgres", "host=localhost port=35988 dbname=kivi sslmode=disable")
		if err == nil {
			break
		}
		retries += 1
		if retries > 3 {
			t.Fatal(err)
		}
		time.Sleep(time.Second * time.Duration(retries))
	}

	var rptr reporter
	err := sqltestdb.RunTests(*sqltestData, &run, &rptr, kiviDialect{}, *update, false)
	if err != nil {
		t.Errorf("RunTests(%q) failed with %s", *sqltestData, err)
		return
	}
	for _, report := range rptr {
		if report.err != nil && report.err != sqltestdb.Skipped {
			t.Errorf("%s: %s", report.test, report.err)
		}
	}

	err = run.Close()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	svr.Shutdown(ctx)
}
