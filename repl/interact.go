package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/kivisql/kivi/parser"
	"github.com/kivisql/kivi/store"
)

const (
	kiviHistory = ".kivi_history"
)

type lineReader struct {
	line *liner.State
	r    *strings.Reader
}

func (lr *lineReader) ReadRune() (r rune, size int, err error) {
	for {
		if lr.r == nil {
			s, err := lr.line.Prompt("kivi: ")
			if err != nil {
				return 0, 0, err
			}
			lr.line.AppendHistory(s)
			lr.r = strings.NewReader(s)
		}

		r, sz, err := lr.r.ReadRune()
		if err == io.EOF {
			lr.r = nil
		} else if err != nil {
			return 0, 0, err
		} else {
			return r, sz, nil
		}
	}
}

// Interact reads statements from an interactive console session with line
// editing and history.
func Interact[K any](st store.Store[K]) {
	line := liner.NewLiner()
	defer line.Close()

	if f, err := os.Open(kiviHistory); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	SQL(st, parser.NewParser(&lineReader{line: line}, "console"), os.Stdout)

	if f, err := os.Create(kiviHistory); err != nil {
		fmt.Fprintf(os.Stderr, "kivi: error writing history file, %s: %s", kiviHistory, err)
	} else {
		line.WriteHistory(f)
		f.Close()
	}
}
