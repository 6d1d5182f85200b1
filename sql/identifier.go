package sql

import (
	"strings"
)

type Identifier int

const MaxIdentifier = 128

const (
	BIGINT Identifier = iota + 1
	BLOB
	BOOL
	BOOLEAN
	BYTEA
	CHAR
	DOUBLE
	FLOAT
	INT
	INTEGER
	SMALLINT
	TEXT
	VARCHAR
)

const (
	AND Identifier = -(iota + 1)
	AS
	BEGIN
	BETWEEN
	COMMIT
	CREATE
	DEFAULT
	DELETE
	DROP
	EXISTS
	FALSE
	FROM
	IF
	IN
	INDEX
	INSERT
	INTO
	IS
	LIMIT
	NOT
	NULL
	OFFSET
	OR
	ROLLBACK
	SELECT
	SET
	TABLE
	TRUE
	UPDATE
	VALUES
	WHERE
)

var knownKeywords = map[string]struct {
	id       Identifier
	reserved bool
}{
	"AND":      {AND, true},
	"AS":       {AS, true},
	"BEGIN":    {BEGIN, true},
	"BETWEEN":  {BETWEEN, true},
	"BIGINT":   {BIGINT, false},
	"BLOB":     {BLOB, false},
	"BOOL":     {BOOL, false},
	"BOOLEAN":  {BOOLEAN, false},
	"BYTEA":    {BYTEA, false},
	"CHAR":     {CHAR, false},
	"COMMIT":   {COMMIT, true},
	"CREATE":   {CREATE, true},
	"DEFAULT":  {DEFAULT, true},
	"DELETE":   {DELETE, true},
	"DOUBLE":   {DOUBLE, false},
	"DROP":     {DROP, true},
	"EXISTS":   {EXISTS, true},
	"FALSE":    {FALSE, true},
	"FLOAT":    {FLOAT, false},
	"FROM":     {FROM, true},
	"IF":       {IF, true},
	"IN":       {IN, true},
	"INDEX":    {INDEX, true},
	"INSERT":   {INSERT, true},
	"INT":      {INT, false},
	"INTEGER":  {INTEGER, false},
	"INTO":     {INTO, true},
	"IS":       {IS, true},
	"LIMIT":    {LIMIT, true},
	"NOT":      {NOT, true},
	"NULL":     {NULL, true},
	"OFFSET":   {OFFSET, true},
	"OR":       {OR, true},
	"ROLLBACK": {ROLLBACK, true},
	"SELECT":   {SELECT, true},
	"SET":      {SET, true},
	"SMALLINT": {SMALLINT, false},
	"TABLE":    {TABLE, true},
	"TEXT":     {TEXT, false},
	"TRUE":     {TRUE, true},
	"UPDATE":   {UPDATE, true},
	"VALUES":   {VALUES, true},
	"VARCHAR":  {VARCHAR, false},
	"WHERE":    {WHERE, true},
}

var (
	lastIdentifier = Identifier(999)
	identifiers    = make(map[string]Identifier)
	keywords       = make(map[string]Identifier)
	names          = make(map[Identifier]string)
)

// ID interns an identifier without looking for keywords; use it for
// identifiers known not to collide with SQL keywords.
func ID(s string) Identifier {
	if len(s) > MaxIdentifier {
		s = s[:MaxIdentifier]
	}

	s = strings.ToLower(s)
	if id, found := identifiers[s]; found {
		return id
	}
	lastIdentifier += 1
	identifiers[s] = lastIdentifier
	names[lastIdentifier] = s
	return lastIdentifier
}

func UnquotedID(s string) Identifier {
	if len(s) > MaxIdentifier {
		s = s[:MaxIdentifier]
	}

	if id, found := keywords[strings.ToUpper(s)]; found {
		return id
	}
	return ID(s)
}

func QuotedID(s string) Identifier {
	if len(s) > MaxIdentifier {
		s = s[:MaxIdentifier]
	}

	if id, found := identifiers[s]; found {
		return id
	}
	lastIdentifier += 1
	identifiers[s] = lastIdentifier
	names[lastIdentifier] = s
	return lastIdentifier
}

func (id Identifier) String() string {
	return names[id]
}

func (id Identifier) IsReserved() bool {
	if id < 0 {
		return true
	}
	return false
}

func init() {
	for s, n := range knownKeywords {
		if n.reserved {
			keywords[s] = n.id
		} else {
			keywords[s] = n.id
			identifiers[strings.ToLower(s)] = n.id
		}
		names[n.id] = s
	}
}
