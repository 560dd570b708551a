package services

import (
	"context"
	"database/sql"
)

// Kind decides how a column is parsed from requests and scanned from rows.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindDate     // DATE, "2006-01-02"
	KindTime     // TIME, "15:04:05"
	KindDateTime // DATETIME / TIMESTAMP
)

type Column struct {
	Name  string
	Label string
	// Expr is the select expression. Empty means alias.Name.
	Expr     string
	Kind     Kind
	Writable bool
	Required bool
	Enum     []string
	// Default is stored on create when the field is absent or empty.
	Default interface{}
}

type MatchKind int

const (
	MatchExact MatchKind = iota
	MatchContains
	MatchFrom // >=
	MatchTo   // <=
)

type Filter struct {
	Param string
	Expr  string
	Kind  Kind
	Match MatchKind
}

// Reference is a column pointing at a parent row that must exist.
type Reference struct {
	Column string
	Table  string
	Label  string
}

// Guard blocks deleting a row while rows in Table still point at it.
type Guard struct {
	Table   string
	Column  string
	Message string // formatted with the dependent row count
}

// Detach clears Table.Column on rows pointing at a row being deleted. It
// runs in the delete transaction after the guards pass.
type Detach struct {
	Table  string
	Column string
}

// WriteHook runs inside the write transaction after validation. values holds
// the effective column values; id is zero on create.
type WriteHook func(ctx context.Context, tx *sql.Tx, id int64, values map[string]interface{}) error

// OptionSource feeds one filter drop-down: either a fixed list or a query
// returning (value, label) rows.
type OptionSource struct {
	Key    string
	Values []string
	Query  string
}

// Schema describes one resource table. A TableService turns it into the
// list/filter/get/create/edit/delete actions.
type Schema struct {
	Resource string
	Entity   string
	Table    string
	Alias    string
	Joins    string

	Columns []Column
	Filters []Filter

	// Sorts maps accepted sort_by values to expressions.
	Sorts        map[string]string
	DefaultSort  string
	DefaultOrder string

	References []Reference
	Guards     []Guard
	Detaches   []Detach
	Hooks      []WriteHook
	Options    []OptionSource

	// ListKey is the envelope key rows are returned under.
	ListKey string
	// Export lists the columns written by export_csv and export_xlsx.
	Export []string
}

func (s *Schema) expr(c Column) string {
	if c.Expr != "" {
		return c.Expr
	}
	return s.Alias + "." + c.Name
}

// Column looks a column up by name.
func (s *Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (s *Schema) writable() []Column {
	var out []Column
	for _, c := range s.Columns {
		if c.Writable {
			out = append(out, c)
		}
	}
	return out
}

// EnvelopeKey is the JSON key list results are returned under.
func (s *Schema) EnvelopeKey() string {
	if s.ListKey != "" {
		return s.ListKey
	}
	return "data"
}
