package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Query is a parameterized statement and its bound arguments.
type Query struct {
	SQL  string
	Args []interface{}
}

// Debug renders the query with its arguments inlined. Display only; never execute it.
func (q Query) Debug() string {
	var b strings.Builder
	argIdx := 0
	for _, r := range q.SQL {
		if r == '?' && argIdx < len(q.Args) {
			b.WriteString(literal(q.Args[argIdx]))
			argIdx++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func literal(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return "'" + x.Format("2006-01-02 15:04:05") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(x), "'", "''") + "'"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SortSpec is the resolved ORDER BY of a select.
type SortSpec struct {
	By    string
	Order string
}

// ResolveSort applies the allow-list: unknown columns and directions fall back
// to the resource defaults.
func (s *Schema) ResolveSort(sortBy, sortOrder string) SortSpec {
	spec := SortSpec{By: s.DefaultSort, Order: s.DefaultOrder}
	if _, ok := s.Sorts[sortBy]; ok {
		spec.By = sortBy
	}
	switch o := strings.ToUpper(strings.TrimSpace(sortOrder)); o {
	case "ASC", "DESC":
		spec.Order = o
	}
	return spec
}

func (s *Schema) selectList() string {
	cols := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		cols = append(cols, s.expr(c)+" AS "+c.Name)
	}
	return strings.Join(cols, ", ")
}

func (s *Schema) from() string {
	from := s.Table + " " + s.Alias
	if s.Joins != "" {
		from += " " + s.Joins
	}
	return from
}

// BuildSelect turns filter params into a parameterized SELECT. Empty and
// unknown params are ignored; sort_by and sort_order go through ResolveSort.
func (s *Schema) BuildSelect(params map[string]string) (Query, error) {
	var (
		where []string
		args  []interface{}
	)

	for _, f := range s.Filters {
		raw := strings.TrimSpace(params[f.Param])
		if raw == "" {
			continue
		}

		if f.Match == MatchContains {
			where = append(where, f.Expr+" LIKE ?")
			args = append(args, "%"+likeEscaper.Replace(raw)+"%")
			continue
		}

		v, err := parseValue(f.Kind, raw)
		if err != nil {
			return Query{}, fmt.Errorf("filter %s: %w", f.Param, err)
		}
		switch f.Match {
		case MatchFrom:
			where = append(where, f.Expr+" >= ?")
		case MatchTo:
			where = append(where, f.Expr+" <= ?")
		default:
			where = append(where, f.Expr+" = ?")
		}
		args = append(args, v)
	}

	sort := s.ResolveSort(params["sort_by"], params["sort_order"])

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(s.selectList())
	b.WriteString(" FROM ")
	b.WriteString(s.from())
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, %s.id ASC", s.Sorts[sort.By], sort.Order, s.Alias)

	return Query{SQL: b.String(), Args: args}, nil
}

// BuildGet selects a single row by primary key.
func (s *Schema) BuildGet(id int64) Query {
	return Query{
		SQL:  "SELECT " + s.selectList() + " FROM " + s.from() + " WHERE " + s.Alias + ".id = ?",
		Args: []interface{}{id},
	}
}
