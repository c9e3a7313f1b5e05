// Package table turns decoded JSON records into rectangular string tables.
package table

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ValueColumn holds list elements that are not JSON objects.
const ValueColumn = "value"

// Table is a named rectangular result set. Every row has len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// FromRecords flattens a list of records into a table. Columns are the union
// of the record keys in the order they were first seen; a record missing a
// column gets an empty cell.
func FromRecords(name string, records []gjson.Result) *Table {
	b := newBuilder(name)
	for _, rec := range records {
		b.add(rec)
	}
	return b.build()
}

// FromObject turns a single object into a one-row table.
func FromObject(name string, obj gjson.Result) *Table {
	b := newBuilder(name)
	b.add(obj)
	return b.build()
}

type builder struct {
	name    string
	columns []string
	index   map[string]int
	rows    []map[int]string
}

func newBuilder(name string) *builder {
	return &builder{name: name, index: make(map[string]int)}
}

func (b *builder) column(key string) int {
	if i, ok := b.index[key]; ok {
		return i
	}
	i := len(b.columns)
	b.columns = append(b.columns, key)
	b.index[key] = i
	return i
}

func (b *builder) add(rec gjson.Result) {
	row := make(map[int]string)
	if !rec.IsObject() {
		row[b.column(ValueColumn)] = Cell(rec)
		b.rows = append(b.rows, row)
		return
	}
	rec.ForEach(func(key, value gjson.Result) bool {
		// duplicate keys: last one wins, as with a map decode
		row[b.column(key.String())] = Cell(value)
		return true
	})
	b.rows = append(b.rows, row)
}

func (b *builder) build() *Table {
	t := &Table{
		Name:    b.name,
		Columns: b.columns,
		Rows:    make([][]string, 0, len(b.rows)),
	}
	if t.Columns == nil {
		t.Columns = []string{}
	}
	for _, r := range b.rows {
		cells := make([]string, len(b.columns))
		for i, v := range r {
			cells[i] = v
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Cell renders one JSON value as table text. Strings are kept verbatim,
// numbers keep their literal form, null is empty and nested objects or
// lists become compact JSON.
func Cell(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.String()
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Number:
		return v.Raw
	default:
		if !v.Exists() {
			return ""
		}
		return string(pretty.Ugly([]byte(v.Raw)))
	}
}
