package entities

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Row is one table row. Column order follows the source document, which
// encoding/json maps would lose.
type Row struct {
	keys  []string
	cells map[string]string
}

// Table is an ordered sequence of rows
type Table []Row

// NewRow builds a row from alternating column/value pairs
func NewRow(pairs ...string) Row {
	r := Row{cells: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.set(pairs[i], pairs[i+1])
	}
	return r
}

func (r *Row) set(key, value string) {
	if r.cells == nil {
		r.cells = make(map[string]string)
	}
	if _, ok := r.cells[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.cells[key] = value
}

// Keys returns the column names in document order
func (r Row) Keys() []string {
	return r.keys
}

// Cell returns the value of column key, or "" when absent
func (r Row) Cell(key string) string {
	return r.cells[key]
}

// UnmarshalJSON reads a JSON object keeping key order. Null cells become "",
// strings are unquoted and other values keep their raw JSON text.
func (r *Row) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid table row JSON")
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return fmt.Errorf("table row must be a JSON object, got %s", res.Type)
	}

	*r = Row{cells: make(map[string]string)}
	res.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Null:
			r.set(key.String(), "")
		case gjson.String:
			r.set(key.String(), value.Str)
		default:
			r.set(key.String(), value.Raw)
		}
		return true
	})
	return nil
}
