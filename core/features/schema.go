// Package features turns a vehicle descriptor into the ordered numeric vector
// expected by the trained ensemble.
package features

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSchema is returned for an empty or malformed column schema.
var ErrInvalidSchema = errors.New("invalid feature schema")

// Schema is the ordered list of column names the ensemble was trained on.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema validates and copies the column list. Names must be non-empty and unique.
func NewSchema(columns []string) (Schema, error) {
	if len(columns) == 0 {
		return Schema{}, fmt.Errorf("%w: no columns", ErrInvalidSchema)
	}
	s := Schema{columns: make([]string, len(columns)), index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return Schema{}, fmt.Errorf("%w: column %d has no name", ErrInvalidSchema, i)
		}
		if _, dup := s.index[c]; dup {
			return Schema{}, fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, c)
		}
		s.columns[i] = c
		s.index[c] = i
	}
	return s, nil
}

// MustSchema is NewSchema for static column lists; it panics on error.
func MustSchema(columns ...string) Schema {
	s, err := NewSchema(columns)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.columns) }

// Columns returns a copy of the column names in order.
func (s Schema) Columns() []string { return append([]string(nil), s.columns...) }

// Index returns the position of a column.
func (s Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

func (s Schema) valid() bool { return len(s.columns) > 0 && len(s.index) == len(s.columns) }
