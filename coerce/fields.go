// Package coerce discovers the writable scalar fields of struct types
// and converts string values into them on a best-effort basis. It is
// the type-conversion collaborator behind laxcsv's typed record reads:
// discovery runs once per distinct type and is cached for the life of
// the process, and conversion reports failure instead of returning an
// error so callers can drop bad cells cheaply.
package coerce

import (
	"reflect"
	"strings"
	"sync"
)

// Field describes one writable scalar member of a struct type. Name is
// the match name: the `csv` tag when one is present, the Go field name
// otherwise.
type Field struct {
	Name  string
	Index int
	Type  reflect.Type
}

var (
	cacheMu sync.Mutex
	cache   = map[reflect.Type][]Field{}
)

// ScalarFields returns descriptors for the exported, settable scalar
// fields of t in declaration order. Results are cached per type; the
// cache is shared process-wide and safe for concurrent callers.
func ScalarFields(t reflect.Type) []Field {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	fields, ok := cache[t]
	if !ok {
		fields = discover(t)
		cache[t] = fields
	}
	return fields
}

// Lookup finds the descriptor with the given name, matching exactly.
func Lookup(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func discover(t reflect.Type) []Field {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		if !Scalar(sf.Type) {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("csv"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields = append(fields, Field{Name: name, Index: i, Type: sf.Type})
	}
	return fields
}
