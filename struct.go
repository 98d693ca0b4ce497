package destream

import (
	"reflect"
	"strings"
	"sync"
)

// structField describes one encodable/decodable field of a record type.
type structField struct {
	name  string
	index int

	// optional marks pointer-typed fields, which may be left unset by the
	// stream and default to nil instead of failing with a missing field
	// error.
	optional bool
}

type structFields struct {
	list   []structField
	byName map[string]int
}

var structCache sync.Map // reflect.Type -> *structFields

// cachedStructFields returns the field table for a struct type, resolving
// names from `destream` tags and falling back to the lowercased field name.
// Unexported fields and fields tagged "-" are skipped.
func cachedStructFields(t reflect.Type) *structFields {
	if cached, ok := structCache.Load(t); ok {
		return cached.(*structFields)
	}

	fields := &structFields{
		byName: make(map[string]int),
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Tag.Get("destream")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		fields.byName[name] = len(fields.list)
		fields.list = append(fields.list, structField{
			name:     name,
			index:    i,
			optional: f.Type.Kind() == reflect.Ptr,
		})
	}

	cached, _ := structCache.LoadOrStore(t, fields)
	return cached.(*structFields)
}
