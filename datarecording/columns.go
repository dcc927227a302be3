package datarecording

import (
	"fmt"
	"reflect"

	"github.com/fatih/structs"
)

const tagKey = "membist_data"

// A column is one field of an entry struct.
type column struct {
	name  string
	kind  reflect.Kind
	index bool
}

// columnsOf lists the exported fields of an entry struct. Only scalar fields
// can be stored.
func columnsOf(sampleEntry any) ([]column, error) {
	t := reflect.TypeOf(sampleEntry)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entry must be a struct, got %T", sampleEntry)
	}

	byName := make(map[string]reflect.StructField)
	for i := 0; i < t.NumField(); i++ {
		byName[t.Field(i).Name] = t.Field(i)
	}

	var cols []column

	for _, name := range structs.Names(sampleEntry) {
		field, ok := byName[name]
		if !ok || !field.IsExported() {
			continue
		}

		kind := field.Type.Kind()
		if !isScalar(kind) {
			return nil, fmt.Errorf("field %s of %T has unsupported kind %s",
				name, sampleEntry, kind)
		}

		cols = append(cols, column{
			name:  name,
			kind:  kind,
			index: field.Tag.Get(tagKey) == "index",
		})
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("entry %T has no fields to store", sampleEntry)
	}

	return cols, nil
}

func isScalar(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

// valuesOf returns the stored fields of an entry in column order.
func valuesOf(entry any, cols []column) []any {
	v := reflect.ValueOf(entry)
	values := make([]any, len(cols))

	for i, c := range cols {
		values[i] = v.FieldByName(c.name).Interface()
	}

	return values
}

// quote makes a field name safe to use as a column name, since fields such
// as Index are keywords in SQL.
func quote(name string) string {
	return `"` + name + `"`
}
