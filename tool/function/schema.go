//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package function

import (
	"reflect"
	"strings"

	"github.com/weavegraph/weavegraph/tool"
)

// generateSchema derives a JSON schema from the Go type of v via reflection.
// Struct fields use their json tags for naming; fields without omitempty are
// marked required.
func generateSchema(v any) *tool.Schema {
	t := reflect.TypeOf(v)
	if t == nil {
		return &tool.Schema{Type: tool.TypeObject}
	}
	return schemaForType(t)
}

func schemaForType(t reflect.Type) *tool.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return &tool.Schema{Type: tool.TypeString}
	case reflect.Bool:
		return &tool.Schema{Type: tool.TypeBoolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &tool.Schema{Type: tool.TypeInteger}
	case reflect.Float32, reflect.Float64:
		return &tool.Schema{Type: tool.TypeNumber}
	case reflect.Slice, reflect.Array:
		return &tool.Schema{
			Type:  tool.TypeArray,
			Items: schemaForType(t.Elem()),
		}
	case reflect.Map:
		return &tool.Schema{Type: tool.TypeObject}
	case reflect.Struct:
		return schemaForStruct(t)
	default:
		return &tool.Schema{Type: tool.TypeObject}
	}
}

func schemaForStruct(t reflect.Type) *tool.Schema {
	schema := &tool.Schema{
		Type:       tool.TypeObject,
		Properties: make(map[string]*tool.Schema),
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		optional := false
		if jsonTag, ok := field.Tag.Lookup("json"); ok {
			parts := strings.Split(jsonTag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, part := range parts[1:] {
				if part == "omitempty" {
					optional = true
				}
			}
		}
		fieldSchema := schemaForType(field.Type)
		if desc, ok := field.Tag.Lookup("description"); ok {
			fieldSchema.Description = desc
		}
		schema.Properties[name] = fieldSchema
		if !optional {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema
}
