package types

import (
	"reflect"
)

// CompiledType is the cached serialization plan for one Go type.
//
// For KindCustom and KindText, Ser and De report which directions the type
// handles itself; the other direction uses Base, the structural plan.
type CompiledType struct {
	GoType reflect.Type
	Elem   *CompiledType
	Key    *CompiledType
	Base   *CompiledType
	Name   string
	Fields []Field
	Len    int
	Kind   Kind
	Ser    bool
	De     bool
}

// Field is one serialized struct field.
type Field struct {
	Type      *CompiledType
	Name      string
	Index     []int
	OmitEmpty bool
	Optional  bool
}

func (ct *CompiledType) IsPrimitive() bool {
	return ct.Kind.IsPrimitive()
}

// FieldNames returns the serialized field names in declaration order.
func (ct *CompiledType) FieldNames() []string {
	names := make([]string, len(ct.Fields))
	for i, f := range ct.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldIndex returns the position of the field named name, or -1.
func (ct *CompiledType) FieldIndex(name string) int {
	for i := range ct.Fields {
		if ct.Fields[i].Name == name {
			return i
		}
	}
	return -1
}
