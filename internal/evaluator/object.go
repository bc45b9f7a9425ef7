package evaluator

import (
	"fmt"
	"strconv"
	"strings"
)

type ObjectType string

const (
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	BOOLEAN_OBJ = "BOOLEAN"
	STRING_OBJ  = "STRING"
	ARRAY_OBJ   = "ARRAY"
	VOID_OBJ    = "VOID"
	ERROR_OBJ   = "ERROR"
)

// Object is a runtime value.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	// Keep floats visually distinct from integers.
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return fmt.Sprintf("%q", s.Value) }

type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	elements := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		elements[i] = el.Inspect()
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// Void is the absence of a value: empty programs, lets in tail position,
// false ifs with no else.
type Void struct{}

func (v *Void) Type() ObjectType { return VOID_OBJ }
func (v *Void) Inspect() string  { return "void" }

// Error is a runtime failure travelling up the expression tree. Line/Column
// are optional: the message contract predates locations and stays intact.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("ERROR at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return "ERROR: " + e.Message
}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	VOID  = &Void{}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// objectsEqual implements structural equality over runtime values with
// Int/Float promotion, as used by == and by literal patterns.
func objectsEqual(left, right Object) bool {
	switch l := left.(type) {
	case *Integer:
		switch r := right.(type) {
		case *Integer:
			return l.Value == r.Value
		case *Float:
			return float64(l.Value) == r.Value
		}
	case *Float:
		switch r := right.(type) {
		case *Integer:
			return l.Value == float64(r.Value)
		case *Float:
			return l.Value == r.Value
		}
	case *Boolean:
		if r, ok := right.(*Boolean); ok {
			return l.Value == r.Value
		}
	case *String:
		if r, ok := right.(*String); ok {
			return l.Value == r.Value
		}
	case *Array:
		r, ok := right.(*Array)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !objectsEqual(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *Void:
		_, ok := right.(*Void)
		return ok
	}
	return false
}
