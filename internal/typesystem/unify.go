package typesystem

import (
	"fmt"
	"reflect"
)

// Unify attempts to find a substitution that makes t1 and t2 equal.
// It is symmetric: Unify(a, b) and Unify(b, a) produce structurally equal
// results modulo substitution.
func Unify(t1, t2 Type) (Subst, error) {
	if reflect.DeepEqual(t1, t2) {
		return Subst{}, nil
	}

	switch t1 := t1.(type) {
	case TVar:
		return Bind(t1, t2)
	case TCon:
		switch t2 := t2.(type) {
		case TVar:
			return Bind(t2, t1)
		case TCon:
			if t1.Name == t2.Name {
				return Subst{}, nil
			}
			return nil, errUnifyMsg(t1, t2, "type constant mismatch")
		default:
			return nil, errUnify(t1, t2)
		}
	case TApp:
		switch t2 := t2.(type) {
		case TVar:
			return Bind(t2, t1)
		case TApp:
			s1, err := Unify(t1.Constructor, t2.Constructor)
			if err != nil {
				return nil, err
			}
			if len(t1.Args) != len(t2.Args) {
				return nil, errMismatch(fmt.Sprintf("type arguments length mismatch: %d vs %d", len(t1.Args), len(t2.Args)))
			}
			for i := 0; i < len(t1.Args); i++ {
				arg1 := t1.Args[i].Apply(s1)
				arg2 := t2.Args[i].Apply(s1)
				s2, err := Unify(arg1, arg2)
				if err != nil {
					return nil, err
				}
				s1 = s1.Compose(s2)
			}
			return s1, nil
		default:
			return nil, errUnify(t1, t2)
		}
	case TFunc:
		switch t2 := t2.(type) {
		case TVar:
			return Bind(t2, t1)
		case TFunc:
			if len(t1.Params) != len(t2.Params) {
				return nil, errMismatch(fmt.Sprintf("function parameter count mismatch: %d vs %d", len(t1.Params), len(t2.Params)))
			}
			s1 := Subst{}
			for i := 0; i < len(t1.Params); i++ {
				p1 := t1.Params[i].Apply(s1)
				p2 := t2.Params[i].Apply(s1)
				s2, err := Unify(p1, p2)
				if err != nil {
					return nil, err
				}
				s1 = s1.Compose(s2)
			}
			ret1 := t1.ReturnType.Apply(s1)
			ret2 := t2.ReturnType.Apply(s1)
			s3, err := Unify(ret1, ret2)
			if err != nil {
				return nil, err
			}
			return s1.Compose(s3), nil
		default:
			return nil, errUnifyMsg(t1, t2, "cannot unify function type")
		}
	default:
		return nil, errMismatch(fmt.Sprintf("unknown type kind: %T", t1))
	}
}

// Bind binds a type variable to a type, performing the occurs check.
func Bind(tv TVar, t Type) (Subst, error) {
	if tVal, ok := t.(TVar); ok && tVal.Name == tv.Name {
		return Subst{}, nil
	}

	// Occurs check: tv must not appear in t (would imply an infinite type
	// like a = Array a).
	if OccursCheck(tv, t) {
		return nil, errMismatch(fmt.Sprintf("infinite type detected: %s in %s", tv, t))
	}

	return Subst{tv.Name: t}, nil
}

// OccursCheck returns true if tv appears free in t.
func OccursCheck(tv TVar, t Type) bool {
	for _, v := range t.FreeTypeVariables() {
		if v.Name == tv.Name {
			return true
		}
	}
	return false
}

func errUnify(t1, t2 Type) error {
	return fmt.Errorf("cannot unify %s with %s", t1, t2)
}

func errUnifyMsg(t1, t2 Type, msg string) error {
	return fmt.Errorf("%s: %s vs %s", msg, t1, t2)
}

func errMismatch(msg string) error {
	return fmt.Errorf("type mismatch: %s", msg)
}
